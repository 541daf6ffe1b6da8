package cli

import (
	"errors"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

// Config keys the commands read for their defaults.
const (
	keySyncInterval   = "sync.interval"
	keySyncMaxObjects = "sync.max_objects"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application configuration",
	Long: `View and change configuration values. Keys use dot notation matching the
TOML sections, e.g. "objectstore.areas" or "sync.interval".`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and persists it immediately. Values that parse
as integers, floats or booleans are stored typed; everything else is a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := wellKnownKeys()
	shown := 0
	for _, key := range keys {
		if val, ok := configStore.Get(key); ok {
			cmd.Printf("%s = %v\n", key, val)
			shown++
		}
	}
	if shown == 0 {
		cmd.Printf("No configuration set. File: %s\n", configStore.Path())
		return nil
	}
	cmd.Printf("File: %s\n", configStore.Path())
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		cmd.Printf("%s is not set\n", args[0])
		return nil
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

// parseConfigValue stores numbers and booleans typed so the TOML round-trips.
func parseConfigValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// wellKnownKeys returns the documented keys in stable order.
func wellKnownKeys() []string {
	keys := []string{
		"storage.backend",
		"storage.data_dir",
		"objectstore.kind",
		"objectstore.url",
		"objectstore.root",
		"objectstore.areas",
		"sync.interval",
		"sync.max_objects",
		"sync.state_backend",
		"llm.model",
		"llm.base_url",
		"embedding.model",
		"chunking.target_size",
		"chunking.overlap",
		"insights.batch_concurrency",
		"insights.min_quality",
	}
	sort.Strings(keys)
	return keys
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	configfile "github.com/meridian-labs/docsight/internal/adapters/driven/config/file"
	embeddingopenai "github.com/meridian-labs/docsight/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/meridian-labs/docsight/internal/adapters/driven/llm/openai"
	"github.com/meridian-labs/docsight/internal/adapters/driven/objectstore/filesystem"
	"github.com/meridian-labs/docsight/internal/adapters/driven/objectstore/supabase"
	"github.com/meridian-labs/docsight/internal/adapters/driven/storage/memory"
	"github.com/meridian-labs/docsight/internal/adapters/driven/storage/sqlite"
	"github.com/meridian-labs/docsight/internal/adapters/driving/cli"
	"github.com/meridian-labs/docsight/internal/chunking"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/core/ports/driving"
	"github.com/meridian-labs/docsight/internal/core/services"
	"github.com/meridian-labs/docsight/internal/extractors"
	"github.com/meridian-labs/docsight/internal/extractors/pdf"
	"github.com/meridian-labs/docsight/internal/extractors/plaintext"
	"github.com/meridian-labs/docsight/internal/extractors/tabular"
	"github.com/meridian-labs/docsight/internal/insights"
	"github.com/meridian-labs/docsight/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// Credentials come from the environment; a .env in the working
	// directory is a convenience for local runs.
	_ = godotenv.Load() //nolint:errcheck // Missing .env is fine

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docsight: %v\n", err)
		os.Exit(1)
	}
}

//nolint:gocognit // Composition root, sequential wiring
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := configfile.NewConfigStore(os.Getenv("DOCSIGHT_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Storage backend
	var (
		docStore     driven.DocumentStore
		insightStore driven.InsightStore
		syncStore    driven.SyncStateStore
	)
	switch backend := cfg.GetString(configfile.KeyStorageBackend); backend {
	case "", "sqlite":
		store, err := sqlite.NewStore(cfg.GetString(configfile.KeyDataDir))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close() //nolint:errcheck
		docStore = store.DocumentStore()
		insightStore = store.InsightStore()
		syncStore = store.SyncStateStore()
	case "memory":
		docStore = memory.NewDocumentStore()
		insightStore = memory.NewInsightStore()
		syncStore = memory.NewSyncStateStore()
	default:
		return fmt.Errorf("unknown storage backend %q", backend)
	}

	syncStore, err = buildSyncStateStore(cfg, syncStore)
	if err != nil {
		return err
	}

	// Object storage
	objectStorage, err := buildObjectStorage(cfg)
	if err != nil {
		return err
	}

	// LLM and embeddings run against the same OpenAI account. Without a
	// key the pipeline degrades: chunks are stored unembedded and no
	// insights are extracted.
	var (
		llm      driven.LLMService
		embedder driven.EmbeddingService
		pipeline driving.InsightPipeline
	)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		llm, err = llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:  apiKey,
			BaseURL: cfg.GetString(configfile.KeyLLMBaseURL),
			Model:   cfg.GetString(configfile.KeyLLMModel),
		})
		if err != nil {
			return fmt.Errorf("llm: %w", err)
		}
		defer llm.Close() //nolint:errcheck

		embedder, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey: apiKey,
			Model:  cfg.GetString(configfile.KeyEmbeddingModel),
		})
		if err != nil {
			return fmt.Errorf("embedding: %w", err)
		}
		defer embedder.Close() //nolint:errcheck

		insightCfg := insights.DefaultConfig()
		if n := cfg.GetInt(configfile.KeyInsightConcurrency); n > 0 {
			insightCfg.BatchConcurrency = n
		}
		if q := cfg.GetFloat(configfile.KeyInsightMinQuality); q > 0 {
			insightCfg.MinQuality = q
		}
		pipeline = insights.NewEngine(llm, insightStore, insightCfg)
	} else {
		logger.Warn("OPENAI_API_KEY not set: embeddings and insight extraction disabled")
	}

	// Extraction and chunking. Specific media types register before the
	// text/ prefix catch-all.
	registry := extractors.NewRegistry(
		tabular.New(),
		pdf.New(),
		plaintext.New(),
	)

	chunkCfg := chunking.DefaultConfig()
	if n := cfg.GetInt(configfile.KeyChunkTargetSize); n > 0 {
		chunkCfg.TranscriptTargetSize = n
	}
	if n := cfg.GetInt(configfile.KeyChunkOverlap); n > 0 {
		chunkCfg.WindowOverlap = n
	}
	chunker := chunking.NewEngine(chunkCfg, embedder)

	areas := cfg.GetStringSlice(configfile.KeyAreas)
	if len(areas) == 0 {
		areas = []string{"meetings", "documents"}
	}

	opts := []services.SyncOption{
		services.WithAreas(areas),
		services.WithObjectRate(10),
	}
	if id := os.Getenv("DOCSIGHT_PIPELINE_ID"); id != "" {
		opts = append(opts, services.WithPipelineID(id))
	}

	orchestrator := services.NewSyncOrchestrator(
		objectStorage,
		registry,
		chunker,
		embedder,
		docStore,
		syncStore,
		pipeline,
		opts...,
	)

	return cli.Execute(ctx, cli.Services{
		Sync:     orchestrator,
		Insights: insightStore,
		Config:   cfg,
		Version:  version,
	})
}

// buildSyncStateStore swaps the storage backend's sync state for a
// config-dir TOML file when sync.state_backend is "file". File state
// keeps only the watermark, so change detection degrades to timestamp
// comparison.
func buildSyncStateStore(cfg driven.ConfigStore, fallback driven.SyncStateStore) (driven.SyncStateStore, error) {
	switch backend := cfg.GetString(configfile.KeySyncStateBackend); backend {
	case "":
		return fallback, nil
	case "file":
		store, err := configfile.NewSyncStateStore(os.Getenv("DOCSIGHT_CONFIG_DIR"))
		if err != nil {
			return nil, fmt.Errorf("open sync state file: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown sync state backend %q", backend)
	}
}

// buildObjectStorage selects the storage adapter from config and env.
// Supabase credentials in the environment win; otherwise a local root
// directory is used.
func buildObjectStorage(cfg driven.ConfigStore) (driven.ObjectStorage, error) {
	kind := cfg.GetString(configfile.KeyObjectStoreKind)
	supabaseURL := os.Getenv("SUPABASE_URL")

	if kind == "supabase" || (kind == "" && supabaseURL != "") {
		if url := cfg.GetString(configfile.KeyObjectStoreURL); url != "" {
			supabaseURL = url
		}
		return supabase.NewStorage(supabase.Config{
			ProjectURL: supabaseURL,
			ServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
			Timeout:    30 * time.Second,
		})
	}

	root := cfg.GetString(configfile.KeyObjectStoreRoot)
	if root == "" {
		root = os.Getenv("DOCSIGHT_STORAGE_ROOT")
	}
	if root == "" {
		return nil, fmt.Errorf("no object storage configured: set %s in config or SUPABASE_URL / DOCSIGHT_STORAGE_ROOT in the environment", configfile.KeyObjectStoreRoot)
	}
	return filesystem.NewStorage(root)
}

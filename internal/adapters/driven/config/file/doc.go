// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under the docsight
// config directory (~/.docsight by default).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with dot-notation keys
//   - SyncStateStore: TOML-based sync watermark storage (last check time
//     only; no per-object fingerprints)
package file

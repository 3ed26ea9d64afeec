// Package cli provides common utilities for the voiceink command-line tool.
//
// This package includes:
//   - Configuration management (installed models, defaults)
//   - Output formatting (JSON, YAML)
//   - Request file loading (YAML/JSON)
//
// Configuration is stored in ~/.voiceink/, with model directories under
// ~/.voiceink/models/<name>.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//
//	model, err := cfg.ResolveModel("")
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli

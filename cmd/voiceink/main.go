// Package main provides the voiceink speech transcription CLI.
//
// Usage:
//
//	voiceink [flags] <command> [args]
//
// Commands:
//
//	transcribe - Transcribe a WAV file with an on-device model
//	models     - Manage installed recognition models
//	config     - Inspect CLI configuration
//
// Configuration:
//
//	The CLI stores configuration in ~/.voiceink/ and expects model
//	directories (model file plus tokens.txt) under ~/.voiceink/models/.
package main

import (
	"fmt"
	"os"

	"github.com/tmm22/VoiceInk-sub003/cmd/voiceink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmm22/VoiceInk-sub003/pkg/cli"
)

var (
	// Global flags
	cfgFile    string
	modelName  string
	outputFile string
	inputFile  string
	outputJSON bool
	verbose    bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voiceink",
	Short: "On-device speech transcription CLI",
	Long: `voiceink - On-device speech transcription.

Transcribes WAV audio with local ONNX recognition models. No audio
leaves the machine.

Supported model families:
  fastconformer  NVIDIA FastConformer-CTC
  sensevoice     FunASR SenseVoice-small
  parakeet       NVIDIA Parakeet CTC

Model directories live under ~/.voiceink/models/<name> and hold the
.onnx export plus a tokens.txt vocabulary.

Examples:
  # Register a model and make it the default
  voiceink models add sensevoice-small --family sensevoice
  voiceink models use sensevoice-small

  # Transcribe
  voiceink transcribe recording.wav
  voiceink transcribe recording.wav -m parakeet-ctc --json | jq .text
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.voiceink/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "model name to use (default: config default_model)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "request file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

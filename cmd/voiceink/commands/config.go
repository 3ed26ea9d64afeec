package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmm22/VoiceInk-sub003/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect CLI configuration",
	Long: `Inspect CLI configuration.

Configuration is stored in ~/.voiceink/config.yaml`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		format := cli.FormatYAML
		if outputJSON {
			format = cli.FormatJSON
		}
		return cli.Output(cfg, cli.OutputOptions{Format: format, File: outputFile})
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(getConfig().Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configPathCmd)
}

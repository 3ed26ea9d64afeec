package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tmm22/VoiceInk-sub003/pkg/cli"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage installed recognition models",
	Long: `Manage installed recognition models.

A model is a directory holding an .onnx export and a tokens.txt
vocabulary. Register the directory under a name, then select it with
-m or make it the default with 'models use'.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		names := cfg.ListModels()
		if len(names) == 0 {
			cli.PrintInfo("No models registered. Add one with: voiceink models add <name> --family <family>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFAMILY\tDIR\tSIZE\tDEFAULT")
		for _, name := range names {
			m, err := cfg.GetModel(name)
			if err != nil {
				return err
			}
			dir := m.ResolvedDir(cfg.ResolvedModelsDir())
			def := ""
			if name == cfg.DefaultModel {
				def = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				name, m.Family, dir, cli.FormatBytes(dirSize(dir)), def)
		}
		return w.Flush()
	},
}

var modelsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a model",
	Long: `Register a model directory under a name.

The directory defaults to ~/.voiceink/models/<name> and must contain
the model export and tokens.txt.

Examples:
  voiceink models add sensevoice-small --family sensevoice
  voiceink models add fc-large --family fastconformer --dir /opt/models/fc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		family, err := cmd.Flags().GetString("family")
		if err != nil {
			return fmt.Errorf("failed to read 'family' flag: %w", err)
		}
		switch family {
		case "fastconformer", "sensevoice", "parakeet":
		case "":
			return fmt.Errorf("--family is required")
		default:
			return fmt.Errorf("unknown family %q (want fastconformer, sensevoice or parakeet)", family)
		}

		dir, err := cmd.Flags().GetString("dir")
		if err != nil {
			return fmt.Errorf("failed to read 'dir' flag: %w", err)
		}

		cfg := getConfig()
		if err := cfg.AddModel(name, &cli.ModelConfig{Family: family, Dir: dir}); err != nil {
			return err
		}

		cli.PrintSuccess("Model %q registered", name)
		return nil
	},
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a model registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if err := cfg.DeleteModel(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Model %q removed", args[0])
		return nil
	},
}

var modelsUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if err := cfg.UseModel(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Default model set to %q", args[0])
		return nil
	},
}

func init() {
	modelsAddCmd.Flags().String("family", "", "model family: fastconformer, sensevoice or parakeet")
	modelsAddCmd.Flags().String("dir", "", "model directory (default ~/.voiceink/models/<name>)")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsAddCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
	modelsCmd.AddCommand(modelsUseCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List whisper models",
	Long: `Lists the available whisper models with download size, memory use and
whether the weights are already in the model directory.

Examples:
  whisper-batch models
  whisper-batch models download small`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download <model>",
	Short: "Download model weights ahead of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsDownload,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsDownloadCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	svc, err := newServices(serviceConfig{})
	if err != nil {
		return err
	}
	defer svc.Close()

	out := newPrinter(cmd.OutOrStdout())
	out.line(out.style(headerStyle, fmt.Sprintf("Models in %s", svc.Settings.ModelDir)))
	for _, m := range svc.Models() {
		mark := "  "
		if m.Downloaded {
			mark = out.style(successStyle, "* ")
		}
		out.line(fmt.Sprintf("%s%-9s %-8s RAM %-7s %s", mark, m.ID, m.SizeLabel, m.MemoryLabel, out.style(mutedStyle, m.Description)))
	}
	return nil
}

func runModelsDownload(cmd *cobra.Command, args []string) error {
	svc, err := newServices(serviceConfig{})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signalContext()
	defer stop()

	out := newPrinter(cmd.OutOrStdout())
	path, err := svc.DownloadModel(ctx, args[0], func(percent float64, message string) {
		out.modelDownload(modelDownloadEvent(args[0], percent, message))
	})
	if err != nil {
		return err
	}
	out.status(fmt.Sprintf("Model ready: %s", path))
	return nil
}

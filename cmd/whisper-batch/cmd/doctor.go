package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"whisper-batch/internal/bootstrap"
	"whisper-batch/internal/domain"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor [directory]",
	Short: "Check tools, model directory and write access",
	Long: `Checks that ffprobe, ffmpeg and whisper-cli are available, that the model
directory is writable and, when a directory is given, that transcripts can
be written next to the audio files.

Examples:
  whisper-batch doctor
  whisper-batch doctor ./recordings
  whisper-batch doctor --fix`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "try to install missing tools and create missing directories")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	audioDir := ""
	if len(args) == 1 {
		audioDir = args[0]
	}

	svc, err := newServices(serviceConfig{})
	if err != nil {
		return err
	}
	defer svc.Close()

	out := newPrinter(cmd.OutOrStdout())
	report := svc.Diagnose(audioDir)

	if doctorFix && report.HasFailures {
		fixer := bootstrap.NewFixer(svc)
		for _, item := range report.Failures() {
			out.status(fmt.Sprintf("Fixing %s...", item.Name))
			if err := fixer.Fix(context.Background(), item.ID, svc.Settings); err != nil {
				out.line(out.errorLine(fmt.Sprintf("  %v", err)))
			}
		}
		report = svc.Diagnose(audioDir)
	}

	out.line(out.style(headerStyle, "Environment"))
	for _, item := range report.Items {
		mark := out.style(successStyle, "PASS")
		if item.Status == domain.DiagnosticStatusFail {
			mark = out.style(errorStyle, "FAIL")
		}
		out.line(fmt.Sprintf("%s  %-18s %s", mark, item.Name, item.Message))
		if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
			out.line(out.style(mutedStyle, "      "+item.Hint))
		}
	}

	if report.HasFailures {
		return fmt.Errorf("%d check(s) failed", len(report.Failures()))
	}
	return nil
}

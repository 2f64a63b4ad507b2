package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [names...]",
	Short: "Evaluate and write Markdown/CSV reports",
	Long: `Runs a batch evaluation (all factors when none given) and
writes a Markdown report plus a ranking CSV into the report directory.

Example:
  go run ./cmd/factorlab report
  go run ./cmd/factorlab report SMA_5 RSI_14 --dir ./reports`,
	RunE: runReport,
}

var reportDir string

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportDir, "dir", "", "output directory (default: REPORT_DIR)")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var names []string
	if len(args) > 0 {
		names = args
	}

	result, err := a.orchestrator.EvaluateAll(ctx, names)
	if err != nil {
		return fmt.Errorf("batch evaluation: %w", err)
	}

	dir := reportDir
	if dir == "" {
		dir = a.cfg.Evaluation.ReportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	renderer := report.NewRenderer(a.log)
	stamp := result.EvaluatedAt.Format("20060102")

	mdPath := filepath.Join(dir, fmt.Sprintf("factor_report_%s.md", stamp))
	if err := os.WriteFile(mdPath, []byte(renderer.Markdown(result)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	csvPath := filepath.Join(dir, fmt.Sprintf("factor_ranking_%s.csv", stamp))
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create ranking csv: %w", err)
	}
	if err := renderer.RankingCSV(csvFile, result.Ranking); err != nil {
		csvFile.Close()
		return fmt.Errorf("write ranking csv: %w", err)
	}
	if err := csvFile.Close(); err != nil {
		return fmt.Errorf("close ranking csv: %w", err)
	}

	fmt.Printf("✅ Report written\n  %s\n  %s\n", mdPath, csvPath)
	return nil
}

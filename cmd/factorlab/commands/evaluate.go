package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/evaluation"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run factor evaluations",
	Long: `Runs the evaluation pipeline against stored factor data.

Subcommands:
  factor  - evaluate a single factor and print its full breakdown
  batch   - evaluate many factors (all known factors when none given)

Example:
  go run ./cmd/factorlab evaluate factor SMA_5
  go run ./cmd/factorlab evaluate batch
  go run ./cmd/factorlab evaluate batch SMA_5 RSI_14 --save`,
}

var (
	evaluateSave bool

	evaluateFactorCmd = &cobra.Command{
		Use:   "factor [name]",
		Short: "Evaluate a single factor",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvaluateFactor,
	}

	evaluateBatchCmd = &cobra.Command{
		Use:   "batch [names...]",
		Short: "Evaluate a factor set (all factors when none given)",
		RunE:  runEvaluateBatch,
	}
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.AddCommand(evaluateFactorCmd)
	evaluateCmd.AddCommand(evaluateBatchCmd)

	evaluateBatchCmd.Flags().BoolVar(&evaluateSave, "save", false, "persist the batch result to the database")
}

func runEvaluateFactor(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := a.orchestrator.EvaluateOne(ctx, args[0])
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", args[0], err)
	}

	printEvaluation(result)
	return nil
}

func runEvaluateBatch(cmd *cobra.Command, args []string) error {
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

	start := time.Now()
	result, err := a.orchestrator.EvaluateAll(ctx, names)
	if err != nil {
		return fmt.Errorf("batch evaluation: %w", err)
	}

	printBatch(result, time.Since(start))

	if evaluateSave {
		if err := a.results.SaveBatch(ctx, result); err != nil {
			return fmt.Errorf("persist batch: %w", err)
		}
		fmt.Println("\n✅ Batch result saved")
	}

	return nil
}

func printEvaluation(result contracts.FactorEvaluation) {
	headline := result.IC.Headline()

	fmt.Printf("=== %s ===\n\n", result.FactorName)
	fmt.Printf("Category:        %s (primary horizon %dd)\n", result.IC.Category, result.IC.PrimaryHorizon)
	fmt.Printf("Grade:           %s\n", result.Score.Grade)
	fmt.Printf("Total score:     %.4f\n\n", result.Score.Total)

	fmt.Println("Sub-scores:")
	fmt.Printf("  IC:            %.4f\n", result.Score.IC)
	fmt.Printf("  Stability:     %.4f\n", result.Score.Stability)
	fmt.Printf("  Data quality:  %.4f\n", result.Score.DataQuality)
	fmt.Printf("  Distribution:  %.4f\n", result.Score.Distribution)
	fmt.Printf("  Consistency:   %.4f\n\n", result.Score.Consistency)

	fmt.Printf("IC (horizon %dd): mean=%.4f std=%.4f ir=%.3f win=%.1f%% n=%d\n",
		result.IC.PrimaryHorizon, headline.Mean, headline.Std, headline.IR,
		headline.PositiveRatio*100, headline.SampleSize)
	fmt.Printf("Series:          n=%d missing=%.1f%% skew=%.2f kurt=%.2f\n",
		result.Basic.Count, result.Basic.MissingRatio*100,
		result.Basic.Skewness, result.Basic.Kurtosis)
	fmt.Printf("Stability:       score=%.3f\n", result.Stability.StabilityScore)
}

func printBatch(result contracts.BatchResult, elapsed time.Duration) {
	summary := evaluation.Summarize(result)

	fmt.Println("=== Batch Evaluation ===")
	fmt.Printf("Factors: %d requested, %d evaluated (%.1f%%) in %s\n\n",
		summary.RequestedFactors, summary.EvaluatedFactors,
		summary.SuccessRate*100, elapsed.Round(time.Millisecond))

	if len(result.Ranking) > 0 {
		fmt.Println("Ranking:")
		for _, row := range result.Ranking {
			fmt.Printf("  %3d. %-24s %s  %.4f\n", row.Rank, row.FactorName, row.Grade, row.TotalScore)
		}
		fmt.Println()
	}

	if len(result.Selection.Recommended) > 0 {
		fmt.Printf("Recommended: %v\n", result.Selection.Recommended)
	}
	if len(result.Selection.Redundant) > 0 {
		fmt.Printf("Redundant:   %v\n", result.Selection.Redundant)
	}

	if len(result.Skipped) > 0 {
		names := make([]string, 0, len(result.Skipped))
		for name := range result.Skipped {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nSkipped:")
		for _, name := range names {
			fmt.Printf("  - %s: %s\n", name, result.Skipped[name])
		}
	}
}

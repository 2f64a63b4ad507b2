package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/internal/validation"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [name]",
	Short: "Out-of-sample validation of a factor",
	Long: `Measures how much of a factor's predictive power survives out
of sample: in-sample vs out-of-sample IC per horizon, degradation
metrics and a robustness verdict.

Modes:
  simple       - single time-ordered train/test split
  walkforward  - rolling windows stepped through time

Example:
  go run ./cmd/factorlab validate SMA_5
  go run ./cmd/factorlab validate SMA_5 --mode walkforward --window 252 --step 21`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var (
	validateMode     string
	validateWindow   int
	validateStep     int
	validateHorizons []int
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateMode, "mode", "simple", "validation mode (simple|walkforward)")
	validateCmd.Flags().IntVar(&validateWindow, "window", validation.DefaultWindowSize, "walk-forward window size")
	validateCmd.Flags().IntVar(&validateStep, "step", validation.DefaultStepSize, "walk-forward step size")
	validateCmd.Flags().IntSliceVar(&validateHorizons, "horizons", nil, "forward horizons (default: category horizons)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	factor, err := a.provider.GetFactorSeries(ctx, name)
	if err != nil {
		return fmt.Errorf("load factor %s: %w", name, err)
	}
	returns, err := a.provider.GetReturnSeries(ctx)
	if err != nil {
		return fmt.Errorf("load returns: %w", err)
	}

	horizons := validateHorizons
	if len(horizons) == 0 {
		horizons, _ = a.classifier.AdaptiveHorizons(name)
	}

	var result contracts.ValidationResult
	switch validateMode {
	case "simple":
		result, err = a.validator.ValidateSimple(factor, returns, horizons)
	case "walkforward":
		result, err = a.validator.WalkForward(factor, returns, validateWindow, validateStep, horizons)
	default:
		return fmt.Errorf("unknown mode %q (simple|walkforward)", validateMode)
	}
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}

	printValidation(result)
	return nil
}

func printValidation(result contracts.ValidationResult) {
	fmt.Printf("=== %s (%s) ===\n\n", result.FactorName, result.Mode)

	horizons := make([]int, 0, len(result.Degradation))
	for h := range result.Degradation {
		horizons = append(horizons, h)
	}
	sort.Ints(horizons)

	fmt.Println("Per-horizon degradation:")
	for _, h := range horizons {
		d := result.Degradation[h]
		fmt.Printf("  %3dd: in=%.4f out=%.4f decay=%.1f%% sign=%.0f\n",
			h, d.InSampleIC, d.OutSampleIC, d.AbsDegradation*100, d.SignConsistency)
	}

	fmt.Printf("\nAvg degradation:  %.1f%% (%s)\n",
		result.Summary.AvgAbsDegradation*100, result.Summary.Severity)
	fmt.Printf("Sign consistency: %.1f%%\n", result.Summary.AvgSignConsistency*100)
	fmt.Printf("Robustness:       %.3f\n", result.RobustnessScore)

	if result.Mode == contracts.ValidationWalkForward {
		fmt.Printf("Windows:          %d (size %d, step %d)\n",
			result.WindowCount, result.WindowSize, result.StepSize)
	}

	fmt.Printf("Train period:     %s to %s (%d)\n",
		result.TrainPeriod.Start.Format("2006-01-02"),
		result.TrainPeriod.End.Format("2006-01-02"), result.TrainPeriod.Length)
	fmt.Printf("Test period:      %s to %s (%d)\n",
		result.TestPeriod.Start.Format("2006-01-02"),
		result.TestPeriod.End.Format("2006-01-02"), result.TestPeriod.Length)

	if result.Robust {
		fmt.Println("\n✅ Factor is robust out of sample")
	} else {
		fmt.Println("\n⚠️  Factor is NOT robust out of sample")
	}
}

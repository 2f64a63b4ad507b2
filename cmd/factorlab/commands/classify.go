package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/classifier"
	"github.com/wonny/factorlab/pkg/logger"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [names...]",
	Short: "Classify factor names into evaluation categories",
	Long: `Classifies factor names and prints the category, evaluation
horizons and match confidence for each.

Classification is pure name matching and needs no database.

Example:
  go run ./cmd/factorlab classify SMA_5 RSI_14 PER
  go run ./cmd/factorlab classify --summary`,
	RunE: runClassify,
}

var classifySummary bool

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().BoolVar(&classifySummary, "summary", false, "print the category rule summary instead")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cls := classifier.New(logger.NewNop())

	if classifySummary {
		printCategorySummary(cls)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("no factor names given (or use --summary)")
	}

	for _, name := range args {
		v := cls.Validate(name)
		fmt.Printf("%s\n", v.FactorName)
		fmt.Printf("  Category:   %s\n", v.Category.Name)
		fmt.Printf("  Horizons:   %v (primary %dd)\n", v.Category.Horizons, v.Category.PrimaryHorizon)
		fmt.Printf("  Confidence: %s", v.Confidence)
		if v.ExactMatch {
			fmt.Printf(" (pattern %s)", v.MatchedPattern)
		}
		fmt.Println()
		fmt.Println()
	}

	return nil
}

func printCategorySummary(cls *classifier.Classifier) {
	summary := cls.CategorySummary()

	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Categories:")
	for _, name := range names {
		s := summary[name]
		fmt.Printf("  %-18s horizons=%v primary=%dd patterns=%d\n",
			name, s.Horizons, s.PrimaryHorizon, s.PatternCount)
	}
}

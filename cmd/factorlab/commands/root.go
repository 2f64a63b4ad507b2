package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "factorlab",
	Short: "FactorLab - factor evaluation and validation engine",
	Long: `FactorLab Unified CLI

Evaluates trading factors against forward returns: adaptive IC analysis,
stability and distribution scoring, correlation structure, out-of-sample
validation and composite grading.

Usage:
  go run ./cmd/factorlab [command]

Examples:
  go run ./cmd/factorlab evaluate batch
  go run ./cmd/factorlab evaluate factor SMA_5
  go run ./cmd/factorlab classify RSI_14
  go run ./cmd/factorlab validate SMA_5 --mode walkforward
  go run ./cmd/factorlab api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

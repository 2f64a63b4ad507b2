package ic

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// WindowConfig selects the rolling windows used during IC and
// stability analysis. Presets are tuned per trading cadence.
type WindowConfig struct {
	ICWindows       []int  `yaml:"ic_windows"`
	StabilityWindow int    `yaml:"stability_window"`
	PrimaryWindow   int    `yaml:"primary_window"`
	Description     string `yaml:"description"`
}

// Strategy preset names.
const (
	StrategyShortTerm      = "short_term"
	StrategyUltraShort     = "ultra_short"
	StrategyMediumShort    = "medium_short"
	StrategyMediumTerm     = "medium_term"
	StrategyMultiTimeframe = "multi_timeframe"
)

var strategyWindows = map[string]WindowConfig{
	StrategyShortTerm: {
		ICWindows:       []int{10, 20, 30},
		StabilityWindow: 20,
		PrimaryWindow:   20,
		Description:     "Short-term: 1-4 week trading cadence, fast response",
	},
	StrategyUltraShort: {
		ICWindows:       []int{5, 10, 15},
		StabilityWindow: 15,
		PrimaryWindow:   10,
		Description:     "Ultra-short: intraday to weekly trading, high sensitivity",
	},
	StrategyMediumShort: {
		ICWindows:       []int{15, 30, 45},
		StabilityWindow: 30,
		PrimaryWindow:   30,
		Description:     "Medium-short: balances sensitivity and stability, monthly cadence",
	},
	StrategyMediumTerm: {
		ICWindows:       []int{30, 60, 90},
		StabilityWindow: 60,
		PrimaryWindow:   60,
		Description:     "Medium-term: classic 60-day window, quarterly cadence",
	},
	StrategyMultiTimeframe: {
		ICWindows:       []int{10, 20, 30, 60},
		StabilityWindow: 30,
		PrimaryWindow:   20,
		Description:     "Multi-timeframe: blends short through long windows",
	},
}

// WindowConfigFor returns the window preset for a strategy type.
func WindowConfigFor(strategyType string) (WindowConfig, error) {
	cfg, ok := strategyWindows[strategyType]
	if !ok {
		return WindowConfig{}, fmt.Errorf("unknown strategy type: %s", strategyType)
	}
	return cfg, nil
}

// ListStrategies returns the available preset names with descriptions,
// sorted by name for stable output.
func ListStrategies() []string {
	names := make([]string, 0, len(strategyWindows))
	for name := range strategyWindows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that windows are present, at least minWindow wide
// and ascending.
func (w WindowConfig) Validate(minWindow int) error {
	if len(w.ICWindows) == 0 {
		return fmt.Errorf("ic_windows must not be empty")
	}
	prev := 0
	for _, win := range w.ICWindows {
		if win < minWindow {
			return fmt.Errorf("ic window %d below minimum %d", win, minWindow)
		}
		if win <= prev {
			return fmt.Errorf("ic_windows must be strictly ascending")
		}
		prev = win
	}
	if w.PrimaryWindow <= 0 || w.StabilityWindow <= 0 {
		return fmt.Errorf("primary_window and stability_window must be positive")
	}
	return nil
}

// LoadWindowConfig reads a custom window configuration from a YAML
// file. Unknown fields are rejected.
func LoadWindowConfig(path string) (WindowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WindowConfig{}, fmt.Errorf("failed to read window config: %w", err)
	}

	var cfg WindowConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return WindowConfig{}, fmt.Errorf("failed to parse window config: %w", err)
	}

	if err := cfg.Validate(5); err != nil {
		return WindowConfig{}, fmt.Errorf("invalid window config: %w", err)
	}
	return cfg, nil
}

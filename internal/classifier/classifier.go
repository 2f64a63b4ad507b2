package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

// categoryRule couples a category with the name patterns that map into
// it. Rules are evaluated in slice order and the first match wins, so
// more specific categories must precede broader ones.
type categoryRule struct {
	category contracts.FactorCategory
	patterns []*regexp.Regexp
}

// Classifier maps factor names to evaluation categories. Classification
// is pure: the rule table is built once at construction and never
// mutated.
type Classifier struct {
	rules  []categoryRule
	logger *logger.Logger
}

// Category names. The names double as map keys in batch summaries.
const (
	CategoryTechnicalShort  = "technical_short"
	CategoryTechnicalMedium = "technical_medium"
	CategoryFundamental     = "fundamental"
	CategoryMacroFlow       = "macro_flow"
	CategoryRiskReturn      = "risk_return"
)

// New creates a classifier with the built-in rule table.
func New(log *logger.Logger) *Classifier {
	c := &Classifier{
		rules:  buildRules(),
		logger: log.Component("classifier"),
	}
	c.logger.WithField("categories", len(c.rules)).Debug("Classifier initialized")
	return c
}

func buildRules() []categoryRule {
	compile := func(patterns ...string) []*regexp.Regexp {
		res := make([]*regexp.Regexp, len(patterns))
		for i, p := range patterns {
			res[i] = regexp.MustCompile(p)
		}
		return res
	}

	return []categoryRule{
		{
			category: contracts.FactorCategory{
				Name:            CategoryTechnicalShort,
				Horizons:        []int{1, 3, 5},
				PrimaryHorizon:  1,
				Description:     "Short-horizon technical factors: intraday to weekly signals with fast decay",
				EvaluationFocus: "short-term price momentum and reversal",
			},
			patterns: compile(
				// Short moving averages
				`^SMA_[1-9]$`, `^SMA_1[0-5]$`,
				`^EMA_[1-9]$`, `^EMA_1[0-5]$`,
				`^WMA_[1-9]$`, `^WMA_1[0-5]$`,
				// Short momentum oscillators
				`^RSI_[1-9]$`, `^RSI_1[0-4]$`,
				`^ROC_[1-9]$`, `^ROC_1[0-5]$`,
				`^MOM_[1-9]$`, `^MOM_1[0-5]$`,
				`^KDJ`, `^STOCH`,
				// Short volume/price
				`^VMA_[1-9]$`, `^VMA_1[0-5]$`,
				`^VOLUME_RATIO_[1-9]$`,
				`^WR_1[0-4]$`,
			),
		},
		{
			category: contracts.FactorCategory{
				Name:            CategoryTechnicalMedium,
				Horizons:        []int{3, 5, 10},
				PrimaryHorizon:  5,
				Description:     "Medium-horizon technical factors: weekly to biweekly trend signals",
				EvaluationFocus: "medium-term trend and volatility shifts",
			},
			patterns: compile(
				// Medium/long moving averages
				`^SMA_[2-6][0-9]$`,
				`^EMA_[2-6][0-9]$`,
				`^WMA_[2-6][0-9]$`,
				`^MA_DIFF`, `^MA_SLOPE`,
				// Trend indicators
				`^MACD`,
				`^ATR`, `^ATR_PCT`,
				`^HV_[2-6][0-9]$`,
				// Channel indicators
				`^BOLL`, `^BB_WIDTH`,
				`^DC`,
				`^CCI`,
				// Medium-term risk
				`^ANNUAL_VOL`, `^MAX_DD`,
			),
		},
		{
			category: contracts.FactorCategory{
				Name:            CategoryFundamental,
				Horizons:        []int{10, 20, 30},
				PrimaryHorizon:  20,
				Description:     "Fundamental factors: monthly value reversion, effective over longer holds",
				EvaluationFocus: "valuation recovery and fundamentally driven moves",
			},
			patterns: compile(
				`^NAV_`, `^NET_ASSET`,
				`^PE_`, `^PB_`,
				`PERCENTILE$`, `_MA_[2-9][0-9]$`,
				`^TURNOVER_RATE`,
				`^INDEX_VALUATION`,
			),
		},
		{
			category: contracts.FactorCategory{
				Name:            CategoryMacroFlow,
				Horizons:        []int{5, 10, 20},
				PrimaryHorizon:  10,
				Description:     "Macro and flow factors: lagged transmission, medium-term impact",
				EvaluationFocus: "macro regime shifts and fund flow pressure",
			},
			patterns: compile(
				`^SHIBOR`, `^RATE`,
				`^SHARE_CHANGE`, `^FUND_FLOW`,
				`^ETF_SHARE`, `^FD_SHARE`,
				`^OBV`,
				`^VOLUME_RATIO_[2-9][0-9]$`,
			),
		},
		{
			category: contracts.FactorCategory{
				Name:            CategoryRiskReturn,
				Horizons:        []int{1, 5, 10},
				PrimaryHorizon:  5,
				Description:     "Risk and return factors: risk-adjusted performance, effective across scales",
				EvaluationFocus: "risk-adjusted return characteristics",
			},
			patterns: compile(
				`^DAILY_RETURN`, `^RETURN`,
				`^CUM_RETURN`,
				`^TR$`, `^VOLATILITY`,
				`^STD`, `^VAR`,
			),
		},
	}
}

// Classify maps a factor name to its category. The function is total:
// unmatched names fall through to heuristics and finally to the
// medium-horizon technical default.
func (c *Classifier) Classify(factorName string) contracts.FactorCategory {
	if factorName == "" {
		c.logger.Warn("Empty factor name, using default category")
		return c.defaultCategory()
	}

	name := strings.ToUpper(strings.TrimSpace(factorName))

	for _, rule := range c.rules {
		for _, re := range rule.patterns {
			if re.MatchString(name) {
				return rule.category
			}
		}
	}

	category := c.heuristic(name)
	c.logger.WithFields(map[string]interface{}{
		"factor":   factorName,
		"category": category.Name,
	}).Debug("Heuristic classification")
	return category
}

var (
	trailingNumber = regexp.MustCompile(`_\d+$`)
	anyNumber      = regexp.MustCompile(`\d+`)
)

// heuristic handles names the rule table does not cover.
func (c *Classifier) heuristic(name string) contracts.FactorCategory {
	// A trailing numeric suffix usually encodes a lookback period.
	if trailingNumber.MatchString(name) {
		numbers := anyNumber.FindAllString(name, -1)
		if len(numbers) > 0 {
			period, err := strconv.Atoi(numbers[len(numbers)-1])
			if err == nil {
				if period <= 15 {
					return c.category(CategoryTechnicalShort)
				}
				return c.category(CategoryTechnicalMedium)
			}
		}
	}

	switch {
	case containsAny(name, "PE", "PB", "NAV", "VALUATION"):
		return c.category(CategoryFundamental)
	case containsAny(name, "SHIBOR", "RATE", "SHARE", "FLOW"):
		return c.category(CategoryMacroFlow)
	case containsAny(name, "RETURN", "VOL", "STD", "RISK"):
		return c.category(CategoryRiskReturn)
	default:
		return c.defaultCategory()
	}
}

func containsAny(name string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func (c *Classifier) category(name string) contracts.FactorCategory {
	for _, rule := range c.rules {
		if rule.category.Name == name {
			return rule.category
		}
	}
	return c.defaultCategory()
}

func (c *Classifier) defaultCategory() contracts.FactorCategory {
	return c.rules[1].category // technical_medium
}

// AdaptiveHorizons returns the candidate horizon set and primary
// horizon for a factor.
func (c *Classifier) AdaptiveHorizons(factorName string) ([]int, int) {
	category := c.Classify(factorName)
	return category.Horizons, category.PrimaryHorizon
}

// BatchClassify classifies a set of names and logs per-category counts.
func (c *Classifier) BatchClassify(factorNames []string) map[string]contracts.FactorCategory {
	results := make(map[string]contracts.FactorCategory, len(factorNames))
	counts := make(map[string]int)

	for _, name := range factorNames {
		category := c.Classify(name)
		results[name] = category
		counts[category.Name]++
	}

	c.logger.WithFields(map[string]interface{}{
		"factors":    len(factorNames),
		"categories": counts,
	}).Info("Batch classification complete")

	return results
}

// Validation reports how a name was classified and with what
// confidence. Exact rule matches are high confidence, heuristic
// fallbacks medium.
type Validation struct {
	FactorName     string                   `json:"factor_name"`
	Category       contracts.FactorCategory `json:"category"`
	ExactMatch     bool                     `json:"is_exact_match"`
	MatchedPattern string                   `json:"matched_pattern,omitempty"`
	Confidence     string                   `json:"confidence"`
}

// Validate classifies a name and reports whether a rule matched it
// exactly or a heuristic decided.
func (c *Classifier) Validate(factorName string) Validation {
	category := c.Classify(factorName)

	v := Validation{
		FactorName: factorName,
		Category:   category,
		Confidence: "medium",
	}

	name := strings.ToUpper(strings.TrimSpace(factorName))
	for _, rule := range c.rules {
		if rule.category.Name != category.Name {
			continue
		}
		for _, re := range rule.patterns {
			if re.MatchString(name) {
				v.ExactMatch = true
				v.MatchedPattern = re.String()
				v.Confidence = "high"
				return v
			}
		}
	}

	return v
}

// Summary describes one category for diagnostics output.
type Summary struct {
	Description     string `json:"description"`
	EvaluationFocus string `json:"evaluation_focus"`
	Horizons        []int  `json:"forward_periods"`
	PrimaryHorizon  int    `json:"primary_period"`
	PatternCount    int    `json:"pattern_count"`
}

// CategorySummary returns an overview of the classification scheme.
func (c *Classifier) CategorySummary() map[string]Summary {
	summary := make(map[string]Summary, len(c.rules))
	for _, rule := range c.rules {
		summary[rule.category.Name] = Summary{
			Description:     rule.category.Description,
			EvaluationFocus: rule.category.EvaluationFocus,
			Horizons:        rule.category.Horizons,
			PrimaryHorizon:  rule.category.PrimaryHorizon,
			PatternCount:    len(rule.patterns),
		}
	}
	return summary
}

package scoring

import (
	"github.com/wonny/factorlab/internal/contracts"
)

// minGradeSampleSize is the IC sample count below which an A grade is
// treated as thinly supported.
const minGradeSampleSize = 10

// AssignGrade maps a total score to a letter grade, then applies one
// guard: an A built on fewer than minGradeSampleSize IC observations
// and a total below the A threshold margin is downgraded to a B. A
// lucky thin-sample correlation never earns the top grade.
func (e *Engine) AssignGrade(total float64, ic contracts.ICResult) contracts.Grade {
	t := e.cfg.Grades

	var grade contracts.Grade
	switch {
	case total >= t.GradeA:
		grade = contracts.GradeA
	case total >= t.GradeB:
		grade = contracts.GradeB
	case total >= t.GradeC:
		grade = contracts.GradeC
	case total >= t.GradeD:
		grade = contracts.GradeD
	default:
		grade = contracts.GradeF
	}

	if grade == contracts.GradeA {
		if stats := ic.Headline(); stats.SampleSize < minGradeSampleSize && total < 0.8 {
			e.logger.WithFields(map[string]interface{}{
				"factor":      ic.FactorName,
				"sample_size": stats.SampleSize,
				"total_score": total,
			}).Info("Thin IC sample, downgrading A to B")
			grade = contracts.GradeB
		}
	}
	return grade
}

// GradeDetail describes how a grade should be interpreted and used.
type GradeDetail struct {
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Confidence  string `json:"confidence"`
	ICRange     string `json:"ic_range"`
}

var gradeDetails = map[contracts.Grade]GradeDetail{
	contracts.GradeA: {
		Description: "Excellent factor",
		Usage:       "core strategy factor",
		Confidence:  "high",
		ICRange:     ">=5%",
	},
	contracts.GradeB: {
		Description: "Good factor",
		Usage:       "primary strategy factor",
		Confidence:  "medium-high",
		ICRange:     "3-5%",
	},
	contracts.GradeC: {
		Description: "Usable factor",
		Usage:       "supporting strategy factor",
		Confidence:  "medium",
		ICRange:     "2-3%",
	},
	contracts.GradeD: {
		Description: "Weak factor",
		Usage:       "use with caution",
		Confidence:  "low",
		ICRange:     "1-2%",
	},
	contracts.GradeF: {
		Description: "Ineffective factor",
		Usage:       "not recommended",
		Confidence:  "very-low",
		ICRange:     "<1%",
	},
}

// DetailFor returns the interpretation of a grade. Unknown grades
// fall back to the F detail.
func DetailFor(grade contracts.Grade) GradeDetail {
	if d, ok := gradeDetails[grade]; ok {
		return d
	}
	return gradeDetails[contracts.GradeF]
}

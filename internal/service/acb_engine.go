package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// ACBEngine scores anticholinergic cognitive burden. A cumulative score of
// 3 or more is associated with cognitive decline and increased mortality
// in older adults.
type ACBEngine struct {
	logger  *logrus.Logger
	tables  *domain.RuleTables
	matcher lexical.Matcher
}

// ACBResult holds the per-patient burden breakdown
type ACBResult struct {
	TotalScore int
	PerDrug    map[string]int
	Flags      []domain.Flag
}

// NewACBEngine creates a new anticholinergic burden engine
func NewACBEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher) *ACBEngine {
	return &ACBEngine{
		logger:  logger,
		tables:  tables,
		matcher: matcher,
	}
}

// Evaluate scores every medication against the ACB scale and flags each
// contributor. The cumulative score feeds the priority cascade.
func (e *ACBEngine) Evaluate(medications []domain.Medication) *ACBResult {
	result := &ACBResult{
		PerDrug: make(map[string]int),
	}

	for _, med := range medications {
		score := e.scoreFor(med.GenericName)
		if score == 0 {
			continue
		}

		result.TotalScore += score
		result.PerDrug[med.GenericName] = score

		severity := domain.SeverityLow
		if score >= 3 {
			severity = domain.SeverityHigh
		} else if score == 2 {
			severity = domain.SeverityModerate
		}

		result.Flags = append(result.Flags, domain.Flag{
			Source:         domain.SourceACB,
			Medication:     med.GenericName,
			Severity:       severity,
			Category:       "Anticholinergic burden",
			Rationale:      fmt.Sprintf("ACB score %d: contributes to cumulative anticholinergic load", score),
			Recommendation: "Consider a non-anticholinergic alternative",
			Monitoring:     "Cognition, dry mouth, constipation, urinary retention",
		})
	}

	e.logger.WithFields(logrus.Fields{
		"total_score":   result.TotalScore,
		"contributors":  len(result.PerDrug),
		"total_reviewed": len(medications),
	}).Debug("Completed anticholinergic burden scoring")

	return result
}

// scoreFor returns the highest ACB score of any table drug matching the
// medication name.
func (e *ACBEngine) scoreFor(name string) int {
	best := 0
	for drug, score := range e.tables.ACBScores {
		if e.matcher.Match(drug, name) && score > best {
			best = score
		}
	}
	return best
}

package service

import (
	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// GenderEngine flags medications with documented gender-specific risk
// profiles, mostly pharmacokinetic differences in clearance.
type GenderEngine struct {
	logger  *logrus.Logger
	tables  *domain.RuleTables
	matcher lexical.Matcher
}

// NewGenderEngine creates a new gender-risk engine
func NewGenderEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher) *GenderEngine {
	return &GenderEngine{
		logger:  logger,
		tables:  tables,
		matcher: matcher,
	}
}

// Evaluate returns flags for medications whose table entry matches the
// patient's gender.
func (e *GenderEngine) Evaluate(medications []domain.Medication, gender domain.Gender) []domain.Flag {
	var flags []domain.Flag
	for _, med := range medications {
		for _, entry := range e.tables.GenderRisks {
			if entry.Gender != gender {
				continue
			}
			if !e.matcher.Match(entry.DrugPattern, med.GenericName) {
				continue
			}

			flags = append(flags, domain.Flag{
				Source:         domain.SourceGender,
				Medication:     med.GenericName,
				Severity:       entry.Severity,
				Category:       "Gender-specific risk",
				Rationale:      entry.Risk,
				Recommendation: entry.Recommendation,
				Monitoring:     "Review dose at next visit",
			})
		}
	}

	e.logger.WithFields(logrus.Fields{
		"gender": gender,
		"flags":  len(flags),
	}).Debug("Completed gender risk evaluation")

	return flags
}

package service

import (
	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// beersMinAge is the age at which the Beers criteria apply
const beersMinAge = 65

// BeersEngine flags potentially inappropriate medications in older adults
type BeersEngine struct {
	logger  *logrus.Logger
	tables  *domain.RuleTables
	matcher lexical.Matcher
}

// NewBeersEngine creates a new Beers criteria engine
func NewBeersEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher) *BeersEngine {
	return &BeersEngine{
		logger:  logger,
		tables:  tables,
		matcher: matcher,
	}
}

// Evaluate matches each medication against the Beers table. Patients under
// 65 produce no flags.
func (e *BeersEngine) Evaluate(age int, medications []domain.Medication) []domain.Flag {
	if age < beersMinAge {
		return nil
	}

	var flags []domain.Flag
	for _, med := range medications {
		for _, criterion := range e.tables.Beers {
			if !e.matcher.Match(criterion.DrugPattern, med.GenericName) {
				continue
			}
			// Duration-qualified criteria only fire for long-term use
			if criterion.Qualifier != "" && med.Duration == domain.SHORT_TERM {
				continue
			}

			flags = append(flags, domain.Flag{
				Source:         domain.SourceBeers,
				Medication:     med.GenericName,
				Severity:       criterion.Severity,
				Category:       "Beers criteria",
				Rationale:      criterion.Concern,
				Recommendation: criterion.Recommendation,
				Monitoring:     "Review at next medication reconciliation",
			})
		}
	}

	e.logger.WithFields(logrus.Fields{
		"age":   age,
		"flags": len(flags),
	}).Debug("Completed Beers criteria evaluation")

	return flags
}

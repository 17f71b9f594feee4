package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// TTBEngine compares preventive therapies against the patient's remaining
// life expectancy. A therapy whose time-to-benefit exceeds the
// representative life expectancy offers burden without realistic benefit.
type TTBEngine struct {
	logger  *logrus.Logger
	tables  *domain.RuleTables
	matcher lexical.Matcher
}

// NewTTBEngine creates a new time-to-benefit engine
func NewTTBEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher) *TTBEngine {
	return &TTBEngine{
		logger:  logger,
		tables:  tables,
		matcher: matcher,
	}
}

// Evaluate flags preventive medications whose benefit horizon exceeds the
// patient's life expectancy.
func (e *TTBEngine) Evaluate(medications []domain.Medication, lifeExpectancy domain.LifeExpectancy) []domain.Flag {
	years := lifeExpectancy.Years()

	var flags []domain.Flag
	for _, med := range medications {
		for _, entry := range e.tables.TimeToBenefit {
			if !e.matcher.Match(entry.DrugPattern, med.GenericName) {
				continue
			}
			if entry.TimeToBenefitYears <= years {
				continue
			}

			flags = append(flags, domain.Flag{
				Source:     domain.SourceTTB,
				Medication: med.GenericName,
				Severity:   domain.SeverityHigh,
				Category:   "Time to benefit",
				Rationale: fmt.Sprintf("%s needs about %.1f years to benefit; estimated life expectancy is %.0f years (%s)",
					entry.Indication, entry.TimeToBenefitYears, years, lifeExpectancy),
				Recommendation: entry.Recommendation,
				Monitoring:     "Goals-of-care discussion before discontinuation",
				Action:         "DISCONTINUE",
			})
			break
		}
	}

	e.logger.WithFields(logrus.Fields{
		"life_expectancy": lifeExpectancy,
		"flags":           len(flags),
	}).Debug("Completed time-to-benefit evaluation")

	return flags
}

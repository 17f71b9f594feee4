package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// OrganEngine checks every medication against renal and hepatic safety
// thresholds. The two organ systems are evaluated independently; a drug
// may be flagged by both.
type OrganEngine struct {
	logger          *logrus.Logger
	tables          *domain.RuleTables
	matcher         lexical.Matcher
	transaminaseULN float64
}

// NewOrganEngine creates a new organ-function safety engine
func NewOrganEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher, transaminaseULN float64) *OrganEngine {
	return &OrganEngine{
		logger:          logger,
		tables:          tables,
		matcher:         matcher,
		transaminaseULN: transaminaseULN,
	}
}

// Evaluate returns renal and hepatic flags for the medication list. Missing
// labs disable the corresponding organ check rather than flagging.
func (e *OrganEngine) Evaluate(medications []domain.Medication, egfr, astUl, altUl *float64) []domain.Flag {
	var flags []domain.Flag

	if egfr != nil {
		flags = append(flags, e.renalFlags(medications, *egfr)...)
	}
	if astUl != nil || altUl != nil {
		flags = append(flags, e.hepaticFlags(medications, astUl, altUl)...)
	}

	e.logger.WithFields(logrus.Fields{
		"renal_available":   egfr != nil,
		"hepatic_available": astUl != nil || altUl != nil,
		"flags":             len(flags),
	}).Debug("Completed organ function evaluation")

	return flags
}

func (e *OrganEngine) renalFlags(medications []domain.Medication, egfr float64) []domain.Flag {
	var flags []domain.Flag
	for _, med := range medications {
		for pattern, rule := range e.tables.RenalContraindications {
			if !e.matcher.Match(pattern, med.GenericName) {
				continue
			}
			if egfr >= rule.MinEGFR {
				continue
			}

			severity := domain.SeverityModerate
			if rule.Action == "STOP" {
				severity = domain.SeverityHigh
			}
			flags = append(flags, domain.Flag{
				Source:         domain.SourceOrganRenal,
				Medication:     med.GenericName,
				Severity:       severity,
				Category:       "Renal safety",
				Rationale:      fmt.Sprintf("%s (eGFR %.1f, threshold %.0f)", rule.Rationale, egfr, rule.MinEGFR),
				Recommendation: rule.Action,
				Monitoring:     "Renal function every 3-6 months",
				Action:         rule.Action,
			})
		}
	}
	return flags
}

func (e *OrganEngine) hepaticFlags(medications []domain.Medication, astUl, altUl *float64) []domain.Flag {
	maxTransaminase := 0.0
	if astUl != nil {
		maxTransaminase = *astUl
	}
	if altUl != nil && *altUl > maxTransaminase {
		maxTransaminase = *altUl
	}
	if e.transaminaseULN <= 0 || maxTransaminase <= 0 {
		return nil
	}

	ulnMultiple := maxTransaminase / e.transaminaseULN

	var flags []domain.Flag
	for _, med := range medications {
		for pattern, rule := range e.tables.HepaticCautions {
			if !e.matcher.Match(pattern, med.GenericName) {
				continue
			}
			if ulnMultiple <= rule.MaxULNMultiple {
				continue
			}

			flags = append(flags, domain.Flag{
				Source:         domain.SourceOrganHepatic,
				Medication:     med.GenericName,
				Severity:       domain.SeverityHigh,
				Category:       "Hepatic safety",
				Rationale:      fmt.Sprintf("%s (transaminases %.1fx ULN)", rule.Rationale, ulnMultiple),
				Recommendation: "Hold and review with hepatology input",
				Monitoring:     "Liver panel weekly until trending down",
				Action:         "HOLD",
			})
		}
	}
	return flags
}

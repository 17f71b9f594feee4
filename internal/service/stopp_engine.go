package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// STOPPEngine applies STOPP criteria (screening tool of older persons'
// prescriptions) and their START counterparts (screening tool to alert to
// right treatment).
type STOPPEngine struct {
	logger  *logrus.Logger
	tables  *domain.RuleTables
	matcher lexical.Matcher
}

// NewSTOPPEngine creates a new STOPP/START engine
func NewSTOPPEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher) *STOPPEngine {
	return &STOPPEngine{
		logger:  logger,
		tables:  tables,
		matcher: matcher,
	}
}

// Evaluate returns one flag per STOPP criterion whose drug class matches a
// prescribed medication and whose condition matches the patient context.
// The flag's Medication field carries the criterion's full drug-class list;
// the aggregator routes it to individual medications.
func (e *STOPPEngine) Evaluate(input *domain.PatientInput, egfr *float64) []domain.Flag {
	var flags []domain.Flag

	for _, criterion := range e.tables.STOPP {
		if !e.anyMedicationMatches(criterion.DrugClass, input.Medications) {
			continue
		}
		if !e.conditionApplies(criterion.Condition, input.Comorbidities, egfr) {
			continue
		}

		flags = append(flags, domain.Flag{
			Source:         domain.SourceSTOPP,
			Medication:     criterion.DrugClass,
			Severity:       domain.SeverityHigh,
			Category:       fmt.Sprintf("STOPP %s", criterion.RuleID),
			Rationale:      criterion.Rationale,
			Recommendation: "Review indication; deprescribe unless clearly justified",
			Monitoring:     "Reassess after discontinuation or dose change",
		})
	}

	e.logger.WithFields(logrus.Fields{
		"criteria_checked": len(e.tables.STOPP),
		"flags":            len(flags),
	}).Debug("Completed STOPP evaluation")

	return flags
}

// EvaluateSTART returns recommendations for therapies the patient's
// conditions warrant but the medication list lacks. ACE inhibitor and ARB
// recommendations are suppressed in severe renal impairment.
func (e *STOPPEngine) EvaluateSTART(input *domain.PatientInput, egfr *float64) []string {
	var recs []string

	for _, criterion := range e.tables.START {
		if !e.anyConditionMatches(criterion.Condition, input.Comorbidities) {
			continue
		}
		if e.anyMedicationMatches(criterion.DrugClass, input.Medications) {
			continue
		}
		if egfr != nil && *egfr < 30 && isRAASClass(criterion.DrugClass) {
			e.logger.WithFields(logrus.Fields{
				"rule_id": criterion.RuleID,
				"egfr":    *egfr,
			}).Debug("Suppressing START recommendation in severe renal impairment")
			continue
		}

		recs = append(recs, fmt.Sprintf("START %s (%s): %s",
			criterion.RuleID, criterion.Condition, criterion.Recommendation))
	}

	return recs
}

// anyMedicationMatches reports whether any medication matches any
// comma-separated fragment of the criterion's drug-class list.
func (e *STOPPEngine) anyMedicationMatches(drugClass string, medications []domain.Medication) bool {
	for _, fragment := range strings.Split(drugClass, ",") {
		fragment = strings.TrimSpace(fragment)
		for _, med := range medications {
			if e.matcher.Match(fragment, med.GenericName) {
				return true
			}
		}
	}
	return false
}

func (e *STOPPEngine) anyConditionMatches(condition string, comorbidities []string) bool {
	for _, c := range comorbidities {
		if e.matcher.Match(condition, c) {
			return true
		}
	}
	return false
}

// conditionApplies resolves the three condition forms: "any", an eGFR
// threshold expression such as "egfr <30", or a comorbidity fragment.
func (e *STOPPEngine) conditionApplies(condition string, comorbidities []string, egfr *float64) bool {
	condition = lexical.Normalize(condition)
	if condition == "any" {
		return true
	}

	if threshold, ok := parseEGFRThreshold(condition); ok {
		return egfr != nil && *egfr < threshold
	}

	return e.anyConditionMatches(condition, comorbidities)
}

// parseEGFRThreshold extracts N from expressions of the form "egfr <N"
func parseEGFRThreshold(condition string) (float64, bool) {
	if !strings.HasPrefix(condition, "egfr") {
		return 0, false
	}
	idx := strings.Index(condition, "<")
	if idx < 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(condition[idx+1:]), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// isRAASClass reports whether a START drug class targets the
// renin-angiotensin system.
func isRAASClass(drugClass string) bool {
	dc := lexical.Normalize(drugClass)
	return strings.Contains(dc, "acei") ||
		strings.Contains(dc, "ace inhibitor") ||
		strings.Contains(dc, "arb")
}

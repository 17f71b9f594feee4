package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// DuplicationEngine detects therapeutic duplication: two or more
// medications serving the same therapeutic purpose. Classification is
// table-first; names the tables cannot place are sent to the external
// classifier, and drugs that still cannot be classified are excluded from
// the check.
type DuplicationEngine struct {
	logger     *logrus.Logger
	tables     *domain.RuleTables
	matcher    lexical.Matcher
	classifier domain.DrugClassifier // may be nil when the AI fallback is disabled
}

// NewDuplicationEngine creates a new therapeutic duplication engine
func NewDuplicationEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher, classifier domain.DrugClassifier) *DuplicationEngine {
	return &DuplicationEngine{
		logger:     logger,
		tables:     tables,
		matcher:    matcher,
		classifier: classifier,
	}
}

// classifiedMed pairs a medication with its resolved subclasses
type classifiedMed struct {
	name    string
	classes []string
}

// Evaluate returns duplication flags grouped by therapeutic category.
// Two medications in the same pharmacological subclass are a HIGH severity
// duplication; different subclasses within one category are a MODERATE
// severity combination to review.
func (e *DuplicationEngine) Evaluate(ctx context.Context, medications []domain.Medication) []domain.Flag {
	classified := e.classifyAll(ctx, medications)

	var flags []domain.Flag
	for _, category := range e.tables.TherapeuticCategories {
		members := e.membersOf(category, classified)
		if len(members) < 2 {
			continue
		}

		if sharedClass := e.sharedSubclass(category, members); sharedClass != "" {
			flags = append(flags, e.groupFlags(members, domain.SeverityHigh,
				fmt.Sprintf("Therapeutic duplication: %s", category.Name),
				fmt.Sprintf("Multiple agents from the %s subclass prescribed together", sharedClass),
				"Consolidate to a single agent unless combination is intentional")...)
			continue
		}

		flags = append(flags, e.groupFlags(members, domain.SeverityModerate,
			fmt.Sprintf("Combination therapy: %s", category.Name),
			fmt.Sprintf("%d agents with the same therapeutic purpose (%s)", len(members), memberNames(members)),
			"Verify the combination is intentional and doses are complementary")...)
	}

	e.logger.WithFields(logrus.Fields{
		"medications": len(medications),
		"classified":  len(classified),
		"flags":       len(flags),
	}).Debug("Completed therapeutic duplication evaluation")

	return flags
}

// classifyAll resolves subclasses for each medication. Unclassifiable
// drugs are excluded; the exclusion is visible at debug level so the
// under-count can be traced.
func (e *DuplicationEngine) classifyAll(ctx context.Context, medications []domain.Medication) []classifiedMed {
	var out []classifiedMed
	for _, med := range medications {
		classes := e.tableClasses(med.GenericName)
		if len(classes) == 0 && e.classifier != nil {
			classes = e.aiClasses(ctx, med.GenericName)
		}
		if len(classes) == 0 {
			e.logger.WithField("medication", med.GenericName).
				Debug("Medication could not be classified; excluded from duplication check")
			continue
		}
		out = append(out, classifiedMed{name: med.GenericName, classes: classes})
	}
	return out
}

func (e *DuplicationEngine) tableClasses(name string) []string {
	var classes []string
	for class, members := range e.tables.DrugClasses {
		for _, member := range members {
			if e.matcher.Match(member, name) {
				classes = append(classes, class)
				break
			}
		}
	}
	return classes
}

func (e *DuplicationEngine) aiClasses(ctx context.Context, name string) []string {
	classification, err := e.classifier.ClassifyDrug(ctx, name)
	if err != nil {
		e.logger.WithError(err).WithField("medication", name).
			Debug("External classification failed")
		return nil
	}

	// Keep only classes the tables know; unknown labels cannot group
	var classes []string
	for _, class := range classification.Classes {
		normalized := lexical.Normalize(class)
		if _, ok := e.tables.DrugClasses[normalized]; ok {
			classes = append(classes, normalized)
		}
	}
	return classes
}

// membersOf returns the classified medications whose subclasses fall in
// the category.
func (e *DuplicationEngine) membersOf(category domain.TherapeuticCategory, classified []classifiedMed) []classifiedMed {
	var members []classifiedMed
	for _, cm := range classified {
		for _, class := range cm.classes {
			if containsString(category.Classes, class) {
				members = append(members, cm)
				break
			}
		}
	}
	return members
}

// sharedSubclass returns a subclass held by two or more members, or ""
func (e *DuplicationEngine) sharedSubclass(category domain.TherapeuticCategory, members []classifiedMed) string {
	counts := map[string]int{}
	for _, m := range members {
		for _, class := range m.classes {
			if containsString(category.Classes, class) {
				counts[class]++
			}
		}
	}
	for class, n := range counts {
		if n >= 2 {
			return class
		}
	}
	return ""
}

func (e *DuplicationEngine) groupFlags(members []classifiedMed, severity domain.FlagSeverity, category, rationale, recommendation string) []domain.Flag {
	flags := make([]domain.Flag, 0, len(members))
	for _, m := range members {
		flags = append(flags, domain.Flag{
			Source:         domain.SourceDuplication,
			Medication:     m.name,
			Severity:       severity,
			Category:       category,
			Rationale:      rationale,
			Recommendation: recommendation,
			Monitoring:     "Medication reconciliation at next review",
		})
	}
	return flags
}

func memberNames(members []classifiedMed) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.name
	}
	return strings.Join(names, ", ")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package service

import (
	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// HerbEngine detects herb-drug interactions. Curated pairs are reported
// as evidence-based; pairs derived from herb activity profiles are
// reported as simulated with low evidence strength, never silently mixed
// with the curated findings.
type HerbEngine struct {
	logger  *logrus.Logger
	tables  *domain.RuleTables
	matcher lexical.Matcher
}

// NewHerbEngine creates a new herb-drug interaction engine
func NewHerbEngine(logger *logrus.Logger, tables *domain.RuleTables, matcher lexical.Matcher) *HerbEngine {
	return &HerbEngine{
		logger:  logger,
		tables:  tables,
		matcher: matcher,
	}
}

// Evaluate returns all interactions between the herb list and the
// medication list. For a given herb-drug pair a curated interaction
// suppresses any simulated one.
func (e *HerbEngine) Evaluate(herbs []string, medications []string) []domain.HerbDrugInteraction {
	var interactions []domain.HerbDrugInteraction
	seen := map[[2]string]bool{}

	for _, herb := range herbs {
		for _, med := range medications {
			if interaction := e.knownInteraction(herb, med); interaction != nil {
				interactions = append(interactions, *interaction)
				seen[[2]string{lexical.Normalize(herb), lexical.Normalize(med)}] = true
			}
		}
	}

	for _, herb := range herbs {
		for _, med := range medications {
			if seen[[2]string{lexical.Normalize(herb), lexical.Normalize(med)}] {
				continue
			}
			if interaction := e.simulatedInteraction(herb, med); interaction != nil {
				interactions = append(interactions, *interaction)
			}
		}
	}

	e.logger.WithFields(logrus.Fields{
		"herbs":        len(herbs),
		"medications":  len(medications),
		"interactions": len(interactions),
	}).Debug("Completed herb-drug interaction evaluation")

	return interactions
}

func (e *HerbEngine) knownInteraction(herb, med string) *domain.HerbDrugInteraction {
	for _, known := range e.tables.KnownHerbInteractions {
		if !e.herbMatches(herb, known.Herb, known.HerbAliases) {
			continue
		}
		for _, pattern := range known.DrugPatterns {
			if e.matcher.Match(pattern, med) {
				return &domain.HerbDrugInteraction{
					HerbName:         herb,
					DrugName:         med,
					InteractionType:  "pharmacodynamic",
					Severity:         known.Severity,
					Mechanism:        known.Mechanism,
					ClinicalEffect:   known.ClinicalEffect,
					EvidenceStrength: "evidence-based",
					Recommendation:   known.Recommendation,
				}
			}
		}
	}
	return nil
}

func (e *HerbEngine) simulatedInteraction(herb, med string) *domain.HerbDrugInteraction {
	for _, profile := range e.herbProfilesFor(herb) {
		for _, rule := range e.tables.ProfileRules {
			if rule.Profile != profile {
				continue
			}
			for _, pattern := range rule.DrugPatterns {
				if e.matcher.Match(pattern, med) {
					return &domain.HerbDrugInteraction{
						HerbName:         herb,
						DrugName:         med,
						InteractionType:  "predicted",
						Severity:         rule.Severity,
						Mechanism:        rule.Mechanism,
						ClinicalEffect:   rule.ClinicalEffect,
						EvidenceStrength: "simulated/low",
						Recommendation:   rule.Recommendation,
					}
				}
			}
		}
	}
	return nil
}

func (e *HerbEngine) herbProfilesFor(herb string) []string {
	for _, hp := range e.tables.HerbProfiles {
		if e.herbMatches(herb, hp.Herb, hp.Aliases) {
			return hp.Profiles
		}
	}
	return nil
}

func (e *HerbEngine) herbMatches(input, name string, aliases []string) bool {
	if e.matcher.Match(name, input) {
		return true
	}
	for _, alias := range aliases {
		if e.matcher.Match(alias, input) {
			return true
		}
	}
	return false
}

// FlagsFor converts a herb's interactions into per-drug flags for the
// priority cascade. Major interactions are HIGH severity.
func (e *HerbEngine) FlagsFor(interactions []domain.HerbDrugInteraction) []domain.Flag {
	var flags []domain.Flag
	for _, interaction := range interactions {
		severity := domain.SeverityLow
		switch interaction.Severity {
		case "Major":
			severity = domain.SeverityHigh
		case "Moderate":
			severity = domain.SeverityModerate
		}

		flags = append(flags, domain.Flag{
			Source:         domain.SourceHerb,
			Medication:     interaction.DrugName,
			Severity:       severity,
			Category:       "Herb-drug interaction",
			Rationale:      interaction.ClinicalEffect + " (" + interaction.HerbName + ")",
			Recommendation: interaction.Recommendation,
			Monitoring:     "Review at next visit; ask about supplement use",
		})
	}
	return flags
}

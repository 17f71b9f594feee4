// Package tables holds the compiled-in clinical reference tables. The
// tables are assembled once at construction and never mutated afterwards;
// engines receive them through the domain.RuleTableProvider interface.
package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// Provider serves the static rule tables
type Provider struct {
	tables *domain.RuleTables
}

// NewProvider assembles the full table set
func NewProvider() *Provider {
	return &Provider{
		tables: &domain.RuleTables{
			ACBScores:              acbScores(),
			Beers:                  beersCriteria(),
			STOPP:                  stoppCriteria(),
			START:                  startCriteria(),
			RenalContraindications: renalContraindications(),
			HepaticCautions:        hepaticCautions(),
			DrugClasses:            drugClasses(),
			TherapeuticCategories:  therapeuticCategories(),
			TaperProtocols:         taperProtocols(),
			CFSMultipliers:         cfsMultipliers(),
			KnownHerbInteractions:  knownHerbInteractions(),
			HerbProfiles:           herbProfiles(),
			ProfileRules:           profileRules(),
			TimeToBenefit:          timeToBenefit(),
			GenderRisks:            genderRisks(),
		},
	}
}

// Tables implements domain.RuleTableProvider
func (p *Provider) Tables() *domain.RuleTables {
	return p.tables
}

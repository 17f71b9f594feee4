package domain

// Rule Table Models
//
// These are the row types of the compiled-in clinical reference tables.
// Tables are immutable after construction; engines only read them.

// BeersCriterion represents one row of the Beers criteria table for
// potentially inappropriate medications in older adults.
type BeersCriterion struct {
	DrugPattern    string       `json:"drug_pattern"`
	Qualifier      string       `json:"qualifier,omitempty"` // dose or duration qualifier, free text
	Concern        string       `json:"concern"`
	Recommendation string       `json:"recommendation"`
	Severity       FlagSeverity `json:"severity"`
}

// STOPPCriterion represents one STOPP rule. DrugClass may be a
// comma-separated list of drug name fragments; Condition is a lowercase
// comorbidity fragment, an eGFR threshold expression such as "egfr <30",
// or "any".
type STOPPCriterion struct {
	RuleID    string `json:"rule_id"`
	DrugClass string `json:"drug_class"`
	Condition string `json:"condition"`
	Rationale string `json:"rationale"`
}

// STARTCriterion represents one START rule: a condition that warrants a
// drug class the patient is not receiving.
type STARTCriterion struct {
	RuleID         string `json:"rule_id"`
	Condition      string `json:"condition"`
	DrugClass      string `json:"drug_class"`
	Recommendation string `json:"recommendation"`
}

// RenalRule represents a renal dose-adjustment or contraindication threshold
type RenalRule struct {
	MinEGFR   float64 `json:"min_egfr"` // flag when eGFR falls below this
	Action    string  `json:"action"`   // "STOP" or "REDUCE DOSE"
	Rationale string  `json:"rationale"`
}

// HepaticRule represents a hepatic caution threshold expressed as a
// multiple of the transaminase upper limit of normal.
type HepaticRule struct {
	MaxULNMultiple float64 `json:"max_uln_multiple"`
	Rationale      string  `json:"rationale"`
}

// TherapeuticCategory groups pharmacological subclasses that serve the
// same therapeutic purpose.
type TherapeuticCategory struct {
	Name    string   `json:"name"`
	Classes []string `json:"classes"`
}

// TaperProtocol represents one evidence-based discontinuation protocol
type TaperProtocol struct {
	DrugClass          string   `json:"drug_class"`
	Drugs              []string `json:"drugs"` // lowercase generic names
	RiskProfile        string   `json:"risk_profile"`
	Strategy           string   `json:"strategy"`
	ReductionPerStep   string   `json:"reduction_per_step"` // e.g. "10-25% every 2 weeks"
	BaseDurationWeeks  int      `json:"base_duration_weeks"`
	WithdrawalSymptoms []string `json:"withdrawal_symptoms"`
	MonitoringParams   []string `json:"monitoring_params"`
	PauseCriteria      []string `json:"pause_criteria"`
	ReversalCriteria   []string `json:"reversal_criteria"`
}

// KnownHerbInteraction represents one curated herb-drug interaction pair
type KnownHerbInteraction struct {
	Herb           string   `json:"herb"`
	HerbAliases    []string `json:"herb_aliases,omitempty"`
	DrugPatterns   []string `json:"drug_patterns"` // lowercase name or class fragments
	Severity       string   `json:"severity"`
	Mechanism      string   `json:"mechanism"`
	ClinicalEffect string   `json:"clinical_effect"`
	Recommendation string   `json:"recommendation"`
}

// HerbProfile tags a herb with pharmacological activity profiles used to
// simulate interactions not present in the curated table.
type HerbProfile struct {
	Herb     string   `json:"herb"`
	Aliases  []string `json:"aliases,omitempty"`
	Profiles []string `json:"profiles"` // e.g. "anticoagulant_potentiation"
}

// ProfileInteractionRule maps a herb activity profile against a drug class
// fragment to a simulated interaction.
type ProfileInteractionRule struct {
	Profile        string   `json:"profile"`
	DrugPatterns   []string `json:"drug_patterns"`
	Severity       string   `json:"severity"`
	Mechanism      string   `json:"mechanism"`
	ClinicalEffect string   `json:"clinical_effect"`
	Recommendation string   `json:"recommendation"`
}

// TTBEntry represents one time-to-benefit threshold for a preventive therapy
type TTBEntry struct {
	DrugPattern        string  `json:"drug_pattern"`
	Indication         string  `json:"indication"`
	TimeToBenefitYears float64 `json:"time_to_benefit_years"`
	Recommendation     string  `json:"recommendation"`
}

// GenderRiskEntry represents a gender-specific medication risk
type GenderRiskEntry struct {
	DrugPattern    string       `json:"drug_pattern"`
	Gender         Gender       `json:"gender"`
	Risk           string       `json:"risk"`
	Recommendation string       `json:"recommendation"`
	Severity       FlagSeverity `json:"severity"`
}

// RuleTables bundles every compiled-in reference table behind a single
// immutable value handed to the engines at construction time.
type RuleTables struct {
	// Anticholinergic burden scores keyed by lowercase generic name
	ACBScores map[string]int

	Beers []BeersCriterion
	STOPP []STOPPCriterion
	START []STARTCriterion

	// Renal/hepatic rules keyed by lowercase drug name fragment
	RenalContraindications map[string]RenalRule
	HepaticCautions        map[string]HepaticRule

	// Drug subclass membership: class name -> lowercase member drug names
	DrugClasses map[string][]string
	// Therapeutic groupings of those subclasses
	TherapeuticCategories []TherapeuticCategory

	TaperProtocols []TaperProtocol
	// Clinical Frailty Scale score -> taper pace multiplier
	CFSMultipliers map[int]float64

	KnownHerbInteractions []KnownHerbInteraction
	HerbProfiles          []HerbProfile
	ProfileRules          []ProfileInteractionRule

	TimeToBenefit []TTBEntry
	GenderRisks   []GenderRiskEntry
}

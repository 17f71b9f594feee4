package domain

import (
	"time"
)

// Core Enums and Types

// RiskCategory represents the per-medication verdict category
type RiskCategory string

const (
	RED    RiskCategory = "RED"
	YELLOW RiskCategory = "YELLOW"
	GREEN  RiskCategory = "GREEN"
)

// Gender represents the patient's gender for clinical calculations
type Gender string

const (
	MALE   Gender = "male"
	FEMALE Gender = "female"
	OTHER  Gender = "other"
)

// DurationCategory represents how long a medication has been taken
type DurationCategory string

const (
	SHORT_TERM DurationCategory = "short_term"
	LONG_TERM  DurationCategory = "long_term"
	UNKNOWN    DurationCategory = "unknown"
)

// LifeExpectancy represents the estimated remaining life expectancy bucket
type LifeExpectancy string

const (
	LESS_THAN_ONE_YEAR  LifeExpectancy = "less_than_1_year"
	ONE_TO_FIVE_YEARS   LifeExpectancy = "1_to_5_years"
	FIVE_TO_TEN_YEARS   LifeExpectancy = "5_to_10_years"
	MORE_THAN_TEN_YEARS LifeExpectancy = "more_than_10_years"
)

// Years returns a representative number of remaining years for
// time-to-benefit comparisons.
func (l LifeExpectancy) Years() float64 {
	switch l {
	case LESS_THAN_ONE_YEAR:
		return 1
	case ONE_TO_FIVE_YEARS:
		return 3
	case FIVE_TO_TEN_YEARS:
		return 7
	default:
		return 15
	}
}

// FlagSource identifies the rule engine that produced a Flag
type FlagSource string

const (
	SourceACB          FlagSource = "acb"
	SourceBeers        FlagSource = "beers"
	SourceSTOPP        FlagSource = "stopp"
	SourceOrganRenal   FlagSource = "organ_renal"
	SourceOrganHepatic FlagSource = "organ_hepatic"
	SourceDuplication  FlagSource = "duplication"
	SourceHerb         FlagSource = "herb_interaction"
	SourceTTB          FlagSource = "time_to_benefit"
	SourceGender       FlagSource = "gender_risk"
)

// FlagSeverity represents the severity hint carried on a Flag
type FlagSeverity string

const (
	SeverityHigh     FlagSeverity = "HIGH"
	SeverityModerate FlagSeverity = "MODERATE"
	SeverityLow      FlagSeverity = "LOW"
)

// Request Models

// Medication represents a single prescribed drug
type Medication struct {
	GenericName string           `json:"generic_name" binding:"required"`
	BrandName   string           `json:"brand_name,omitempty"`
	Dose        string           `json:"dose,omitempty"`
	Frequency   string           `json:"frequency,omitempty"`
	Duration    DurationCategory `json:"duration,omitempty"`
}

// HerbalProduct represents a herbal or Ayurvedic product. Same shape as
// Medication but kept in a separate collection; it is never matched against
// the medication rule tables directly.
type HerbalProduct struct {
	GenericName string           `json:"generic_name" binding:"required"`
	BrandName   string           `json:"brand_name,omitempty"`
	Dose        string           `json:"dose,omitempty"`
	Frequency   string           `json:"frequency,omitempty"`
	Duration    DurationCategory `json:"duration,omitempty"`
}

// PatientInput represents the read-only input to the analysis pipeline.
// No engine may mutate it.
type PatientInput struct {
	Age            int             `json:"age" binding:"required"`
	Gender         Gender          `json:"gender" binding:"required"`
	IsFrail        bool            `json:"is_frail"`
	CFSScore       *int            `json:"cfs_score,omitempty"` // Clinical Frailty Scale, 1-9
	LifeExpectancy LifeExpectancy  `json:"life_expectancy"`
	Comorbidities  []string        `json:"comorbidities"`
	Medications    []Medication    `json:"medications" binding:"required"`
	Herbs          []HerbalProduct `json:"herbs"`

	// Optional laboratory values
	SerumCreatinineMgDl *float64 `json:"serum_creatinine_mg_dl,omitempty"`
	SerumBilirubinMgDl  *float64 `json:"serum_bilirubin_mg_dl,omitempty"`
	INR                 *float64 `json:"inr,omitempty"`
	SerumSodiumMmolL    *float64 `json:"serum_sodium_mmol_l,omitempty"`
	ASTUl               *float64 `json:"ast_u_l,omitempty"`
	ALTUl               *float64 `json:"alt_u_l,omitempty"`
}

// DerivedLabs carries the calculator outputs shared by the rule engines
type DerivedLabs struct {
	EGFR   *float64 `json:"egfr,omitempty"`
	MELD   *float64 `json:"meld,omitempty"`
	MELDNa *float64 `json:"meld_na,omitempty"`
}

// Flag Models

// Flag represents a single rule-engine finding for one medication.
// The Medication field may hold a comma-separated drug-class list for
// criteria that cover several drugs at once.
type Flag struct {
	Source         FlagSource   `json:"source"`
	Medication     string       `json:"medication"`
	Severity       FlagSeverity `json:"severity"`
	Category       string       `json:"category"`
	Rationale      string       `json:"rationale"`
	Recommendation string       `json:"recommendation,omitempty"`
	Monitoring     string       `json:"monitoring,omitempty"`
	Action         string       `json:"action,omitempty"` // e.g. "STOP", "REDUCE DOSE"
}

// HerbDrugInteraction represents one known or simulated herb-drug interaction
type HerbDrugInteraction struct {
	HerbName         string `json:"herb_name"`
	DrugName         string `json:"drug_name"`
	InteractionType  string `json:"interaction_type"`
	Severity         string `json:"severity"` // Major, Moderate, Minor
	Mechanism        string `json:"mechanism"`
	ClinicalEffect   string `json:"clinical_effect"`
	EvidenceStrength string `json:"evidence_strength"` // evidence-based, simulated/low
	Recommendation   string `json:"recommendation"`
}

// Verdict Models

// MedicationAnalysis represents the per-medication verdict. Created once per
// medication per analysis run and immutable after creation.
type MedicationAnalysis struct {
	Name               string       `json:"name"`
	Type               string       `json:"type"` // allopathic, herbal
	RiskCategory       RiskCategory `json:"risk_category"`
	RiskScore          int          `json:"risk_score"` // 1-10
	Flags              []string     `json:"flags"`
	Recommendations    []string     `json:"recommendations"`
	MonitoringRequired []string     `json:"monitoring_required"`
	TaperRequired      bool         `json:"taper_required"`
	TaperPlan          *TaperPlan   `json:"taper_plan,omitempty"`
}

// TaperPlanSource records which generator path produced a plan
type TaperPlanSource string

const (
	TaperSourceProtocol        TaperPlanSource = "protocol"
	TaperSourceAIAssisted      TaperPlanSource = "ai_assisted"
	TaperSourceGenericFallback TaperPlanSource = "generic_fallback"
	TaperSourceNoTaperNeeded   TaperPlanSource = "no_taper_needed"
	TaperSourceEmergency       TaperPlanSource = "emergency_fallback"
)

// TaperStep represents one week-indexed step of a dose-reduction schedule
type TaperStep struct {
	Week                      int      `json:"week"`
	Dose                      string   `json:"dose"`
	PercentageOfOriginal      int      `json:"percentage_of_original"`
	Instructions              string   `json:"instructions"`
	Monitoring                string   `json:"monitoring"`
	WithdrawalSymptomsToWatch []string `json:"withdrawal_symptoms_to_watch,omitempty"`
}

// TaperPlan represents a complete individualized discontinuation plan
type TaperPlan struct {
	DrugName           string              `json:"drug_name"`
	DrugClass          string              `json:"drug_class"`
	RiskProfile        string              `json:"risk_profile"`
	TaperStrategy      string              `json:"taper_strategy"`
	TotalDurationWeeks int                 `json:"total_duration_weeks"`
	Steps              []TaperStep         `json:"steps"`
	PauseCriteria      []string            `json:"pause_criteria"`
	ReversalCriteria   []string            `json:"reversal_criteria"`
	MonitoringSchedule map[string][]string `json:"monitoring_schedule"`
	PatientEducation   []string            `json:"patient_education"`
	Source             TaperPlanSource     `json:"source"`
}

// TaperPlanRequest asks the generator for a plan for one drug
type TaperPlanRequest struct {
	DrugName             string           `json:"drug_name" binding:"required"`
	CurrentDose          string           `json:"current_dose,omitempty"`
	DurationOnMedication DurationCategory `json:"duration_on_medication,omitempty"`
	PatientAge           int              `json:"patient_age,omitempty"`
	PatientCFSScore      *int             `json:"patient_cfs_score,omitempty"`
	Comorbidities        []string         `json:"comorbidities,omitempty"`
}

// Response Models

// MonitoringPlan represents a per-medication monitoring prescription
type MonitoringPlan struct {
	MedicationName string   `json:"medication_name"`
	Frequency      string   `json:"frequency"`
	Parameters     []string `json:"parameters"`
	DurationWeeks  int      `json:"duration_weeks"`
	AlertCriteria  []string `json:"alert_criteria"`
}

// TaperingScheduleEntry represents one flattened week of a medication's taper
type TaperingScheduleEntry struct {
	MedicationName string `json:"medication_name"`
	Week           int    `json:"week"`
	Dose           string `json:"dose"`
	Instructions   string `json:"instructions"`
	Monitoring     string `json:"monitoring"`
}

// PatientSummary echoes the inputs plus the derived clinical scores
type PatientSummary struct {
	Age              int            `json:"age"`
	Gender           Gender         `json:"gender"`
	CFSScore         *int           `json:"cfs_score,omitempty"`
	FrailtyStatus    string         `json:"frailty_status"`
	LifeExpectancy   LifeExpectancy `json:"life_expectancy"`
	TotalMedications int            `json:"total_medications"`
	TotalHerbs       int            `json:"total_herbs"`
	Comorbidities    []string       `json:"comorbidities"`
	CalculatedEGFR   *float64       `json:"calculated_egfr,omitempty"`
	CalculatedMELD   *float64       `json:"calculated_meld,omitempty"`
	RenalFunction    string         `json:"renal_function"`
	HepaticFunction  string         `json:"hepatic_function"`
}

// AnalyzePatientResponse represents the consolidated analysis report
type AnalyzePatientResponse struct {
	AnalysisID                 string                  `json:"analysis_id"`
	PatientSummary             PatientSummary          `json:"patient_summary"`
	MedicationAnalyses         []MedicationAnalysis    `json:"medication_analyses"`
	PrioritySummary            map[RiskCategory]int    `json:"priority_summary"`
	TaperingSchedules          []TaperingScheduleEntry `json:"tapering_schedules"`
	MonitoringPlans            []MonitoringPlan        `json:"monitoring_plans"`
	HerbDrugInteractions       []HerbDrugInteraction   `json:"herb_drug_interactions"`
	ClinicalRecommendations    []string                `json:"clinical_recommendations"`
	SafetyAlerts               []string                `json:"safety_alerts"`
	GlobalStartRecommendations []string                `json:"global_start_recommendations"`
	ProcessingTime             time.Duration           `json:"processing_time"`
	GeneratedAt                time.Time               `json:"generated_at"`
}

// InteractionCheckRequest asks for a standalone herb-drug interaction check
type InteractionCheckRequest struct {
	Herbs                []string `json:"herbs" binding:"required"`
	Medications          []string `json:"medications" binding:"required"`
	PatientComorbidities []string `json:"patient_comorbidities,omitempty"`
}

// InteractionCheckResponse summarizes a standalone interaction check
type InteractionCheckResponse struct {
	TotalInteractions     int                   `json:"total_interactions"`
	MajorInteractions     int                   `json:"major_interactions"`
	ModerateInteractions  int                   `json:"moderate_interactions"`
	MinorInteractions     int                   `json:"minor_interactions"`
	Interactions          []HerbDrugInteraction `json:"interactions"`
	OverallRiskAssessment string                `json:"overall_risk_assessment"`
	Recommendations       []string              `json:"recommendations"`
}

// Collaborator Models

// DrugClassification represents the external classifier's answer for one
// drug name
type DrugClassification struct {
	DrugName              string   `json:"drug_name"`
	Classes               []string `json:"classes"`
	DrugClass             string   `json:"drug_class"`
	RiskProfile           string   `json:"risk_profile"`
	StrategyName          string   `json:"strategy_name"`
	StepLogic             string   `json:"step_logic"`
	WithdrawalSymptoms    string   `json:"withdrawal_symptoms"`
	MonitoringFrequency   string   `json:"monitoring_frequency"`
	PauseCriteria         string   `json:"pause_criteria"`
	RequiresTaper         bool     `json:"requires_taper"`
	TypicalDurationWeeks  int      `json:"typical_duration_weeks"`
	SpecialConsiderations string   `json:"special_considerations"`
}

// GeneratedSchedule represents the schedule collaborator's structured answer.
// Steps whose week numbers cannot be coerced to integers are discarded by
// the caller.
type GeneratedSchedule struct {
	Steps            []TaperStep `json:"steps"`
	PatientEducation []string    `json:"patient_education"`
	PauseCriteria    []string    `json:"pause_criteria"`
	SuccessCriteria  []string    `json:"success_criteria"`
}

package domain

import (
	"context"
)

// PatientAnalyzer runs the full deprescribing analysis pipeline
type PatientAnalyzer interface {
	AnalyzePatient(ctx context.Context, input *PatientInput) (*AnalyzePatientResponse, error)
	CheckInteractions(ctx context.Context, req *InteractionCheckRequest) (*InteractionCheckResponse, error)
}

// TaperPlanner generates individualized discontinuation plans
type TaperPlanner interface {
	GenerateTaperPlan(ctx context.Context, req *TaperPlanRequest) *TaperPlan
}

// DrugClassifier resolves a free-text drug name to pharmacological
// subclasses and taper characteristics. Implementations may call an
// external collaborator; a nil result with a non-nil error means the
// drug could not be classified and must be excluded from class-based
// checks.
type DrugClassifier interface {
	ClassifyDrug(ctx context.Context, drugName string) (*DrugClassification, error)
}

// ScheduleGenerator produces a structured taper schedule from an external
// collaborator. Callers must validate the result and fall back to a
// deterministic schedule on error or empty output.
type ScheduleGenerator interface {
	GenerateSchedule(ctx context.Context, req *TaperPlanRequest, classification *DrugClassification, durationWeeks, minSteps, maxSteps int) (*GeneratedSchedule, error)
}

// RuleTableProvider hands out the compiled-in clinical reference tables
type RuleTableProvider interface {
	Tables() *RuleTables
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetAIConfig() *AIConfig
	Reload() error
	Validate() error
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}

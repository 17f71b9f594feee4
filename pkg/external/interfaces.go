package external

import (
	"context"

	"github.com/deprescribing-cds-server/internal/domain"
)

// AIClient is the contract for the generative drug-knowledge collaborator.
// Both operations return structured answers parsed from model output; the
// implementations are responsible for output repair, retries and rate
// limiting. Callers must treat every error as "collaborator unavailable"
// and fall back to deterministic behavior.
type AIClient interface {
	// ClassifyDrug resolves a drug name to pharmacological subclasses and
	// taper characteristics.
	ClassifyDrug(ctx context.Context, drugName string) (*domain.DrugClassification, error)

	// GenerateSchedule produces a complete taper schedule for a classified
	// drug within the given step constraints.
	GenerateSchedule(ctx context.Context, req *domain.TaperPlanRequest, classification *domain.DrugClassification, durationWeeks, minSteps, maxSteps int) (*domain.GeneratedSchedule, error)
}

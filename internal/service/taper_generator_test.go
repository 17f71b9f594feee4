package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
)

// taperStubClassifier returns a fixed classification or error
type taperStubClassifier struct {
	classification *domain.DrugClassification
	err            error
	panics         bool
}

func (s *taperStubClassifier) ClassifyDrug(ctx context.Context, drugName string) (*domain.DrugClassification, error) {
	if s.panics {
		panic("classifier blew up")
	}
	return s.classification, s.err
}

// taperStubScheduler returns a fixed schedule or error
type taperStubScheduler struct {
	schedule *domain.GeneratedSchedule
	err      error
}

func (s *taperStubScheduler) GenerateSchedule(ctx context.Context, req *domain.TaperPlanRequest, classification *domain.DrugClassification, durationWeeks, minSteps, maxSteps int) (*domain.GeneratedSchedule, error) {
	return s.schedule, s.err
}

func newTaperGenerator(classifier domain.DrugClassifier, scheduler domain.ScheduleGenerator) *TaperGenerator {
	return NewTaperGenerator(newTestLogger(), testTables(), classifier, scheduler)
}

func taperRequest(drug string) *domain.TaperPlanRequest {
	return &domain.TaperPlanRequest{
		DrugName:    drug,
		CurrentDose: "10mg daily",
		PatientAge:  76,
	}
}

func assertTapersToZero(t *testing.T, plan *domain.TaperPlan) {
	t.Helper()
	require.NotEmpty(t, plan.Steps)

	previous := 101
	for _, step := range plan.Steps {
		assert.Less(t, step.PercentageOfOriginal, previous)
		previous = step.PercentageOfOriginal
	}
	last := plan.Steps[len(plan.Steps)-1]
	assert.Equal(t, 0, last.PercentageOfOriginal)
	assert.Equal(t, "STOP", last.Dose)
	assert.Equal(t, last.Week, plan.TotalDurationWeeks)
}

func TestTaperGenerator_ProtocolPlan(t *testing.T) {
	generator := newTaperGenerator(nil, nil)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("Diazepam"))
	require.NotNil(t, plan)
	assert.Equal(t, domain.TaperSourceProtocol, plan.Source)
	assert.Equal(t, "benzodiazepines", plan.DrugClass)
	assert.Equal(t, "high-risk", plan.RiskProfile)
	assert.NotEmpty(t, plan.PauseCriteria)
	assert.NotEmpty(t, plan.MonitoringSchedule)
	assertTapersToZero(t, plan)
}

func TestTaperGenerator_LowRiskProtocolIsShort(t *testing.T) {
	generator := newTaperGenerator(nil, nil)

	benzo := generator.GenerateTaperPlan(context.Background(), taperRequest("diazepam"))
	ppi := generator.GenerateTaperPlan(context.Background(), taperRequest("omeprazole"))

	assert.Greater(t, benzo.TotalDurationWeeks, ppi.TotalDurationWeeks)
	assertTapersToZero(t, ppi)
}

func TestTaperGenerator_FrailtySlowsTaper(t *testing.T) {
	generator := newTaperGenerator(nil, nil)

	baseline := generator.GenerateTaperPlan(context.Background(), taperRequest("diazepam"))

	frail := taperRequest("diazepam")
	cfs := 8
	frail.PatientCFSScore = &cfs
	slowed := generator.GenerateTaperPlan(context.Background(), frail)

	assert.Greater(t, slowed.TotalDurationWeeks, baseline.TotalDurationWeeks)
}

func TestTaperGenerator_ShortTermUseShortensTaper(t *testing.T) {
	generator := newTaperGenerator(nil, nil)

	baseline := generator.GenerateTaperPlan(context.Background(), taperRequest("diazepam"))

	shortTerm := taperRequest("diazepam")
	shortTerm.DurationOnMedication = domain.SHORT_TERM
	shortened := generator.GenerateTaperPlan(context.Background(), shortTerm)

	assert.Less(t, shortened.TotalDurationWeeks, baseline.TotalDurationWeeks)
	assertTapersToZero(t, shortened)
}

func TestTaperGenerator_GenericFallbackWithoutClassifier(t *testing.T) {
	generator := newTaperGenerator(nil, nil)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	require.NotNil(t, plan)
	assert.Equal(t, domain.TaperSourceGenericFallback, plan.Source)
	assert.Equal(t, "unclassified", plan.DrugClass)
	assert.Equal(t, 8, plan.TotalDurationWeeks)
	assertTapersToZero(t, plan)
}

func TestTaperGenerator_GenericFallbackOnClassifierError(t *testing.T) {
	classifier := &taperStubClassifier{err: fmt.Errorf("upstream unavailable")}
	generator := newTaperGenerator(classifier, nil)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	assert.Equal(t, domain.TaperSourceGenericFallback, plan.Source)
}

func TestTaperGenerator_NoTaperNeeded(t *testing.T) {
	classifier := &taperStubClassifier{
		classification: &domain.DrugClassification{
			DrugName:      "obscuredrug",
			DrugClass:     "antibiotics",
			RequiresTaper: false,
		},
	}
	generator := newTaperGenerator(classifier, nil)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	assert.Equal(t, domain.TaperSourceNoTaperNeeded, plan.Source)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "STOP", plan.Steps[0].Dose)
	assert.Equal(t, 1, plan.Steps[0].Week)
}

func TestTaperGenerator_ClassifiedDeterministicPlan(t *testing.T) {
	classifier := &taperStubClassifier{
		classification: &domain.DrugClassification{
			DrugName:             "obscuredrug",
			DrugClass:            "snris",
			RiskProfile:          "moderate-risk",
			RequiresTaper:        true,
			TypicalDurationWeeks: 10,
			WithdrawalSymptoms:   "dizziness; irritability",
		},
	}
	generator := newTaperGenerator(classifier, nil)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	assert.Equal(t, domain.TaperSourceAIAssisted, plan.Source)
	assert.Equal(t, "snris", plan.DrugClass)
	assertTapersToZero(t, plan)
}

func TestTaperGenerator_StepLogicSetsReduction(t *testing.T) {
	classifier := &taperStubClassifier{
		classification: &domain.DrugClassification{
			DrugName:             "obscuredrug",
			DrugClass:            "snris",
			RiskProfile:          "moderate-risk",
			RequiresTaper:        true,
			TypicalDurationWeeks: 10,
			StepLogic:            "25% every 2 weeks",
		},
	}
	generator := newTaperGenerator(classifier, nil)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	assert.Equal(t, domain.TaperSourceAIAssisted, plan.Source)
	require.GreaterOrEqual(t, len(plan.Steps), 2)
	assert.Equal(t, 75, plan.Steps[0].PercentageOfOriginal)
	assert.Equal(t, 50, plan.Steps[1].PercentageOfOriginal)
	assertTapersToZero(t, plan)
}

func TestParseReductionPercent(t *testing.T) {
	tests := []struct {
		stepLogic string
		want      int
	}{
		{"10% every 2 weeks", 10},
		{"25% every 1-2 weeks", 25},
		{"50% every 2 weeks", 50},
		{"10% every 1-2 weeks below physiologic dose", 10},
		{"5% weekly", 20},
		{"reduce gradually", 20},
		{"", 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseReductionPercent(tt.stepLogic), tt.stepLogic)
	}
}

func TestTaperGenerator_SchedulerPlanUsedWhenValid(t *testing.T) {
	classifier := &taperStubClassifier{
		classification: &domain.DrugClassification{
			DrugName:             "obscuredrug",
			DrugClass:            "snris",
			RequiresTaper:        true,
			TypicalDurationWeeks: 8,
		},
	}
	scheduler := &taperStubScheduler{
		schedule: &domain.GeneratedSchedule{
			Steps: []domain.TaperStep{
				{Week: 1, Dose: "75%", PercentageOfOriginal: 75},
				{Week: 3, Dose: "50%", PercentageOfOriginal: 50},
				{Week: 5, Dose: "25%", PercentageOfOriginal: 25},
				{Week: 7, Dose: "STOP", PercentageOfOriginal: 0},
			},
			PauseCriteria: []string{"withdrawal symptoms"},
		},
	}
	generator := newTaperGenerator(classifier, scheduler)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	assert.Equal(t, domain.TaperSourceAIAssisted, plan.Source)
	assert.Equal(t, 7, plan.TotalDurationWeeks)
	assert.Len(t, plan.Steps, 4)
}

func TestTaperGenerator_InvalidSchedulerStepsDiscarded(t *testing.T) {
	classifier := &taperStubClassifier{
		classification: &domain.DrugClassification{
			DrugName:             "obscuredrug",
			DrugClass:            "snris",
			RequiresTaper:        true,
			TypicalDurationWeeks: 8,
		},
	}
	scheduler := &taperStubScheduler{
		schedule: &domain.GeneratedSchedule{
			Steps: []domain.TaperStep{
				{Week: 0, Dose: "75%", PercentageOfOriginal: 75},
				{Week: 2, Dose: "half", PercentageOfOriginal: 150},
			},
		},
	}
	generator := newTaperGenerator(classifier, scheduler)

	// All scheduler steps invalid, so the deterministic schedule applies
	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	assert.Equal(t, domain.TaperSourceAIAssisted, plan.Source)
	assertTapersToZero(t, plan)
}

func TestTaperGenerator_PanicYieldsEmergencyPlan(t *testing.T) {
	classifier := &taperStubClassifier{panics: true}
	generator := newTaperGenerator(classifier, nil)

	plan := generator.GenerateTaperPlan(context.Background(), taperRequest("obscuredrug"))
	require.NotNil(t, plan)
	assert.Equal(t, domain.TaperSourceEmergency, plan.Source)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, 100, plan.Steps[0].PercentageOfOriginal)
}

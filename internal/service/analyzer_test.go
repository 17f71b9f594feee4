package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

func newAnalyzer() *AnalyzerService {
	return NewAnalyzerService(newTestLogger(), testTables(), lexical.SubstringMatcher{}, nil, nil, 40.0)
}

func basePatient(medications []domain.Medication) *domain.PatientInput {
	return &domain.PatientInput{
		Age:            76,
		Gender:         domain.FEMALE,
		LifeExpectancy: domain.MORE_THAN_TEN_YEARS,
		Medications:    medications,
	}
}

func analysisFor(t *testing.T, response *domain.AnalyzePatientResponse, name string) domain.MedicationAnalysis {
	t.Helper()
	for _, analysis := range response.MedicationAnalyses {
		if analysis.Name == name {
			return analysis
		}
	}
	t.Fatalf("no analysis found for %s", name)
	return domain.MedicationAnalysis{}
}

func TestAnalyzePatient_InputValidation(t *testing.T) {
	analyzer := newAnalyzer()
	ctx := context.Background()

	tests := []struct {
		name  string
		input *domain.PatientInput
	}{
		{"zero age", &domain.PatientInput{Age: 0, Medications: meds("aspirin")}},
		{"age above range", &domain.PatientInput{Age: 130, Medications: meds("aspirin")}},
		{"no medications", &domain.PatientInput{Age: 70}},
		{"blank medication name", &domain.PatientInput{Age: 70, Medications: meds(" ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.AnalyzePatient(ctx, tt.input)
			require.Error(t, err)
			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	badCFS := basePatient(meds("aspirin"))
	cfs := 12
	badCFS.CFSScore = &cfs
	_, err := analyzer.AnalyzePatient(ctx, badCFS)
	assert.Error(t, err)
}

func TestAnalyzePatient_GreenBaseline(t *testing.T) {
	analyzer := newAnalyzer()

	response, err := analyzer.AnalyzePatient(context.Background(), basePatient(meds("lisinopril")))
	require.NoError(t, err)

	analysis := analysisFor(t, response, "lisinopril")
	assert.Equal(t, domain.GREEN, analysis.RiskCategory)
	assert.Equal(t, 2, analysis.RiskScore)
	assert.False(t, analysis.TaperRequired)
	assert.Equal(t, []string{"No significant concerns"}, analysis.Flags)

	assert.Empty(t, response.MonitoringPlans)
	assert.Empty(t, response.SafetyAlerts)
	assert.Contains(t, response.ClinicalRecommendations, "Continue current regimen with routine monitoring")
	assert.Equal(t, 1, response.PrioritySummary[domain.GREEN])
}

func TestAnalyzePatient_AnticholinergicScorePerDrug(t *testing.T) {
	analyzer := newAnalyzer()

	// oxybutynin scores 3 on its own; trazodone scores 1 and stays YELLOW
	// even though the cumulative burden reaches 4
	response, err := analyzer.AnalyzePatient(context.Background(), basePatient(meds("oxybutynin", "trazodone")))
	require.NoError(t, err)

	assert.Equal(t, domain.RED, analysisFor(t, response, "oxybutynin").RiskCategory)
	assert.Equal(t, domain.YELLOW, analysisFor(t, response, "trazodone").RiskCategory)
	assert.Equal(t, 1, response.PrioritySummary[domain.RED])

	found := false
	for _, alert := range response.SafetyAlerts {
		if strings.Contains(alert, "anticholinergic burden") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzePatient_LowScoreAnticholinergics(t *testing.T) {
	analyzer := newAnalyzer()

	// Three score-1 drugs reach a total of 3, but no single drug scores
	// high enough to escalate beyond YELLOW
	response, err := analyzer.AnalyzePatient(context.Background(),
		basePatient(meds("trazodone", "ranitidine", "loratadine")))
	require.NoError(t, err)

	for _, name := range []string{"trazodone", "ranitidine", "loratadine"} {
		assert.Equal(t, domain.YELLOW, analysisFor(t, response, name).RiskCategory, name)
	}
	assert.Equal(t, 0, response.PrioritySummary[domain.RED])
	assert.Equal(t, 3, response.PrioritySummary[domain.YELLOW])
}

func TestAnalyzePatient_YellowMedicationGetsTaperPlan(t *testing.T) {
	analyzer := newAnalyzer()

	response, err := analyzer.AnalyzePatient(context.Background(), basePatient(meds("trazodone")))
	require.NoError(t, err)

	analysis := analysisFor(t, response, "trazodone")
	assert.Equal(t, domain.YELLOW, analysis.RiskCategory)
	assert.True(t, analysis.TaperRequired)
	require.NotNil(t, analysis.TaperPlan)
	assert.Equal(t, domain.TaperSourceGenericFallback, analysis.TaperPlan.Source)
}

func TestAnalyzePatient_ExplicitCriteriaMatch(t *testing.T) {
	analyzer := newAnalyzer()

	response, err := analyzer.AnalyzePatient(context.Background(), basePatient(meds("omeprazole")))
	require.NoError(t, err)

	analysis := analysisFor(t, response, "omeprazole")
	assert.Equal(t, domain.RED, analysis.RiskCategory)
	assert.True(t, analysis.TaperRequired)
	require.NotNil(t, analysis.TaperPlan)
	assert.Equal(t, domain.TaperSourceProtocol, analysis.TaperPlan.Source)
}

func TestAnalyzePatient_RenalContraindication(t *testing.T) {
	analyzer := newAnalyzer()

	// Male, 80, creatinine 2.5 derives an eGFR around 25
	input := basePatient(meds("metformin"))
	input.Age = 80
	input.Gender = domain.MALE
	input.SerumCreatinineMgDl = f64(2.5)

	response, err := analyzer.AnalyzePatient(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, response.PatientSummary.CalculatedEGFR)
	assert.Less(t, *response.PatientSummary.CalculatedEGFR, 30.0)

	analysis := analysisFor(t, response, "metformin")
	assert.Equal(t, domain.RED, analysis.RiskCategory)
}

func TestAnalyzePatient_TimeToBenefit(t *testing.T) {
	analyzer := newAnalyzer()

	input := basePatient(meds("atorvastatin"))
	input.LifeExpectancy = domain.LESS_THAN_ONE_YEAR

	response, err := analyzer.AnalyzePatient(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.RED, analysisFor(t, response, "atorvastatin").RiskCategory)
}

func TestAnalyzePatient_DuplicationIsYellow(t *testing.T) {
	analyzer := newAnalyzer()

	response, err := analyzer.AnalyzePatient(context.Background(), basePatient(meds("sitagliptin", "empagliflozin")))
	require.NoError(t, err)

	assert.Equal(t, domain.YELLOW, analysisFor(t, response, "sitagliptin").RiskCategory)
	assert.Equal(t, domain.YELLOW, analysisFor(t, response, "empagliflozin").RiskCategory)
	assert.Equal(t, 2, response.PrioritySummary[domain.YELLOW])
}

func TestAnalyzePatient_ScoresStayInRange(t *testing.T) {
	analyzer := newAnalyzer()

	input := basePatient(meds(
		"diazepam", "amitriptyline", "oxybutynin", "diphenhydramine",
		"omeprazole", "metformin", "lisinopril",
	))
	input.Age = 82
	input.SerumCreatinineMgDl = f64(2.0)

	response, err := analyzer.AnalyzePatient(context.Background(), input)
	require.NoError(t, err)

	for _, analysis := range response.MedicationAnalyses {
		assert.GreaterOrEqual(t, analysis.RiskScore, 1, analysis.Name)
		assert.LessOrEqual(t, analysis.RiskScore, 10, analysis.Name)
	}

	total := response.PrioritySummary[domain.RED] +
		response.PrioritySummary[domain.YELLOW] +
		response.PrioritySummary[domain.GREEN]
	assert.Equal(t, len(response.MedicationAnalyses), total)
}

func TestAnalyzePatient_HerbVerdicts(t *testing.T) {
	analyzer := newAnalyzer()

	input := basePatient(meds("warfarin"))
	input.Herbs = []domain.HerbalProduct{{GenericName: "ginkgo"}, {GenericName: "valerian"}}

	response, err := analyzer.AnalyzePatient(context.Background(), input)
	require.NoError(t, err)

	ginkgo := analysisFor(t, response, "ginkgo")
	assert.Equal(t, "herbal", ginkgo.Type)
	assert.Equal(t, domain.RED, ginkgo.RiskCategory)

	valerian := analysisFor(t, response, "valerian")
	assert.Equal(t, domain.GREEN, valerian.RiskCategory)

	// Warfarin carries the major interaction flag and goes RED too
	warfarin := analysisFor(t, response, "warfarin")
	assert.Equal(t, domain.RED, warfarin.RiskCategory)

	foundAlert := false
	for _, alert := range response.SafetyAlerts {
		if strings.Contains(alert, "Major interaction") {
			foundAlert = true
		}
	}
	assert.True(t, foundAlert)
}

func TestAnalyzePatient_StartRecommendationsSurface(t *testing.T) {
	analyzer := newAnalyzer()

	input := basePatient(meds("metformin"))
	input.Comorbidities = []string{"atrial fibrillation"}

	response, err := analyzer.AnalyzePatient(context.Background(), input)
	require.NoError(t, err)

	require.NotEmpty(t, response.GlobalStartRecommendations)
	assert.Contains(t, response.GlobalStartRecommendations[0], "START A1")
}

func TestAnalyzePatient_FrailtySummaryAndRecommendation(t *testing.T) {
	analyzer := newAnalyzer()

	input := basePatient(meds("lisinopril"))
	cfs := 6
	input.CFSScore = &cfs

	response, err := analyzer.AnalyzePatient(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "Frail", response.PatientSummary.FrailtyStatus)

	found := false
	for _, rec := range response.ClinicalRecommendations {
		if strings.Contains(rec, "frailty") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzePatient_MonitoringPlansForNonGreen(t *testing.T) {
	analyzer := newAnalyzer()

	response, err := analyzer.AnalyzePatient(context.Background(), basePatient(meds("diazepam", "lisinopril")))
	require.NoError(t, err)

	require.Len(t, response.MonitoringPlans, 1)
	plan := response.MonitoringPlans[0]
	assert.Equal(t, "diazepam", plan.MedicationName)
	assert.Equal(t, "Weekly until stabilized", plan.Frequency)
	assert.Equal(t, 8, plan.DurationWeeks)
}

func TestCheckInteractions(t *testing.T) {
	analyzer := newAnalyzer()
	ctx := context.Background()

	response, err := analyzer.CheckInteractions(ctx, &domain.InteractionCheckRequest{
		Herbs:       []string{"ginkgo", "karela"},
		Medications: []string{"warfarin", "metformin"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, response.TotalInteractions)
	assert.Equal(t, 1, response.MajorInteractions)
	assert.Equal(t, 1, response.ModerateInteractions)
	assert.Contains(t, response.OverallRiskAssessment, "HIGH")
}

func TestCheckInteractions_RequiresBothLists(t *testing.T) {
	analyzer := newAnalyzer()

	_, err := analyzer.CheckInteractions(context.Background(), &domain.InteractionCheckRequest{
		Herbs: []string{"ginkgo"},
	})
	require.Error(t, err)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCheckInteractions_NoFindings(t *testing.T) {
	analyzer := newAnalyzer()

	response, err := analyzer.CheckInteractions(context.Background(), &domain.InteractionCheckRequest{
		Herbs:       []string{"arjuna"},
		Medications: []string{"atorvastatin"},
	})
	require.NoError(t, err)
	assert.Zero(t, response.TotalInteractions)
	assert.Contains(t, response.OverallRiskAssessment, "LOW")
}

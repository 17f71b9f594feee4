package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

func newSTOPPEngine() *STOPPEngine {
	return NewSTOPPEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})
}

func stoppInput(medications []domain.Medication, comorbidities ...string) *domain.PatientInput {
	return &domain.PatientInput{
		Age:           75,
		Gender:        domain.FEMALE,
		Comorbidities: comorbidities,
		Medications:   medications,
	}
}

func hasCategory(flags []domain.Flag, category string) bool {
	for _, flag := range flags {
		if flag.Category == category {
			return true
		}
	}
	return false
}

func TestSTOPPEngine_EGFRThreshold(t *testing.T) {
	engine := newSTOPPEngine()
	input := stoppInput(meds("metformin"))

	flags := engine.Evaluate(input, f64(25))
	assert.True(t, hasCategory(flags, "STOPP B6"))

	flags = engine.Evaluate(input, f64(45))
	assert.False(t, hasCategory(flags, "STOPP B6"))

	// No eGFR means renal criteria cannot fire
	flags = engine.Evaluate(input, nil)
	assert.False(t, hasCategory(flags, "STOPP B6"))
}

func TestSTOPPEngine_UnconditionalCriterion(t *testing.T) {
	engine := newSTOPPEngine()

	flags := engine.Evaluate(stoppInput(meds("diazepam")), nil)
	require.True(t, hasCategory(flags, "STOPP D5"))

	for _, flag := range flags {
		assert.Equal(t, domain.SeverityHigh, flag.Severity)
		assert.Equal(t, domain.SourceSTOPP, flag.Source)
	}
}

func TestSTOPPEngine_ComorbidityCondition(t *testing.T) {
	engine := newSTOPPEngine()

	// Opioid with a falls history fires L2
	flags := engine.Evaluate(stoppInput(meds("oxycodone"), "recurrent falls"), nil)
	assert.True(t, hasCategory(flags, "STOPP L2"))

	// Without the comorbidity the criterion stays silent
	flags = engine.Evaluate(stoppInput(meds("oxycodone")), nil)
	assert.False(t, hasCategory(flags, "STOPP L2"))
}

func TestSTOPPEngine_FlagCarriesDrugClassList(t *testing.T) {
	engine := newSTOPPEngine()

	flags := engine.Evaluate(stoppInput(meds("lorazepam")), nil)
	require.True(t, hasCategory(flags, "STOPP D5"))

	for _, flag := range flags {
		if flag.Category == "STOPP D5" {
			assert.True(t, strings.Contains(flag.Medication, "lorazepam"))
		}
	}
}

func TestSTOPPEngine_StartRecommendations(t *testing.T) {
	engine := newSTOPPEngine()

	// Atrial fibrillation without anticoagulation
	recs := engine.EvaluateSTART(stoppInput(meds("metformin"), "atrial fibrillation"), nil)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "START A1")

	// Statin already prescribed suppresses A5
	recs = engine.EvaluateSTART(stoppInput(meds("atorvastatin"), "ischaemic heart disease"), nil)
	assert.Empty(t, recs)
}

func TestSTOPPEngine_StartSuppressedInRenalImpairment(t *testing.T) {
	engine := newSTOPPEngine()
	input := stoppInput(meds("furosemide"), "heart failure")

	// ACE inhibitor recommendation suppressed when eGFR < 30
	recs := engine.EvaluateSTART(input, f64(25))
	for _, rec := range recs {
		assert.NotContains(t, rec, "START A6")
	}

	recs = engine.EvaluateSTART(input, f64(55))
	found := false
	for _, rec := range recs {
		if strings.Contains(rec, "START A6") {
			found = true
		}
	}
	assert.True(t, found)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

func TestTTBEngine_BenefitHorizonExceedsLifeExpectancy(t *testing.T) {
	engine := NewTTBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	// Statins need about 3 years; less than a year of life expectancy
	flags := engine.Evaluate(meds("atorvastatin"), domain.LESS_THAN_ONE_YEAR)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.SourceTTB, flags[0].Source)
	assert.Equal(t, domain.SeverityHigh, flags[0].Severity)
	assert.Equal(t, "DISCONTINUE", flags[0].Action)
}

func TestTTBEngine_SufficientLifeExpectancy(t *testing.T) {
	engine := NewTTBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	assert.Empty(t, engine.Evaluate(meds("atorvastatin"), domain.FIVE_TO_TEN_YEARS))
	assert.Empty(t, engine.Evaluate(meds("atorvastatin"), domain.MORE_THAN_TEN_YEARS))
}

func TestTTBEngine_BoundaryUsesStrictComparison(t *testing.T) {
	engine := NewTTBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	// 1-5 years maps to 3 representative years, equal to the statin
	// threshold, so the flag does not fire
	assert.Empty(t, engine.Evaluate(meds("atorvastatin"), domain.ONE_TO_FIVE_YEARS))

	// Aspirin needs 5 years, which exceeds 3
	flags := engine.Evaluate(meds("aspirin"), domain.ONE_TO_FIVE_YEARS)
	assert.Len(t, flags, 1)
}

func TestTTBEngine_OneFlagPerMedication(t *testing.T) {
	engine := NewTTBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	// atorvastatin matches both the generic statin entry and its own;
	// only the first matching entry flags
	flags := engine.Evaluate(meds("atorvastatin"), domain.LESS_THAN_ONE_YEAR)
	assert.Len(t, flags, 1)
}

func TestTTBEngine_UnlistedMedicationIgnored(t *testing.T) {
	engine := NewTTBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	assert.Empty(t, engine.Evaluate(meds("metformin"), domain.LESS_THAN_ONE_YEAR))
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

func TestGenderEngine_FemaleSpecificRisk(t *testing.T) {
	engine := NewGenderEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	flags := engine.Evaluate(meds("zolpidem"), domain.FEMALE)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.SourceGender, flags[0].Source)
	assert.Equal(t, domain.SeverityModerate, flags[0].Severity)

	assert.Empty(t, engine.Evaluate(meds("zolpidem"), domain.MALE))
}

func TestGenderEngine_MaleSpecificRisk(t *testing.T) {
	engine := NewGenderEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	flags := engine.Evaluate(meds("spironolactone"), domain.MALE)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.SeverityLow, flags[0].Severity)

	assert.Empty(t, engine.Evaluate(meds("spironolactone"), domain.FEMALE))
}

func TestGenderEngine_OtherGenderNoFlags(t *testing.T) {
	engine := NewGenderEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	assert.Empty(t, engine.Evaluate(meds("zolpidem", "spironolactone"), domain.OTHER))
}

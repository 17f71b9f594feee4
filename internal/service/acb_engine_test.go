package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/internal/tables"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testTables() *domain.RuleTables {
	return tables.NewProvider().Tables()
}

func meds(names ...string) []domain.Medication {
	out := make([]domain.Medication, len(names))
	for i, name := range names {
		out[i] = domain.Medication{GenericName: name}
	}
	return out
}

func TestACBEngine_CumulativeScore(t *testing.T) {
	engine := NewACBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	result := engine.Evaluate(meds("amitriptyline", "oxybutynin", "diazepam"))

	assert.Equal(t, 7, result.TotalScore)
	assert.Equal(t, 3, result.PerDrug["amitriptyline"])
	assert.Equal(t, 3, result.PerDrug["oxybutynin"])
	assert.Equal(t, 1, result.PerDrug["diazepam"])
	assert.Len(t, result.Flags, 3)
}

func TestACBEngine_FlagSeverityTracksScore(t *testing.T) {
	engine := NewACBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	result := engine.Evaluate(meds("oxybutynin", "diazepam"))

	severities := map[string]domain.FlagSeverity{}
	for _, flag := range result.Flags {
		severities[flag.Medication] = flag.Severity
	}
	assert.Equal(t, domain.SeverityHigh, severities["oxybutynin"])
	assert.Equal(t, domain.SeverityLow, severities["diazepam"])
}

func TestACBEngine_NoAnticholinergics(t *testing.T) {
	engine := NewACBEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{})

	result := engine.Evaluate(meds("lisinopril", "atorvastatin"))

	assert.Equal(t, 0, result.TotalScore)
	assert.Empty(t, result.Flags)
	assert.Empty(t, result.PerDrug)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

func newOrganEngine() *OrganEngine {
	return NewOrganEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{}, 40.0)
}

func TestOrganEngine_RenalContraindication(t *testing.T) {
	engine := newOrganEngine()

	flags := engine.Evaluate(meds("metformin"), f64(25), nil, nil)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.SourceOrganRenal, flags[0].Source)
	assert.Equal(t, domain.SeverityHigh, flags[0].Severity)
	assert.Equal(t, "STOP", flags[0].Action)

	// Above the threshold nothing fires
	assert.Empty(t, engine.Evaluate(meds("metformin"), f64(35), nil, nil))
}

func TestOrganEngine_DoseAdjustmentIsModerate(t *testing.T) {
	engine := newOrganEngine()

	flags := engine.Evaluate(meds("gabapentin"), f64(45), nil, nil)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.SeverityModerate, flags[0].Severity)
	assert.Equal(t, "REDUCE DOSE", flags[0].Action)
}

func TestOrganEngine_MissingEGFRSkipsRenalCheck(t *testing.T) {
	engine := newOrganEngine()

	assert.Empty(t, engine.Evaluate(meds("metformin"), nil, nil, nil))
}

func TestOrganEngine_HepaticCaution(t *testing.T) {
	engine := newOrganEngine()

	// AST 130 U/L against ULN 40 is 3.25x, above the statin 3.0x threshold
	flags := engine.Evaluate(meds("atorvastatin"), nil, f64(130), nil)
	require.NotEmpty(t, flags)
	assert.Equal(t, domain.SourceOrganHepatic, flags[0].Source)
	assert.Equal(t, domain.SeverityHigh, flags[0].Severity)
	assert.Equal(t, "HOLD", flags[0].Action)

	// 2.5x ULN stays under the statin threshold
	assert.Empty(t, engine.Evaluate(meds("atorvastatin"), nil, f64(100), nil))
}

func TestOrganEngine_HepaticUsesWorstTransaminase(t *testing.T) {
	engine := newOrganEngine()

	// ALT 120 (3x) alone does not cross 3.0x; AST 140 (3.5x) does
	assert.Empty(t, engine.Evaluate(meds("simvastatin"), nil, f64(80), f64(120)))
	assert.NotEmpty(t, engine.Evaluate(meds("simvastatin"), nil, f64(140), f64(120)))
}

func TestOrganEngine_BothOrgansIndependent(t *testing.T) {
	engine := newOrganEngine()

	flags := engine.Evaluate(meds("metformin", "methotrexate"), f64(20), f64(100), nil)

	sources := map[domain.FlagSource]int{}
	for _, flag := range flags {
		sources[flag.Source]++
	}
	assert.Equal(t, 1, sources[domain.SourceOrganRenal])
	assert.Equal(t, 1, sources[domain.SourceOrganHepatic])
}

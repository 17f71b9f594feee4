package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
)

func f64(v float64) *float64 { return &v }

func TestEstimateGFR(t *testing.T) {
	tests := []struct {
		name       string
		age        int
		gender     domain.Gender
		creatinine *float64
		want       float64
	}{
		{"female age 70 normal creatinine", 70, domain.FEMALE, f64(1.0), 60.6},
		{"male age 70 normal creatinine", 70, domain.MALE, f64(1.0), 81.0},
		{"female low creatinine uses alpha exponent", 65, domain.FEMALE, f64(0.6), 99.5},
		{"male elevated creatinine", 80, domain.MALE, f64(2.5), 25.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateGFR(tt.age, tt.gender, tt.creatinine)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.1)
		})
	}
}

func TestEstimateGFR_MissingInputs(t *testing.T) {
	assert.Nil(t, EstimateGFR(70, domain.FEMALE, nil))
	assert.Nil(t, EstimateGFR(70, domain.FEMALE, f64(0)))
	assert.Nil(t, EstimateGFR(0, domain.MALE, f64(1.0)))
}

func TestMELDScore(t *testing.T) {
	// All labs at the 1.0 floor: score is the constant term, clamped up to 6
	got := MELDScore(f64(0.5), f64(0.9), f64(0.8))
	require.NotNil(t, got)
	assert.Equal(t, 6.0, *got)

	// Moderately elevated labs: raw value 21.757 rounds to 22
	got = MELDScore(f64(3.0), f64(1.5), f64(2.0))
	require.NotNil(t, got)
	assert.Equal(t, 22.0, *got)

	// Extreme labs clamp at 40
	got = MELDScore(f64(50), f64(10), f64(20))
	require.NotNil(t, got)
	assert.Equal(t, 40.0, *got)
}

func TestMELDScore_MissingLabs(t *testing.T) {
	assert.Nil(t, MELDScore(nil, f64(1.2), f64(1.0)))
	assert.Nil(t, MELDScore(f64(1.2), nil, f64(1.0)))
	assert.Nil(t, MELDScore(f64(1.2), f64(1.0), nil))
}

func TestMELDNaScore(t *testing.T) {
	meld := f64(20)

	// Normal sodium: no adjustment
	got := MELDNaScore(meld, f64(140))
	require.NotNil(t, got)
	assert.Equal(t, 20.0, *got)

	// Hyponatremia raises the score
	got = MELDNaScore(meld, f64(128))
	require.NotNil(t, got)
	assert.Greater(t, *got, 20.0)
	assert.LessOrEqual(t, *got, 40.0)

	// Moderate hyponatremia: adjusted value 24.62 rounds to 25
	got = MELDNaScore(meld, f64(130))
	require.NotNil(t, got)
	assert.Equal(t, 25.0, *got)

	// Sodium clamped at 125: same result as more extreme hyponatremia
	at125 := MELDNaScore(meld, f64(125))
	below := MELDNaScore(meld, f64(110))
	require.NotNil(t, at125)
	require.NotNil(t, below)
	assert.Equal(t, *at125, *below)

	assert.Nil(t, MELDNaScore(nil, f64(130)))
	assert.Nil(t, MELDNaScore(meld, nil))
}

func TestClassifyRenalFunction(t *testing.T) {
	assert.Contains(t, ClassifyRenalFunction(nil), "Unknown")
	assert.Contains(t, ClassifyRenalFunction(f64(95)), "Normal")
	assert.Contains(t, ClassifyRenalFunction(f64(65)), "Mildly decreased")
	assert.Contains(t, ClassifyRenalFunction(f64(50)), "Mild to moderately")
	assert.Contains(t, ClassifyRenalFunction(f64(35)), "Moderately to severely")
	assert.Contains(t, ClassifyRenalFunction(f64(20)), "Severely decreased")
	assert.Contains(t, ClassifyRenalFunction(f64(10)), "Kidney failure")
}

func TestClassifyHepaticFunction(t *testing.T) {
	assert.Contains(t, ClassifyHepaticFunction(nil, nil, nil, 40), "Unknown")
	assert.Contains(t, ClassifyHepaticFunction(f64(22), nil, nil, 40), "Significantly impaired")
	assert.Contains(t, ClassifyHepaticFunction(nil, f64(150), nil, 40), "Markedly elevated")
	assert.Contains(t, ClassifyHepaticFunction(nil, f64(60), f64(90), 40), "Elevated transaminases")
	assert.Equal(t, "No significant impairment", ClassifyHepaticFunction(f64(8), f64(30), f64(25), 40))
}

package service

import (
	"fmt"
	"math"

	"github.com/deprescribing-cds-server/internal/domain"
)

// Clinical calculators. Pure functions over the patient's lab values; every
// calculator returns nil when its required labs are missing.

// EstimateGFR computes the estimated glomerular filtration rate using the
// CKD-EPI 2021 race-free creatinine equation, rounded to one decimal.
func EstimateGFR(age int, gender domain.Gender, serumCreatinineMgDl *float64) *float64 {
	if serumCreatinineMgDl == nil || *serumCreatinineMgDl <= 0 || age <= 0 {
		return nil
	}

	var kappa, alpha, genderMult float64
	if gender == domain.FEMALE {
		kappa, alpha, genderMult = 0.7, -0.241, 1.012
	} else {
		kappa, alpha, genderMult = 0.9, -0.302, 1.0
	}

	ratio := *serumCreatinineMgDl / kappa
	egfr := 142.0 *
		math.Pow(math.Min(ratio, 1.0), alpha) *
		math.Pow(math.Max(ratio, 1.0), -1.2) *
		math.Pow(0.9938, float64(age)) *
		genderMult

	rounded := math.RoundToEven(egfr*10) / 10
	return &rounded
}

// MELDScore computes the MELD score from bilirubin, INR and creatinine.
// Lab values are floored at 1.0 before the logarithms and the result is
// rounded and clamped to the conventional [6, 40] range.
func MELDScore(bilirubinMgDl, inr, creatinineMgDl *float64) *float64 {
	if bilirubinMgDl == nil || inr == nil || creatinineMgDl == nil {
		return nil
	}

	bili := math.Max(*bilirubinMgDl, 1.0)
	ratio := math.Max(*inr, 1.0)
	cr := math.Max(*creatinineMgDl, 1.0)

	raw := 3.78*math.Log(bili) + 11.2*math.Log(ratio) + 9.57*math.Log(cr) + 6.43
	score := clampFloat(math.RoundToEven(raw), 6, 40)
	return &score
}

// MELDNaScore adjusts a MELD score for serum sodium. Sodium is clamped to
// [125, 137] mmol/L; the adjustment only ever raises the score.
func MELDNaScore(meld *float64, sodiumMmolL *float64) *float64 {
	if meld == nil || sodiumMmolL == nil {
		return nil
	}

	na := clampFloat(*sodiumMmolL, 125, 137)
	adjusted := *meld + 1.32*(137-na) - 0.033*(*meld)*(137-na)
	score := clampFloat(math.RoundToEven(adjusted), 6, 40)
	return &score
}

// ClassifyRenalFunction maps an eGFR to a CKD stage description
func ClassifyRenalFunction(egfr *float64) string {
	if egfr == nil {
		return "Unknown (no serum creatinine provided)"
	}
	switch {
	case *egfr >= 90:
		return fmt.Sprintf("Normal (eGFR %.1f)", *egfr)
	case *egfr >= 60:
		return fmt.Sprintf("Mildly decreased (eGFR %.1f)", *egfr)
	case *egfr >= 45:
		return fmt.Sprintf("Mild to moderately decreased (eGFR %.1f)", *egfr)
	case *egfr >= 30:
		return fmt.Sprintf("Moderately to severely decreased (eGFR %.1f)", *egfr)
	case *egfr >= 15:
		return fmt.Sprintf("Severely decreased (eGFR %.1f)", *egfr)
	default:
		return fmt.Sprintf("Kidney failure (eGFR %.1f)", *egfr)
	}
}

// ClassifyHepaticFunction summarizes hepatic status from the MELD score and
// transaminase levels relative to the upper limit of normal.
func ClassifyHepaticFunction(meld *float64, astUl, altUl *float64, transaminaseULN float64) string {
	if meld == nil && astUl == nil && altUl == nil {
		return "Unknown (no hepatic labs provided)"
	}

	if meld != nil && *meld >= 15 {
		return fmt.Sprintf("Significantly impaired (MELD %.0f)", *meld)
	}

	maxTransaminase := 0.0
	if astUl != nil {
		maxTransaminase = *astUl
	}
	if altUl != nil && *altUl > maxTransaminase {
		maxTransaminase = *altUl
	}

	switch {
	case transaminaseULN > 0 && maxTransaminase > 3*transaminaseULN:
		return "Markedly elevated transaminases (>3x ULN)"
	case transaminaseULN > 0 && maxTransaminase > 2*transaminaseULN:
		return "Elevated transaminases (>2x ULN)"
	default:
		return "No significant impairment"
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// Time-to-benefit thresholds for preventive therapies. A therapy is
// flagged when the patient's representative remaining life expectancy is
// shorter than the time the therapy needs to deliver its benefit.
func timeToBenefit() []domain.TTBEntry {
	return []domain.TTBEntry{
		{
			DrugPattern:        "statin",
			Indication:         "primary cardiovascular prevention",
			TimeToBenefitYears: 3.0,
			Recommendation:     "Consider discontinuation when life expectancy is below the 2-5 year benefit horizon",
		},
		{
			DrugPattern:        "atorvastatin",
			Indication:         "primary cardiovascular prevention",
			TimeToBenefitYears: 3.0,
			Recommendation:     "Consider discontinuation when life expectancy is below the 2-5 year benefit horizon",
		},
		{
			DrugPattern:        "simvastatin",
			Indication:         "primary cardiovascular prevention",
			TimeToBenefitYears: 3.0,
			Recommendation:     "Consider discontinuation when life expectancy is below the 2-5 year benefit horizon",
		},
		{
			DrugPattern:        "rosuvastatin",
			Indication:         "primary cardiovascular prevention",
			TimeToBenefitYears: 3.0,
			Recommendation:     "Consider discontinuation when life expectancy is below the 2-5 year benefit horizon",
		},
		{
			DrugPattern:        "alendronate",
			Indication:         "osteoporotic fracture prevention",
			TimeToBenefitYears: 1.5,
			Recommendation:     "Benefit requires 12-18 months of therapy; review with limited life expectancy",
		},
		{
			DrugPattern:        "risedronate",
			Indication:         "osteoporotic fracture prevention",
			TimeToBenefitYears: 1.5,
			Recommendation:     "Benefit requires 12-18 months of therapy; review with limited life expectancy",
		},
		{
			DrugPattern:        "zoledronic",
			Indication:         "osteoporotic fracture prevention",
			TimeToBenefitYears: 1.5,
			Recommendation:     "Benefit requires 12-18 months of therapy; review with limited life expectancy",
		},
		{
			DrugPattern:        "aspirin",
			Indication:         "primary cardiovascular prevention",
			TimeToBenefitYears: 5.0,
			Recommendation:     "Primary-prevention aspirin needs about 5 years to benefit; bleeding risk is immediate",
		},
	}
}

// Gender-specific medication risks
func genderRisks() []domain.GenderRiskEntry {
	return []domain.GenderRiskEntry{
		{
			DrugPattern:    "zolpidem",
			Gender:         domain.FEMALE,
			Risk:           "Slower clearance in women; next-morning impairment at standard doses",
			Recommendation: "Use the lower recommended dose in women",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "digoxin",
			Gender:         domain.FEMALE,
			Risk:           "Higher mortality observed in women at standard serum concentrations",
			Recommendation: "Target the lower end of the therapeutic range; monitor levels",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "citalopram",
			Gender:         domain.FEMALE,
			Risk:           "Greater QT prolongation in women, particularly over age 60",
			Recommendation: "Keep dose at or below 20mg/day in older women; consider ECG",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "spironolactone",
			Gender:         domain.MALE,
			Risk:           "Dose-dependent gynecomastia and sexual dysfunction in men",
			Recommendation: "Counsel and review dose; consider eplerenone if intolerable",
			Severity:       domain.SeverityLow,
		},
	}
}

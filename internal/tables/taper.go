package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// Evidence-based discontinuation protocols. Drugs lists hold lowercase
// generic names looked up exactly after normalization.
func taperProtocols() []domain.TaperProtocol {
	return []domain.TaperProtocol{
		{
			DrugClass: "benzodiazepines",
			Drugs: []string{
				"diazepam", "lorazepam", "alprazolam", "clonazepam",
				"temazepam", "oxazepam", "chlordiazepoxide",
			},
			RiskProfile:       "high-risk",
			Strategy:          "Gradual dose reduction (Ashton-style)",
			ReductionPerStep:  "10% every 2 weeks",
			BaseDurationWeeks: 20,
			WithdrawalSymptoms: []string{
				"rebound anxiety", "insomnia", "tremor", "perceptual disturbances", "seizures (abrupt cessation)",
			},
			MonitoringParams: []string{"anxiety level", "sleep quality", "withdrawal symptom scale"},
			PauseCriteria: []string{
				"severe rebound anxiety or panic", "withdrawal seizure warning signs", "new confusion or disorientation",
			},
			ReversalCriteria: []string{"seizure activity", "severe uncontrolled withdrawal despite pause"},
		},
		{
			DrugClass: "z_drugs",
			Drugs:     []string{"zolpidem", "zopiclone", "eszopiclone", "zaleplon"},
			RiskProfile:       "high-risk",
			Strategy:          "Gradual dose reduction",
			ReductionPerStep:  "25% every 2 weeks",
			BaseDurationWeeks: 8,
			WithdrawalSymptoms: []string{"rebound insomnia", "anxiety", "irritability"},
			MonitoringParams:   []string{"sleep quality", "daytime function"},
			PauseCriteria:      []string{"severe rebound insomnia affecting daytime safety"},
			ReversalCriteria:   []string{"intolerable withdrawal despite pause and slower taper"},
		},
		{
			DrugClass: "ssris",
			Drugs: []string{
				"sertraline", "escitalopram", "citalopram", "fluoxetine", "paroxetine",
			},
			RiskProfile:       "moderate-risk",
			Strategy:          "Hyperbolic dose reduction",
			ReductionPerStep:  "25% every 2-4 weeks",
			BaseDurationWeeks: 12,
			WithdrawalSymptoms: []string{
				"dizziness", "electric shock sensations", "irritability", "flu-like symptoms", "mood changes",
			},
			MonitoringParams: []string{"mood", "discontinuation symptoms", "suicidality screening"},
			PauseCriteria:    []string{"significant mood deterioration", "severe discontinuation symptoms"},
			ReversalCriteria: []string{"relapse of depressive episode", "emergent suicidality"},
		},
		{
			DrugClass: "tricyclics",
			Drugs:     []string{"amitriptyline", "nortriptyline", "imipramine", "doxepin"},
			RiskProfile:       "moderate-risk",
			Strategy:          "Gradual dose reduction",
			ReductionPerStep:  "25% every 2 weeks",
			BaseDurationWeeks: 8,
			WithdrawalSymptoms: []string{"cholinergic rebound", "nausea", "headache", "sleep disturbance"},
			MonitoringParams:   []string{"mood", "sleep", "pain control if used for neuropathy"},
			PauseCriteria:      []string{"mood deterioration", "return of neuropathic pain"},
			ReversalCriteria:   []string{"severe relapse of underlying indication"},
		},
		{
			DrugClass: "ppis",
			Drugs: []string{
				"omeprazole", "pantoprazole", "esomeprazole", "lansoprazole", "rabeprazole",
			},
			RiskProfile:       "low-risk",
			Strategy:          "Step-down then stop",
			ReductionPerStep:  "50% every 2 weeks",
			BaseDurationWeeks: 4,
			WithdrawalSymptoms: []string{"rebound acid hypersecretion", "heartburn", "dyspepsia"},
			MonitoringParams:   []string{"reflux symptoms"},
			PauseCriteria:      []string{"severe rebound reflux not controlled by antacids"},
			ReversalCriteria:   []string{"erosive esophagitis history with recurrent symptoms"},
		},
		{
			DrugClass: "opioids",
			Drugs: []string{
				"morphine", "oxycodone", "tramadol", "codeine", "fentanyl", "hydromorphone",
			},
			RiskProfile:       "high-risk",
			Strategy:          "Slow individualized reduction",
			ReductionPerStep:  "10% every 2-4 weeks",
			BaseDurationWeeks: 16,
			WithdrawalSymptoms: []string{
				"pain flare", "anxiety", "sweating", "diarrhea", "insomnia", "craving",
			},
			MonitoringParams: []string{"pain scores", "withdrawal scale", "function"},
			PauseCriteria:    []string{"uncontrolled pain", "moderate withdrawal symptoms"},
			ReversalCriteria: []string{"severe functional decline", "signs of destabilization"},
		},
		{
			DrugClass: "gabapentinoids",
			Drugs:     []string{"gabapentin", "pregabalin"},
			RiskProfile:       "moderate-risk",
			Strategy:          "Gradual dose reduction",
			ReductionPerStep:  "25% every 1-2 weeks",
			BaseDurationWeeks: 8,
			WithdrawalSymptoms: []string{"anxiety", "insomnia", "nausea", "pain recurrence", "seizure risk if epileptic"},
			MonitoringParams:   []string{"pain control", "seizure activity if applicable", "mood"},
			PauseCriteria:      []string{"pain recurrence", "withdrawal anxiety"},
			ReversalCriteria:   []string{"seizure activity"},
		},
		{
			DrugClass: "beta_blockers",
			Drugs:     []string{"metoprolol", "atenolol", "bisoprolol", "propranolol", "carvedilol"},
			RiskProfile:       "moderate-risk",
			Strategy:          "Stepwise dose halving",
			ReductionPerStep:  "50% every 1-2 weeks",
			BaseDurationWeeks: 4,
			WithdrawalSymptoms: []string{"rebound tachycardia", "hypertension", "angina", "anxiety"},
			MonitoringParams:   []string{"heart rate", "blood pressure", "anginal symptoms"},
			PauseCriteria:      []string{"resting heart rate above 100", "blood pressure above target"},
			ReversalCriteria:   []string{"angina recurrence", "arrhythmia"},
		},
		{
			DrugClass: "corticosteroids",
			Drugs:     []string{"prednisone", "prednisolone", "dexamethasone", "hydrocortisone"},
			RiskProfile:       "high-risk",
			Strategy:          "Slow reduction respecting HPA axis recovery",
			ReductionPerStep:  "10% every 1-2 weeks below physiologic dose",
			BaseDurationWeeks: 12,
			WithdrawalSymptoms: []string{"fatigue", "myalgia", "adrenal insufficiency", "disease flare"},
			MonitoringParams:   []string{"blood pressure", "fatigue", "underlying disease activity"},
			PauseCriteria:      []string{"symptoms of adrenal insufficiency", "disease flare"},
			ReversalCriteria:   []string{"adrenal crisis warning signs"},
		},
	}
}

// Clinical Frailty Scale score -> taper pace multiplier. Scores above 4
// slow the taper; fit patients can go slightly faster.
func cfsMultipliers() map[int]float64 {
	return map[int]float64{
		1: 1.25,
		2: 1.25,
		3: 1.0,
		4: 1.0,
		5: 0.8,
		6: 0.75,
		7: 0.6,
		8: 0.5,
		9: 0.5,
	}
}

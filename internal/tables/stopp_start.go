package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// STOPP criteria. DrugClass fields may carry comma-separated drug name
// fragments; Condition fields carry a lowercase comorbidity fragment, an
// eGFR threshold expression ("egfr <30") or "any".
func stoppCriteria() []domain.STOPPCriterion {
	return []domain.STOPPCriterion{
		{
			RuleID:    "B6",
			DrugClass: "metformin",
			Condition: "egfr <30",
			Rationale: "Risk of lactic acidosis in severe renal impairment",
		},
		{
			RuleID:    "B1",
			DrugClass: "digoxin",
			Condition: "egfr <30",
			Rationale: "Digoxin at full dose in renal impairment risks toxicity",
		},
		{
			RuleID:    "D5",
			DrugClass: "diazepam, lorazepam, alprazolam, clonazepam, temazepam",
			Condition: "any",
			Rationale: "Benzodiazepines for 4 weeks or longer: sedation, confusion, impaired balance, falls; taper required on withdrawal",
		},
		{
			RuleID:    "K1",
			DrugClass: "diazepam, lorazepam, alprazolam, clonazepam, zolpidem, zopiclone",
			Condition: "falls",
			Rationale: "Sedative drugs in patients with a history of falls",
		},
		{
			RuleID:    "K2",
			DrugClass: "amlodipine, doxazosin, prazosin",
			Condition: "falls",
			Rationale: "Vasodilators with persistent postural hypotension risk recurrent falls",
		},
		{
			RuleID:    "H1",
			DrugClass: "ibuprofen, naproxen, diclofenac, nsaid",
			Condition: "heart failure",
			Rationale: "NSAIDs may exacerbate heart failure through fluid retention",
		},
		{
			RuleID:    "H2",
			DrugClass: "ibuprofen, naproxen, diclofenac, nsaid",
			Condition: "peptic ulcer",
			Rationale: "NSAIDs with prior peptic ulcer disease risk recurrent bleeding",
		},
		{
			RuleID:    "H5",
			DrugClass: "ibuprofen, naproxen, diclofenac, nsaid",
			Condition: "egfr <50",
			Rationale: "NSAIDs in moderate renal impairment risk deterioration of renal function",
		},
		{
			RuleID:    "L2",
			DrugClass: "morphine, oxycodone, fentanyl, tramadol, codeine",
			Condition: "falls",
			Rationale: "Opioids in patients with recurrent falls: sedation and postural instability",
		},
		{
			RuleID:    "D8",
			DrugClass: "oxybutynin, tolterodine, solifenacin",
			Condition: "dementia",
			Rationale: "Anticholinergic bladder antispasmodics worsen cognition in dementia",
		},
		{
			RuleID:    "D14",
			DrugClass: "diphenhydramine, chlorpheniramine, hydroxyzine, promethazine",
			Condition: "any",
			Rationale: "First-generation antihistamines: safer alternatives exist; sedation and anticholinergic effects",
		},
		{
			RuleID:    "C11",
			DrugClass: "aspirin, clopidogrel, warfarin, apixaban, rivaroxaban, dabigatran",
			Condition: "bleeding",
			Rationale: "Antithrombotics with concurrent significant bleeding risk",
		},
		{
			RuleID:    "J1",
			DrugClass: "glyburide, glibenclamide",
			Condition: "diabetes",
			Rationale: "Long-acting sulfonylureas in type 2 diabetes risk prolonged hypoglycemia",
		},
		{
			RuleID:    "F2",
			DrugClass: "omeprazole, pantoprazole, esomeprazole, lansoprazole",
			Condition: "any",
			Rationale: "PPI at full therapeutic dose beyond 8 weeks without clear indication",
		},
	}
}

// START criteria: conditions that warrant a therapy the patient is not
// receiving.
func startCriteria() []domain.STARTCriterion {
	return []domain.STARTCriterion{
		{
			RuleID:         "A1",
			Condition:      "atrial fibrillation",
			DrugClass:      "anticoagulant",
			Recommendation: "Oral anticoagulation indicated for chronic atrial fibrillation",
		},
		{
			RuleID:         "A5",
			Condition:      "ischaemic heart disease",
			DrugClass:      "statin",
			Recommendation: "Statin therapy with a documented history of coronary, cerebral or peripheral vascular disease",
		},
		{
			RuleID:         "A6",
			Condition:      "heart failure",
			DrugClass:      "ace inhibitor",
			Recommendation: "ACE inhibitor with systolic heart failure",
		},
		{
			RuleID:         "E3",
			Condition:      "osteoporosis",
			DrugClass:      "vitamin d",
			Recommendation: "Vitamin D and calcium supplementation with known osteoporosis",
		},
		{
			RuleID:         "E4",
			Condition:      "osteoporosis",
			DrugClass:      "bisphosphonate",
			Recommendation: "Bone anti-resorptive therapy with documented osteoporosis where no contraindication exists",
		},
		{
			RuleID:         "B1",
			Condition:      "copd",
			DrugClass:      "bronchodilator",
			Recommendation: "Regular inhaled bronchodilator for mild to moderate COPD",
		},
	}
}

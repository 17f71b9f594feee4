package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// Renal contraindication thresholds keyed by lowercase drug name fragment.
// A medication is flagged when the patient's eGFR falls below MinEGFR.
func renalContraindications() map[string]domain.RenalRule {
	return map[string]domain.RenalRule{
		"metformin": {
			MinEGFR:   30,
			Action:    "STOP",
			Rationale: "Risk of lactic acidosis below eGFR 30",
		},
		"dabigatran": {
			MinEGFR:   30,
			Action:    "STOP",
			Rationale: "Accumulation and major bleeding risk below eGFR 30",
		},
		"rivaroxaban": {
			MinEGFR:   15,
			Action:    "STOP",
			Rationale: "Contraindicated below eGFR 15",
		},
		"apixaban": {
			MinEGFR:   15,
			Action:    "STOP",
			Rationale: "Contraindicated below eGFR 15",
		},
		"nsaid": {
			MinEGFR:   50,
			Action:    "STOP",
			Rationale: "Risk of acute kidney injury below eGFR 50",
		},
		"ibuprofen": {
			MinEGFR:   50,
			Action:    "STOP",
			Rationale: "Risk of acute kidney injury below eGFR 50",
		},
		"diclofenac": {
			MinEGFR:   50,
			Action:    "STOP",
			Rationale: "Risk of acute kidney injury below eGFR 50",
		},
		"naproxen": {
			MinEGFR:   50,
			Action:    "STOP",
			Rationale: "Risk of acute kidney injury below eGFR 50",
		},
		"colchicine": {
			MinEGFR:   10,
			Action:    "STOP",
			Rationale: "Severe toxicity in advanced renal failure",
		},
		"digoxin": {
			MinEGFR:   30,
			Action:    "REDUCE DOSE",
			Rationale: "Reduced clearance; dose reduction and level monitoring required below eGFR 30",
		},
		"gabapentin": {
			MinEGFR:   60,
			Action:    "REDUCE DOSE",
			Rationale: "Renally cleared; dose adjustment required below eGFR 60",
		},
		"pregabalin": {
			MinEGFR:   60,
			Action:    "REDUCE DOSE",
			Rationale: "Renally cleared; dose adjustment required below eGFR 60",
		},
	}
}

// Hepatic caution thresholds keyed by lowercase drug name fragment,
// expressed as a multiple of the transaminase upper limit of normal.
func hepaticCautions() map[string]domain.HepaticRule {
	return map[string]domain.HepaticRule{
		"methotrexate": {
			MaxULNMultiple: 2.0,
			Rationale:      "Hepatotoxic; hold with transaminases above 2x ULN",
		},
		"statin": {
			MaxULNMultiple: 3.0,
			Rationale:      "Discontinue with persistent transaminases above 3x ULN",
		},
		"atorvastatin": {
			MaxULNMultiple: 3.0,
			Rationale:      "Discontinue with persistent transaminases above 3x ULN",
		},
		"simvastatin": {
			MaxULNMultiple: 3.0,
			Rationale:      "Discontinue with persistent transaminases above 3x ULN",
		},
		"rosuvastatin": {
			MaxULNMultiple: 3.0,
			Rationale:      "Discontinue with persistent transaminases above 3x ULN",
		},
		"paracetamol": {
			MaxULNMultiple: 2.0,
			Rationale:      "Reduce maximum daily dose in hepatic impairment",
		},
		"acetaminophen": {
			MaxULNMultiple: 2.0,
			Rationale:      "Reduce maximum daily dose in hepatic impairment",
		},
		"amiodarone": {
			MaxULNMultiple: 2.0,
			Rationale:      "Hepatotoxic; review with transaminases above 2x ULN",
		},
		"isoniazid": {
			MaxULNMultiple: 2.0,
			Rationale:      "Hepatotoxic; hold with transaminases above 2x ULN",
		},
		"valproate": {
			MaxULNMultiple: 2.0,
			Rationale:      "Hepatotoxic; review with transaminases above 2x ULN",
		},
		"azathioprine": {
			MaxULNMultiple: 2.0,
			Rationale:      "Hepatotoxic; review with transaminases above 2x ULN",
		},
	}
}

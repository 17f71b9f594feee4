package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// Pharmacological subclass membership: class name -> lowercase member
// generic names. Used by the therapeutic duplication detector.
func drugClasses() map[string][]string {
	return map[string][]string{
		"sulfonylureas": {
			"glimepiride", "glipizide", "glyburide", "glibenclamide", "gliclazide",
		},
		"biguanides": {
			"metformin",
		},
		"dpp4_inhibitors": {
			"sitagliptin", "saxagliptin", "linagliptin", "vildagliptin", "alogliptin",
		},
		"sglt2_inhibitors": {
			"empagliflozin", "dapagliflozin", "canagliflozin", "ertugliflozin",
		},
		"glp1_agonists": {
			"liraglutide", "semaglutide", "dulaglutide", "exenatide",
		},
		"thiazolidinediones": {
			"pioglitazone", "rosiglitazone",
		},
		"insulin": {
			"insulin glargine", "insulin detemir", "insulin degludec",
			"insulin aspart", "insulin lispro", "insulin regular", "insulin nph",
		},
		"ace_inhibitors": {
			"lisinopril", "enalapril", "ramipril", "captopril", "perindopril", "benazepril",
		},
		"arbs": {
			"losartan", "valsartan", "telmisartan", "irbesartan", "olmesartan", "candesartan",
		},
		"beta_blockers": {
			"metoprolol", "atenolol", "bisoprolol", "carvedilol", "propranolol", "nebivolol",
		},
		"calcium_channel_blockers": {
			"amlodipine", "nifedipine", "diltiazem", "verapamil", "felodipine",
		},
		"diuretics": {
			"furosemide", "hydrochlorothiazide", "chlorthalidone", "spironolactone",
			"torsemide", "indapamide",
		},
		"anticoagulants": {
			"warfarin", "apixaban", "rivaroxaban", "dabigatran", "edoxaban", "enoxaparin",
		},
		"antiplatelets": {
			"aspirin", "clopidogrel", "ticagrelor", "prasugrel", "dipyridamole",
		},
		"statins": {
			"atorvastatin", "simvastatin", "rosuvastatin", "pravastatin",
			"lovastatin", "pitavastatin",
		},
		"ssris": {
			"sertraline", "escitalopram", "citalopram", "fluoxetine", "paroxetine", "fluvoxamine",
		},
		"snris": {
			"venlafaxine", "desvenlafaxine", "duloxetine",
		},
		"tricyclics": {
			"amitriptyline", "nortriptyline", "imipramine", "doxepin", "clomipramine",
		},
		"benzodiazepines": {
			"diazepam", "lorazepam", "alprazolam", "clonazepam", "temazepam",
			"oxazepam", "chlordiazepoxide",
		},
		"ppis": {
			"omeprazole", "pantoprazole", "esomeprazole", "lansoprazole", "rabeprazole",
		},
		"nsaids": {
			"ibuprofen", "naproxen", "diclofenac", "celecoxib", "indomethacin",
			"meloxicam", "ketorolac",
		},
	}
}

// Therapeutic groupings of the subclasses above. Two or more medications
// landing in the same category triggers a duplication review.
func therapeuticCategories() []domain.TherapeuticCategory {
	return []domain.TherapeuticCategory{
		{
			Name: "antidiabetic",
			Classes: []string{
				"sulfonylureas", "biguanides", "dpp4_inhibitors", "sglt2_inhibitors",
				"glp1_agonists", "thiazolidinediones", "insulin",
			},
		},
		{
			Name: "antihypertensive",
			Classes: []string{
				"ace_inhibitors", "arbs", "beta_blockers",
				"calcium_channel_blockers", "diuretics",
			},
		},
		{
			Name:    "anticoagulation",
			Classes: []string{"anticoagulants", "antiplatelets"},
		},
		{
			Name:    "lipid_lowering",
			Classes: []string{"statins"},
		},
		{
			Name:    "antidepressant",
			Classes: []string{"ssris", "snris", "tricyclics"},
		},
		{
			Name:    "sedative",
			Classes: []string{"benzodiazepines"},
		},
		{
			Name:    "gastric_protection",
			Classes: []string{"ppis"},
		},
		{
			Name:    "anti_inflammatory",
			Classes: []string{"nsaids"},
		},
	}
}

package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// Curated herb-drug interaction pairs with published evidence
func knownHerbInteractions() []domain.KnownHerbInteraction {
	return []domain.KnownHerbInteraction{
		{
			Herb:           "ashwagandha",
			HerbAliases:    []string{"withania somnifera"},
			DrugPatterns:   []string{"levothyroxine", "thyroxine"},
			Severity:       "Moderate",
			Mechanism:      "May increase endogenous thyroid hormone levels",
			ClinicalEffect: "Additive thyroid effect; risk of thyrotoxicosis symptoms",
			Recommendation: "Monitor TSH within 6-8 weeks; counsel on palpitations and tremor",
		},
		{
			Herb:           "turmeric",
			HerbAliases:    []string{"curcumin", "haldi"},
			DrugPatterns:   []string{"warfarin", "apixaban", "rivaroxaban", "dabigatran", "aspirin", "clopidogrel"},
			Severity:       "Major",
			Mechanism:      "Antiplatelet activity and CYP-mediated potentiation of anticoagulants",
			ClinicalEffect: "Increased bleeding risk",
			Recommendation: "Avoid combination or monitor INR/bleeding signs closely",
		},
		{
			Herb:           "garlic",
			HerbAliases:    []string{"allium sativum", "lahsun"},
			DrugPatterns:   []string{"warfarin", "apixaban", "rivaroxaban", "aspirin", "clopidogrel"},
			Severity:       "Major",
			Mechanism:      "Inhibits platelet aggregation",
			ClinicalEffect: "Increased bleeding risk with antithrombotics",
			Recommendation: "Avoid high-dose supplements; dietary amounts acceptable",
		},
		{
			Herb:           "ginkgo",
			HerbAliases:    []string{"ginkgo biloba"},
			DrugPatterns:   []string{"warfarin", "aspirin", "clopidogrel", "apixaban", "rivaroxaban"},
			Severity:       "Major",
			Mechanism:      "Platelet-activating factor antagonism",
			ClinicalEffect: "Spontaneous bleeding reported with antithrombotics",
			Recommendation: "Avoid combination",
		},
		{
			Herb:           "fenugreek",
			HerbAliases:    []string{"methi"},
			DrugPatterns:   []string{"warfarin", "aspirin", "metformin", "glimepiride", "glipizide", "insulin"},
			Severity:       "Major",
			Mechanism:      "Coumarin constituents and hypoglycemic activity",
			ClinicalEffect: "Bleeding potentiation with anticoagulants; additive hypoglycemia with antidiabetics",
			Recommendation: "Avoid with anticoagulants; intensify glucose monitoring with antidiabetics",
		},
		{
			Herb:           "licorice",
			HerbAliases:    []string{"mulethi", "glycyrrhiza"},
			DrugPatterns:   []string{"digoxin"},
			Severity:       "Major",
			Mechanism:      "Glycyrrhizin-induced hypokalemia sensitizes to digoxin",
			ClinicalEffect: "Digoxin toxicity risk",
			Recommendation: "Avoid combination; check potassium and digoxin level if used",
		},
		{
			Herb:           "karela",
			HerbAliases:    []string{"bitter melon", "bitter gourd", "momordica"},
			DrugPatterns:   []string{"metformin", "glimepiride", "glipizide", "insulin", "sitagliptin"},
			Severity:       "Moderate",
			Mechanism:      "Insulin-like hypoglycemic constituents",
			ClinicalEffect: "Additive hypoglycemia with antidiabetic drugs",
			Recommendation: "Increase glucose self-monitoring; counsel on hypoglycemia symptoms",
		},
		{
			Herb:           "brahmi",
			HerbAliases:    []string{"bacopa monnieri"},
			DrugPatterns:   []string{"diazepam", "lorazepam", "alprazolam", "zolpidem", "amitriptyline"},
			Severity:       "Moderate",
			Mechanism:      "GABAergic and cholinergic activity",
			ClinicalEffect: "Additive sedation with CNS depressants",
			Recommendation: "Counsel on sedation; avoid driving until tolerance established",
		},
		{
			Herb:           "st john's wort",
			HerbAliases:    []string{"hypericum"},
			DrugPatterns:   []string{"sertraline", "escitalopram", "citalopram", "fluoxetine", "warfarin", "digoxin"},
			Severity:       "Major",
			Mechanism:      "Potent CYP3A4/P-gp induction; serotonergic activity",
			ClinicalEffect: "Serotonin syndrome with SSRIs; reduced levels of narrow-index drugs",
			Recommendation: "Avoid combination",
		},
	}
}

// Herb pharmacological activity profiles used to simulate interactions
// not present in the curated table. Simulated findings are always labeled
// with low evidence strength.
func herbProfiles() []domain.HerbProfile {
	return []domain.HerbProfile{
		{Herb: "ashwagandha", Aliases: []string{"withania somnifera"}, Profiles: []string{"sedative", "thyroid_stimulation"}},
		{Herb: "turmeric", Aliases: []string{"curcumin", "haldi"}, Profiles: []string{"anticoagulant_potentiation", "cyp3a4_inhibition"}},
		{Herb: "garlic", Aliases: []string{"lahsun"}, Profiles: []string{"anticoagulant_potentiation", "hypotensive"}},
		{Herb: "ginkgo", Aliases: []string{"ginkgo biloba"}, Profiles: []string{"anticoagulant_potentiation"}},
		{Herb: "fenugreek", Aliases: []string{"methi"}, Profiles: []string{"anticoagulant_potentiation", "hypoglycemic"}},
		{Herb: "karela", Aliases: []string{"bitter melon", "bitter gourd"}, Profiles: []string{"hypoglycemic"}},
		{Herb: "brahmi", Aliases: []string{"bacopa monnieri"}, Profiles: []string{"sedative"}},
		{Herb: "licorice", Aliases: []string{"mulethi"}, Profiles: []string{"hypotensive_reversal", "hypokalemia"}},
		{Herb: "arjuna", Aliases: []string{"terminalia arjuna"}, Profiles: []string{"hypotensive"}},
		{Herb: "tulsi", Aliases: []string{"holy basil"}, Profiles: []string{"hypoglycemic", "anticoagulant_potentiation"}},
		{Herb: "ginger", Aliases: []string{"adrak"}, Profiles: []string{"anticoagulant_potentiation"}},
		{Herb: "valerian", Profiles: []string{"sedative"}},
	}
}

// Profile-against-drug-class rules backing the simulated interactions
func profileRules() []domain.ProfileInteractionRule {
	return []domain.ProfileInteractionRule{
		{
			Profile:        "anticoagulant_potentiation",
			DrugPatterns:   []string{"warfarin", "apixaban", "rivaroxaban", "dabigatran", "aspirin", "clopidogrel", "enoxaparin"},
			Severity:       "Major",
			Mechanism:      "Predicted additive antithrombotic activity",
			ClinicalEffect: "Potentially increased bleeding risk",
			Recommendation: "Review combination; monitor for bruising and bleeding",
		},
		{
			Profile:        "sedative",
			DrugPatterns:   []string{"diazepam", "lorazepam", "alprazolam", "clonazepam", "zolpidem", "morphine", "oxycodone", "tramadol", "amitriptyline", "quetiapine"},
			Severity:       "Moderate",
			Mechanism:      "Predicted additive CNS depression",
			ClinicalEffect: "Increased sedation and fall risk",
			Recommendation: "Counsel on sedation; reassess need for both agents",
		},
		{
			Profile:        "hypoglycemic",
			DrugPatterns:   []string{"metformin", "glimepiride", "glipizide", "glyburide", "insulin", "sitagliptin", "empagliflozin"},
			Severity:       "Moderate",
			Mechanism:      "Predicted additive glucose-lowering effect",
			ClinicalEffect: "Hypoglycemia risk",
			Recommendation: "Intensify glucose monitoring",
		},
		{
			Profile:        "hypotensive",
			DrugPatterns:   []string{"lisinopril", "enalapril", "ramipril", "losartan", "valsartan", "amlodipine", "metoprolol", "furosemide", "doxazosin"},
			Severity:       "Moderate",
			Mechanism:      "Predicted additive blood pressure lowering",
			ClinicalEffect: "Orthostatic hypotension and fall risk",
			Recommendation: "Monitor standing blood pressure",
		},
		{
			Profile:        "cyp3a4_inhibition",
			DrugPatterns:   []string{"simvastatin", "atorvastatin", "amlodipine", "diltiazem", "quetiapine"},
			Severity:       "Moderate",
			Mechanism:      "Predicted CYP3A4-mediated exposure increase",
			ClinicalEffect: "Elevated drug levels and dose-dependent adverse effects",
			Recommendation: "Watch for substrate toxicity; consider dose review",
		},
	}
}

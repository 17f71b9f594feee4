package tables

import (
	"github.com/deprescribing-cds-server/internal/domain"
)

// Beers criteria for potentially inappropriate medication use in adults
// aged 65 and older. Drug patterns are lowercase fragments matched
// bidirectionally against medication names.
func beersCriteria() []domain.BeersCriterion {
	return []domain.BeersCriterion{
		{
			DrugPattern:    "diazepam",
			Concern:        "Long-acting benzodiazepine: increased sensitivity, slower metabolism, risk of cognitive impairment, delirium, falls and fractures",
			Recommendation: "Avoid; taper gradually if discontinuing after chronic use",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "lorazepam",
			Concern:        "Benzodiazepine: risk of cognitive impairment, delirium, falls and fractures in older adults",
			Recommendation: "Avoid; taper gradually if discontinuing after chronic use",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "alprazolam",
			Concern:        "Benzodiazepine: risk of cognitive impairment, delirium, falls and fractures in older adults",
			Recommendation: "Avoid; taper gradually if discontinuing after chronic use",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "clonazepam",
			Concern:        "Long-acting benzodiazepine: accumulation and prolonged sedation in older adults",
			Recommendation: "Avoid; taper gradually if discontinuing after chronic use",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "zolpidem",
			Concern:        "Z-drug hypnotic: adverse events similar to benzodiazepines (delirium, falls, fractures) with minimal sleep improvement",
			Recommendation: "Avoid chronic use; consider sleep hygiene measures",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "diphenhydramine",
			Concern:        "First-generation antihistamine: highly anticholinergic, risk of confusion, dry mouth, constipation",
			Recommendation: "Avoid; use a non-anticholinergic alternative",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "ibuprofen",
			Qualifier:      "chronic use",
			Concern:        "Chronic NSAID use: increased risk of GI bleeding, peptic ulcer disease and acute kidney injury",
			Recommendation: "Avoid chronic use unless alternatives are ineffective and gastroprotection is prescribed",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "naproxen",
			Qualifier:      "chronic use",
			Concern:        "Chronic NSAID use: increased risk of GI bleeding, peptic ulcer disease and acute kidney injury",
			Recommendation: "Avoid chronic use unless alternatives are ineffective and gastroprotection is prescribed",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "glyburide",
			Concern:        "Long-acting sulfonylurea: higher risk of severe prolonged hypoglycemia in older adults",
			Recommendation: "Avoid; prefer a shorter-acting agent",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "glibenclamide",
			Concern:        "Long-acting sulfonylurea: higher risk of severe prolonged hypoglycemia in older adults",
			Recommendation: "Avoid; prefer a shorter-acting agent",
			Severity:       domain.SeverityHigh,
		},
		{
			DrugPattern:    "digoxin",
			Qualifier:      "doses >0.125mg/day",
			Concern:        "Reduced renal clearance raises toxicity risk; higher doses add no benefit in heart failure",
			Recommendation: "Avoid doses above 0.125mg/day; monitor levels and renal function",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "omeprazole",
			Qualifier:      "use >8 weeks",
			Concern:        "Prolonged PPI use: risk of C. difficile infection, bone loss and fractures",
			Recommendation: "Avoid use beyond 8 weeks without a documented indication; consider step-down",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "pantoprazole",
			Qualifier:      "use >8 weeks",
			Concern:        "Prolonged PPI use: risk of C. difficile infection, bone loss and fractures",
			Recommendation: "Avoid use beyond 8 weeks without a documented indication; consider step-down",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "cyclobenzaprine",
			Concern:        "Skeletal muscle relaxant: anticholinergic effects, sedation, fracture risk; questionable effectiveness at tolerated doses",
			Recommendation: "Avoid",
			Severity:       domain.SeverityModerate,
		},
		{
			DrugPattern:    "amitriptyline",
			Concern:        "Tertiary tricyclic antidepressant: highly anticholinergic, sedating, causes orthostatic hypotension",
			Recommendation: "Avoid; prefer an SSRI or SNRI with lower anticholinergic burden",
			Severity:       domain.SeverityHigh,
		},
	}
}

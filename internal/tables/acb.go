package tables

// Anticholinergic Cognitive Burden scale scores keyed by lowercase generic
// name. Score 3 drugs carry definite central anticholinergic activity;
// score 1 drugs have possible activity.
func acbScores() map[string]int {
	scores := map[string]int{}

	acb3 := []string{
		"amitriptyline", "atropine", "benztropine", "chlorpheniramine",
		"chlorpromazine", "clomipramine", "clozapine", "darifenacin",
		"dicyclomine", "diphenhydramine", "doxepin", "fesoterodine",
		"flavoxate", "hydroxyzine", "hyoscyamine", "imipramine",
		"meclizine", "nortriptyline", "olanzapine", "orphenadrine",
		"oxybutynin", "paroxetine", "perphenazine", "promethazine",
		"quetiapine", "scopolamine", "solifenacin", "thioridazine",
		"tolterodine", "trifluoperazine", "trihexyphenidyl", "trospium",
	}
	acb2 := []string{
		"amantadine", "belladonna", "carbamazepine", "cyclobenzaprine",
		"cyproheptadine", "loxapine", "meperidine", "methotrimeprazine",
		"molindone", "nefopam", "oxcarbazepine", "pimozide",
	}
	acb1 := []string{
		"alprazolam", "aripiprazole", "atenolol", "bupropion", "captopril",
		"cetirizine", "chlorthalidone", "cimetidine", "clorazepate",
		"codeine", "colchicine", "desloratadine", "diazepam", "digoxin",
		"dipyridamole", "disopyramide", "fentanyl", "furosemide",
		"fluvoxamine", "haloperidol", "hydralazine", "hydrocortisone",
		"isosorbide", "loperamide", "loratadine", "metoprolol",
		"morphine", "nifedipine", "paliperidone", "prednisone",
		"quinidine", "ranitidine", "risperidone", "theophylline",
		"trazodone", "triamterene", "venlafaxine", "warfarin",
	}

	for _, d := range acb3 {
		scores[d] = 3
	}
	for _, d := range acb2 {
		scores[d] = 2
	}
	for _, d := range acb1 {
		scores[d] = 1
	}
	return scores
}

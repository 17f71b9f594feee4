package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// AnalyzerService orchestrates the deprescribing analysis pipeline: derive
// labs, fan the rule engines out concurrently, route their flags to
// medications, run the priority cascade and assemble the report.
type AnalyzerService struct {
	logger *logrus.Logger

	acb         *ACBEngine
	beers       *BeersEngine
	stopp       *STOPPEngine
	organ       *OrganEngine
	duplication *DuplicationEngine
	herb        *HerbEngine
	ttb         *TTBEngine
	gender      *GenderEngine

	taper   *TaperGenerator
	tables  *domain.RuleTables
	matcher lexical.Matcher

	transaminaseULN float64
}

// NewAnalyzerService wires the engines together
func NewAnalyzerService(
	logger *logrus.Logger,
	tables *domain.RuleTables,
	matcher lexical.Matcher,
	classifier domain.DrugClassifier,
	scheduler domain.ScheduleGenerator,
	transaminaseULN float64,
) *AnalyzerService {
	return &AnalyzerService{
		logger:          logger,
		acb:             NewACBEngine(logger, tables, matcher),
		beers:           NewBeersEngine(logger, tables, matcher),
		stopp:           NewSTOPPEngine(logger, tables, matcher),
		organ:           NewOrganEngine(logger, tables, matcher, transaminaseULN),
		duplication:     NewDuplicationEngine(logger, tables, matcher, classifier),
		herb:            NewHerbEngine(logger, tables, matcher),
		ttb:             NewTTBEngine(logger, tables, matcher),
		gender:          NewGenderEngine(logger, tables, matcher),
		taper:           NewTaperGenerator(logger, tables, classifier, scheduler),
		tables:          tables,
		matcher:         matcher,
		transaminaseULN: transaminaseULN,
	}
}

// engineResults collects the concurrent engine outputs
type engineResults struct {
	acb          *ACBResult
	beers        []domain.Flag
	stopp        []domain.Flag
	startRecs    []string
	organ        []domain.Flag
	duplication  []domain.Flag
	interactions []domain.HerbDrugInteraction
	ttb          []domain.Flag
	gender       []domain.Flag
}

// AnalyzePatient implements domain.PatientAnalyzer
func (s *AnalyzerService) AnalyzePatient(ctx context.Context, input *domain.PatientInput) (*domain.AnalyzePatientResponse, error) {
	startTime := time.Now()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	analysisID := uuid.New().String()
	s.logger.WithFields(logrus.Fields{
		"analysis_id": analysisID,
		"age":         input.Age,
		"medications": len(input.Medications),
		"herbs":       len(input.Herbs),
	}).Info("Starting patient analysis")

	// Step 1: Derive clinical scores from labs
	labs := s.deriveLabs(input)

	// Step 2: Run the rule engines concurrently
	results := s.runEngines(ctx, input, labs)

	// Step 3: Route flags to medications and run the priority cascade
	analyses := s.buildMedicationAnalyses(ctx, input, results)

	// Step 4: Herb verdicts from their interaction severities
	analyses = append(analyses, s.buildHerbAnalyses(input.Herbs, results.interactions)...)

	// Step 5: Assemble report surfaces
	response := &domain.AnalyzePatientResponse{
		AnalysisID:                 analysisID,
		PatientSummary:             s.buildPatientSummary(input, labs),
		MedicationAnalyses:         analyses,
		PrioritySummary:            prioritySummary(analyses),
		TaperingSchedules:          flattenSchedules(analyses),
		MonitoringPlans:            s.buildMonitoringPlans(analyses),
		HerbDrugInteractions:       results.interactions,
		ClinicalRecommendations:    s.buildClinicalRecommendations(input, analyses, results),
		SafetyAlerts:               s.buildSafetyAlerts(analyses, results),
		GlobalStartRecommendations: results.startRecs,
		ProcessingTime:             time.Since(startTime),
		GeneratedAt:                time.Now().UTC(),
	}

	s.logger.WithFields(logrus.Fields{
		"analysis_id":     analysisID,
		"red":             response.PrioritySummary[domain.RED],
		"yellow":          response.PrioritySummary[domain.YELLOW],
		"green":           response.PrioritySummary[domain.GREEN],
		"interactions":    len(response.HerbDrugInteractions),
		"processing_time": response.ProcessingTime,
	}).Info("Patient analysis completed")

	return response, nil
}

// CheckInteractions implements the standalone herb-drug interaction check
func (s *AnalyzerService) CheckInteractions(ctx context.Context, req *domain.InteractionCheckRequest) (*domain.InteractionCheckResponse, error) {
	if len(req.Herbs) == 0 || len(req.Medications) == 0 {
		return nil, domain.NewValidationError("herbs/medications", "both herb and medication lists are required", nil)
	}

	interactions := s.herb.Evaluate(req.Herbs, req.Medications)

	response := &domain.InteractionCheckResponse{
		TotalInteractions: len(interactions),
		Interactions:      interactions,
	}
	for _, interaction := range interactions {
		switch interaction.Severity {
		case "Major":
			response.MajorInteractions++
		case "Moderate":
			response.ModerateInteractions++
		default:
			response.MinorInteractions++
		}
	}

	switch {
	case response.MajorInteractions > 0:
		response.OverallRiskAssessment = "HIGH: major herb-drug interactions present"
		response.Recommendations = append(response.Recommendations,
			"Review major interactions with the prescriber before continuing these combinations")
	case response.ModerateInteractions > 0:
		response.OverallRiskAssessment = "MODERATE: interactions require monitoring"
		response.Recommendations = append(response.Recommendations,
			"Continue with enhanced monitoring as listed per interaction")
	default:
		response.OverallRiskAssessment = "LOW: no significant interactions identified"
		response.Recommendations = append(response.Recommendations,
			"No changes needed; reassess when new supplements are added")
	}

	return response, nil
}

// deriveLabs runs the clinical calculators over the raw lab values
func (s *AnalyzerService) deriveLabs(input *domain.PatientInput) *domain.DerivedLabs {
	labs := &domain.DerivedLabs{
		EGFR: EstimateGFR(input.Age, input.Gender, input.SerumCreatinineMgDl),
		MELD: MELDScore(input.SerumBilirubinMgDl, input.INR, input.SerumCreatinineMgDl),
	}
	labs.MELDNa = MELDNaScore(labs.MELD, input.SerumSodiumMmolL)
	return labs
}

// runEngines fans the independent rule engines out on goroutines and
// collects their results. Engines only read shared state, so the fan-out
// needs no locking beyond the done channel.
func (s *AnalyzerService) runEngines(ctx context.Context, input *domain.PatientInput, labs *domain.DerivedLabs) *engineResults {
	results := &engineResults{}
	done := make(chan struct{}, 8)

	herbNames := make([]string, len(input.Herbs))
	for i, h := range input.Herbs {
		herbNames[i] = h.GenericName
	}
	medNames := make([]string, len(input.Medications))
	for i, m := range input.Medications {
		medNames[i] = m.GenericName
	}

	go func() { results.acb = s.acb.Evaluate(input.Medications); done <- struct{}{} }()
	go func() { results.beers = s.beers.Evaluate(input.Age, input.Medications); done <- struct{}{} }()
	go func() {
		results.stopp = s.stopp.Evaluate(input, labs.EGFR)
		results.startRecs = s.stopp.EvaluateSTART(input, labs.EGFR)
		done <- struct{}{}
	}()
	go func() {
		results.organ = s.organ.Evaluate(input.Medications, labs.EGFR, input.ASTUl, input.ALTUl)
		done <- struct{}{}
	}()
	go func() { results.duplication = s.duplication.Evaluate(ctx, input.Medications); done <- struct{}{} }()
	go func() { results.interactions = s.herb.Evaluate(herbNames, medNames); done <- struct{}{} }()
	go func() { results.ttb = s.ttb.Evaluate(input.Medications, input.LifeExpectancy); done <- struct{}{} }()
	go func() { results.gender = s.gender.Evaluate(input.Medications, input.Gender); done <- struct{}{} }()

	for i := 0; i < 8; i++ {
		<-done
	}

	return results
}

// medicationContext carries everything the cascade needs for one drug
type medicationContext struct {
	medication   domain.Medication
	flags        []domain.Flag
	acbDrugScore int
}

// priorityRule is one ordered entry of the verdict cascade. Rules are
// evaluated top to bottom; the first predicate that fires decides the
// category.
type priorityRule struct {
	name      string
	category  domain.RiskCategory
	predicate func(mc *medicationContext) bool
}

// cascade returns the ordered verdict rules
func (s *AnalyzerService) cascade() []priorityRule {
	return []priorityRule{
		{
			name:     "high anticholinergic score",
			category: domain.RED,
			predicate: func(mc *medicationContext) bool {
				return mc.acbDrugScore >= 3
			},
		},
		{
			name:     "explicit criteria match",
			category: domain.RED,
			predicate: func(mc *medicationContext) bool {
				return hasFlagFrom(mc.flags, domain.SourceSTOPP) || hasFlagFrom(mc.flags, domain.SourceBeers)
			},
		},
		{
			name:     "organ contraindication",
			category: domain.RED,
			predicate: func(mc *medicationContext) bool {
				for _, f := range mc.flags {
					if (f.Source == domain.SourceOrganRenal || f.Source == domain.SourceOrganHepatic) &&
						f.Severity == domain.SeverityHigh {
						return true
					}
				}
				return false
			},
		},
		{
			name:     "major herb interaction",
			category: domain.RED,
			predicate: func(mc *medicationContext) bool {
				for _, f := range mc.flags {
					if f.Source == domain.SourceHerb && f.Severity == domain.SeverityHigh {
						return true
					}
				}
				return false
			},
		},
		{
			name:     "time to benefit exceeded",
			category: domain.RED,
			predicate: func(mc *medicationContext) bool {
				return hasFlagFrom(mc.flags, domain.SourceTTB)
			},
		},
		{
			name:     "therapeutic duplication",
			category: domain.YELLOW,
			predicate: func(mc *medicationContext) bool {
				return hasFlagFrom(mc.flags, domain.SourceDuplication)
			},
		},
		{
			name:     "anticholinergic contributor",
			category: domain.YELLOW,
			predicate: func(mc *medicationContext) bool {
				return mc.acbDrugScore >= 1
			},
		},
		{
			name:     "multiple findings",
			category: domain.YELLOW,
			predicate: func(mc *medicationContext) bool {
				return len(mc.flags) >= 2
			},
		},
	}
}

// categorize runs the cascade; no rule firing means GREEN
func (s *AnalyzerService) categorize(mc *medicationContext) domain.RiskCategory {
	for _, rule := range s.cascade() {
		if rule.predicate(mc) {
			s.logger.WithFields(logrus.Fields{
				"medication": mc.medication.GenericName,
				"rule":       rule.name,
				"category":   rule.category,
			}).Debug("Priority cascade rule fired")
			return rule.category
		}
	}
	return domain.GREEN
}

// riskScore computes the 1-10 numeric score: a category base plus the
// drug's own ACB score plus the flag count, clamped into range.
func riskScore(category domain.RiskCategory, acbDrugScore, flagCount int) int {
	base := 2
	switch category {
	case domain.YELLOW:
		base = 5
	case domain.RED:
		base = 8
	}

	score := base + acbDrugScore + flagCount
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

// buildMedicationAnalyses routes flags to medications and produces the
// per-medication verdicts, including taper plans where discontinuation is
// on the table.
func (s *AnalyzerService) buildMedicationAnalyses(ctx context.Context, input *domain.PatientInput, results *engineResults) []domain.MedicationAnalysis {
	herbFlags := s.herb.FlagsFor(results.interactions)

	allFlags := make([]domain.Flag, 0,
		len(results.acb.Flags)+len(results.beers)+len(results.stopp)+
			len(results.organ)+len(results.duplication)+len(herbFlags)+
			len(results.ttb)+len(results.gender))
	allFlags = append(allFlags, results.acb.Flags...)
	allFlags = append(allFlags, results.beers...)
	allFlags = append(allFlags, results.stopp...)
	allFlags = append(allFlags, results.organ...)
	allFlags = append(allFlags, results.duplication...)
	allFlags = append(allFlags, herbFlags...)
	allFlags = append(allFlags, results.ttb...)
	allFlags = append(allFlags, results.gender...)

	analyses := make([]domain.MedicationAnalysis, 0, len(input.Medications))
	for _, med := range input.Medications {
		mc := &medicationContext{
			medication:   med,
			flags:        s.flagsForMedication(med.GenericName, allFlags),
			acbDrugScore: results.acb.PerDrug[med.GenericName],
		}

		category := s.categorize(mc)
		analysis := domain.MedicationAnalysis{
			Name:               med.GenericName,
			Type:               "allopathic",
			RiskCategory:       category,
			RiskScore:          riskScore(category, mc.acbDrugScore, len(mc.flags)),
			Flags:              flagDescriptions(mc.flags),
			Recommendations:    recommendations(category, mc.flags),
			MonitoringRequired: monitoringItems(category, mc.flags),
		}

		if s.taperNeeded(category) {
			analysis.TaperRequired = true
			analysis.TaperPlan = s.taper.GenerateTaperPlan(ctx, &domain.TaperPlanRequest{
				DrugName:             med.GenericName,
				CurrentDose:          med.Dose,
				DurationOnMedication: med.Duration,
				PatientAge:           input.Age,
				PatientCFSScore:      input.CFSScore,
				Comorbidities:        input.Comorbidities,
			})
		}

		analyses = append(analyses, analysis)
	}
	return analyses
}

// flagsForMedication matches flags to a drug. Flags whose Medication field
// holds a comma-separated drug-class list (STOPP criteria) are routed by
// matching each fragment.
func (s *AnalyzerService) flagsForMedication(name string, flags []domain.Flag) []domain.Flag {
	var matched []domain.Flag
	for _, flag := range flags {
		for _, fragment := range strings.Split(flag.Medication, ",") {
			if s.matcher.Match(strings.TrimSpace(fragment), name) {
				matched = append(matched, flag)
				break
			}
		}
	}
	return matched
}

// taperNeeded decides whether a discontinuation plan should accompany the
// verdict: every RED and YELLOW medication gets one.
func (s *AnalyzerService) taperNeeded(category domain.RiskCategory) bool {
	return category == domain.RED || category == domain.YELLOW
}

// buildHerbAnalyses produces verdicts for the herbal products from their
// interaction severities.
func (s *AnalyzerService) buildHerbAnalyses(herbs []domain.HerbalProduct, interactions []domain.HerbDrugInteraction) []domain.MedicationAnalysis {
	analyses := make([]domain.MedicationAnalysis, 0, len(herbs))
	for _, herb := range herbs {
		var own []domain.HerbDrugInteraction
		for _, interaction := range interactions {
			if s.matcher.Match(interaction.HerbName, herb.GenericName) {
				own = append(own, interaction)
			}
		}

		category := domain.GREEN
		for _, interaction := range own {
			if interaction.Severity == "Major" {
				category = domain.RED
				break
			}
			if interaction.Severity == "Moderate" {
				category = domain.YELLOW
			}
		}

		flags := make([]string, 0, len(own))
		recs := make([]string, 0, len(own))
		for _, interaction := range own {
			flags = append(flags, fmt.Sprintf("Interacts with %s: %s", interaction.DrugName, interaction.ClinicalEffect))
			recs = append(recs, interaction.Recommendation)
		}
		if len(flags) == 0 {
			flags = []string{"No significant concerns"}
		}
		if len(recs) == 0 {
			recs = []string{"Continue; inform clinicians about all supplement use"}
		}

		analyses = append(analyses, domain.MedicationAnalysis{
			Name:               herb.GenericName,
			Type:               "herbal",
			RiskCategory:       category,
			RiskScore:          riskScore(category, 0, len(own)),
			Flags:              flags,
			Recommendations:    recs,
			MonitoringRequired: []string{"Ask about supplement changes at each visit"},
		})
	}
	return analyses
}

func (s *AnalyzerService) buildPatientSummary(input *domain.PatientInput, labs *domain.DerivedLabs) domain.PatientSummary {
	frailty := "Not frail"
	if input.IsFrail || (input.CFSScore != nil && *input.CFSScore >= 5) {
		frailty = "Frail"
	}

	meld := labs.MELD
	if labs.MELDNa != nil {
		meld = labs.MELDNa
	}

	return domain.PatientSummary{
		Age:              input.Age,
		Gender:           input.Gender,
		CFSScore:         input.CFSScore,
		FrailtyStatus:    frailty,
		LifeExpectancy:   input.LifeExpectancy,
		TotalMedications: len(input.Medications),
		TotalHerbs:       len(input.Herbs),
		Comorbidities:    input.Comorbidities,
		CalculatedEGFR:   labs.EGFR,
		CalculatedMELD:   meld,
		RenalFunction:    ClassifyRenalFunction(labs.EGFR),
		HepaticFunction:  ClassifyHepaticFunction(meld, input.ASTUl, input.ALTUl, s.transaminaseULN),
	}
}

func (s *AnalyzerService) buildMonitoringPlans(analyses []domain.MedicationAnalysis) []domain.MonitoringPlan {
	var plans []domain.MonitoringPlan
	for _, analysis := range analyses {
		if analysis.RiskCategory == domain.GREEN {
			continue
		}

		frequency := "Every 4 weeks"
		durationWeeks := 12
		if analysis.RiskCategory == domain.RED {
			frequency = "Weekly until stabilized"
			durationWeeks = 8
		}

		plans = append(plans, domain.MonitoringPlan{
			MedicationName: analysis.Name,
			Frequency:      frequency,
			Parameters:     analysis.MonitoringRequired,
			DurationWeeks:  durationWeeks,
			AlertCriteria: []string{
				"New or worsening symptoms after any dose change",
				"Signs of withdrawal or disease recurrence",
			},
		})
	}
	return plans
}

func (s *AnalyzerService) buildClinicalRecommendations(input *domain.PatientInput, analyses []domain.MedicationAnalysis, results *engineResults) []string {
	var recs []string

	red := countCategory(analyses, domain.RED)
	yellow := countCategory(analyses, domain.YELLOW)

	if red > 0 {
		recs = append(recs, fmt.Sprintf("URGENT: %d medication(s) require immediate deprescribing review", red))
	}
	if yellow > 0 {
		recs = append(recs, fmt.Sprintf("%d medication(s) warrant review at the next scheduled visit", yellow))
	}
	if input.CFSScore != nil && *input.CFSScore >= 6 {
		recs = append(recs, "Moderate to severe frailty: prioritize symptom control over long-horizon preventive therapy")
	}
	if majorInteractionCount(results.interactions) > 0 {
		recs = append(recs, "Major herb-drug interactions present; reconcile supplement use before prescribing changes")
	}
	if input.Age >= 80 {
		recs = append(recs, "Age 80+: reassess every medication against current goals of care")
	}
	if len(recs) == 0 {
		recs = append(recs, "Continue current regimen with routine monitoring")
	}
	return recs
}

func (s *AnalyzerService) buildSafetyAlerts(analyses []domain.MedicationAnalysis, results *engineResults) []string {
	var alerts []string

	if results.acb.TotalScore >= 3 {
		alerts = append(alerts, fmt.Sprintf(
			"High anticholinergic burden (ACB %d): elevated risk of falls, confusion and cognitive decline", results.acb.TotalScore))
	}
	for _, interaction := range results.interactions {
		if interaction.Severity == "Major" {
			alerts = append(alerts, fmt.Sprintf("Major interaction: %s with %s (%s)",
				interaction.HerbName, interaction.DrugName, interaction.ClinicalEffect))
		}
	}
	if countCategory(analyses, domain.RED) >= 3 {
		alerts = append(alerts, "Three or more high-risk medications: coordinate changes, do not stop multiple drugs at once")
	}
	return alerts
}

// Helpers

func validateInput(input *domain.PatientInput) error {
	if input.Age <= 0 || input.Age > 120 {
		return domain.NewValidationError("age", "age must be between 1 and 120", input.Age)
	}
	if len(input.Medications) == 0 {
		return domain.NewValidationError("medications", "at least one medication is required", nil)
	}
	for i, med := range input.Medications {
		if strings.TrimSpace(med.GenericName) == "" {
			return domain.NewValidationError(fmt.Sprintf("medications[%d].generic_name", i), "generic name is required", nil)
		}
	}
	if input.CFSScore != nil && (*input.CFSScore < 1 || *input.CFSScore > 9) {
		return domain.NewValidationError("cfs_score", "CFS score must be between 1 and 9", *input.CFSScore)
	}
	return nil
}

func hasFlagFrom(flags []domain.Flag, source domain.FlagSource) bool {
	for _, f := range flags {
		if f.Source == source {
			return true
		}
	}
	return false
}

func flagDescriptions(flags []domain.Flag) []string {
	if len(flags) == 0 {
		return []string{"No significant concerns"}
	}
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = fmt.Sprintf("[%s] %s", f.Category, f.Rationale)
	}
	return out
}

func recommendations(category domain.RiskCategory, flags []domain.Flag) []string {
	var recs []string
	seen := map[string]bool{}
	for _, f := range flags {
		if f.Recommendation != "" && !seen[f.Recommendation] {
			recs = append(recs, f.Recommendation)
			seen[f.Recommendation] = true
		}
	}
	if len(recs) == 0 {
		if category == domain.GREEN {
			recs = []string{"Continue medication with routine monitoring"}
		} else {
			recs = []string{"Clinical review recommended"}
		}
	}
	return recs
}

func monitoringItems(category domain.RiskCategory, flags []domain.Flag) []string {
	var items []string
	seen := map[string]bool{}
	for _, f := range flags {
		if f.Monitoring != "" && !seen[f.Monitoring] {
			items = append(items, f.Monitoring)
			seen[f.Monitoring] = true
		}
	}
	if len(items) == 0 {
		items = []string{"Routine clinical assessment"}
	}
	return items
}

func prioritySummary(analyses []domain.MedicationAnalysis) map[domain.RiskCategory]int {
	summary := map[domain.RiskCategory]int{
		domain.RED:    0,
		domain.YELLOW: 0,
		domain.GREEN:  0,
	}
	for _, a := range analyses {
		summary[a.RiskCategory]++
	}
	return summary
}

func flattenSchedules(analyses []domain.MedicationAnalysis) []domain.TaperingScheduleEntry {
	var entries []domain.TaperingScheduleEntry
	for _, analysis := range analyses {
		if analysis.TaperPlan == nil {
			continue
		}
		for _, step := range analysis.TaperPlan.Steps {
			entries = append(entries, domain.TaperingScheduleEntry{
				MedicationName: analysis.Name,
				Week:           step.Week,
				Dose:           step.Dose,
				Instructions:   step.Instructions,
				Monitoring:     step.Monitoring,
			})
		}
	}
	return entries
}

func countCategory(analyses []domain.MedicationAnalysis, category domain.RiskCategory) int {
	n := 0
	for _, a := range analyses {
		if a.RiskCategory == category {
			n++
		}
	}
	return n
}

func majorInteractionCount(interactions []domain.HerbDrugInteraction) int {
	n := 0
	for _, i := range interactions {
		if i.Severity == "Major" {
			n++
		}
	}
	return n
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// TaperGenerator builds individualized discontinuation plans. Plan sources,
// in order of preference: a curated protocol, an AI-assisted schedule for
// drugs the protocols do not cover, and a conservative generic fallback.
// A panic anywhere in generation is converted into a single-step
// hold-and-review emergency plan so a malformed drug entry can never take
// down a whole analysis.
type TaperGenerator struct {
	logger     *logrus.Logger
	tables     *domain.RuleTables
	classifier domain.DrugClassifier    // may be nil
	scheduler  domain.ScheduleGenerator // may be nil
}

// NewTaperGenerator creates a new taper plan generator
func NewTaperGenerator(logger *logrus.Logger, tables *domain.RuleTables, classifier domain.DrugClassifier, scheduler domain.ScheduleGenerator) *TaperGenerator {
	return &TaperGenerator{
		logger:     logger,
		tables:     tables,
		classifier: classifier,
		scheduler:  scheduler,
	}
}

// GenerateTaperPlan implements domain.TaperPlanner. It never returns nil.
func (g *TaperGenerator) GenerateTaperPlan(ctx context.Context, req *domain.TaperPlanRequest) (plan *domain.TaperPlan) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.WithFields(logrus.Fields{
				"drug":  req.DrugName,
				"panic": r,
			}).Error("Taper plan generation panicked; returning emergency fallback")
			plan = g.emergencyPlan(req.DrugName)
		}
	}()

	drugName := lexical.Normalize(req.DrugName)

	if protocol := g.lookupProtocol(drugName); protocol != nil {
		g.logger.WithFields(logrus.Fields{
			"drug":       drugName,
			"drug_class": protocol.DrugClass,
		}).Debug("Building taper plan from curated protocol")
		return g.buildProtocolPlan(req, protocol)
	}

	if g.classifier != nil {
		if plan := g.buildClassifiedPlan(ctx, req, drugName); plan != nil {
			return plan
		}
	}

	g.logger.WithField("drug", drugName).Debug("No protocol or classification available; using generic fallback plan")
	return g.genericFallbackPlan(req.DrugName)
}

// lookupProtocol finds the protocol whose drug list contains the
// normalized name exactly.
func (g *TaperGenerator) lookupProtocol(drugName string) *domain.TaperProtocol {
	for i := range g.tables.TaperProtocols {
		protocol := &g.tables.TaperProtocols[i]
		for _, drug := range protocol.Drugs {
			if drug == drugName {
				return protocol
			}
		}
	}
	return nil
}

// buildProtocolPlan synthesizes a stepwise schedule from a curated protocol
func (g *TaperGenerator) buildProtocolPlan(req *domain.TaperPlanRequest, protocol *domain.TaperProtocol) *domain.TaperPlan {
	duration := g.adjustedDuration(protocol.BaseDurationWeeks, req)
	reduction := parseReductionPercent(protocol.ReductionPerStep)
	steps := g.synthesizeSteps(req.CurrentDose, duration, reduction, protocol.WithdrawalSymptoms, protocol.MonitoringParams)

	return &domain.TaperPlan{
		DrugName:           req.DrugName,
		DrugClass:          protocol.DrugClass,
		RiskProfile:        protocol.RiskProfile,
		TaperStrategy:      protocol.Strategy,
		TotalDurationWeeks: totalWeeks(steps),
		Steps:              steps,
		PauseCriteria:      protocol.PauseCriteria,
		ReversalCriteria:   protocol.ReversalCriteria,
		MonitoringSchedule: buildMonitoringSchedule(protocol.MonitoringParams),
		PatientEducation:   patientEducation(req.DrugName),
		Source:             domain.TaperSourceProtocol,
	}
}

// buildClassifiedPlan handles drugs outside the protocol table via the
// external classifier. Returns nil when classification fails, which sends
// the caller to the generic fallback.
func (g *TaperGenerator) buildClassifiedPlan(ctx context.Context, req *domain.TaperPlanRequest, drugName string) *domain.TaperPlan {
	classification, err := g.classifier.ClassifyDrug(ctx, drugName)
	if err != nil {
		g.logger.WithError(err).WithField("drug", drugName).Warn("Drug classification failed; falling back to generic taper plan")
		return nil
	}

	if !classification.RequiresTaper {
		return g.noTaperPlan(req.DrugName, classification)
	}

	duration := classification.TypicalDurationWeeks
	if duration <= 0 {
		duration = 8
	}
	duration = g.adjustedDuration(duration, req)

	if g.scheduler != nil {
		if plan := g.buildAIPlan(ctx, req, classification, duration); plan != nil {
			return plan
		}
	}

	// Deterministic schedule parameterized by the classification
	steps := g.synthesizeSteps(req.CurrentDose, duration, parseReductionPercent(classification.StepLogic),
		splitList(classification.WithdrawalSymptoms), splitList(classification.MonitoringFrequency))

	return &domain.TaperPlan{
		DrugName:           req.DrugName,
		DrugClass:          classification.DrugClass,
		RiskProfile:        classification.RiskProfile,
		TaperStrategy:      orDefault(classification.StrategyName, "Gradual dose reduction"),
		TotalDurationWeeks: totalWeeks(steps),
		Steps:              steps,
		PauseCriteria:      splitList(classification.PauseCriteria),
		ReversalCriteria:   []string{"Severe withdrawal symptoms despite pausing the taper"},
		MonitoringSchedule: buildMonitoringSchedule(splitList(classification.MonitoringFrequency)),
		PatientEducation:   patientEducation(req.DrugName),
		Source:             domain.TaperSourceAIAssisted,
	}
}

// buildAIPlan asks the schedule collaborator for a full schedule and
// validates it. Returns nil on any failure.
func (g *TaperGenerator) buildAIPlan(ctx context.Context, req *domain.TaperPlanRequest, classification *domain.DrugClassification, duration int) *domain.TaperPlan {
	minSteps := maxInt(4, duration/3)
	maxSteps := minInt(8, maxInt(4, duration/2))

	schedule, err := g.scheduler.GenerateSchedule(ctx, req, classification, duration, minSteps, maxSteps)
	if err != nil {
		g.logger.WithError(err).WithField("drug", req.DrugName).Warn("Schedule collaborator failed; using deterministic schedule")
		return nil
	}

	steps := validateScheduleSteps(schedule.Steps)
	if len(steps) == 0 {
		g.logger.WithField("drug", req.DrugName).Warn("Schedule collaborator returned no usable steps; using deterministic schedule")
		return nil
	}

	education := schedule.PatientEducation
	if len(education) == 0 {
		education = patientEducation(req.DrugName)
	}
	pause := schedule.PauseCriteria
	if len(pause) == 0 {
		pause = splitList(classification.PauseCriteria)
	}

	return &domain.TaperPlan{
		DrugName:           req.DrugName,
		DrugClass:          classification.DrugClass,
		RiskProfile:        classification.RiskProfile,
		TaperStrategy:      orDefault(classification.StrategyName, "Individualized reduction"),
		TotalDurationWeeks: totalWeeks(steps),
		Steps:              steps,
		PauseCriteria:      pause,
		ReversalCriteria:   []string{"Severe withdrawal symptoms despite pausing the taper"},
		MonitoringSchedule: buildMonitoringSchedule(splitList(classification.MonitoringFrequency)),
		PatientEducation:   education,
		Source:             domain.TaperSourceAIAssisted,
	}
}

// adjustedDuration applies the duration-on-medication and frailty
// adjustments to a base duration. Short-term use halves the duration with
// a 2-week floor; a Clinical Frailty Scale score slows or speeds the
// taper via the multiplier table.
func (g *TaperGenerator) adjustedDuration(base int, req *domain.TaperPlanRequest) int {
	duration := base
	if req.DurationOnMedication == domain.SHORT_TERM {
		duration = maxInt(2, duration/2)
	}
	if req.PatientCFSScore != nil {
		if multiplier, ok := g.tables.CFSMultipliers[*req.PatientCFSScore]; ok && multiplier > 0 {
			duration = int(float64(duration) / multiplier)
		}
	}
	return maxInt(2, duration)
}

// synthesizeSteps produces the stepwise reduction schedule. Percentages
// decrease by the reduction amount each step; a step reaching zero or
// below becomes the STOP step, and a trailing STOP step with a final
// monitoring window is appended when the schedule would otherwise end
// above zero.
func (g *TaperGenerator) synthesizeSteps(currentDose string, durationWeeks, reductionPercent int, withdrawalSymptoms, monitoringParams []string) []domain.TaperStep {
	if reductionPercent <= 0 {
		reductionPercent = 20
	}

	numSteps := minInt(100/reductionPercent, durationWeeks/2)
	if numSteps < 1 {
		numSteps = 1
	}
	weeksPerStep := maxInt(2, durationWeeks/numSteps)

	monitoring := "Symptom check at each step"
	if len(monitoringParams) > 0 {
		monitoring = "Monitor: " + strings.Join(monitoringParams, ", ")
	}

	var steps []domain.TaperStep
	week := 1
	percentage := 100

	for i := 0; i < numSteps; i++ {
		percentage -= reductionPercent
		if percentage <= 0 {
			steps = append(steps, stopStep(week, monitoring, withdrawalSymptoms))
			return steps
		}

		steps = append(steps, domain.TaperStep{
			Week:                      week,
			Dose:                      doseLabel(currentDose, percentage),
			PercentageOfOriginal:      percentage,
			Instructions:              fmt.Sprintf("Reduce to %d%% of the original dose for %d weeks", percentage, weeksPerStep),
			Monitoring:                monitoring,
			WithdrawalSymptomsToWatch: withdrawalSymptoms,
		})
		week += weeksPerStep
	}

	steps = append(steps, stopStep(week, "Final review 4 weeks after discontinuation", withdrawalSymptoms))
	return steps
}

func stopStep(week int, monitoring string, withdrawalSymptoms []string) domain.TaperStep {
	return domain.TaperStep{
		Week:                      week,
		Dose:                      "STOP",
		PercentageOfOriginal:      0,
		Instructions:              "Discontinue completely; contact the prescriber if withdrawal symptoms appear",
		Monitoring:                monitoring,
		WithdrawalSymptomsToWatch: withdrawalSymptoms,
	}
}

// noTaperPlan covers drugs that can be stopped without weaning
func (g *TaperGenerator) noTaperPlan(drugName string, classification *domain.DrugClassification) *domain.TaperPlan {
	return &domain.TaperPlan{
		DrugName:           drugName,
		DrugClass:          classification.DrugClass,
		RiskProfile:        orDefault(classification.RiskProfile, "low-risk"),
		TaperStrategy:      "Direct discontinuation",
		TotalDurationWeeks: 1,
		Steps: []domain.TaperStep{
			{
				Week:                 1,
				Dose:                 "STOP",
				PercentageOfOriginal: 0,
				Instructions:         "This medication can be stopped without a gradual taper",
				Monitoring:           "Confirm no symptom recurrence at next review",
			},
		},
		PauseCriteria:      []string{"Recurrence of the treated condition"},
		ReversalCriteria:   []string{"Clinically significant symptom recurrence"},
		MonitoringSchedule: buildMonitoringSchedule(nil),
		PatientEducation:   patientEducation(drugName),
		Source:             domain.TaperSourceNoTaperNeeded,
	}
}

// genericFallbackPlan is the conservative schedule used when neither a
// protocol nor a classification is available: 25% reductions at weeks
// 1, 4 and 6, stopping at week 8.
func (g *TaperGenerator) genericFallbackPlan(drugName string) *domain.TaperPlan {
	steps := []domain.TaperStep{
		{Week: 1, Dose: "75% of current dose", PercentageOfOriginal: 75, Instructions: "Reduce to 75% of the current dose", Monitoring: "Weekly symptom check"},
		{Week: 4, Dose: "50% of current dose", PercentageOfOriginal: 50, Instructions: "Reduce to 50% of the current dose", Monitoring: "Weekly symptom check"},
		{Week: 6, Dose: "25% of current dose", PercentageOfOriginal: 25, Instructions: "Reduce to 25% of the current dose", Monitoring: "Weekly symptom check"},
		{Week: 8, Dose: "STOP", PercentageOfOriginal: 0, Instructions: "Discontinue completely", Monitoring: "Review 4 weeks after discontinuation"},
	}

	return &domain.TaperPlan{
		DrugName:           drugName,
		DrugClass:          "unclassified",
		RiskProfile:        "unknown",
		TaperStrategy:      "Conservative stepwise reduction",
		TotalDurationWeeks: 8,
		Steps:              steps,
		PauseCriteria:      []string{"Any significant withdrawal symptoms", "Recurrence of the treated condition"},
		ReversalCriteria:   []string{"Severe symptoms not controlled by pausing"},
		MonitoringSchedule: buildMonitoringSchedule(nil),
		PatientEducation:   patientEducation(drugName),
		Source:             domain.TaperSourceGenericFallback,
	}
}

// emergencyPlan is returned from the panic boundary: maintain the current
// dose pending clinician review.
func (g *TaperGenerator) emergencyPlan(drugName string) *domain.TaperPlan {
	return &domain.TaperPlan{
		DrugName:           drugName,
		DrugClass:          "unknown",
		RiskProfile:        "unknown",
		TaperStrategy:      "Maintain current dose pending review",
		TotalDurationWeeks: 1,
		Steps: []domain.TaperStep{
			{
				Week:                 1,
				Dose:                 "Maintain current dose",
				PercentageOfOriginal: 100,
				Instructions:         "Do not change the dose; a clinician must review this medication before any reduction",
				Monitoring:           "Clinician review required",
			},
		},
		PauseCriteria:      []string{"Not applicable; plan generation failed"},
		ReversalCriteria:   []string{"Not applicable; plan generation failed"},
		MonitoringSchedule: buildMonitoringSchedule(nil),
		PatientEducation:   []string{"A personalized plan could not be generated for this medication; continue the current dose until a clinician reviews it"},
		Source:             domain.TaperSourceEmergency,
	}
}

// Helpers

// validateScheduleSteps keeps only steps with positive integer week
// numbers and percentages within [0, 100], sorted as given.
func validateScheduleSteps(steps []domain.TaperStep) []domain.TaperStep {
	var valid []domain.TaperStep
	for _, step := range steps {
		if step.Week < 1 {
			continue
		}
		if step.PercentageOfOriginal < 0 || step.PercentageOfOriginal > 100 {
			continue
		}
		valid = append(valid, step)
	}
	return valid
}

// parseReductionPercent maps a step-logic expression like "10% every
// 2 weeks" to its reduction percentage. Only the explicit 10%, 25% and
// 50% forms are recognized; anything else gets the 20% default.
func parseReductionPercent(s string) int {
	switch {
	case strings.Contains(s, "10%"):
		return 10
	case strings.Contains(s, "25%"):
		return 25
	case strings.Contains(s, "50%"):
		return 50
	default:
		return 20
	}
}

func buildMonitoringSchedule(params []string) map[string][]string {
	early := []string{"Withdrawal symptom check", "Vital signs"}
	if len(params) > 0 {
		early = append(early, params...)
	}
	return map[string][]string{
		"Week 1-2":             early,
		"Week 3-4":             {"Symptom reassessment", "Dose tolerance review"},
		"Ongoing":              {"Step-wise review before each reduction"},
		"Post-discontinuation": {"Final review 4 weeks after the last dose"},
	}
}

func patientEducation(drugName string) []string {
	return []string{
		fmt.Sprintf("Your %s dose will be lowered gradually, never stopped abruptly", drugName),
		"Take each reduced dose exactly as scheduled",
		"Do not skip steps or speed up the schedule on your own",
		"Keep a daily note of any new or returning symptoms",
		"Contact your clinician if withdrawal symptoms feel severe",
		"The taper can be paused at any step; pausing is not failure",
		"Avoid alcohol and new over-the-counter sedatives during the taper",
		"Bring this schedule to every appointment",
	}
}

func doseLabel(currentDose string, percentage int) string {
	if currentDose == "" {
		return fmt.Sprintf("%d%% of current dose", percentage)
	}
	return fmt.Sprintf("%d%% of %s", percentage, currentDose)
}

func totalWeeks(steps []domain.TaperStep) int {
	last := 0
	for _, s := range steps {
		if s.Week > last {
			last = s.Week
		}
	}
	return last
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	if len(parts) == 1 {
		parts = strings.Split(s, ",")
	}
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

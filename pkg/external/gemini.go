package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/deprescribing-cds-server/internal/domain"
)

// GeminiClient talks to the Gemini generateContent API for drug
// classification and taper schedule generation. Responses are requested
// as JSON and passed through RepairJSON before parsing.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryCount int
	temperature float64
	logger     *logrus.Logger
}

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient(config domain.AIConfig, logger *logrus.Logger) *GeminiClient {
	rateLimit := config.RateLimit
	if rateLimit <= 0 {
		rateLimit = 2
	}
	model := config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter:     rate.NewLimiter(rate.Limit(rateLimit), 1),
		retryCount:  config.RetryCount,
		temperature: config.Temperature,
		logger:      logger,
	}
}

// Request/response wire types

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ClassifyDrug implements AIClient
func (c *GeminiClient) ClassifyDrug(ctx context.Context, drugName string) (*domain.DrugClassification, error) {
	prompt := classificationPrompt(drugName)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classification request failed for %s: %w", drugName, err)
	}

	var classification domain.DrugClassification
	if err := json.Unmarshal([]byte(RepairJSON(raw)), &classification); err != nil {
		return nil, fmt.Errorf("unparseable classification response for %s: %w", drugName, err)
	}
	classification.DrugName = drugName

	c.logger.WithFields(logrus.Fields{
		"drug":       drugName,
		"drug_class": classification.DrugClass,
		"classes":    classification.Classes,
	}).Debug("Received drug classification")

	return &classification, nil
}

// GenerateSchedule implements AIClient. Steps with non-integer week
// numbers are discarded; the schedule may come back empty, which the
// caller treats as a failure.
func (c *GeminiClient) GenerateSchedule(ctx context.Context, req *domain.TaperPlanRequest, classification *domain.DrugClassification, durationWeeks, minSteps, maxSteps int) (*domain.GeneratedSchedule, error) {
	prompt := schedulePrompt(req, classification, durationWeeks, minSteps, maxSteps)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("schedule request failed for %s: %w", req.DrugName, err)
	}

	var wire struct {
		Steps []struct {
			Week                      float64  `json:"week"`
			Dose                      string   `json:"dose"`
			PercentageOfOriginal      float64  `json:"percentage_of_original"`
			Instructions              string   `json:"instructions"`
			Monitoring                string   `json:"monitoring"`
			WithdrawalSymptomsToWatch []string `json:"withdrawal_symptoms_to_watch"`
		} `json:"steps"`
		PatientEducation []string `json:"patient_education"`
		PauseCriteria    []string `json:"pause_criteria"`
		SuccessCriteria  []string `json:"success_criteria"`
	}
	if err := json.Unmarshal([]byte(RepairJSON(raw)), &wire); err != nil {
		return nil, fmt.Errorf("unparseable schedule response for %s: %w", req.DrugName, err)
	}

	schedule := &domain.GeneratedSchedule{
		PatientEducation: wire.PatientEducation,
		PauseCriteria:    wire.PauseCriteria,
		SuccessCriteria:  wire.SuccessCriteria,
	}
	for _, step := range wire.Steps {
		if step.Week != math.Trunc(step.Week) || step.Week < 1 {
			c.logger.WithFields(logrus.Fields{
				"drug": req.DrugName,
				"week": step.Week,
			}).Debug("Discarding schedule step with non-integer week")
			continue
		}
		schedule.Steps = append(schedule.Steps, domain.TaperStep{
			Week:                      int(step.Week),
			Dose:                      step.Dose,
			PercentageOfOriginal:      int(step.PercentageOfOriginal),
			Instructions:              step.Instructions,
			Monitoring:                step.Monitoring,
			WithdrawalSymptomsToWatch: step.WithdrawalSymptomsToWatch,
		})
	}

	return schedule, nil
}

// generate performs one rate-limited, retried generateContent call and
// returns the raw model text.
func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      c.temperature,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	attempts := c.retryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff between retries
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.doRequest(ctx, url, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.logger.WithError(err).WithField("attempt", attempt+1).Debug("Gemini request attempt failed")
	}
	return "", lastErr
}

func (c *GeminiClient) doRequest(ctx context.Context, url string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func classificationPrompt(drugName string) string {
	return fmt.Sprintf(`You are a clinical pharmacology reference. Classify the medication %q.
Respond with a single JSON object, no prose, with exactly these fields:
{
  "classes": ["pharmacological subclass names, lowercase with underscores, e.g. ssris, beta_blockers"],
  "drug_class": "primary subclass",
  "risk_profile": "high-risk | moderate-risk | low-risk (discontinuation risk)",
  "strategy_name": "name of the appropriate taper strategy",
  "step_logic": "one sentence describing the reduction logic",
  "withdrawal_symptoms": "semicolon-separated list",
  "monitoring_frequency": "semicolon-separated monitoring parameters",
  "pause_criteria": "semicolon-separated criteria to pause a taper",
  "requires_taper": true,
  "typical_duration_weeks": 8,
  "special_considerations": "one sentence, or empty string"
}`, drugName)
}

func schedulePrompt(req *domain.TaperPlanRequest, classification *domain.DrugClassification, durationWeeks, minSteps, maxSteps int) string {
	return fmt.Sprintf(`You are a deprescribing specialist. Produce a taper schedule for %q (%s, %s) over about %d weeks, using between %d and %d steps.
Patient age %d. Step logic: %s.
Respond with a single JSON object, no prose:
{
  "steps": [
    {"week": 1, "dose": "text", "percentage_of_original": 75, "instructions": "text", "monitoring": "text", "withdrawal_symptoms_to_watch": ["..."]}
  ],
  "patient_education": ["..."],
  "pause_criteria": ["..."],
  "success_criteria": ["..."]
}
Week numbers must be positive integers. Percentages must decrease monotonically and the final step must be 0 with dose "STOP".`,
		req.DrugName, classification.DrugClass, classification.RiskProfile,
		durationWeeks, minSteps, maxSteps, req.PatientAge, classification.StepLogic)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

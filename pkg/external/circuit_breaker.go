package external

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/deprescribing-cds-server/internal/domain"
)

// ResilientAIClient wraps an AIClient with the circuit breaker pattern.
// Classification and schedule generation share one breaker: they hit the
// same upstream service, and when it degrades every caller should fail
// fast into its deterministic fallback instead of queueing on timeouts.
type ResilientAIClient struct {
	inner   AIClient
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientAIClient creates a breaker-wrapped AI client
func NewResilientAIClient(inner AIClient, logger *logrus.Logger) *ResilientAIClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAI",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientAIClient{
		inner:   inner,
		breaker: breaker,
		logger:  logger,
	}
}

// ClassifyDrug implements AIClient with breaker protection
func (r *ResilientAIClient) ClassifyDrug(ctx context.Context, drugName string) (*domain.DrugClassification, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.ClassifyDrug(ctx, drugName)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("AI collaborator unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("drug classification failed: %w", err)
	}
	return result.(*domain.DrugClassification), nil
}

// GenerateSchedule implements AIClient with breaker protection
func (r *ResilientAIClient) GenerateSchedule(ctx context.Context, req *domain.TaperPlanRequest, classification *domain.DrugClassification, durationWeeks, minSteps, maxSteps int) (*domain.GeneratedSchedule, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.GenerateSchedule(ctx, req, classification, durationWeeks, minSteps, maxSteps)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("AI collaborator unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}
	return result.(*domain.GeneratedSchedule), nil
}

// State returns the breaker state for health reporting
func (r *ResilientAIClient) State() gobreaker.State {
	return r.breaker.State()
}

// Counts returns the breaker counters for health reporting
func (r *ResilientAIClient) Counts() gobreaker.Counts {
	return r.breaker.Counts()
}

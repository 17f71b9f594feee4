package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// stubClassifier answers from a fixed map and counts calls
type stubClassifier struct {
	classes map[string][]string
	calls   int
	err     error
}

func (s *stubClassifier) ClassifyDrug(ctx context.Context, drugName string) (*domain.DrugClassification, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	classes, ok := s.classes[drugName]
	if !ok {
		return nil, fmt.Errorf("unknown drug %s", drugName)
	}
	return &domain.DrugClassification{
		DrugName: drugName,
		Classes:  classes,
	}, nil
}

func newDuplicationEngine(classifier domain.DrugClassifier) *DuplicationEngine {
	return NewDuplicationEngine(newTestLogger(), testTables(), lexical.SubstringMatcher{}, classifier)
}

func TestDuplicationEngine_SameSubclassIsHighSeverity(t *testing.T) {
	engine := newDuplicationEngine(nil)

	flags := engine.Evaluate(context.Background(), meds("sertraline", "fluoxetine"))
	require.Len(t, flags, 2)
	for _, flag := range flags {
		assert.Equal(t, domain.SeverityHigh, flag.Severity)
		assert.Contains(t, flag.Category, "Therapeutic duplication")
	}
}

func TestDuplicationEngine_SameCategoryIsModerate(t *testing.T) {
	engine := newDuplicationEngine(nil)

	// SSRI plus tricyclic: same therapeutic purpose, different subclass
	flags := engine.Evaluate(context.Background(), meds("sertraline", "amitriptyline"))
	require.Len(t, flags, 2)
	for _, flag := range flags {
		assert.Equal(t, domain.SeverityModerate, flag.Severity)
		assert.Contains(t, flag.Category, "Combination therapy")
	}
}

func TestDuplicationEngine_SingleAgentNoFlags(t *testing.T) {
	engine := newDuplicationEngine(nil)

	assert.Empty(t, engine.Evaluate(context.Background(), meds("sertraline")))
}

func TestDuplicationEngine_AIFallbackResolvesUnknownName(t *testing.T) {
	classifier := &stubClassifier{
		classes: map[string][]string{
			"novodrug": {"ssris"},
		},
	}
	engine := newDuplicationEngine(classifier)

	flags := engine.Evaluate(context.Background(), meds("novodrug", "fluoxetine"))
	require.Len(t, flags, 2)
	assert.Equal(t, 1, classifier.calls)
	for _, flag := range flags {
		assert.Equal(t, domain.SeverityHigh, flag.Severity)
	}
}

func TestDuplicationEngine_UnknownClassLabelsDiscarded(t *testing.T) {
	classifier := &stubClassifier{
		classes: map[string][]string{
			"novodrug": {"made_up_class"},
		},
	}
	engine := newDuplicationEngine(classifier)

	// The unknown label cannot group, so the drug is excluded
	assert.Empty(t, engine.Evaluate(context.Background(), meds("novodrug", "fluoxetine")))
}

func TestDuplicationEngine_UnclassifiableExcluded(t *testing.T) {
	classifier := &stubClassifier{err: fmt.Errorf("service unavailable")}
	engine := newDuplicationEngine(classifier)

	// Classifier failure excludes the unknown drug instead of erroring
	flags := engine.Evaluate(context.Background(), meds("mysterydrug", "sertraline", "fluoxetine"))
	require.Len(t, flags, 2)
}

func TestDuplicationEngine_NilClassifierTableOnly(t *testing.T) {
	engine := newDuplicationEngine(nil)

	flags := engine.Evaluate(context.Background(), meds("mysterydrug", "omeprazole", "pantoprazole"))
	require.Len(t, flags, 2)
	for _, flag := range flags {
		assert.Contains(t, flag.Category, "gastric_protection")
	}
}

package feedback

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFeedback(analysisID, medication string) *Feedback {
	return &Feedback{
		AnalysisID:        analysisID,
		MedicationName:    medication,
		ClinicalContext:   "community dwelling, polypharmacy review",
		SuggestedCategory: CategoryRed,
		ClinicianCategory: CategoryRed,
		ClinicianAgreed:   true,
		FlagSummary:       "STOPP D5; anticholinergic burden",
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fb := sampleFeedback("a-1", "diazepam")
	require.NoError(t, store.Save(ctx, fb))
	assert.NotZero(t, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())

	got, err := store.Get(ctx, "a-1", "diazepam")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fb.ID, got.ID)
	assert.Equal(t, CategoryRed, got.SuggestedCategory)
	assert.True(t, got.ClinicianAgreed)
	assert.Equal(t, "STOPP D5; anticholinergic burden", got.FlagSummary)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "a-1", "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SaveUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fb := sampleFeedback("a-1", "diazepam")
	require.NoError(t, store.Save(ctx, fb))
	firstID := fb.ID

	revised := sampleFeedback("a-1", "diazepam")
	revised.ClinicianCategory = CategoryYellow
	revised.ClinicianAgreed = false
	revised.Notes = "patient declined full stop, slow taper instead"
	require.NoError(t, store.Save(ctx, revised))
	assert.Equal(t, firstID, revised.ID)

	got, err := store.Get(ctx, "a-1", "diazepam")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, CategoryYellow, got.ClinicianCategory)
	assert.False(t, got.ClinicianAgreed)
	assert.Equal(t, "patient declined full stop, slow taper instead", got.Notes)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteStore_SaveRequiresKeys(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(context.Background(), &Feedback{MedicationName: "diazepam"})
	assert.Error(t, err)

	err = store.Save(context.Background(), &Feedback{AnalysisID: "a-1"})
	assert.Error(t, err)
}

func TestSQLiteStore_ListAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleFeedback("a-1", "diazepam")))
	require.NoError(t, store.Save(ctx, sampleFeedback("a-1", "omeprazole")))
	require.NoError(t, store.Save(ctx, sampleFeedback("a-2", "diazepam")))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	all, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestSQLiteStore_Summary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Total)
	assert.Equal(t, 0.0, empty.AgreementRate)

	require.NoError(t, store.Save(ctx, sampleFeedback("a-1", "diazepam")))
	require.NoError(t, store.Save(ctx, sampleFeedback("a-2", "diazepam")))

	disagreed := sampleFeedback("a-1", "omeprazole")
	disagreed.ClinicianCategory = CategoryGreen
	disagreed.ClinicianAgreed = false
	require.NoError(t, store.Save(ctx, disagreed))

	summary, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(2), summary.Agreed)
	assert.Equal(t, int64(1), summary.Disagreed)
	assert.InDelta(t, 0.667, summary.AgreementRate, 0.001)
	assert.Equal(t, 2, summary.ByClinicianCategory[CategoryRed])
	assert.Equal(t, 1, summary.ByClinicianCategory[CategoryGreen])
	assert.Equal(t, 3, summary.BySuggestedCategory[CategoryRed])
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fb := sampleFeedback("a-1", "diazepam")
	require.NoError(t, store.Save(ctx, fb))

	require.NoError(t, store.Delete(ctx, fb.ID))

	got, err := store.Get(ctx, "a-1", "diazepam")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = store.Delete(ctx, fb.ID)
	assert.Error(t, err)
}

func TestSQLiteStore_ExportImportRoundTrip(t *testing.T) {
	source := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, source.Save(ctx, sampleFeedback("a-1", "diazepam")))
	require.NoError(t, source.Save(ctx, sampleFeedback("a-1", "omeprazole")))

	var buf bytes.Buffer
	require.NoError(t, source.ExportJSON(ctx, &buf))

	target := newTestStore(t)
	require.NoError(t, target.Save(ctx, sampleFeedback("a-1", "diazepam")))

	imported, skipped, err := target.ImportJSON(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)

	count, err := target.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStore_ImportRejectsMalformedJSON(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.ImportJSON(context.Background(), bytes.NewBufferString("{not json"))
	assert.Error(t, err)
}

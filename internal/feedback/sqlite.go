package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const maxExportLimit = 1000000

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed feedback store.
// The database file and parent directories are created if missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS verdict_feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		medication_name TEXT NOT NULL,
		clinical_context TEXT,
		suggested_category TEXT NOT NULL,
		clinician_category TEXT NOT NULL,
		clinician_agreed INTEGER NOT NULL,
		flag_summary TEXT,
		notes TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(analysis_id, medication_name)
	);
	CREATE INDEX IF NOT EXISTS idx_verdict_feedback_medication
		ON verdict_feedback(medication_name);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanFeedback.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(row scanner) (*Feedback, error) {
	var fb Feedback
	var clinicalContext, flagSummary, notes sql.NullString
	var agreed int

	err := row.Scan(
		&fb.ID,
		&fb.AnalysisID,
		&fb.MedicationName,
		&clinicalContext,
		&fb.SuggestedCategory,
		&fb.ClinicianCategory,
		&agreed,
		&flagSummary,
		&notes,
		&fb.CreatedAt,
		&fb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fb.ClinicalContext = clinicalContext.String
	fb.FlagSummary = flagSummary.String
	fb.Notes = notes.String
	fb.ClinicianAgreed = agreed != 0

	return &fb, nil
}

const feedbackColumns = `id, analysis_id, medication_name, clinical_context,
	suggested_category, clinician_category, clinician_agreed,
	flag_summary, notes, created_at, updated_at`

// Save stores or updates feedback for a verdict.
func (s *SQLiteStore) Save(ctx context.Context, feedback *Feedback) error {
	if feedback.AnalysisID == "" || feedback.MedicationName == "" {
		return fmt.Errorf("analysis_id and medication_name are required")
	}

	now := time.Now().UTC()
	agreed := 0
	if feedback.ClinicianAgreed {
		agreed = 1
	}

	var existingID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM verdict_feedback WHERE analysis_id = ? AND medication_name = ?",
		feedback.AnalysisID, feedback.MedicationName,
	).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		feedback.CreatedAt = now
		feedback.UpdatedAt = now
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO verdict_feedback
				(analysis_id, medication_name, clinical_context,
				 suggested_category, clinician_category, clinician_agreed,
				 flag_summary, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			feedback.AnalysisID, feedback.MedicationName, feedback.ClinicalContext,
			feedback.SuggestedCategory, feedback.ClinicianCategory, agreed,
			feedback.FlagSummary, feedback.Notes, feedback.CreatedAt, feedback.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert feedback: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			feedback.ID = id
		}
		return nil

	case err != nil:
		return fmt.Errorf("failed to check existing feedback: %w", err)

	default:
		feedback.ID = existingID
		feedback.UpdatedAt = now
		_, err := s.db.ExecContext(ctx, `
			UPDATE verdict_feedback
			SET clinical_context = ?, suggested_category = ?,
				clinician_category = ?, clinician_agreed = ?,
				flag_summary = ?, notes = ?, updated_at = ?
			WHERE id = ?`,
			feedback.ClinicalContext, feedback.SuggestedCategory,
			feedback.ClinicianCategory, agreed,
			feedback.FlagSummary, feedback.Notes, feedback.UpdatedAt,
			existingID,
		)
		if err != nil {
			return fmt.Errorf("failed to update feedback: %w", err)
		}
		return nil
	}
}

// Get retrieves feedback for a medication within an analysis.
// Returns (nil, nil) when no feedback exists.
func (s *SQLiteStore) Get(ctx context.Context, analysisID, medicationName string) (*Feedback, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+feedbackColumns+" FROM verdict_feedback WHERE analysis_id = ? AND medication_name = ?",
		analysisID, medicationName,
	)

	fb, err := scanFeedback(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return fb, nil
}

// List returns feedback entries ordered by most recently updated.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+feedbackColumns+" FROM verdict_feedback ORDER BY updated_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var result []*Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		result = append(result, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("feedback row iteration failed: %w", err)
	}
	return result, nil
}

// Count returns the total number of feedback entries.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM verdict_feedback").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

// Summary returns aggregate agreement statistics across all feedback.
func (s *SQLiteStore) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		ByClinicianCategory: map[Category]int{},
		BySuggestedCategory: map[Category]int{},
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(clinician_agreed), 0) FROM verdict_feedback",
	).Scan(&summary.Total, &summary.Agreed)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback: %w", err)
	}
	summary.Disagreed = summary.Total - summary.Agreed
	if summary.Total > 0 {
		summary.AgreementRate = float64(summary.Agreed) / float64(summary.Total)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT clinician_category, suggested_category, COUNT(*)
		FROM verdict_feedback
		GROUP BY clinician_category, suggested_category`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var clinician, suggested Category
		var count int
		if err := rows.Scan(&clinician, &suggested, &count); err != nil {
			return nil, fmt.Errorf("failed to scan feedback summary row: %w", err)
		}
		summary.ByClinicianCategory[clinician] += count
		summary.BySuggestedCategory[suggested] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("feedback summary iteration failed: %w", err)
	}
	return summary, nil
}

// Delete removes a feedback entry by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM verdict_feedback WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("feedback %d not found", id)
	}
	return nil
}

// ExportJSON exports all feedback entries as a JSON document.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	entries, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to load feedback for export: %w", err)
	}

	export := FeedbackExport{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Count:      len(entries),
		Feedback:   entries,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ImportJSON imports feedback from an export document. Entries whose
// analysis and medication already exist are skipped, not overwritten.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	var export FeedbackExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode import: %w", err)
	}

	imported := 0
	skipped := 0
	for _, fb := range export.Feedback {
		existing, err := s.Get(ctx, fb.AnalysisID, fb.MedicationName)
		if err != nil {
			return imported, skipped, err
		}
		if existing != nil {
			skipped++
			continue
		}

		entry := *fb
		entry.ID = 0
		if err := s.Save(ctx, &entry); err != nil {
			return imported, skipped, fmt.Errorf("failed to import entry for %s: %w", fb.MedicationName, err)
		}
		imported++
	}
	return imported, skipped, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

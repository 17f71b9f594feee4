// Package feedback provides clinician feedback storage for medication
// verdicts. It stores agreements and corrections so rule-table tuning can
// be driven by real review outcomes.
package feedback

import (
	"context"
	"io"
	"time"
)

// Category represents the risk verdict categories.
type Category string

const (
	CategoryRed    Category = "RED"
	CategoryYellow Category = "YELLOW"
	CategoryGreen  Category = "GREEN"
)

// Feedback represents a clinician's feedback on a medication verdict.
type Feedback struct {
	ID                int64     `json:"id,omitempty"`
	AnalysisID        string    `json:"analysis_id"`                  // Analysis the verdict came from
	MedicationName    string    `json:"medication_name"`              // Normalized generic name
	ClinicalContext   string    `json:"clinical_context,omitempty"`   // Free-text context (indication, setting)
	SuggestedCategory Category  `json:"suggested_category"`           // System's verdict
	ClinicianCategory Category  `json:"clinician_category"`           // Clinician's decision
	ClinicianAgreed   bool      `json:"clinician_agreed"`             // Did the clinician agree?
	FlagSummary       string    `json:"flag_summary,omitempty"`       // Flags behind the verdict
	Notes             string    `json:"notes,omitempty"`              // Clinician notes
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates feedback for a verdict. Feedback for the
	// same analysis+medication is updated in place.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves feedback for a medication within an analysis.
	Get(ctx context.Context, analysisID, medicationName string) (*Feedback, error)

	// List returns all feedback entries with pagination.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Summary returns aggregate agreement statistics for audit.
	Summary(ctx context.Context) (*Summary, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Summary represents aggregate feedback statistics.
type Summary struct {
	Total               int64            `json:"total"`
	Agreed              int64            `json:"agreed"`
	Disagreed           int64            `json:"disagreed"`
	AgreementRate       float64          `json:"agreement_rate"` // 0 when no feedback exists
	ByClinicianCategory map[Category]int `json:"by_clinician_category"`
	BySuggestedCategory map[Category]int `json:"by_suggested_category"`
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}

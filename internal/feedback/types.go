// Package feedback stores clinician agreement with suggested severity tiers.
// Only the assessment id, the tiers, the combined score and free-text notes
// are kept; no biomarker values or patient identity reach the store.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ra-risk-server/internal/domain"
)

// Feedback is a clinician's verdict on one assessment.
type Feedback struct {
	ID            int64               `json:"id,omitempty"`
	AssessmentID  string              `json:"assessment_id"`
	SuggestedTier domain.SeverityTier `json:"suggested_tier"`
	ClinicianTier domain.SeverityTier `json:"clinician_tier"`
	Agreed        bool                `json:"agreed"`
	CombinedScore float64             `json:"combined_score"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Normalize trims input and derives Agreed from the two tiers.
func (f *Feedback) Normalize() {
	f.AssessmentID = strings.TrimSpace(f.AssessmentID)
	f.Notes = strings.TrimSpace(f.Notes)
	f.Agreed = f.SuggestedTier == f.ClinicianTier
}

// Validate reports the first problem with the record.
func (f *Feedback) Validate() error {
	if f.AssessmentID == "" {
		return domain.NewValidationError("assessment_id", "assessment_id is required", f.AssessmentID)
	}
	if !f.SuggestedTier.IsValid() {
		return domain.NewValidationError("suggested_tier", fmt.Sprintf("unknown tier %q", f.SuggestedTier), f.SuggestedTier)
	}
	if !f.ClinicianTier.IsValid() {
		return domain.NewValidationError("clinician_tier", fmt.Sprintf("unknown tier %q", f.ClinicianTier), f.ClinicianTier)
	}
	if f.CombinedScore < 0 || f.CombinedScore > 100 {
		return domain.NewValidationError("combined_score", "combined_score must be within [0, 100]", f.CombinedScore)
	}
	return nil
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save inserts or, for an existing assessment id, updates feedback.
	Save(ctx context.Context, feedback *Feedback) error

	// Get returns the feedback for an assessment or domain.ErrNotFound.
	Get(ctx context.Context, assessmentID string) (*Feedback, error)

	// List returns feedback newest first.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID or returns domain.ErrNotFound.
	Delete(ctx context.Context, id int64) error

	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON skips assessment ids that already have feedback.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

func exportJSON(ctx context.Context, s Store, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}
	if all == nil {
		all = []*Feedback{}
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Count:      len(all),
		Feedback:   all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func importJSON(ctx context.Context, s Store, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, fb := range export.Feedback {
		fb.Normalize()
		if err := fb.Validate(); err != nil {
			skipped++
			continue
		}

		_, err := s.Get(ctx, fb.AssessmentID)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if err := s.Save(ctx, fb); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

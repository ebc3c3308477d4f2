package feedback

import (
	"context"
	"io"

	"github.com/ra-risk-server/internal/domain"
)

// Disabled is the store used when no backend is configured. Every call
// returns domain.ErrFeedbackDisabled.
type Disabled struct{}

func (Disabled) Save(context.Context, *Feedback) error { return domain.ErrFeedbackDisabled }

func (Disabled) Get(context.Context, string) (*Feedback, error) {
	return nil, domain.ErrFeedbackDisabled
}

func (Disabled) List(context.Context, int, int) ([]*Feedback, error) {
	return nil, domain.ErrFeedbackDisabled
}

func (Disabled) Count(context.Context) (int64, error) { return 0, domain.ErrFeedbackDisabled }

func (Disabled) Delete(context.Context, int64) error { return domain.ErrFeedbackDisabled }

func (Disabled) ExportJSON(context.Context, io.Writer) error { return domain.ErrFeedbackDisabled }

func (Disabled) ImportJSON(context.Context, io.Reader) (int, int, error) {
	return 0, 0, domain.ErrFeedbackDisabled
}

func (Disabled) Close() error { return nil }

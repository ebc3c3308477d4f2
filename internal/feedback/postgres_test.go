package feedback

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ra-risk-server/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewPostgresStore(context.Background(), db)
	require.NoError(t, err)
	return store, mock
}

var feedbackColumns = []string{
	"id", "assessment_id", "suggested_tier", "clinician_tier", "agreed",
	"combined_score", "notes", "created_at", "updated_at",
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), nil)
	assert.Error(t, err)
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO assessment_feedback .* ON CONFLICT \(assessment_id\) DO UPDATE`).
		WithArgs("a-1", "Moderate", "Severe", false, 48.5, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))

	fb := &Feedback{
		AssessmentID:  "a-1",
		SuggestedTier: domain.TierModerate,
		ClinicianTier: domain.TierSevere,
		CombinedScore: 48.5,
	}
	fb.Normalize()

	require.NoError(t, store.Save(context.Background(), fb))
	assert.Equal(t, int64(7), fb.ID)
	assert.Equal(t, created, fb.CreatedAt)
	assert.False(t, fb.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save_Error(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO assessment_feedback`).
		WillReturnError(errors.New("connection reset"))

	err := store.Save(context.Background(), &Feedback{AssessmentID: "a-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save feedback")
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM assessment_feedback WHERE assessment_id = \$1`).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(feedbackColumns).
			AddRow(3, "a-1", "Borderline", "Borderline", true, 30.2, "ok", now, now))

	fb, err := store.Get(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), fb.ID)
	assert.Equal(t, domain.TierBorderline, fb.SuggestedTier)
	assert.True(t, fb.Agreed)

	mock.ExpectQuery(`SELECT .* FROM assessment_feedback WHERE assessment_id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM assessment_feedback ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(feedbackColumns).
			AddRow(2, "a-2", "Severe", "Severe", true, 70.0, "", now, now).
			AddRow(1, "a-1", "Moderate", "Borderline", false, 45.0, "", now, now))

	list, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-2", list[0].AssessmentID)
	assert.Equal(t, domain.TierBorderline, list[1].ClinicianTier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountAndDelete(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM assessment_feedback`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectExec(`DELETE FROM assessment_feedback WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM assessment_feedback WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	assert.NoError(t, store.Delete(ctx, 4))
	assert.ErrorIs(t, store.Delete(ctx, 99), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisabledAndOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, domain.FeedbackConfig{Backend: "none"})
	require.NoError(t, err)
	assert.ErrorIs(t, store.Save(ctx, &Feedback{}), domain.ErrFeedbackDisabled)
	_, err = store.List(ctx, 1, 0)
	assert.ErrorIs(t, err, domain.ErrFeedbackDisabled)
	assert.NoError(t, store.Close())

	_, err = Open(ctx, domain.FeedbackConfig{Backend: "cassandra"})
	assert.Error(t, err)

	sqlite, err := Open(ctx, domain.FeedbackConfig{Backend: "sqlite", SQLitePath: t.TempDir() + "/fb.db"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, sqlite)
	sqlite.Close()
}

func TestFeedback_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fb      Feedback
		wantErr bool
	}{
		{"valid", Feedback{AssessmentID: "a", SuggestedTier: domain.TierSevere, ClinicianTier: domain.TierSevereUrgent, CombinedScore: 80}, false},
		{"missing id", Feedback{SuggestedTier: domain.TierSevere, ClinicianTier: domain.TierSevere}, true},
		{"bad suggested", Feedback{AssessmentID: "a", SuggestedTier: "Mild", ClinicianTier: domain.TierSevere}, true},
		{"bad clinician", Feedback{AssessmentID: "a", SuggestedTier: domain.TierSevere, ClinicianTier: ""}, true},
		{"score out of range", Feedback{AssessmentID: "a", SuggestedTier: domain.TierSevere, ClinicianTier: domain.TierSevere, CombinedScore: 101}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fb.Validate()
			if tt.wantErr {
				var ve *domain.ValidationError
				assert.ErrorAs(t, err, &ve)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

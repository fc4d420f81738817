package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dept-portal-api/internal/access"
	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
)

const feedbackSelect = `SELECT id, message_content, is_anonymous, from_batch_id, from_user_id, target_announcement_id, sent_at FROM feedbacks`

var feedbackColumns = map[string]string{
	"id":                             "id",
	access.FieldFromBatchID:          "from_batch_id",
	access.FieldFromUserID:           "from_user_id",
	access.FieldTargetAnnouncementID: "target_announcement_id",
}

// FeedbackRepository provides persistence for feedback messages.
type FeedbackRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewFeedbackRepository creates the repository. observer may be nil.
func NewFeedbackRepository(db *sqlx.DB, observer QueryObserver) *FeedbackRepository {
	return &FeedbackRepository{db: db, observer: observer}
}

// List returns feedback matching filter, newest first.
func (r *FeedbackRepository) List(ctx context.Context, filter query.Expr) ([]models.Feedback, error) {
	defer r.observe("feedbacks.list", time.Now())
	b := query.NewBuilder(feedbackColumns, dropMalformedIDs)
	where, err := b.Where(filter)
	if err != nil {
		return nil, fmt.Errorf("build feedback filter: %w", err)
	}
	items := make([]models.Feedback, 0)
	q := fmt.Sprintf("%s WHERE %s ORDER BY sent_at DESC", feedbackSelect, where)
	if err := r.db.SelectContext(ctx, &items, q, b.Args()...); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// GetByID returns a feedback record. Missing rows surface as sql.ErrNoRows.
func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*models.Feedback, error) {
	defer r.observe("feedbacks.get", time.Now())
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var fb models.Feedback
	if err := r.db.GetContext(ctx, &fb, feedbackSelect+` WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	return &fb, nil
}

// Create inserts a feedback record.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	defer r.observe("feedbacks.create", time.Now())
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.SentAt.IsZero() {
		fb.SentAt = time.Now().UTC()
	}
	const stmt = `INSERT INTO feedbacks (id, message_content, is_anonymous, from_batch_id, from_user_id, target_announcement_id, sent_at)
VALUES (:id, :message_content, :is_anonymous, :from_batch_id, :from_user_id, :target_announcement_id, :sent_at)`
	if _, err := r.db.NamedExecContext(ctx, stmt, fb); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// Delete removes a feedback record.
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("feedbacks.delete", time.Now())
	if !validID(id) {
		return sql.ErrNoRows
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM feedbacks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return requireAffected(res)
}

func (r *FeedbackRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

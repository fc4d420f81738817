package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dept-portal-api/internal/access"
	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
)

const announcementSelect = `SELECT id, title, content, author_id, target_batch_id, type, status, file_url, feedback, created_at, updated_at FROM announcements`

var announcementColumns = map[string]string{
	"id":                      "id",
	access.FieldAuthorID:      "author_id",
	access.FieldTargetBatchID: "target_batch_id",
	access.FieldType:          "type",
	access.FieldStatus:        "status",
}

// QueryObserver receives database timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewAnnouncementRepository creates the repository. observer may be nil.
func NewAnnouncementRepository(db *sqlx.DB, observer QueryObserver) *AnnouncementRepository {
	return &AnnouncementRepository{db: db, observer: observer}
}

// List returns announcements matching filter, newest first.
func (r *AnnouncementRepository) List(ctx context.Context, filter query.Expr, limit int) ([]models.Announcement, error) {
	defer r.observe("announcements.list", time.Now())
	b := query.NewBuilder(announcementColumns, func(field, value string) []string {
		return expandLegacyStatus(field, dropMalformedIDs(field, value)...)
	})
	where, err := b.Where(filter)
	if err != nil {
		return nil, fmt.Errorf("build announcement filter: %w", err)
	}
	q := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC", announcementSelect, where)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	announcements := make([]models.Announcement, 0)
	if err := r.db.SelectContext(ctx, &announcements, q, b.Args()...); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// GetByID returns an announcement by identifier. Missing rows surface as sql.ErrNoRows.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	defer r.observe("announcements.get", time.Now())
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, announcementSelect+` WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &announcement, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	defer r.observe("announcements.create", time.Now())
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = announcement.CreatedAt
	const stmt = `INSERT INTO announcements (id, title, content, author_id, target_batch_id, type, status, file_url, feedback, created_at, updated_at)
VALUES (:id, :title, :content, :author_id, :target_batch_id, :type, :status, :file_url, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, stmt, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// UpdateStatus writes the status transition fields only. Title, type and author stay untouched.
func (r *AnnouncementRepository) UpdateStatus(ctx context.Context, announcement *models.Announcement) error {
	defer r.observe("announcements.update_status", time.Now())
	if !validID(announcement.ID) {
		return sql.ErrNoRows
	}
	if announcement.UpdatedAt.IsZero() {
		announcement.UpdatedAt = time.Now().UTC()
	}
	const stmt = `UPDATE announcements SET status = :status, feedback = :feedback, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, stmt, announcement)
	if err != nil {
		return fmt.Errorf("update announcement status: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("announcements.delete", time.Now())
	if !validID(id) {
		return sql.ErrNoRows
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return requireAffected(res)
}

func (r *AnnouncementRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// expandLegacyStatus makes status filters match rows still holding legacy spellings.
func expandLegacyStatus(field string, values ...string) []string {
	if field != access.FieldStatus {
		return values
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if status, ok := models.ParseAnnouncementStatus(value); ok && string(status) == value {
			out = append(out, models.StoredStatusValues(status)...)
			continue
		}
		out = append(out, value)
	}
	return out
}

// uuidColumns are filter fields backed by UUID columns.
var uuidColumns = map[string]struct{}{
	"id":                             {},
	access.FieldTargetAnnouncementID: {},
}

// dropMalformedIDs removes values Postgres would refuse to cast to uuid. An id
// that cannot parse matches no row.
func dropMalformedIDs(field, value string) []string {
	if _, ok := uuidColumns[field]; ok && !validID(value) {
		return nil
	}
	return []string{value}
}

// validID reports whether id is accepted by a Postgres uuid column.
func validID(id string) bool {
	if strings.HasPrefix(strings.ToLower(id), "urn:") {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

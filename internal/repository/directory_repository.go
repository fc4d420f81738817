package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/dept-portal-api/internal/models"
)

// DirectoryRepository reads display fields from the user and batch directories.
// Both tables are owned elsewhere; this repository never writes to them.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository creates the repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// UsersByIDs resolves staff display fields keyed by id. Unknown ids are skipped.
func (r *DirectoryRepository) UsersByIDs(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.UserSummary
	const query = `SELECT id::text AS id, full_name, email, role FROM users WHERE id::text = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pqStringArray(ids)); err != nil {
		return nil, fmt.Errorf("lookup users: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// BatchesByIDs resolves batch display fields keyed by id. Unknown ids are skipped.
func (r *DirectoryRepository) BatchesByIDs(ctx context.Context, ids []string) (map[string]models.BatchSummary, error) {
	out := make(map[string]models.BatchSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.BatchSummary
	const query = `SELECT id::text AS id, name, COALESCE(session, '') AS session FROM batches WHERE id::text = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pqStringArray(ids)); err != nil {
		return nil, fmt.Errorf("lookup batches: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// pqStringArray helper ensures we pass string arrays consistently.
func pqStringArray(values []string) interface{} {
	return pq.Array(values)
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
)

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type memAnnouncementRepo struct {
	items     map[string]models.Announcement
	seq       int
	createErr error
	updates   int
	afterList func()
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{items: map[string]models.Announcement{}}
}

func (r *memAnnouncementRepo) List(ctx context.Context, filter query.Expr, limit int) ([]models.Announcement, error) {
	out := make([]models.Announcement, 0)
	for _, item := range r.items {
		item := item
		if query.Match(filter, &item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return out, nil
}

func (r *memAnnouncementRepo) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (r *memAnnouncementRepo) Create(ctx context.Context, a *models.Announcement) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	a.ID = fmt.Sprintf("a-%d", r.seq)
	a.CreatedAt = baseTime.Add(time.Duration(r.seq) * time.Second)
	a.UpdatedAt = a.CreatedAt
	r.items[a.ID] = *a
	return nil
}

func (r *memAnnouncementRepo) UpdateStatus(ctx context.Context, a *models.Announcement) error {
	stored, ok := r.items[a.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Status = a.Status
	stored.Feedback = a.Feedback
	stored.UpdatedAt = a.UpdatedAt
	r.items[a.ID] = stored
	r.updates++
	return nil
}

func (r *memAnnouncementRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type memFeedbackRepo struct {
	items map[string]models.Feedback
	seq   int
}

func newMemFeedbackRepo() *memFeedbackRepo {
	return &memFeedbackRepo{items: map[string]models.Feedback{}}
}

func (r *memFeedbackRepo) List(ctx context.Context, filter query.Expr) ([]models.Feedback, error) {
	out := make([]models.Feedback, 0)
	for _, item := range r.items {
		item := item
		if query.Match(filter, &item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memFeedbackRepo) GetByID(ctx context.Context, id string) (*models.Feedback, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (r *memFeedbackRepo) Create(ctx context.Context, fb *models.Feedback) error {
	r.seq++
	fb.ID = fmt.Sprintf("f-%d", r.seq)
	r.items[fb.ID] = *fb
	return nil
}

func (r *memFeedbackRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeFiles struct {
	uploaded  map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{uploaded: map[string][]byte{}}
}

func (f *fakeFiles) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.uploaded[key] = body
	return "https://files.example/" + key, nil
}

func (f *fakeFiles) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.uploaded, key)
	return nil
}

type fakeCache struct {
	entries map[string][]byte
	hits    int
	evicted int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Evict(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			c.evicted++
		}
		delete(c.entries, k)
	}
	return nil
}

type fakeDirectory struct {
	users   map[string]models.UserSummary
	batches map[string]models.BatchSummary
	err     error
}

func (d *fakeDirectory) UsersByIDs(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := map[string]models.UserSummary{}
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (d *fakeDirectory) BatchesByIDs(ctx context.Context, ids []string) (map[string]models.BatchSummary, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := map[string]models.BatchSummary{}
	for _, id := range ids {
		if b, ok := d.batches[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")

func claimsFor(id string, role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: role}
}

var (
	chairman = claimsFor("chair-1", models.RoleChairman)
	operator = claimsFor("op-1", models.RoleComputerOperator)
	teacherA = claimsFor("teacher-a", models.RoleTeacher)
	teacherB = claimsFor("teacher-b", models.RoleTeacher)
	batchX   = claimsFor("batch-x", models.RoleBatch)
	batchY   = claimsFor("batch-y", models.RoleBatch)
)

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/dept-portal-api/internal/models"
)

type directoryLookup interface {
	UsersByIDs(ctx context.Context, ids []string) (map[string]models.UserSummary, error)
	BatchesByIDs(ctx context.Context, ids []string) (map[string]models.BatchSummary, error)
}

// directoryJoin attaches display fields to read models. Lookup failures only cost
// the display fields; the records themselves are still returned.
type directoryJoin struct {
	lookup directoryLookup
	logger *zap.Logger
}

func (d directoryJoin) users(ctx context.Context, ids []string) map[string]models.UserSummary {
	if d.lookup == nil || len(ids) == 0 {
		return nil
	}
	users, err := d.lookup.UsersByIDs(ctx, dedupe(ids))
	if err != nil {
		d.logger.Warn("user directory lookup failed", zap.Error(err))
		return nil
	}
	return users
}

func (d directoryJoin) batches(ctx context.Context, ids []string) map[string]models.BatchSummary {
	if d.lookup == nil || len(ids) == 0 {
		return nil
	}
	batches, err := d.lookup.BatchesByIDs(ctx, dedupe(ids))
	if err != nil {
		d.logger.Warn("batch directory lookup failed", zap.Error(err))
		return nil
	}
	return batches
}

func (d directoryJoin) announcements(ctx context.Context, items []models.Announcement) []models.AnnouncementView {
	authorIDs := make([]string, 0, len(items))
	batchIDs := make([]string, 0)
	for _, item := range items {
		authorIDs = append(authorIDs, item.AuthorID)
		if item.TargetBatchID != nil {
			batchIDs = append(batchIDs, *item.TargetBatchID)
		}
	}
	users := d.users(ctx, authorIDs)
	batches := d.batches(ctx, batchIDs)

	views := make([]models.AnnouncementView, len(items))
	for i, item := range items {
		views[i] = models.AnnouncementView{Announcement: item}
		if u, ok := users[item.AuthorID]; ok {
			u := u
			views[i].Author = &u
		}
		if item.TargetBatchID != nil {
			if b, ok := batches[*item.TargetBatchID]; ok {
				b := b
				views[i].TargetBatch = &b
			}
		}
	}
	return views
}

func (d directoryJoin) feedback(ctx context.Context, items []models.Feedback) []models.FeedbackView {
	userIDs := make([]string, 0, len(items))
	batchIDs := make([]string, 0, len(items))
	for _, item := range items {
		if item.FromUserID != nil {
			userIDs = append(userIDs, *item.FromUserID)
		}
		if item.FromBatchID != nil {
			batchIDs = append(batchIDs, *item.FromBatchID)
		}
	}
	users := d.users(ctx, userIDs)
	batches := d.batches(ctx, batchIDs)

	views := make([]models.FeedbackView, len(items))
	for i, item := range items {
		views[i] = models.FeedbackView{Feedback: item}
		if item.FromUserID != nil {
			if u, ok := users[*item.FromUserID]; ok {
				u := u
				views[i].FromUser = &u
			}
		}
		if item.FromBatchID != nil {
			if b, ok := batches[*item.FromBatchID]; ok {
				b := b
				views[i].FromBatch = &b
			}
		}
	}
	return views
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

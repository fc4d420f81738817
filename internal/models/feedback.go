package models

import "time"

// Feedback is a message sent by a batch or staff member. When TargetAnnouncementID is set
// it is peer or administrative commentary on that item, otherwise general correspondence.
type Feedback struct {
	ID                   string    `db:"id" json:"id"`
	MessageContent       string    `db:"message_content" json:"message_content"`
	IsAnonymous          bool      `db:"is_anonymous" json:"is_anonymous"`
	FromBatchID          *string   `db:"from_batch_id" json:"from_batch_id,omitempty"`
	FromUserID           *string   `db:"from_user_id" json:"from_user_id,omitempty"`
	TargetAnnouncementID *string   `db:"target_announcement_id" json:"target_announcement_id,omitempty"`
	SentAt               time.Time `db:"sent_at" json:"sent_at"`
}

// SenderID returns whichever sender column is set.
func (f *Feedback) SenderID() string {
	if f.FromBatchID != nil {
		return *f.FromBatchID
	}
	if f.FromUserID != nil {
		return *f.FromUserID
	}
	return ""
}

// Field exposes columns by name so filter expressions can be evaluated in memory.
func (f *Feedback) Field(name string) (string, bool) {
	switch name {
	case "id":
		return f.ID, true
	case "from_batch_id":
		return derefString(f.FromBatchID)
	case "from_user_id":
		return derefString(f.FromUserID)
	case "target_announcement_id":
		return derefString(f.TargetAnnouncementID)
	}
	return "", false
}

// FeedbackView is the read model returned to clients. Sender fields are blanked
// for anonymous feedback unless the viewer may trace it.
type FeedbackView struct {
	Feedback
	FromUser  *UserSummary  `json:"from_user,omitempty"`
	FromBatch *BatchSummary `json:"from_batch,omitempty"`
}

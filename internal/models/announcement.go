package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// AnnouncementType classifies a posted item. It never changes after creation.
type AnnouncementType string

const (
	AnnouncementTypeNotice       AnnouncementType = "NOTICE"
	AnnouncementTypeAnnouncement AnnouncementType = "ANNOUNCEMENT"
	AnnouncementTypeRoutine      AnnouncementType = "ROUTINE"
)

// ParseAnnouncementType accepts any casing and rejects unknown values.
func ParseAnnouncementType(raw string) (AnnouncementType, bool) {
	switch t := AnnouncementType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case AnnouncementTypeNotice, AnnouncementTypeAnnouncement, AnnouncementTypeRoutine:
		return t, true
	}
	return "", false
}

// AnnouncementStatus is the publication stage of an item.
type AnnouncementStatus string

const (
	StatusPendingFeedback AnnouncementStatus = "PENDING_FEEDBACK"
	StatusPendingApproval AnnouncementStatus = "PENDING_APPROVAL"
	StatusApproved        AnnouncementStatus = "APPROVED"
)

// legacyStatusAliases maps stored values written by older clients onto the closed set.
var legacyStatusAliases = map[string]AnnouncementStatus{
	"PENDING": StatusPendingApproval,
}

// ParseAnnouncementStatus normalises raw input, folding legacy aliases.
func ParseAnnouncementStatus(raw string) (AnnouncementStatus, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := legacyStatusAliases[value]; ok {
		return alias, true
	}
	switch s := AnnouncementStatus(value); s {
	case StatusPendingFeedback, StatusPendingApproval, StatusApproved:
		return s, true
	}
	return "", false
}

// StoredStatusValues lists every persisted spelling of status, legacy ones included.
func StoredStatusValues(status AnnouncementStatus) []string {
	values := []string{string(status)}
	for legacy, current := range legacyStatusAliases {
		if current == status {
			values = append(values, legacy)
		}
	}
	return values
}

// Scan implements sql.Scanner and is the single place legacy values are folded on read.
func (s *AnnouncementStatus) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*s = ""
		return nil
	default:
		return fmt.Errorf("scan announcement status: unsupported type %T", src)
	}
	parsed, ok := ParseAnnouncementStatus(raw)
	if !ok {
		return fmt.Errorf("scan announcement status: unknown value %q", raw)
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s AnnouncementStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Announcement represents a persisted notice, announcement or routine.
type Announcement struct {
	ID            string             `db:"id" json:"id"`
	Title         string             `db:"title" json:"title"`
	Content       string             `db:"content" json:"content"`
	AuthorID      string             `db:"author_id" json:"author_id"`
	TargetBatchID *string            `db:"target_batch_id" json:"target_batch_id,omitempty"`
	Type          AnnouncementType   `db:"type" json:"type"`
	Status        AnnouncementStatus `db:"status" json:"status"`
	FileURL       *string            `db:"file_url" json:"file_url,omitempty"`
	Feedback      *string            `db:"feedback" json:"feedback,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// Field exposes columns by name so filter expressions can be evaluated in memory.
func (a *Announcement) Field(name string) (string, bool) {
	switch name {
	case "id":
		return a.ID, true
	case "author_id":
		return a.AuthorID, true
	case "target_batch_id":
		return derefString(a.TargetBatchID)
	case "type":
		return string(a.Type), true
	case "status":
		return string(a.Status), true
	}
	return "", false
}

// AnnouncementView is the read model returned to clients.
type AnnouncementView struct {
	Announcement
	Author      *UserSummary  `json:"author,omitempty"`
	TargetBatch *BatchSummary `json:"target_batch,omitempty"`
}

func derefString(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	return *v, true
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-portal-api/internal/access"
	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

type feedbackRepository interface {
	List(ctx context.Context, filter query.Expr) ([]models.Feedback, error)
	GetByID(ctx context.Context, id string) (*models.Feedback, error)
	Create(ctx context.Context, fb *models.Feedback) error
	Delete(ctx context.Context, id string) error
}

type announcementLookup interface {
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
}

// CreateFeedbackRequest describes the feedback payload.
type CreateFeedbackRequest struct {
	MessageContent     string  `json:"message_content" validate:"required,max=4000"`
	IsAnonymous        bool    `json:"is_anonymous"`
	TargetAnnouncement *string `json:"target_announcement"`
}

// FeedbackService handles feedback messages and their link to announcements.
type FeedbackService struct {
	repo          feedbackRepository
	announcements announcementLookup
	directory     directoryJoin
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewFeedbackService constructs the service. directory and metrics may be nil.
func NewFeedbackService(repo feedbackRepository, announcements announcementLookup, directory directoryLookup, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		repo:          repo,
		announcements: announcements,
		directory:     directoryJoin{lookup: directory, logger: logger},
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create stores feedback sent by the caller. A target announcement must exist.
func (s *FeedbackService) Create(ctx context.Context, claims *models.JWTClaims, req CreateFeedbackRequest) (*models.FeedbackView, error) {
	req.MessageContent = strings.TrimSpace(req.MessageContent)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}
	fb, err := access.NewFeedback(claims, req.MessageContent, req.IsAnonymous, req.TargetAnnouncement, s.now())
	if err != nil {
		s.denied("create", claims, err)
		return nil, err
	}
	if fb.TargetAnnouncementID != nil {
		if _, err := s.announcement(ctx, *fb.TargetAnnouncementID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		s.logger.Warn("feedback insert failed", zap.String("sender", fb.SenderID()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send feedback")
	}
	s.metrics.RecordFeedback(fb.FromBatchID != nil, fb.TargetAnnouncementID != nil)

	views := s.directory.feedback(ctx, []models.Feedback{*fb})
	return &views[0], nil
}

// List returns feedback visible to the caller, optionally narrowed to one announcement.
func (s *FeedbackService) List(ctx context.Context, claims *models.JWTClaims, target *string) ([]models.FeedbackView, error) {
	filter, err := access.BuildFeedbackFilter(claims, target)
	if err != nil {
		s.denied("list", claims, err)
		return nil, err
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	views := s.directory.feedback(ctx, items)
	for i := range views {
		if !access.CanTraceSender(claims, &views[i].Feedback) {
			maskSender(&views[i])
		}
	}
	return views, nil
}

// Delete removes feedback. Administration, the sender, and the author of the
// targeted announcement may do so.
func (s *FeedbackService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	fb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "feedback not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get feedback")
	}
	var owner *models.Announcement
	if fb.TargetAnnouncementID != nil {
		owner, err = s.announcement(ctx, *fb.TargetAnnouncementID)
		if err != nil && !appErrors.Is(err, appErrors.ErrNotFound) {
			return err
		}
	}
	if !access.CanDeleteFeedback(claims, fb, owner) {
		err := appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this feedback")
		s.denied("delete", claims, err)
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "feedback not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete feedback")
	}
	return nil
}

func (s *FeedbackService) announcement(ctx context.Context, id string) (*models.Announcement, error) {
	item, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get announcement")
	}
	return item, nil
}

func (s *FeedbackService) denied(action string, claims *models.JWTClaims, err error) {
	var role models.UserRole
	var userID string
	if claims != nil {
		role, userID = claims.Role, claims.UserID
	}
	if appErrors.Is(err, appErrors.ErrForbidden) {
		s.metrics.RecordDenied("feedback."+action, role)
	}
	s.logger.Warn("feedback request refused",
		zap.String("action", action),
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.Error(err),
	)
}

// maskSender blanks every field that would identify an anonymous sender.
func maskSender(v *models.FeedbackView) {
	v.FromBatchID = nil
	v.FromUserID = nil
	v.FromBatch = nil
	v.FromUser = nil
}

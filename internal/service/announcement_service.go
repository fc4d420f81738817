package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-portal-api/internal/access"
	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
	"github.com/noah-isme/dept-portal-api/pkg/storage"
)

const publicFeedCacheKey = "announcements:public"

type announcementRepository interface {
	List(ctx context.Context, filter query.Expr, limit int) ([]models.Announcement, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	UpdateStatus(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

type feedCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Evict(ctx context.Context, keys ...string) error
}

// AnnouncementConfig tunes listing and upload limits.
type AnnouncementConfig struct {
	PublicFeedLimit    int
	PublicFeedCacheTTL time.Duration
	ListLimit          int
	MaxFileSizeBytes   int64
}

// AnnouncementService handles the announcement lifecycle.
type AnnouncementService struct {
	repo      announcementRepository
	files     storage.Provider
	cache     feedCache
	directory directoryJoin
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AnnouncementConfig
	now       func() time.Time

	// feedGen advances on every public feed eviction.
	feedGen atomic.Uint64
}

// AnnouncementServiceDeps groups optional collaborators.
type AnnouncementServiceDeps struct {
	Files     storage.Provider
	Cache     feedCache
	Directory directoryLookup
	Metrics   *MetricsService
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, deps AnnouncementServiceDeps, validate *validator.Validate, logger *zap.Logger, cfg AnnouncementConfig) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PublicFeedLimit <= 0 || cfg.PublicFeedLimit > access.PublicFeedLimit {
		cfg.PublicFeedLimit = access.PublicFeedLimit
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 200
	}
	registerAnnouncementValidations(validate)
	return &AnnouncementService{
		repo:      repo,
		files:     deps.Files,
		cache:     deps.Cache,
		directory: directoryJoin{lookup: deps.Directory, logger: logger},
		metrics:   deps.Metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func registerAnnouncementValidations(v *validator.Validate) {
	v.RegisterValidation("announcement_type", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAnnouncementType(fl.Field().String())
		return ok
	})
	v.RegisterValidation("announcement_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAnnouncementStatus(fl.Field().String())
		return ok
	})
}

// CreateAnnouncementRequest describes the create payload. It binds from JSON or multipart forms.
// Status is a hint honoured only for teacher routines; unknown values fall back to the default.
type CreateAnnouncementRequest struct {
	Title       string  `json:"title" form:"title" validate:"required,max=255"`
	Content     string  `json:"content" form:"content" validate:"required"`
	Type        string  `json:"type" form:"type" validate:"required,announcement_type"`
	TargetBatch *string `json:"target_batch" form:"target_batch"`
	Status      string  `json:"status" form:"status"`
}

// UpdateStatusRequest describes the status change payload.
type UpdateStatusRequest struct {
	Status   string `json:"status" validate:"required,announcement_status"`
	Feedback string `json:"feedback"`
}

// Attachment is an uploaded file accompanying a new announcement.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Create stores a new item. The attachment is uploaded before the insert so a
// storage failure leaves nothing behind.
func (s *AnnouncementService) Create(ctx context.Context, claims *models.JWTClaims, req CreateAnnouncementRequest, file *Attachment) (*models.AnnouncementView, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	itemType, _ := models.ParseAnnouncementType(req.Type)
	if err := access.AuthorizePost(claims, itemType); err != nil {
		s.denied("post", claims, err)
		return nil, err
	}
	requested, _ := models.ParseAnnouncementStatus(req.Status)

	item := &models.Announcement{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: claims.UserID,
		Type:     itemType,
		Status:   access.InitialStatus(itemType, claims.Role, requested),
	}
	if req.TargetBatch != nil && strings.TrimSpace(*req.TargetBatch) != "" {
		target := strings.TrimSpace(*req.TargetBatch)
		item.TargetBatchID = &target
	}

	var uploadedKey string
	if file != nil {
		url, key, err := s.upload(ctx, file)
		if err != nil {
			return nil, err
		}
		item.FileURL = &url
		uploadedKey = key
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Warn("announcement insert failed", zap.String("author_id", item.AuthorID), zap.Error(err))
		if uploadedKey != "" {
			if delErr := s.files.Delete(ctx, uploadedKey); delErr != nil {
				s.logger.Warn("orphaned attachment", zap.String("key", uploadedKey), zap.Error(delErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	s.metrics.RecordAnnouncementCreated(item.Type, item.Status)
	s.invalidatePublicFeed(ctx)
	s.logger.Info("announcement created",
		zap.String("id", item.ID),
		zap.String("type", string(item.Type)),
		zap.String("status", string(item.Status)),
	)
	return s.view(ctx, item), nil
}

func (s *AnnouncementService) upload(ctx context.Context, file *Attachment) (string, string, error) {
	if s.files == nil {
		return "", "", appErrors.Clone(appErrors.ErrStorage, "attachment storage is not configured")
	}
	if s.config.MaxFileSizeBytes > 0 && file.Size > s.config.MaxFileSizeBytes {
		return "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attachment exceeds %d bytes", s.config.MaxFileSizeBytes))
	}
	key := storage.ObjectKey("announcements", file.Filename)
	url, err := s.files.Upload(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		s.logger.Warn("attachment upload failed", zap.String("key", key), zap.Error(err))
		return "", "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return url, key, nil
}

// ListVisible returns what the caller may see, newest first.
func (s *AnnouncementService) ListVisible(ctx context.Context, claims *models.JWTClaims) ([]models.AnnouncementView, error) {
	filter, err := access.BuildFilter(claims)
	if err != nil {
		s.denied("list", claims, err)
		return nil, err
	}
	items, err := s.repo.List(ctx, filter, s.config.ListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return s.directory.announcements(ctx, items), nil
}

// ListPublic returns the newest approved notices. The second value reports a cache hit.
func (s *AnnouncementService) ListPublic(ctx context.Context) ([]models.AnnouncementView, bool, error) {
	if s.cache != nil {
		var cached []models.AnnouncementView
		if hit, err := s.cache.Get(ctx, publicFeedCacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}
	gen := s.feedGen.Load()
	items, err := s.repo.List(ctx, access.BuildPublicFilter(), s.config.PublicFeedLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list public announcements")
	}
	views := s.directory.announcements(ctx, items)
	// A read that raced an eviction is served but not cached.
	if s.cache != nil && s.feedGen.Load() == gen {
		_ = s.cache.Set(ctx, publicFeedCacheKey, views, s.config.PublicFeedCacheTTL)
	}
	return views, false, nil
}

// Delete removes an item. Only its author or the chairman may do so.
func (s *AnnouncementService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	item, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteAnnouncement(claims, item) {
		err := appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this announcement")
		s.denied("delete", claims, err)
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	s.invalidatePublicFeed(ctx)
	s.logger.Info("announcement deleted", zap.String("id", id), zap.String("by", claims.UserID))
	return nil
}

// ChangeStatus moves an item to a new status. Chairman only.
func (s *AnnouncementService) ChangeStatus(ctx context.Context, claims *models.JWTClaims, id string, req UpdateStatusRequest) (*models.AnnouncementView, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !access.CanChangeStatus(claims) {
		err := appErrors.Clone(appErrors.ErrForbidden, "not allowed to change announcement status")
		s.denied("change_status", claims, err)
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	item, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := access.ApplyStatusChange(claims, item, req.Status, req.Feedback, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement status")
	}
	s.metrics.RecordStatusTransition(item.Status, next.Status)
	s.invalidatePublicFeed(ctx)
	s.logger.Info("announcement status changed",
		zap.String("id", id),
		zap.String("from", string(item.Status)),
		zap.String("to", string(next.Status)),
	)
	return s.view(ctx, next), nil
}

// Get returns a single stored item, used to resolve feedback targets.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	return s.get(ctx, id)
}

func (s *AnnouncementService) get(ctx context.Context, id string) (*models.Announcement, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get announcement")
	}
	return item, nil
}

func (s *AnnouncementService) view(ctx context.Context, item *models.Announcement) *models.AnnouncementView {
	views := s.directory.announcements(ctx, []models.Announcement{*item})
	return &views[0]
}

func (s *AnnouncementService) invalidatePublicFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.feedGen.Add(1)
	_ = s.cache.Evict(ctx, publicFeedCacheKey)
}

func (s *AnnouncementService) denied(action string, claims *models.JWTClaims, err error) {
	var role models.UserRole
	var userID string
	if claims != nil {
		role, userID = claims.Role, claims.UserID
	}
	if appErrors.Is(err, appErrors.ErrForbidden) {
		s.metrics.RecordDenied("announcement."+action, role)
	}
	s.logger.Warn("announcement request refused",
		zap.String("action", action),
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.Error(err),
	)
}

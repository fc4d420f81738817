package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-portal-api/internal/middleware"
	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/service"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

type announcementServiceMock struct {
	gotReq    service.CreateAnnouncementRequest
	gotFile   []byte
	gotName   string
	createErr error
	publicHit bool
	statusReq service.UpdateStatusRequest
	statusErr error
}

func (m *announcementServiceMock) Create(ctx context.Context, claims *models.JWTClaims, req service.CreateAnnouncementRequest, file *service.Attachment) (*models.AnnouncementView, error) {
	m.gotReq = req
	if file != nil {
		m.gotName = file.Filename
		m.gotFile, _ = io.ReadAll(file.Body)
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.AnnouncementView{Announcement: models.Announcement{ID: "a-1", Title: req.Title, AuthorID: claims.UserID}}, nil
}

func (m *announcementServiceMock) ListVisible(ctx context.Context, claims *models.JWTClaims) ([]models.AnnouncementView, error) {
	return []models.AnnouncementView{}, nil
}

func (m *announcementServiceMock) ListPublic(ctx context.Context) ([]models.AnnouncementView, bool, error) {
	return []models.AnnouncementView{}, m.publicHit, nil
}

func (m *announcementServiceMock) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	return nil
}

func (m *announcementServiceMock) ChangeStatus(ctx context.Context, claims *models.JWTClaims, id string, req service.UpdateStatusRequest) (*models.AnnouncementView, error) {
	m.statusReq = req
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &models.AnnouncementView{Announcement: models.Announcement{ID: id}}, nil
}

func newAnnouncementTestContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-a", Role: models.RoleTeacher})
	return c, w
}

func TestAnnouncementHandlerCreateMultipart(t *testing.T) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "Routine week 3"))
	require.NoError(t, form.WriteField("content", "see attachment"))
	require.NoError(t, form.WriteField("type", "ROUTINE"))
	require.NoError(t, form.WriteField("status", "PENDING_APPROVAL"))
	require.NoError(t, form.WriteField("target_batch", "batch-x"))
	part, err := form.CreateFormFile("file", "routine.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req, _ := http.NewRequest(http.MethodPost, "/announcements", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	c, w := newAnnouncementTestContext(req)

	svc := &announcementServiceMock{}
	NewAnnouncementHandler(svc, nil).Create(c)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Routine week 3", svc.gotReq.Title)
	assert.Equal(t, "PENDING_APPROVAL", svc.gotReq.Status)
	require.NotNil(t, svc.gotReq.TargetBatch)
	assert.Equal(t, "batch-x", *svc.gotReq.TargetBatch)
	assert.Equal(t, "routine.pdf", svc.gotName)
	assert.Equal(t, "%PDF-1.4", string(svc.gotFile))
}

func TestAnnouncementHandlerCreateJSONWithoutFile(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/announcements", bytes.NewBufferString(`{"title":"T","content":"c","type":"NOTICE"}`))
	req.Header.Set("Content-Type", "application/json")
	c, w := newAnnouncementTestContext(req)

	svc := &announcementServiceMock{}
	NewAnnouncementHandler(svc, nil).Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, svc.gotFile)
	assert.Equal(t, "NOTICE", svc.gotReq.Type)
}

func TestAnnouncementHandlerCreateMalformedJSON(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/announcements", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	c, w := newAnnouncementTestContext(req)

	NewAnnouncementHandler(&announcementServiceMock{}, nil).Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestAnnouncementHandlerStorageFailure(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/announcements", bytes.NewBufferString(`{"title":"T","content":"c","type":"NOTICE"}`))
	req.Header.Set("Content-Type", "application/json")
	c, w := newAnnouncementTestContext(req)

	NewAnnouncementHandler(&announcementServiceMock{createErr: appErrors.ErrStorage}, nil).Create(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "STORAGE_ERROR")
}

func TestAnnouncementHandlerRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/announcements", nil)

	NewAnnouncementHandler(&announcementServiceMock{}, nil).List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnnouncementHandlerPublicReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAnnouncementHandler(&announcementServiceMock{publicHit: true}, nil)
	router.GET("/public", middleware.WithResponseMeta(), h.Public)

	req, _ := http.NewRequest(http.MethodGet, "/public", nil)
	w := performRequest(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache_hit":true`)
	assert.Contains(t, w.Body.String(), `"processing_time_ms":`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestAnnouncementHandlerUpdateStatus(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPut, "/announcements/a-1/status", bytes.NewBufferString(`{"status":"APPROVED","feedback":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	c, w := newAnnouncementTestContext(req)
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	svc := &announcementServiceMock{}
	NewAnnouncementHandler(svc, nil).UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "APPROVED", svc.statusReq.Status)
	assert.Equal(t, "ok", svc.statusReq.Feedback)
}

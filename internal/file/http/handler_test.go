package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/file"
)

const fileUUID = "9a0e5c2d-4b1f-4e8a-8c3d-2f6b7a1e0d55"

type fakeService struct {
	uploaded file.UploadInput
	body     []byte
}

func (f *fakeService) Upload(_ context.Context, in file.UploadInput) (*file.File, error) {
	f.uploaded = in
	f.body, _ = io.ReadAll(in.Content)
	thumb := "upload/9a/thumb.jpg"
	return &file.File{ID: fileUUID, Filename: in.Filename, ContentType: "image/png", ThumbnailPath: &thumb}, nil
}

func (f *fakeService) Get(context.Context, string) (*file.File, error) { return nil, file.ErrNotFound }

func (f *fakeService) Download(_ context.Context, id string) (io.ReadCloser, *file.File, error) {
	if id != fileUUID {
		return nil, nil, file.ErrNotFound
	}
	return io.NopCloser(strings.NewReader("png-bytes")), &file.File{ID: id, Filename: "a.png", ContentType: "image/png"}, nil
}

func (f *fakeService) DownloadThumbnail(context.Context, string) (io.ReadCloser, *file.File, error) {
	return nil, nil, file.ErrNoThumbnail
}

func (f *fakeService) Delete(_ context.Context, _ string, actorID string, _ bool) error {
	if actorID != "owner-1" {
		return file.ErrPermissionDenied
	}
	return nil
}

func setupRouter(svc file.Service, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	}
	RegisterRoutes(engine.Group("/v1"), NewHandler(svc), fakeAuth)
	return engine
}

func TestUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pitch.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	setupRouter(svc, "owner-1", auth.RoleStadiumOwner).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pitch.png", svc.uploaded.Filename)
	assert.Equal(t, "owner-1", svc.uploaded.UserID)
	assert.Equal(t, "png-bytes", string(svc.body))
	assert.Contains(t, w.Body.String(), `"thumbnail_url":"/v1/files/`+fileUUID+`/thumbnail"`)
}

func TestUploadRequiresOwner(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/files", nil)
	w := httptest.NewRecorder()
	setupRouter(&fakeService{}, "p", auth.RolePlayer).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/files", nil)
	w = httptest.NewRecorder()
	setupRouter(&fakeService{}, "owner-1", auth.RoleStadiumOwner).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing file field")
}

func TestServe(t *testing.T) {
	engine := setupRouter(&fakeService{}, "", "")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/files/"+fileUUID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/files/"+fileUUID+"/thumbnail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/files/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(&fakeService{}, "owner-2", auth.RoleStadiumOwner).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/files/"+fileUUID, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	setupRouter(&fakeService{}, "owner-1", auth.RoleStadiumOwner).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/files/"+fileUUID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/file"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{fileService: fileService}
}

func fileID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return "", false
	}
	return id, true
}

// Upload stores a stadium photo sent as multipart field "file".
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	src, err := header.Open()
	if err != nil {
		response.BadRequest(c, "unreadable upload", err)
		return
	}
	defer src.Close()

	f, err := h.fileService.Upload(c.Request.Context(), file.UploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  src,
		UserID:   auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewFileResponse(f))
}

func (h *Handler) ServeFile(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	stream, f, err := h.fileService.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Disposition", "inline; filename=\""+f.Filename+"\"")
	h.stream(c, f.ContentType, stream)
}

func (h *Handler) ServeThumbnail(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	stream, f, err := h.fileService.DownloadThumbnail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Disposition", "inline; filename=\""+f.Filename+"_thumb.jpg\"")
	h.stream(c, "image/jpeg", stream)
}

func (h *Handler) stream(c *gin.Context, contentType string, r io.Reader) {
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		// Headers are already sent.
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("stream file interrupted")
	}
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), id, auth.GetUserID(c), auth.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

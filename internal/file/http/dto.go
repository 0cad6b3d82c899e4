package http

import (
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/file"
)

type FileResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewFileResponse(f *file.File) FileResponse {
	resp := FileResponse{
		ID:          f.ID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		URL:         file.FileURL(f.ID),
		CreatedAt:   f.CreatedAt,
	}
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		resp.ThumbnailURL = &t
	}
	return resp
}

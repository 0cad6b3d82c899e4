package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "file not found")
	ErrNoThumbnail      = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrTooLarge         = apperror.New(http.StatusRequestEntityTooLarge, "file too large")
	ErrUnsupportedType  = apperror.New(http.StatusUnsupportedMediaType, "unsupported file type")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Stadium photos: JPEG, PNG and GIF up to 5 MiB.
const MaxPhotoBytes = 5 << 20

var PhotoTypes = []string{"image/jpeg", "image/png", "image/gif"}

// File is an uploaded stadium photo.
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}

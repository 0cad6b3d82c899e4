package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/storage"
)

// UploadInput carries one multipart upload.
type UploadInput struct {
	Filename string
	Size     int64
	Content  io.Reader
	UserID   string
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
	Delete(ctx context.Context, id, actorID string, isAdmin bool) error
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	logger  zerolog.Logger
}

func NewService(repo Repository, store storage.Storage, logger zerolog.Logger) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		logger:  logger.With().Str("component", "file").Logger(),
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	if in.Size > MaxPhotoBytes {
		return nil, ErrTooLarge
	}
	// Read one byte past the limit so a lying Size header is still caught.
	content, err := io.ReadAll(io.LimitReader(in.Content, MaxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(content) > MaxPhotoBytes {
		return nil, ErrTooLarge
	}

	// Trust the bytes, not the client's Content-Type header.
	contentType := http.DetectContentType(content)
	if !slices.Contains(PhotoTypes, contentType) {
		return nil, ErrUnsupportedType
	}

	fileID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(in.Filename))

	// Sharding path: upload/ab/UUID.ext
	shard := fileID[:2]
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("save file to storage: %w", err)
	}

	var thumbnailPath *string
	thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(content), storage.ThumbnailSize, storage.ThumbnailSize)
	if err != nil {
		s.logger.Warn().Err(err).Str("file_id", fileID).Msg("thumbnail generation failed")
	} else {
		tPath := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
		if err := s.storage.Save(ctx, tPath, thumb); err != nil {
			s.logger.Warn().Err(err).Str("file_id", fileID).Msg("thumbnail save failed")
		} else {
			thumbnailPath = &tPath
		}
	}

	f := &File{
		ID:            fileID,
		UserID:        in.UserID,
		Filename:      filepath.Base(in.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		// Cleanup storage if db fails
		_ = s.storage.Delete(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.storage.Delete(ctx, *thumbnailPath)
		}
		return nil, err
	}

	return f, nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve file from storage: %w", err)
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve thumbnail from storage: %w", err)
	}
	return stream, f, nil
}

// Delete removes a file. Only the uploader or an admin may delete it.
func (s *service) Delete(ctx context.Context, id, actorID string, isAdmin bool) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && f.UserID != actorID {
		return ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Storage cleanup is best effort once the record is gone.
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		s.logger.Warn().Err(err).Str("file_id", id).Msg("delete stored file failed")
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			s.logger.Warn().Err(err).Str("file_id", id).Msg("delete thumbnail failed")
		}
	}
	return nil
}

package notification

import "context"

type Service interface {
	List(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]*Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]*Notification, int, error) {
	return s.repo.List(ctx, userID, unreadOnly, page, pageSize)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead only touches the caller's own notifications; anything else is reported as not found.
func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

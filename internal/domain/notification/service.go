package notification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"servicematch/internal/pkg/apperr"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the read side of the inbox.
type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type ListResult struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
	Total         int64          `json:"total"`
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) (*ListResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if rows == nil {
		rows = []Notification{}
	}
	return &ListResult{Notifications: rows, UnreadCount: unread, Total: total}, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	err := s.repo.MarkAsRead(ctx, id, userID, s.now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return apperr.Persistence(err)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

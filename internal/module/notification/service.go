package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gatherly/server/internal/utils/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	unreadCountKeyPrefix = "notif:unread:"
	unreadCountTTL       = 5 * time.Minute
)

// Service manages notification projections and read state. The unread
// count is cached in Redis and invalidated on every write; when Redis
// is unavailable the service falls back to the database.
type Service struct {
	repo    Repository
	cache   redis.UniversalClient
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a new notification service. cache may be nil.
func NewService(repo Repository, cache redis.UniversalClient, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// Notify records a notification and invalidates the recipient's cached
// unread count.
func (s *Service) Notify(ctx context.Context, recipientID uuid.UUID, kind Kind, collaborationID uuid.UUID, message string) error {
	n := &Notification{
		ID:              uuid.New(),
		RecipientID:     recipientID,
		Kind:            kind,
		CollaborationID: collaborationID,
		Message:         message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, recipientID)
	return nil
}

// List returns a recipient's notifications, newest first.
func (s *Service) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, recipientID, unreadOnly, limit, offset)
}

// MarkRead marks one notification read.
func (s *Service) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, recipientID)
	return nil
}

// MarkAllRead marks every unread notification of a recipient read.
func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, recipientID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, recipientID)
	return nil
}

// UnreadCount returns the recipient's unread notification count, served
// from Redis when warm.
func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	key := unreadCountKey(recipientID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				s.metrics.RecordCacheHit("unread_count")
				return count, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("unread count cache read failed", zap.Error(err))
		}
	}

	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordCacheMiss("unread_count")

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatInt(count, 10), unreadCountTTL).Err(); err != nil {
			s.logger.Warn("unread count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

func (s *Service) invalidateUnreadCount(ctx context.Context, recipientID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadCountKey(recipientID)).Err(); err != nil {
		s.logger.Warn("unread count invalidation failed",
			zap.String("recipient_id", recipientID.String()),
			zap.Error(err))
	}
}

func unreadCountKey(recipientID uuid.UUID) string {
	return fmt.Sprintf("%s%s", unreadCountKeyPrefix, recipientID)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidNotificationType = errors.New("invalid notification type")

type NotificationService interface {
	Create(ctx context.Context, userUID, title, message string, typ model.NotificationType, refID, refType string) (*model.Notification, error)
	// Notify is the best-effort variant used by other services: failures are
	// logged, never propagated into the calling flow.
	Notify(ctx context.Context, userUID, title, message string, typ model.NotificationType, refID, refType string)
	ListUnread(ctx context.Context, userUID string, limit int) ([]model.Notification, int64, error)
	// MarkRead is idempotent: marking an already-read notification is a no-op.
	// Notifications belonging to another user read as not found.
	MarkRead(ctx context.Context, userUID string, id uint64) error
	// ClearAll marks the whole unread set read in one conditional update and
	// reports failure to the caller.
	ClearAll(ctx context.Context, userUID string) error
	CountUnread(ctx context.Context, userUID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &notificationService{repo: repo, log: log}
}

func (s *notificationService) Create(ctx context.Context, userUID, title, message string, typ model.NotificationType, refID, refType string) (*model.Notification, error) {
	if userUID == "" {
		return nil, ErrNotFound
	}
	if !typ.Valid() {
		return nil, ErrInvalidNotificationType
	}
	n := &model.Notification{
		UserUID:       userUID,
		Title:         title,
		Message:       message,
		Type:          typ,
		ReferenceID:   refID,
		ReferenceType: refType,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) Notify(ctx context.Context, userUID, title, message string, typ model.NotificationType, refID, refType string) {
	if _, err := s.Create(ctx, userUID, title, message, typ, refID, refType); err != nil {
		s.log.Warn("notification dropped",
			zap.String("user", userUID),
			zap.String("type", string(typ)),
			zap.Error(err))
	}
}

func (s *notificationService) ListUnread(ctx context.Context, userUID string, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListUnread(ctx, userUID, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userUID string, id uint64) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if n.UserUID != userUID {
		return ErrNotFound
	}
	if n.Read() {
		return nil
	}
	return s.repo.MarkRead(ctx, id, time.Now())
}

func (s *notificationService) ClearAll(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID, time.Now())
}

func (s *notificationService) CountUnread(ctx context.Context, userUID string) (int64, error) {
	return s.repo.CountUnread(ctx, userUID)
}

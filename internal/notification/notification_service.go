package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-leave/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultDedupeTTL = 24 * time.Hour

type Service interface {
	LeaveCreated(ctx context.Context, event events.LeaveCreatedEvent) error
	LeaveActioned(ctx context.Context, event events.LeaveActionedEvent) error
}

type service struct {
	notifier  Notifier
	rdb       *redis.Client
	dedupeTTL time.Duration
	logger    *zap.Logger
}

// NewService turns lifecycle events into notifications. With rdb set, an
// event that was already notified (outbox redelivery) is skipped.
func NewService(notifier Notifier, rdb *redis.Client, dedupeTTL time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	if dedupeTTL <= 0 {
		dedupeTTL = defaultDedupeTTL
	}
	return &service{notifier: notifier, rdb: rdb, dedupeTTL: dedupeTTL, logger: l}
}

func DedupeKey(eventType, leaveID, status string) string {
	return fmt.Sprintf("notification:%s:%s:%s", eventType, leaveID, strings.ToLower(status))
}

func (s *service) LeaveCreated(ctx context.Context, event events.LeaveCreatedEvent) error {
	recipient := ""
	if event.Leave.ManagerID != nil {
		recipient = *event.Leave.ManagerID
	} else if event.Profile.ManagerID != nil {
		recipient = *event.Profile.ManagerID
	}
	if recipient == "" {
		s.logger.Warn("leave created without manager, nothing to notify", zap.String("leave_id", event.Leave.ID))
		return nil
	}

	return s.deliver(ctx, DedupeKey(event.EventType, event.Leave.ID, event.Leave.Status), Notification{
		Kind:        KindReviewRequested,
		RecipientID: recipient,
		LeaveID:     event.Leave.ID,
		RequestID:   event.RequestID,
		Subject:     fmt.Sprintf("%s requested %s leave", displayName(event.Profile), strings.ToLower(event.Leave.LeaveType)),
		Body: fmt.Sprintf("%d day(s) from %s to %s. Reason: %s",
			event.Leave.DaysRequested, event.Leave.StartDate, event.Leave.EndDate, orDash(event.Leave.Reason)),
	})
}

func (s *service) LeaveActioned(ctx context.Context, event events.LeaveActionedEvent) error {
	body := fmt.Sprintf("Your %s leave from %s to %s was %s.",
		strings.ToLower(event.Leave.LeaveType), event.Leave.StartDate, event.Leave.EndDate, strings.ToLower(event.Status))
	if event.Leave.ReviewReason != nil {
		body += " Note: " + *event.Leave.ReviewReason
	}

	return s.deliver(ctx, DedupeKey(event.EventType, event.Leave.ID, event.Status), Notification{
		Kind:        KindDecisionMade,
		RecipientID: event.Leave.EmployeeID,
		LeaveID:     event.Leave.ID,
		RequestID:   event.RequestID,
		Subject:     fmt.Sprintf("Leave request %s", strings.ToLower(event.Status)),
		Body:        body,
	})
}

func (s *service) deliver(ctx context.Context, key string, n Notification) error {
	if s.rdb != nil {
		fresh, err := s.rdb.SetNX(ctx, key, n.RecipientID, s.dedupeTTL).Result()
		if err != nil {
			// redis down: prefer a duplicate over a lost notification
			s.logger.Warn("notification dedupe unavailable", zap.String("key", key), zap.Error(err))
		} else if !fresh {
			s.logger.Info("notification already sent, skipping", zap.String("key", key))
			return nil
		}
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("kind", n.Kind),
			zap.String("leave_id", n.LeaveID),
			zap.Error(err),
		)
		if s.rdb != nil {
			_ = s.rdb.Del(ctx, key).Err()
		}
		return err
	}
	return nil
}

func displayName(p events.ProfileSnapshot) string {
	if p.FullName != "" {
		return p.FullName
	}
	return "Employee " + p.ID
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

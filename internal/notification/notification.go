package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	KindReviewRequested = "LEAVE_REVIEW_REQUESTED"
	KindDecisionMade    = "LEAVE_DECISION_MADE"
)

// Notification is what would be delivered to a single person. Delivery
// channels (mail, chat) live outside this module.
type Notification struct {
	Kind        string
	RecipientID string
	LeaveID     string
	RequestID   string
	Subject     string
	Body        string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger ...*zap.Logger) *LogNotifier {
	l := zap.L().Named("notification.log")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.log")
	}
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Notify(_ context.Context, msg Notification) error {
	if msg.RecipientID == "" {
		return fmt.Errorf("notification %s for leave %s has no recipient", msg.Kind, msg.LeaveID)
	}
	n.logger.Info("notification delivered",
		zap.String("kind", msg.Kind),
		zap.String("recipient_id", msg.RecipientID),
		zap.String("leave_id", msg.LeaveID),
		zap.String("request_id", msg.RequestID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

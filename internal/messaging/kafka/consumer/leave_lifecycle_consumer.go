package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const maxHandleAttempts = 3

var retryBackoff = 500 * time.Millisecond

// MessageReader is the part of *kafkago.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	notifications notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		if err := handleWithRetry(ctx, msg, notifications, log); err != nil {
			log.Error("leave lifecycle message dropped after retries",
				zap.Int64("offset", msg.Offset),
				zap.ByteString("key", msg.Key),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
		}
	}
}

func handleWithRetry(ctx context.Context, msg kafkago.Message, notifications notification.Service, log *zap.Logger) error {
	var err error
	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		if err = handleLeaveLifecycle(ctx, msg, notifications, log); err == nil {
			return nil
		}
		if attempt == maxHandleAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}

// handleLeaveLifecycle returns an error only when the message should be
// retried. Undecodable and unknown messages are acknowledged and dropped.
func handleLeaveLifecycle(ctx context.Context, msg kafkago.Message, notifications notification.Service, log *zap.Logger) error {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		log.Error("decode leave lifecycle envelope failed", zap.ByteString("key", msg.Key), zap.Error(err))
		return nil
	}

	switch envelope.EventType {
	case events.LeaveCreated:
		var event events.LeaveCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave.created event failed", zap.Error(err))
			return nil
		}
		if err := notifications.LeaveCreated(ctx, event); err != nil {
			log.Error("notify leave.created failed", zap.String("leave_id", event.Leave.ID), zap.Error(err))
			return err
		}
		log.Info("leave.created handled", zap.String("leave_id", event.Leave.ID), zap.String("request_id", envelope.RequestID))

	case events.LeaveActioned:
		var event events.LeaveActionedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave.actioned event failed", zap.Error(err))
			return nil
		}
		if err := notifications.LeaveActioned(ctx, event); err != nil {
			log.Error("notify leave.actioned failed", zap.String("leave_id", event.Leave.ID), zap.Error(err))
			return err
		}
		log.Info("leave.actioned handled",
			zap.String("leave_id", event.Leave.ID),
			zap.String("status", event.Status),
			zap.String("request_id", envelope.RequestID),
		)

	default:
		log.Warn("unknown leave lifecycle event, skipping", zap.String("event_type", envelope.EventType))
	}
	return nil
}

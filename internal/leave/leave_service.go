package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/leavebalance"
	"go-leave/internal/leavepolicy"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/profile"
	profileerrors "go-leave/internal/profile/errors"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/dbutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const aggregateType = "leave_request"

type Service interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	ListByEmployee(ctx context.Context, employeeID, status string) ([]LeaveResponse, error)
	Action(ctx context.Context, id string, req ActionLeaveRequest) (LeaveResponse, error)
}

// EventPublisher delivers lifecycle events after commit when no outbox is
// configured. Failures are logged and never reach the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.OutboxEvent) error
}

type service struct {
	db          *sql.DB
	repo        Repository
	profiles    profile.Repository
	balances    leavebalance.Repository
	provisioner leavebalance.Provisioner
	outbox      kafka.OutboxRepository
	publisher   EventPublisher
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	profiles profile.Repository,
	balances leavebalance.Repository,
	provisioner leavebalance.Provisioner,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithEvents(db, repo, profiles, balances, provisioner, nil, nil, logger...)
}

// NewServiceWithEvents wires event delivery. A non-nil outbox wins: events are
// written in the same transaction as the request. Otherwise publisher, when
// set, is called after commit.
func NewServiceWithEvents(
	db *sql.DB,
	repo Repository,
	profiles profile.Repository,
	balances leavebalance.Repository,
	provisioner leavebalance.Provisioner,
	outbox kafka.OutboxRepository,
	publisher EventPublisher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		profiles:    profiles,
		balances:    balances,
		provisioner: provisioner,
		outbox:      outbox,
		publisher:   publisher,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	leaveType := leavepolicy.LeaveType(strings.ToUpper(req.LeaveType))
	if !leaveType.Valid() {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	days, err := CalculateDays(startDate, endDate)
	if err != nil {
		s.logger.Warn("create leave invalid date range",
			zap.String("request_id", rid),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, err
	}

	employee, err := s.profiles.FindByID(ctx, employeeID.String())
	if err != nil {
		if !errors.Is(err, profileerrors.ErrProfileNotFound) {
			s.logger.Error("create leave profile lookup failed", zap.String("request_id", rid), zap.Error(err))
		}
		return LeaveResponse{}, err
	}

	year := startDate.Year()
	balance, err := s.provisioner.GetOrCreate(ctx, *employee, leaveType, year)
	if err != nil {
		return LeaveResponse{}, err
	}
	if available := balance.Available(); days > available {
		s.logger.Warn("create leave insufficient balance",
			zap.String("request_id", rid),
			zap.String("employee_id", employee.ID.String()),
			zap.String("leave_type", string(leaveType)),
			zap.Int("year", year),
			zap.Int("requested_days", days),
			zap.Int("available_days", available),
		)
		return LeaveResponse{}, leaveerrors.InsufficientBalance(days, available, string(leaveType), year)
	}

	l := &LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    employee.ID,
		LeaveType:     leaveType,
		StartDate:     startDate,
		EndDate:       endDate,
		DaysRequested: days,
		Reason:        strings.TrimSpace(req.Reason),
		Status:        StatusPending,
		ManagerID:     employee.ManagerID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	// without a manager nobody is waiting for the review notification
	var event *kafka.OutboxEvent
	if l.ManagerID != nil {
		e, err := kafka.NewOutboxEvent(rid, aggregateType, l.ID.String(), events.LeaveCreated, events.LeaveLifecycleTopic,
			events.LeaveCreatedEvent{
				EventType:  events.LeaveCreated,
				RequestID:  rid,
				Leave:      leaveSnapshot(*l),
				Profile:    profileSnapshot(*employee),
				OccurredAt: time.Now().UTC(),
			})
		if err != nil {
			s.logger.Error("create leave event encode failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		} else {
			event = &e
		}
	}
	if err := s.queueEvent(ctx, tx, event); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.publishEvent(ctx, event)

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", employee.ID.String()),
		zap.Int("days_requested", days),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) ListByEmployee(ctx context.Context, employeeID, status string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}
	status = strings.ToUpper(status)
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, leaveerrors.ErrInvalidStatus
	}

	if _, err := s.profiles.FindByID(ctx, employeeID); err != nil {
		return nil, err
	}

	leaves, err := s.repo.ListByEmployee(ctx, employeeID, status)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

// Action records a manager decision. Status change and balance consumption
// commit together or not at all.
func (s *service) Action(ctx context.Context, id string, req ActionLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("action leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("manager_id", req.ManagerID),
		zap.String("decision", req.Decision),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	managerID, err := uuid.Parse(req.ManagerID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidManagerID
	}
	decision := strings.ToUpper(strings.TrimSpace(req.Decision))
	if decision != StatusApproved && decision != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrInvalidDecision
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("action leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("action leave already actioned",
			zap.String("request_id", rid),
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyActioned
	}

	now := time.Now().UTC()
	l.Status = decision
	l.ReviewedBy = &managerID
	l.ReviewReason = normalizeReason(req.Reason)
	l.ReviewedAt = &now

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("action leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if decision == StatusApproved {
		if err := s.consumeBalance(ctx, tx, l); err != nil {
			return LeaveResponse{}, err
		}
	}

	employee := s.loadEventProfile(ctx, tx, l.EmployeeID)
	e, err := kafka.NewOutboxEvent(rid, aggregateType, l.ID.String(), events.LeaveActioned, events.LeaveLifecycleTopic,
		events.LeaveActionedEvent{
			EventType:  events.LeaveActioned,
			RequestID:  rid,
			Leave:      leaveSnapshot(*l),
			Profile:    employee,
			Status:     l.Status,
			OccurredAt: now,
		})
	var event *kafka.OutboxEvent
	if err != nil {
		s.logger.Error("action leave event encode failed", zap.String("leave_id", id), zap.Error(err))
	} else {
		event = &e
	}
	if err := s.queueEvent(ctx, tx, event); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("action leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.publishEvent(ctx, event)

	s.logger.Info("action leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", l.Status),
		zap.String("manager_id", managerID.String()),
	)
	return mapToResponse(*l), nil
}

// consumeBalance locks the balance of the request's year and moves the
// requested days into days_used. The increment is guarded in SQL as well, so
// the quota holds even if the lock is not honoured by the driver.
func (s *service) consumeBalance(ctx context.Context, tx *sql.Tx, l *LeaveRequest) error {
	year := l.StartDate.Year()
	btx := s.balances.WithTx(tx)

	b, err := btx.FindByKeyForUpdate(ctx, l.EmployeeID.String(), l.LeaveType, year)
	if err != nil {
		if errors.Is(err, dbutil.ErrNotFound) {
			s.logger.Warn("action leave balance missing",
				zap.String("leave_id", l.ID.String()),
				zap.Int("year", year),
			)
			return leaveerrors.InsufficientBalance(l.DaysRequested, 0, string(l.LeaveType), year)
		}
		s.logger.Error("action leave balance lookup failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return err
	}

	if available := b.Available(); available < l.DaysRequested {
		s.logger.Warn("action leave insufficient balance",
			zap.String("leave_id", l.ID.String()),
			zap.Int("requested_days", l.DaysRequested),
			zap.Int("available_days", available),
		)
		return leaveerrors.InsufficientBalance(l.DaysRequested, available, string(l.LeaveType), year)
	}

	ok, err := btx.IncrementUsed(ctx, b.ID.String(), l.DaysRequested)
	if err != nil {
		s.logger.Error("action leave balance update failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return err
	}
	if !ok {
		return leaveerrors.InsufficientBalance(l.DaysRequested, b.Available(), string(l.LeaveType), year)
	}
	return nil
}

func (s *service) loadEventProfile(ctx context.Context, tx *sql.Tx, employeeID uuid.UUID) events.ProfileSnapshot {
	p, err := s.profiles.WithTx(tx).FindByID(ctx, employeeID.String())
	if err != nil {
		s.logger.Warn("leave event profile lookup failed",
			zap.String("employee_id", employeeID.String()),
			zap.Error(err),
		)
		return events.ProfileSnapshot{ID: employeeID.String()}
	}
	return profileSnapshot(*p)
}

// queueEvent writes event to the outbox inside tx. Without an outbox it is a
// no-op and publishEvent delivers after commit.
func (s *service) queueEvent(ctx context.Context, tx *sql.Tx, event *kafka.OutboxEvent) error {
	if event == nil || s.outbox == nil {
		return nil
	}
	if err := s.outbox.WithTx(tx).Create(ctx, *event); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.String("leave_id", event.AggregateID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("leave outbox queued",
		zap.String("leave_id", event.AggregateID),
		zap.String("event_type", event.EventType),
	)
	return nil
}

func (s *service) publishEvent(ctx context.Context, event *kafka.OutboxEvent) {
	if event == nil || s.outbox != nil || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, *event); err != nil {
		s.logger.Error("leave event publish failed",
			zap.String("leave_id", event.AggregateID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

func normalizeReason(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func leaveSnapshot(l LeaveRequest) events.LeaveSnapshot {
	resp := mapToResponse(l)
	return events.LeaveSnapshot{
		ID:            resp.ID,
		EmployeeID:    resp.EmployeeID,
		LeaveType:     resp.LeaveType,
		StartDate:     resp.StartDate,
		EndDate:       resp.EndDate,
		DaysRequested: resp.DaysRequested,
		Reason:        resp.Reason,
		Status:        resp.Status,
		ManagerID:     resp.ManagerID,
		ReviewedBy:    resp.ReviewedBy,
		ReviewReason:  resp.ReviewReason,
		ReviewedAt:    l.ReviewedAt,
	}
}

func profileSnapshot(p profile.Profile) events.ProfileSnapshot {
	dto := profile.MapToResponse(p)
	return events.ProfileSnapshot{
		ID:           dto.ID,
		FullName:     dto.FullName,
		Department:   dto.Department,
		Site:         dto.Site,
		ContractType: dto.ContractType,
		Role:         dto.Role,
		ManagerID:    dto.ManagerID,
	}
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID.String(),
		EmployeeID:    l.EmployeeID.String(),
		LeaveType:     string(l.LeaveType),
		StartDate:     l.StartDate.Format(time.DateOnly),
		EndDate:       l.EndDate.Format(time.DateOnly),
		DaysRequested: l.DaysRequested,
		Reason:        l.Reason,
		Status:        l.Status,
		ReviewReason:  l.ReviewReason,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.Format(time.RFC3339),
	}
	if l.ManagerID != nil {
		v := l.ManagerID.String()
		resp.ManagerID = &v
	}
	if l.ReviewedBy != nil {
		v := l.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if l.ReviewedAt != nil {
		v := l.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

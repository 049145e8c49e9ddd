package leavepolicy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	leavepolicyerrors "go-leave/internal/leavepolicy/errors"
	"go-leave/internal/profile"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const CandidatesKeyPrefix = "leave_policies:candidates:"

func CandidatesCacheKey(leaveType LeaveType) string {
	return CandidatesKeyPrefix + string(leaveType)
}

// Resolver is the read side used by balance provisioning.
type Resolver interface {
	Resolve(ctx context.Context, subject profile.Profile, leaveType LeaveType) (LeavePolicy, error)
}

type Service interface {
	Resolver
	Create(ctx context.Context, req CreateLeavePolicyRequest) (LeavePolicyResponse, error)
	GetAll(ctx context.Context, leaveType string) ([]LeavePolicyResponse, error)
	GetByID(ctx context.Context, id string) (LeavePolicyResponse, error)
	Update(ctx context.Context, id string, req UpdateLeavePolicyRequest) (LeavePolicyResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	rdb      *redis.Client
	cacheTTL time.Duration
	sf       *singleflight.Group
	logger   *zap.Logger

	// generation moves on every invalidation; a load that started before
	// the move must not write its list back to the cache.
	generation atomic.Int64
}

// NewService builds the policy catalog. rdb may be nil, in which case every
// resolution reads candidates from the database.
func NewService(db *sql.DB, repo Repository, rdb *redis.Client, cacheTTL time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavepolicy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavepolicy.service")
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &service{
		db:       db,
		repo:     repo,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, req CreateLeavePolicyRequest) (LeavePolicyResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave policy requested",
		zap.String("request_id", rid),
		zap.String("name", req.Name),
		zap.String("leave_type", req.LeaveType),
	)

	p := &LeavePolicy{ID: uuid.New()}
	if err := applyRequest(p, req); err != nil {
		s.logger.Warn("create leave policy validation failed", zap.Error(err))
		return LeavePolicyResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave policy begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, p); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, leavepolicyerrors.ErrPolicyNameExists) {
			s.logger.Warn("create leave policy duplicate name", zap.String("name", p.Name))
		} else {
			s.logger.Error("create leave policy persist failed", zap.Error(err))
		}
		return LeavePolicyResponse{}, mapped
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave policy commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	s.invalidateCandidates(ctx)

	s.logger.Info("create leave policy success",
		zap.String("request_id", rid),
		zap.String("policy_id", p.ID.String()),
		zap.Int("specificity", Specificity(*p)),
	)
	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context, leaveType string) ([]LeavePolicyResponse, error) {
	var filter *LeaveType
	if leaveType != "" {
		lt := LeaveType(strings.ToUpper(leaveType))
		if !lt.Valid() {
			return nil, leavepolicyerrors.ErrInvalidLeaveType
		}
		filter = &lt
	}

	policies, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all leave policies failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(policies), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeavePolicyResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidPolicyID
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*p), nil
}

// Update replaces the policy. Balances already provisioned from it keep the
// allocation they were created with.
func (s *service) Update(ctx context.Context, id string, req UpdateLeavePolicyRequest) (LeavePolicyResponse, error) {
	s.logger.Debug("update leave policy requested", zap.String("policy_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidPolicyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave policy begin tx failed", zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}
	if err := applyRequest(p, CreateLeavePolicyRequest(req)); err != nil {
		s.logger.Warn("update leave policy validation failed", zap.String("policy_id", id), zap.Error(err))
		return LeavePolicyResponse{}, err
	}

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("update leave policy persist failed", zap.String("policy_id", id), zap.Error(err))
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave policy commit failed", zap.String("policy_id", id), zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	s.invalidateCandidates(ctx)

	s.logger.Info("update leave policy success", zap.String("policy_id", id))
	return mapToResponse(*p), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leavepolicyerrors.ErrInvalidPolicyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete leave policy begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete leave policy failed", zap.String("policy_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if !deleted {
		return leavepolicyerrors.ErrPolicyNotFound
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leave policy commit failed", zap.String("policy_id", id), zap.Error(err))
		return err
	}
	s.invalidateCandidates(ctx)

	s.logger.Info("delete leave policy success", zap.String("policy_id", id))
	return nil
}

func (s *service) Resolve(ctx context.Context, subject profile.Profile, leaveType LeaveType) (LeavePolicy, error) {
	candidates, err := s.candidates(ctx, leaveType)
	if err != nil {
		s.logger.Error("load leave policy candidates failed",
			zap.String("leave_type", string(leaveType)),
			zap.Error(err),
		)
		return LeavePolicy{}, err
	}

	p, ok := Resolve(candidates, subject, leaveType)
	if !ok {
		s.logger.Info("no leave policy matches employee",
			zap.String("employee_id", subject.ID.String()),
			zap.String("leave_type", string(leaveType)),
			zap.String("contract_type", string(subject.ContractType)),
		)
		return LeavePolicy{}, leavepolicyerrors.ErrNoMatchingPolicy.WithDetails(map[string]any{
			"leave_type":    leaveType,
			"contract_type": subject.ContractType,
		})
	}

	s.logger.Debug("leave policy resolved",
		zap.String("employee_id", subject.ID.String()),
		zap.String("policy_id", p.ID.String()),
		zap.Int("specificity", Specificity(p)),
	)
	return p, nil
}

func (s *service) candidates(ctx context.Context, leaveType LeaveType) ([]LeavePolicy, error) {
	cacheKey := CandidatesCacheKey(leaveType)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var policies []LeavePolicy
			if json.Unmarshal([]byte(cached), &policies) == nil {
				return policies, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("leave policy cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	// concurrent first requests for the same leave type share one query.
	// The load outlives any single caller, so it ignores their cancellation.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := s.generation.Load()

		policies, err := s.repo.FindByLeaveType(loadCtx, leaveType)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if s.generation.Load() != gen {
				s.logger.Debug("leave policy cache write skipped", zap.String("key", cacheKey))
				return policies, nil
			}
			if data, err := json.Marshal(policies); err == nil {
				if err := s.rdb.Set(loadCtx, cacheKey, data, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("leave policy cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return policies, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]LeavePolicy), nil
}

func (s *service) invalidateCandidates(ctx context.Context) {
	s.generation.Add(1)
	keys := make([]string, len(AllLeaveTypes))
	for i, lt := range AllLeaveTypes {
		keys[i] = CandidatesCacheKey(lt)
		s.sf.Forget(keys[i])
	}
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error("failed to invalidate leave policy cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func applyRequest(p *LeavePolicy, req CreateLeavePolicyRequest) error {
	leaveType := LeaveType(strings.ToUpper(req.LeaveType))
	if !leaveType.Valid() {
		return leavepolicyerrors.ErrInvalidLeaveType
	}
	if req.MinSeniority != nil && req.MaxSeniority != nil && *req.MinSeniority > *req.MaxSeniority {
		return leavepolicyerrors.ErrInvalidSeniorityRange
	}

	p.Name = strings.TrimSpace(req.Name)
	p.LeaveType = leaveType
	p.DaysAllocated = 0
	if req.DaysAllocated != nil {
		p.DaysAllocated = *req.DaysAllocated
	}
	p.ContractType = normalizeCriterion(req.ContractType)
	p.Role = normalizeCriterion(req.Role)
	p.Department = normalizeCriterion(req.Department)
	p.Site = normalizeCriterion(req.Site)
	p.MinSeniority = req.MinSeniority
	p.MaxSeniority = req.MaxSeniority
	p.CarryOverEnabled = req.CarryOverEnabled
	p.MaxCarryOverDays = req.MaxCarryOverDays
	return nil
}

// normalizeCriterion stores blank criteria as NULL so they match everyone.
func normalizeCriterion(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapToResponse(p LeavePolicy) LeavePolicyResponse {
	return LeavePolicyResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		LeaveType:        string(p.LeaveType),
		DaysAllocated:    p.DaysAllocated,
		ContractType:     p.ContractType,
		Role:             p.Role,
		Department:       p.Department,
		Site:             p.Site,
		MinSeniority:     p.MinSeniority,
		MaxSeniority:     p.MaxSeniority,
		CarryOverEnabled: p.CarryOverEnabled,
		MaxCarryOverDays: p.MaxCarryOverDays,
		Specificity:      Specificity(p),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(policies []LeavePolicy) []LeavePolicyResponse {
	resp := make([]LeavePolicyResponse, len(policies))
	for i, p := range policies {
		resp[i] = mapToResponse(p)
	}
	return resp
}

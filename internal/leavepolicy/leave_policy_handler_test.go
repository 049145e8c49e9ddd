package leavepolicy_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-leave/internal/leavepolicy"
	leavepolicyerrors "go-leave/internal/leavepolicy/errors"
	"go-leave/internal/profile"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  *apiMeta        `json:"meta"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeavePolicyService struct {
	createFn  func(ctx context.Context, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error)
	getAllFn  func(ctx context.Context, leaveType string) ([]leavepolicy.LeavePolicyResponse, error)
	getByIDFn func(ctx context.Context, id string) (leavepolicy.LeavePolicyResponse, error)
	updateFn  func(ctx context.Context, id string, req leavepolicy.UpdateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (f *fakeLeavePolicyService) Resolve(ctx context.Context, subject profile.Profile, leaveType leavepolicy.LeaveType) (leavepolicy.LeavePolicy, error) {
	return leavepolicy.LeavePolicy{}, nil
}
func (f *fakeLeavePolicyService) Create(ctx context.Context, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
	return f.createFn(ctx, req)
}
func (f *fakeLeavePolicyService) GetAll(ctx context.Context, leaveType string) ([]leavepolicy.LeavePolicyResponse, error) {
	return f.getAllFn(ctx, leaveType)
}
func (f *fakeLeavePolicyService) GetByID(ctx context.Context, id string) (leavepolicy.LeavePolicyResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeLeavePolicyService) Update(ctx context.Context, id string, req leavepolicy.UpdateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
	return f.updateFn(ctx, id, req)
}
func (f *fakeLeavePolicyService) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func newRouter(svc leavepolicy.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	leavepolicy.RegisterRoutes(r.Group("/api/v1"), leavepolicy.NewHandler(svc))
	return r
}

func TestLeavePolicyHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeLeavePolicyService{
			createFn: func(ctx context.Context, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
				assert.Equal(t, "Full time vacation", req.Name)
				assert.Equal(t, 20, *req.DaysAllocated)
				return leavepolicy.LeavePolicyResponse{
					ID:            uuid.New().String(),
					Name:          req.Name,
					LeaveType:     req.LeaveType,
					DaysAllocated: *req.DaysAllocated,
					ContractType:  req.ContractType,
					Specificity:   leavepolicy.WeightContractType,
				}, nil
			},
		}

		w := httptest.NewRecorder()
		body := `{"name":"Full time vacation","leave_type":"VACATION","days_allocated":20,"contract_type":"FULL_TIME"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-policies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leavepolicy.LeavePolicyResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "VACATION", got.LeaveType)
		assert.Equal(t, 16, got.Specificity)
	})

	t.Run("zero days is allowed", func(t *testing.T) {
		svc := &fakeLeavePolicyService{
			createFn: func(ctx context.Context, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
				assert.Equal(t, 0, *req.DaysAllocated)
				return leavepolicy.LeavePolicyResponse{Name: req.Name}, nil
			},
		}

		w := httptest.NewRecorder()
		body := `{"name":"Unpaid","leave_type":"UNPAID","days_allocated":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-policies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		newRouter(svc).ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"name":"Bad","leave_type":"SABBATICAL","days_allocated":5}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-policies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		newRouter(&fakeLeavePolicyService{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("duplicate name", func(t *testing.T) {
		svc := &fakeLeavePolicyService{
			createFn: func(ctx context.Context, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
				return leavepolicy.LeavePolicyResponse{}, leavepolicyerrors.ErrPolicyNameExists
			},
		}

		w := httptest.NewRecorder()
		body := `{"name":"Dup","leave_type":"SICK","days_allocated":5}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-policies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestLeavePolicyHandler_GetAll(t *testing.T) {
	svc := &fakeLeavePolicyService{
		getAllFn: func(ctx context.Context, leaveType string) ([]leavepolicy.LeavePolicyResponse, error) {
			assert.Equal(t, "VACATION", leaveType)
			return []leavepolicy.LeavePolicyResponse{{Name: "a"}, {Name: "b"}, {Name: "c"}}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-policies?leave_type=VACATION&page=2&page_size=2", nil)

	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	var got []leavepolicy.LeavePolicyResponse
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, int64(3), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)
}

func TestLeavePolicyHandler_GetByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := &fakeLeavePolicyService{
			getByIDFn: func(ctx context.Context, id string) (leavepolicy.LeavePolicyResponse, error) {
				return leavepolicy.LeavePolicyResponse{}, leavepolicyerrors.ErrPolicyNotFound
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-policies/"+uuid.New().String(), nil)

		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestLeavePolicyHandler_Delete(t *testing.T) {
	id := uuid.New().String()
	svc := &fakeLeavePolicyService{
		deleteFn: func(ctx context.Context, got string) error {
			assert.Equal(t, id, got)
			return nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/leave-policies/"+id, nil)

	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"deleted":true}}`, w.Body.String())
}

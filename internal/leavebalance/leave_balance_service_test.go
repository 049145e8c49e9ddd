package leavebalance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/leavebalance"
	leavebalanceerrors "go-leave/internal/leavebalance/errors"
	"go-leave/internal/leavebalance/leavebalancetest"
	"go-leave/internal/leavepolicy"
	"go-leave/internal/profile"
	profileerrors "go-leave/internal/profile/errors"
	profileMock "go-leave/internal/profile/mock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLeaveBalanceService_ListByEmployee(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	policyID := uuid.New()

	seed := []leavebalance.LeaveBalance{
		{ID: uuid.New(), EmployeeID: employeeID, LeaveType: leavepolicy.LeaveTypeVacation, Year: 2025, TotalAllocated: 20, DaysUsed: 5, PolicyID: &policyID},
		{ID: uuid.New(), EmployeeID: employeeID, LeaveType: leavepolicy.LeaveTypeSick, Year: 2024, TotalAllocated: 8, DaysUsed: 1},
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		profiles := profileMock.NewMockRepository(ctrl)
		profiles.EXPECT().FindByID(gomock.Any(), employeeID.String()).Return(&profile.Profile{ID: employeeID}, nil)

		svc := leavebalance.NewService(leavebalancetest.NewMemoryRepository(seed...), profiles)
		resp, err := svc.ListByEmployee(ctx, employeeID.String(), nil)

		require.NoError(t, err)
		require.Len(t, resp, 2)
		assert.Equal(t, 2025, resp[0].Year)
		assert.Equal(t, 15, resp[0].AvailableDays)
		assert.Equal(t, policyID.String(), *resp[0].PolicyID)
		assert.Nil(t, resp[1].PolicyID)
	})

	t.Run("unknown employee", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		profiles := profileMock.NewMockRepository(ctrl)
		missing := uuid.New().String()
		profiles.EXPECT().FindByID(gomock.Any(), missing).Return(nil, profileerrors.ErrProfileNotFound)

		svc := leavebalance.NewService(leavebalancetest.NewMemoryRepository(), profiles)
		_, err := svc.ListByEmployee(ctx, missing, nil)

		assert.ErrorIs(t, err, profileerrors.ErrProfileNotFound)
	})

	t.Run("invalid input never reaches repositories", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		profiles := profileMock.NewMockRepository(ctrl)
		svc := leavebalance.NewService(leavebalancetest.NewMemoryRepository(), profiles)

		_, err := svc.ListByEmployee(ctx, "nope", nil)
		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidEmployeeID)

		year := 25
		_, err = svc.ListByEmployee(ctx, employeeID.String(), &year)
		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidYear)
	})
}

type fakeBalanceService struct {
	listFn func(ctx context.Context, employeeID string, year *int) ([]leavebalance.LeaveBalanceResponse, error)
}

func (f *fakeBalanceService) ListByEmployee(ctx context.Context, employeeID string, year *int) ([]leavebalance.LeaveBalanceResponse, error) {
	return f.listFn(ctx, employeeID, year)
}

func TestLeaveBalanceHandler_ListByEmployee(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	newRouter := func(svc leavebalance.Service) *gin.Engine {
		r := gin.New()
		leavebalance.RegisterRoutes(r.Group("/api/v1"), leavebalance.NewHandler(svc))
		return r
	}

	t.Run("success with year filter", func(t *testing.T) {
		svc := &fakeBalanceService{
			listFn: func(ctx context.Context, id string, year *int) ([]leavebalance.LeaveBalanceResponse, error) {
				assert.Equal(t, employeeID, id)
				require.NotNil(t, year)
				assert.Equal(t, 2025, *year)
				return []leavebalance.LeaveBalanceResponse{{EmployeeID: id, LeaveType: "VACATION", Year: 2025, AvailableDays: 7}}, nil
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+employeeID+"/leave-balances?year=2025", nil)
		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Ok   bool                                `json:"ok"`
			Data []leavebalance.LeaveBalanceResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
		assert.Equal(t, 7, env.Data[0].AvailableDays)
	})

	t.Run("non numeric year", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+employeeID+"/leave-balances?year=last", nil)
		newRouter(&fakeBalanceService{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown employee", func(t *testing.T) {
		svc := &fakeBalanceService{
			listFn: func(ctx context.Context, id string, year *int) ([]leavebalance.LeaveBalanceResponse, error) {
				return nil, profileerrors.ErrProfileNotFound
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+employeeID+"/leave-balances", nil)
		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

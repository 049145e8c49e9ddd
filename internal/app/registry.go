package app

import (
	"database/sql"
	"net/http"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/leavebalance"
	"go-leave/internal/leavepolicy"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/messaging/kafka/producer"
	"go-leave/internal/middleware"
	"go-leave/internal/profile"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const idempotencyTTL = 24 * time.Hour

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	writer *kafkago.Writer,
) error {
	// --- Repositories ---
	profileRepo := profile.NewRepository(gormDB)
	leavePolicyRepo := leavepolicy.NewRepository(gormDB)
	leaveBalanceRepo := leavebalance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)

	// --- Services ---
	leavePolicyService := leavepolicy.NewService(db, leavePolicyRepo, rdb, cfg.PolicyCacheTTL)
	provisioner := leavebalance.NewProvisioner(leaveBalanceRepo, leavePolicyService)
	leaveBalanceService := leavebalance.NewService(leaveBalanceRepo, profileRepo)
	leaveService := newLeaveService(cfg, db, leaveRepo, profileRepo, leaveBalanceRepo, provisioner, writer)

	// --- Handlers ---
	leavePolicyHandler := leavepolicy.NewHandler(leavePolicyService)
	leaveBalanceHandler := leavebalance.NewHandler(leaveBalanceService)
	leaveHandler := leave.NewHandler(leaveService)

	createGuards := []gin.HandlerFunc{
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}
	if rdb != nil {
		createGuards = append(createGuards, middleware.Idempotency(rdb, idempotencyTTL, zap.L()))
	}

	// --- Routes Registration ---
	router.GET("/healthz", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "database unreachable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	api := router.Group("/api/v1")
	{
		leavepolicy.RegisterRoutes(api, leavePolicyHandler)
		leavebalance.RegisterRoutes(api, leaveBalanceHandler)
		leave.RegisterRoutes(api, leaveHandler, createGuards...)
	}

	return nil
}

// newLeaveService picks event delivery: outbox rows relayed by cmd/worker,
// a direct post-commit publish, or none.
func newLeaveService(
	cfg config.Config,
	db *sql.DB,
	repo leave.Repository,
	profiles profile.Repository,
	balances leavebalance.Repository,
	provisioner leavebalance.Provisioner,
	writer *kafkago.Writer,
) leave.Service {
	switch cfg.Kafka.EventDelivery {
	case config.EventDeliveryOutbox:
		return leave.NewServiceWithEvents(db, repo, profiles, balances, provisioner, kafka.NewOutboxRepository(db), nil)
	case config.EventDeliveryDirect:
		if writer != nil {
			return leave.NewServiceWithEvents(db, repo, profiles, balances, provisioner, nil, producer.NewPublisher(writer))
		}
	}
	zap.L().Named("app.registry").Warn("leave lifecycle events disabled", zap.String("event_delivery", cfg.Kafka.EventDelivery))
	return leave.NewService(db, repo, profiles, balances, provisioner)
}

package app

import (
	"database/sql"
	"fmt"

	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/leavebalance"
	"go-leave/internal/leavepolicy"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/profile"
	"go-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects infrastructure and mounts every module on router. The
// returned cleanup closes what was opened.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app.api")

	gormDB, sqlDB, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	closers := []func(){func() { _ = sqlDB.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Redis.MaxRetries)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
	} else {
		logger.Warn("REDIS_ADDR not set, policy cache and idempotency disabled")
	}

	var writer *kafkago.Writer
	if cfg.Kafka.EventDelivery == config.EventDeliveryDirect {
		if cfg.Kafka.Broker == "" {
			cleanup()
			return nil, fmt.Errorf("KAFKA_BROKER is required for EVENT_DELIVERY=%s", config.EventDeliveryDirect)
		}
		writer, err = connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Kafka.MaxRetries)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, func() { _ = writer.Close() })
	}

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb, writer); err != nil {
		cleanup()
		return nil, err
	}

	logger.Info("application ready", zap.String("event_delivery", cfg.Kafka.EventDelivery))
	return cleanup, nil
}

func connectDatabase(cfg config.Config) (*gorm.DB, *sql.DB, error) {
	db := cfg.Database
	gormDB, err := connection.ConnectGORMWithRetry(db.Host, db.User, db.Password, db.Name, db.Port, db.SSLMode, db.MaxRetries)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}

	if db.AutoMigrate {
		if err := migrate(gormDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
	}
	return gormDB, sqlDB, nil
}

// migrate creates the tables this service owns. profiles belongs to the HR
// core; it is only migrated so a standalone deployment has something to read.
func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&profile.Profile{},
		&leavepolicy.LeavePolicy{},
		&leavebalance.LeaveBalance{},
		&leave.LeaveRequest{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range kafka.OutboxSchema {
		if err := gormDB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create outbox table: %w", err)
		}
	}
	zap.L().Named("app.migrate").Info("schema migrated")
	return nil
}

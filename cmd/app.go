package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/accrual"
	accrualPostgres "github.com/frahmantamala/leave-management/internal/accrual/postgres"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/employee"
	employeePostgres "github.com/frahmantamala/leave-management/internal/employee/postgres"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/redis/go-redis/v9"
)

const connectRetries = 5

// app holds the infrastructure every long running command shares.
type app struct {
	cfg      *internal.Config
	db       *database.Connection
	redis    *redis.Client
	bus      *events.EventBus
	notifier *notification.Notifier
	logger   *slog.Logger

	employees  *employee.Service
	leaveTypes *leavetype.Service
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := setupLogger(cfg)

	db, err := database.Open(ctx, cfg.Database, connectRetries, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := database.NewRedisClient(ctx, cfg.Redis, connectRetries, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	bus := events.NewEventBus(lg)
	notifier := notification.NewFromConfig(cfg.Notification, lg)
	notifier.Register(bus)

	return &app{
		cfg:        cfg,
		db:         db,
		redis:      rdb,
		bus:        bus,
		notifier:   notifier,
		logger:     lg,
		employees:  employee.NewService(employeePostgres.NewEmployeeRepository(db.Gorm), lg),
		leaveTypes: leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(db.Gorm), lg),
	}, nil
}

func (a *app) locker() accrual.Locker {
	if a.redis == nil {
		a.logger.Warn("redis not configured, balance jobs are only serialized within this process")
		return accrual.NewLocalLocker()
	}
	return accrual.NewRedisLocker(a.redis)
}

func (a *app) jobs() *accrual.Jobs {
	return accrual.NewJobs(accrual.JobsConfig{
		Transactor: accrualPostgres.NewTransactor(a.db.Gorm),
		Directory:  a.employees,
		Policies:   a.leaveTypes,
		Holders:    balancePostgres.NewBalanceRepository(a.db.Gorm),
		Locker:     a.locker(),
		Publisher:  a.bus,
		LockTTL:    a.cfg.Scheduler.LockTTL,
		Logger:     a.logger,
	})
}

// close drains pending event handlers before tearing down their sinks.
func (a *app) close() {
	a.bus.Wait()
	if err := a.notifier.Close(); err != nil {
		a.logger.Error("notifier close error", "error", err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-management/internal/approval"
	approvalPostgres "github.com/frahmantamala/leave-management/internal/approval/postgres"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/holiday"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/transport/rest"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/workday"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func startHTTPServer() error {
	ctx := context.Background()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	router, err := buildRouter(ctx, a)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		a.logger.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
	}

	a.logger.Info("server stopped")
	return nil
}

func buildRouter(ctx context.Context, a *app) (*chi.Mux, error) {
	cfg := a.cfg
	lg := a.logger

	floaters, err := cfg.Leave.ParsedFloaterDates()
	if err != nil {
		return nil, fmt.Errorf("invalid floater dates: %w", err)
	}
	calculator := workday.NewCalculator(floaters)

	holidays := holiday.NewService(
		holiday.NewCalendarificClient(holiday.ClientConfig{
			BaseURL: cfg.Holiday.BaseURL,
			APIKey:  cfg.Holiday.APIKey,
			Country: cfg.Holiday.Country,
			Timeout: cfg.Holiday.Timeout,
		}, lg),
		calculator,
		cfg.Holiday.CacheTTL,
		lg,
	)

	leaveService := leave.NewService(leave.Dependencies{
		Requests:   leavePostgres.NewLeaveRepository(a.db.Gorm),
		Flow:       approval.NewFlow(approvalPostgres.NewApprovalRepository(a.db.Gorm)),
		Transactor: leavePostgres.NewTransactor(a.db.Gorm),
		Directory:  a.employees,
		LeaveTypes: a.leaveTypes,
		Calendar:   holidays,
		Calculator: calculator,
		Router:     approval.NewRouter(),
		Publisher:  a.bus,
		Logger:     lg,
	})
	balanceService := balance.NewService(balancePostgres.NewBalanceRepository(a.db.Gorm), a.employees, a.leaveTypes, lg)
	approvalService := approval.NewService(approvalPostgres.NewDecisionReader(a.db.SQL), lg)

	health := rest.NewHealthHandler(a.db.SQL.DB)
	if a.redis != nil {
		health.With("redis", func(ctx context.Context) error { return a.redis.Ping(ctx).Err() })
	}

	var doc *swagger.Document
	if cfg.Server.OpenAPIPath != "" {
		doc, err = swagger.Load(ctx, cfg.Server.OpenAPIPath)
		if err != nil {
			return nil, err
		}
		lg.Info("openapi document loaded", "version", doc.Version(), "paths", len(doc.Paths()))
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, cfg, rest.Handlers{
		Auth:     auth.NewMiddleware(auth.NewTokenService(cfg.Security)),
		Health:   health,
		Employee: employee.NewHandler(a.employees),
		Leave:    leave.NewHandler(leaveService),
		Balance:  balance.NewHandler(balanceService),
		Approval: approval.NewHandler(approvalService),
		Holiday:  holiday.NewHandler(holidays),
		OpenAPI:  doc,
	}, lg)
	return router, nil
}

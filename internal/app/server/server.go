package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"timekeep/internal/domain/attendance"
	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/payroll"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
	"timekeep/internal/platform/config"
	"timekeep/internal/platform/db"
	"timekeep/internal/platform/jobs"
	"timekeep/internal/platform/metrics"
	attendancehandler "timekeep/internal/transport/http/handlers/attendance"
	authhandler "timekeep/internal/transport/http/handlers/auth"
	employeehandler "timekeep/internal/transport/http/handlers/employees"
	leavehandler "timekeep/internal/transport/http/handlers/leave"
	payrollhandler "timekeep/internal/transport/http/handlers/payroll"
	timeclockhandler "timekeep/internal/transport/http/handlers/timeclock"
	"timekeep/internal/transport/http/middleware"
)

// Run wires the whole application and blocks until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelDebug
	if cfg.IsProduction() {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			return err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return err
		}
	}

	businessClock, err := clock.NewBusiness(cfg.BusinessTimezone)
	if err != nil {
		return err
	}

	collector := metrics.New()

	employeeStore := employee.NewStore(pool)
	timeclockStore := timeclock.NewStore(pool)
	leaveStore := leave.NewStore(pool)
	ruleStore := payroll.NewRuleStore(pool)
	lineStore := payroll.NewLineStore(pool)

	scanService := timeclock.NewService(timeclockStore, businessClock,
		timeclock.NewMachine(time.Duration(cfg.BreakDwellMinutes)*time.Minute, cfg.ReopenWindow))

	leaveService := leave.NewService(leaveStore, employeeStore, timeclockStore, businessClock, leave.Rules{
		MonthlyDayOffCap:   cfg.MonthlyDayOffCap,
		SILEntitlementDays: cfg.SILEntitlementDays,
	})

	attendanceService := attendance.NewService(timeclockStore, leaveStore, employeeStore,
		businessClock, cfg.GracePeriodMinutes)

	payrollEngine := payroll.NewEngine(cfg.GracePeriodMinutes, cfg.PerMinuteRate,
		cfg.ScheduledBreak, cfg.PositionBonuses, businessClock.Location())
	payrollService := payroll.NewService(payrollEngine, employeeStore, timeclockStore,
		leaveStore, ruleStore, lineStore, businessClock)

	jobsService := jobs.New(pool)
	if err := jobsService.Schedule(cfg.SILSweepSpec, jobs.JobSILSweep, func(ctx context.Context) (any, error) {
		return leaveService.RunSILSweep(ctx)
	}); err != nil {
		return err
	}
	jobsService.Start(ctx)

	router := newRouter(routerDeps{
		cfg:        cfg,
		pool:       pool,
		collector:  collector,
		employees:  employeeStore,
		scan:       scanService,
		leave:      leaveService,
		attendance: attendanceService,
		payroll:    payrollService,
		jobs:       jobsService,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type routerDeps struct {
	cfg        config.Config
	pool       interface{ Ping(context.Context) error }
	collector  *metrics.Collector
	employees  *employee.Store
	scan       *timeclock.Service
	leave      *leave.Service
	attendance *attendance.Service
	payroll    *payroll.Service
	jobs       *jobs.Service
}

func newRouter(deps routerDeps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(deps.cfg.IsProduction()))
	router.Use(middleware.BodyLimit(deps.cfg.MaxBodyBytes))
	router.Use(httprate.Limit(deps.cfg.RateLimitPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	router.Use(middleware.Metrics(deps.collector))
	router.Use(middleware.Auth(deps.cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if deps.cfg.MetricsEnabled {
		router.With(middleware.RequireAdmin).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(deps.collector.Snapshot()); err != nil {
				slog.Warn("metrics write failed", "err", err)
			}
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(deps.employees.DB, deps.cfg.JWTSecret).RegisterRoutes(r)
		timeclockhandler.NewHandler(deps.scan, deps.employees, deps.collector).RegisterRoutes(r)
		attendancehandler.NewHandler(deps.attendance).RegisterRoutes(r)
		leavehandler.NewHandler(deps.leave, deps.jobs, deps.collector).RegisterRoutes(r)
		payrollhandler.NewHandler(deps.payroll, deps.collector).RegisterRoutes(r)
		employeehandler.NewHandler(deps.employees).RegisterRoutes(r)
	})

	return router
}

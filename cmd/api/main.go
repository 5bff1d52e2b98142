package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/config"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	appHTTP "github.com/cmlabs-hris/attendance-reconciler/internal/handler/http"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/kafka"
	"github.com/cmlabs-hris/attendance-reconciler/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-reconciler/internal/repository/postgresql"
	sqliteRepo "github.com/cmlabs-hris/attendance-reconciler/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/attendance-reconciler/internal/service/attendance"
	scanService "github.com/cmlabs-hris/attendance-reconciler/internal/service/scan"
	"golang.org/x/sync/errgroup"
)

const version = "v1.0.0"

type repositories struct {
	scanEvents  attendance.ScanEventRepository
	reports     attendance.ReportRepository
	employees   employee.EmployeeRepository
	assignments schedule.AssignmentRepository
	close       func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &repositories{
			scanEvents:  postgresql.NewScanEventRepository(db),
			reports:     postgresql.NewReportRepository(db),
			employees:   postgresql.NewEmployeeRepository(db),
			assignments: postgresql.NewAssignmentRepository(db),
			close:       db.Close,
		}, nil

	case config.StorageSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if cfg.Storage.SeedReference {
			if err := sqliteRepo.SeedReferenceDay(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &repositories{
			scanEvents:  sqliteRepo.NewScanEventStore(db),
			reports:     sqliteRepo.NewReportStore(db),
			employees:   sqliteRepo.NewEmployeeStore(db),
			assignments: sqliteRepo.NewScheduleStore(db),
			close:       func() { _ = db.Close() },
		}, nil

	default:
		stores := memory.NewStores()
		if cfg.Storage.SeedReference {
			if err := stores.SeedReferenceDay(ctx); err != nil {
				return nil, err
			}
		}
		return &repositories{
			scanEvents:  stores.ScanEvents,
			reports:     stores.Reports,
			employees:   stores.Employees,
			assignments: stores.Assignments,
			close:       func() {},
		}, nil
	}
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()
	slog.Info("Storage ready", "driver", cfg.Storage.Driver)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(
		repos.scanEvents,
		repos.reports,
		repos.employees,
		repos.assignments,
		attendanceService.Options{DoubleBadgeWindowMinutes: cfg.Attendance.DoubleBadgeWindowMinutes},
	)
	scanSvc := scanService.NewScanService(repos.scanEvents)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			Version:        version,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			LogLevel:       level,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewScanHandler(scanSvc),
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(repos.employees, attendanceSvc, cfg.Location(), cfg.Attendance.SnapshotInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled() {
		consumer, err := kafka.NewScanConsumer(kafka.ScanConsumerConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			GroupID:  cfg.Kafka.GroupID,
			Location: cfg.Location(),
		}, scanSvc)
		if err != nil {
			return fmt.Errorf("create scan consumer: %w", err)
		}
		defer consumer.Close()

		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scan consumer: %w", err)
			}
			return nil
		})
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

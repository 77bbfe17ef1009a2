package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/config"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	appHTTP "github.com/cmlabs-hris/face-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/broker"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/cache"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/face-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/face-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/face-attendance-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/face-attendance-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/face-attendance-go/internal/service/employee"
	recognitionService "github.com/cmlabs-hris/face-attendance-go/internal/service/recognition"
	reportService "github.com/cmlabs-hris/face-attendance-go/internal/service/report"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/sync/errgroup"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "face-attendance"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	)
}

type storage struct {
	tx          database.Transactor
	employees   employee.EmployeeRepository
	attendances attendance.AttendanceRepository
	reports     report.ReportRepository
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			tx:          memory.NewTxManager(store),
			employees:   memory.NewEmployeeRepository(store),
			attendances: memory.NewAttendanceRepository(store),
			reports:     memory.NewReportRepository(store),
			close:       func() {},
		}, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return &storage{
			tx:          postgresql.NewTxManager(db),
			employees:   postgresql.NewEmployeeRepository(db),
			attendances: postgresql.NewAttendanceRepository(db),
			reports:     postgresql.NewReportRepository(db),
			close:       db.Close,
		}, nil
	}
}

func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, func(), error) {
	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		URL:          cfg.Redis.URL,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		logger.Info("REDIS_URL not set, candidate cache is process-local")
		return cache.NewMemoryStore(), func() {}, nil
	}
	logger.Info("Candidate cache backed by Redis")
	return cache.NewRedisStore(client), func() { client.Close() }, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	clk := clock.New(clock.LoadLocation(cfg.App.Timezone))
	m := metrics.New()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	candidateCache, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.KioskExpiration)
	if err != nil {
		return err
	}

	hub := sse.NewHub()
	hub.OnDrop = func(topic string) { m.IncrementStreamDrop() }

	publishers := attendanceService.NewPublishers(m).Add("feed", attendanceService.NewFeedPublisher(hub))
	producer, err := broker.NewKafkaProducer(ctx, broker.KafkaConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		ClientID: cfg.Kafka.ClientID,
	}, logger)
	if err != nil {
		return err
	}
	if producer != nil {
		producer.OnError = func(err error) { m.IncrementPublishFailure("kafka") }
		publishers.Add("kafka", attendanceService.NewBrokerPublisher(producer))
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := producer.Close(flushCtx); err != nil {
				logger.Warn("Kafka flush failed", "error", err)
			}
		}()
		logger.Info("Publishing attendance events to Kafka", "topic", cfg.Kafka.Topic)
	}

	employeeSvc := employeeService.NewEmployeeService(store.employees, candidateCache, cfg.Recognition.CandidateCacheTTL, m, logger)
	attendanceSvc := attendanceService.NewAttendanceService(
		store.tx,
		store.attendances,
		store.employees,
		clk,
		policy,
		publishers,
		m,
		logger,
	)
	recognitionSvc := recognitionService.NewRecognitionService(
		employeeSvc,
		attendanceSvc,
		recognitionService.NewEuclideanMatcher(cfg.Recognition.MatchThreshold),
		clk,
		m,
		logger,
	)
	reportSvc := reportService.NewReportService(store.reports, clk, logger)
	authSvc := serviceAuth.NewAuthService(JWTService, cfg.Admin.Username, cfg.Admin.PasswordHash)
	if cfg.Admin.PasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin login is disabled")
	}

	scheduler := cron.NewScheduler(logger)
	cron.RegisterCandidateRefresh(scheduler, employeeSvc, cfg.Recognition.CandidateRefreshEvery)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Auth:        appHTTP.NewAuthHandler(authSvc),
		Employee:    appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance:  appHTTP.NewAttendanceHandler(attendanceSvc, recognitionSvc, JWTService, hub, clk),
		Recognition: appHTTP.NewRecognitionHandler(recognitionSvc),
		Report:      appHTTP.NewReportHandler(reportSvc),
	}, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// open event streams end when ctx is cancelled instead of holding Shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "addr", server.Addr, "timezone", clk.Location().String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package app

import (
	"assessment_results_backend/internal/config"
	"assessment_results_backend/internal/controller"
	"assessment_results_backend/internal/repository"
	"assessment_results_backend/internal/service"
	"assessment_results_backend/pkg/database"
	"assessment_results_backend/pkg/logger"
	"assessment_results_backend/pkg/monitoring"
	"assessment_results_backend/pkg/security"
	"assessment_results_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)

	ingestionBatch atomic.Int64
	cancel         context.CancelFunc
	background     sync.WaitGroup
}

type repositories struct {
	assessment    *repository.AssessmentRepository
	stagedResult  *repository.StagedResultRepository
	stagedStudent *repository.StagedStudentRepository
	student       *repository.StudentRepository
}

type services struct {
	staging  *service.StagingService
	transfer *service.TransferService
	worker   *service.TransferWorker
	score    *service.ScoreService
}

type controllers struct {
	health   *controller.HealthController
	staging  *controller.StagingController
	transfer *controller.TransferController
	score    *controller.ScoreController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig hands a reloaded config to every registered callback.
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		assessment:    repository.NewAssessmentRepository(db),
		stagedResult:  repository.NewStagedResultRepository(db),
		stagedStudent: repository.NewStagedStudentRepository(db),
		student:       repository.NewStudentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	registry := service.NewCachedStudentAPI(service.NewStudentAPIClient(cfg.StudentAPI), rdb, cfg.StudentAPI.CacheTTL)
	var events service.EventPublisher
	if rdb != nil {
		events = service.NewRedisPublisher(rdb, service.DefaultEventChannel)
	}

	s.staging = service.NewStagingService(
		db,
		repos.stagedResult,
		repos.stagedStudent,
		repos.assessment,
		registry,
		registry,
		repos.student,
		events,
	)
	s.transfer = service.NewTransferService(db, repos.stagedStudent, repos.student, events)
	s.worker = service.NewTransferWorker(s.transfer, transferSettings(cfg))
	s.score = service.NewScoreService(repos.assessment, repos.stagedStudent, repos.student)

	a.ingestionBatch.Store(int64(cfg.Ingestion.BatchSize))
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.worker.UpdateSettings(transferSettings(cfg))
		a.ingestionBatch.Store(int64(cfg.Ingestion.BatchSize))
	})

	return s
}

func transferSettings(cfg *config.Config) service.TransferSettings {
	return service.TransferSettings{
		BatchSize: cfg.Transfer.BatchSize,
		Workers:   cfg.Transfer.Workers,
		ClaimTTL:  cfg.Transfer.ClaimTTL,
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		health:   controller.NewHealthController(db, rdb),
		staging:  controller.NewStagingController(s.staging, s.score),
		transfer: controller.NewTransferController(s.transfer, s.worker),
		score:    controller.NewScoreController(s.score),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the ingestion and transfer pollers until the app
// shuts down.
func (a *App) startBackgroundTasks(ctx context.Context, s *services, cfg *config.Config) {
	if cfg.Ingestion.Enabled {
		a.every(ctx, cfg.Ingestion.PollInterval, func(ctx context.Context) {
			processed, failed, err := s.staging.ProcessLoadedResults(ctx, int(a.ingestionBatch.Load()))
			if err != nil {
				logger.Log.Error("ingestion run error", zap.Error(err))
				return
			}
			if processed+failed > 0 {
				logger.Log.Info("ingestion run finished", zap.Int("processed", processed), zap.Int("failed", failed))
			}
		})
	}

	if cfg.Transfer.Enabled {
		a.every(ctx, cfg.Transfer.PollInterval, func(ctx context.Context) {
			if _, err := s.worker.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Log.Error("transfer run error", zap.Error(err))
			}
		})
	}
}

func (a *App) every(ctx context.Context, interval time.Duration, task func(context.Context)) {
	if interval <= 0 {
		interval = time.Minute
	}
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task(ctx)
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers)

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.startBackgroundTasks(ctx, services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	a.cancel()
	a.background.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}

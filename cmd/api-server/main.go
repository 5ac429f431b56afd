package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ecolehub/school-admin-api/api/swagger"
	"github.com/ecolehub/school-admin-api/internal/handler"
	"github.com/ecolehub/school-admin-api/internal/middleware"
	"github.com/ecolehub/school-admin-api/internal/repository"
	"github.com/ecolehub/school-admin-api/internal/service"
	"github.com/ecolehub/school-admin-api/pkg/cache"
	"github.com/ecolehub/school-admin-api/pkg/config"
	"github.com/ecolehub/school-admin-api/pkg/database"
	"github.com/ecolehub/school-admin-api/pkg/logger"
	corsmiddleware "github.com/ecolehub/school-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ecolehub/school-admin-api/pkg/middleware/requestid"
	"github.com/ecolehub/school-admin-api/pkg/storage"
)

// @title School Admin API
// @version 1.0.0
// @description Administrative backend for school management
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	// Redis is optional. When it is down the statistics endpoints fall
	// back to computing on every request.
	var cacheService *service.CacheService
	if cfg.Stats.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, statistics caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Stats.CacheTTL, logr, true)
		}
	}

	reportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	reportSigner := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewAssignmentResultRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	financeRepo := repository.NewFinanceRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})
	studentService := service.NewStudentService(studentRepo, classRepo, validate, logr)
	teacherService := service.NewTeacherService(teacherRepo, validate, logr)
	classService := service.NewClassService(classRepo, teacherRepo, validate, logr)
	subjectService := service.NewSubjectService(subjectRepo, validate, logr)
	announcementService := service.NewAnnouncementService(announcementRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, cacheService, validate, logr)
	assignmentService := service.NewAssignmentService(assignmentRepo, subjectRepo, teacherRepo, classRepo, validate, logr)
	resultService := service.NewAssignmentResultService(resultRepo, assignmentRepo, studentRepo, validate, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, classRepo, teacherRepo, subjectRepo, validate, logr)
	financeService := service.NewFinanceService(financeRepo, studentRepo, validate, logr)
	reportService := service.NewReportService(studentRepo, attendanceRepo, financeRepo, reportStorage, reportSigner, cfg.Reports.SignedURLTTL, logr)

	// Expired report files are swept on the same cadence as their tokens.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				reportService.Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()
	defer close(cleanupDone)

	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Students:      handler.NewStudentHandler(studentService),
		Teachers:      handler.NewTeacherHandler(teacherService),
		Classes:       handler.NewClassHandler(classService),
		Subjects:      handler.NewSubjectHandler(subjectService),
		Announcements: handler.NewAnnouncementHandler(announcementService),
		Attendance:    handler.NewAttendanceHandler(attendanceService),
		Assignments:   handler.NewAssignmentHandler(assignmentService),
		Results:       handler.NewAssignmentResultHandler(resultService),
		Schedules:     handler.NewScheduleHandler(scheduleService),
		Finance:       handler.NewFinanceHandler(financeService),
		Reports:       handler.NewReportHandler(reportService),
	}, authService)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/acadhub/portal-api/api/swagger"
	"github.com/acadhub/portal-api/internal/handler"
	"github.com/acadhub/portal-api/internal/provider"
	"github.com/acadhub/portal-api/internal/repository"
	"github.com/acadhub/portal-api/internal/service"
	"github.com/acadhub/portal-api/pkg/cache"
	"github.com/acadhub/portal-api/pkg/config"
	"github.com/acadhub/portal-api/pkg/database"
	"github.com/acadhub/portal-api/pkg/logger"
	"github.com/acadhub/portal-api/pkg/storage"
)

// @title Academic Portal API
// @version 1.0.0
// @description Role-based academic portal backend
// @BasePath /v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Storage.ContentDir)
	if err != nil {
		logr.Fatal("failed to init content storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	intakeRepo := repository.NewIntakeRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	offeringRepo := repository.NewCourseOfferingRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	contentRepo := repository.NewContentRepository(db)
	savedRepo := repository.NewSavedCourseRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:        cfg.JWT.Secret,
		Issuer:        cfg.JWT.Issuer,
		AccessExpiry:  cfg.JWT.Expiration,
		RefreshExpiry: cfg.JWT.RefreshExpiration,
	})
	oauthSvc := service.NewOAuthService(userRepo, authSvc, []provider.Verifier{
		provider.NewGoogleVerifier(cfg.OAuth.Google.ClientID),
		provider.NewGitHubVerifier(cfg.OAuth.GitHub.ClientID, cfg.OAuth.GitHub.ClientSecret, cfg.OAuth.GitHub.RedirectURL),
	}, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	intakeSvc := service.NewIntakeService(intakeRepo, userRepo, validate, logr)
	schoolSvc := service.NewSchoolService(schoolRepo, validate, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, schoolRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	offeringSvc := service.NewCourseOfferingService(offeringRepo, courseRepo, departmentRepo, validate, logr)
	assignmentSvc := service.NewCourseAssignmentService(assignmentRepo, userRepo, courseRepo, validate, logr)
	contentSvc := service.NewContentService(contentRepo, courseRepo, store, signer, cfg.Storage.MaxFileSizeBytes, validate, logr)
	savedSvc := service.NewSavedCourseService(savedRepo, courseRepo, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, offeringRepo, validate, logr)
	summarizerSvc := service.NewSummarizerService(cfg.Summarizer, cacheRepo, validate, logr)
	summarizerSvc.SetMetrics(metricsSvc)

	handlers := handler.Handlers{
		Auth:            handler.NewAuthHandler(authSvc, oauthSvc, cfg),
		Users:           handler.NewUserHandler(userSvc),
		Intakes:         handler.NewIntakeHandler(intakeSvc, metricsSvc),
		Schools:         handler.NewSchoolHandler(schoolSvc),
		Departments:     handler.NewDepartmentHandler(departmentSvc),
		Courses:         handler.NewCourseHandler(courseSvc),
		CourseOfferings: handler.NewCourseOfferingHandler(offeringSvc),
		Assignments:     handler.NewCourseAssignmentHandler(assignmentSvc),
		Contents:        handler.NewContentHandler(contentSvc, metricsSvc),
		SavedCourses:    handler.NewSavedCourseHandler(savedSvc),
		Notifications:   handler.NewNotificationHandler(notificationSvc),
		Summarizer:      handler.NewSummarizerHandler(summarizerSvc),
	}

	router := handler.NewRouter(cfg, logr, authSvc, metricsSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
}

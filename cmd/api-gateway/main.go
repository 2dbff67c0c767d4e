package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edukita/campus-assignment-api/api/swagger"
	"github.com/edukita/campus-assignment-api/internal/handler"
	"github.com/edukita/campus-assignment-api/internal/middleware"
	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/internal/repository"
	"github.com/edukita/campus-assignment-api/internal/service"
	"github.com/edukita/campus-assignment-api/pkg/cache"
	"github.com/edukita/campus-assignment-api/pkg/config"
	"github.com/edukita/campus-assignment-api/pkg/database"
	"github.com/edukita/campus-assignment-api/pkg/logger"
	corsmiddleware "github.com/edukita/campus-assignment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edukita/campus-assignment-api/pkg/middleware/requestid"
)

// @title Campus Assignment API
// @version 1.0.0
// @description Assignment consistency service for multi-campus school networks
// @BasePath /api/v1
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	personRepo := repository.NewPersonRepository(db)
	campusRepo := repository.NewCampusRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	auditSvc := service.NewAuditService(userRepo, cfg.Audit, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "campus-assignment-api",
	})
	permissionSvc := service.NewPermissionService(permissionRepo, logr)
	personSvc := service.NewPersonService(personRepo, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, personRepo, campusRepo, classRepo, subjectRepo, permissionSvc, cacheSvc, validate, logr)
	rosterSvc := service.NewRosterService(assignmentSvc, cfg.Roster, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	personHandler := handler.NewPersonHandler(personSvc)
	permissionHandler := handler.NewPermissionHandler(permissionSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
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

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	staff := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleCoordinator}

	countOp := func(operation string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Next()
			if c.Writer.Status() < 400 {
				metricsSvc.RecordAssignmentOperation(operation)
			}
		}
	}

	campuses := api.Group("/campuses", middleware.JWT(authSvc))
	campuses.POST("/:campusId/assignments",
		middleware.RequireRoles(staff...),
		countOp("campus_assign"),
		middleware.Audit(auditSvc, models.AuditActionCampusAssign, "campus_assignment"),
		assignmentHandler.AssignToCampus)
	campuses.GET("/:campusId/assignments", assignmentHandler.CampusRoster)
	campuses.GET("/:campusId/assignments/export",
		middleware.Audit(auditSvc, models.AuditActionRosterExport, "campus_roster"),
		rosterHandler.Export)
	campuses.PATCH("/:campusId/assignments/:personId/status",
		middleware.RequireRoles(staff...),
		countOp("status_change"),
		middleware.Audit(auditSvc, models.AuditActionStatusChange, "campus_assignment"),
		assignmentHandler.UpdateStatus)
	campuses.DELETE("/:campusId/assignments/:personId",
		middleware.RequireRoles(staff...),
		countOp("campus_unassign"),
		middleware.Audit(auditSvc, models.AuditActionCampusUnassign, "campus_assignment"),
		assignmentHandler.Remove)

	me := api.Group("/me", middleware.JWT(authSvc))
	me.GET("/campuses", assignmentHandler.MyCampuses)
	me.GET("/permissions", permissionHandler.MyGrants)

	persons := api.Group("/persons", middleware.JWT(authSvc))
	persons.GET("", middleware.RequireRoles(staff...), personHandler.List)
	persons.GET("/:personId/campuses",
		middleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleAdmin), string(models.RoleCoordinator), "SELF"),
		assignmentHandler.PersonCampuses)
	persons.PUT("/:personId/primary-campus",
		middleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleAdmin), string(models.RoleCoordinator), "SELF"),
		countOp("primary_change"),
		middleware.Audit(auditSvc, models.AuditActionPrimaryChange, "campus_assignment"),
		assignmentHandler.SetPrimaryCampus)

	assignments := api.Group("/assignments", middleware.JWT(authSvc), middleware.RequireRoles(staff...))
	assignments.POST("/:id/classes",
		countOp("class_assign"),
		middleware.Audit(auditSvc, models.AuditActionClassAssign, "class_assignment"),
		assignmentHandler.AssignToClass)

	classAssignments := api.Group("/class-assignments", middleware.JWT(authSvc), middleware.RequireRoles(staff...))
	classAssignments.POST("/:id/subjects",
		countOp("subjects_assign"),
		middleware.Audit(auditSvc, models.AuditActionSubjectsAssign, "subject_assignment"),
		assignmentHandler.AssignSubjects)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edukit/academia-api/api/swagger"
	"github.com/edukit/academia-api/internal/handler"
	internalmiddleware "github.com/edukit/academia-api/internal/middleware"
	"github.com/edukit/academia-api/internal/repository"
	"github.com/edukit/academia-api/internal/router"
	"github.com/edukit/academia-api/internal/service"
	"github.com/edukit/academia-api/pkg/cache"
	"github.com/edukit/academia-api/pkg/config"
	"github.com/edukit/academia-api/pkg/database"
	"github.com/edukit/academia-api/pkg/logger"
	corsmiddleware "github.com/edukit/academia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edukit/academia-api/pkg/middleware/requestid"
)

// @title Academia API
// @version 1.0.0
// @description Back-office API for academy administration
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	// Redis is optional: the dashboard falls back to live queries when
	// the cache is unreachable.
	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Dashboard.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	}

	programRepo := repository.NewProgramRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWT, nil, logr)
	programSvc := service.NewProgramService(programRepo, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	groupSvc := service.NewGroupService(groupRepo, programRepo, teacherRepo, classroomRepo, nil, logr)
	financeSvc := service.NewFinanceService(enrollmentRepo, paymentRepo, studentRepo, groupRepo,
		cacheSvc, metrics, nil, logr, cfg.Reports.RecentTransactions)
	academicSvc := service.NewAcademicService(attendanceRepo, enrollmentRepo, groupRepo, nil, logr)
	reportSvc := service.NewReportService(reportRepo, paymentRepo, cacheSvc, logr,
		cfg.Dashboard.CacheTTL, cfg.Reports.DefaultWindow, cfg.Reports.RecentPayments)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.Register(r, cfg.APIPrefix, authSvc, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Programs:  handler.NewProgramHandler(programSvc),
		Teachers:  handler.NewTeacherHandler(teacherSvc),
		Classroom: handler.NewClassroomHandler(classroomSvc),
		Students:  handler.NewStudentHandler(studentSvc),
		Groups:    handler.NewGroupHandler(groupSvc),
		Finance:   handler.NewFinanceHandler(financeSvc),
		Academic:  handler.NewAcademicHandler(academicSvc),
		Reports:   handler.NewReportHandler(reportSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/gov-collab/portal-api/api/swagger"
	"github.com/gov-collab/portal-api/internal/handler"
	"github.com/gov-collab/portal-api/internal/middleware"
	"github.com/gov-collab/portal-api/internal/models"
	"github.com/gov-collab/portal-api/internal/repository"
	"github.com/gov-collab/portal-api/internal/service"
	"github.com/gov-collab/portal-api/pkg/cache"
	"github.com/gov-collab/portal-api/pkg/config"
	"github.com/gov-collab/portal-api/pkg/database"
	"github.com/gov-collab/portal-api/pkg/export"
	"github.com/gov-collab/portal-api/pkg/logger"
	corsmiddleware "github.com/gov-collab/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gov-collab/portal-api/pkg/middleware/requestid"
)

// @title GOV Collab Portal API
// @version 1.0.0
// @description Multi-party talking points authoring and approval service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	userRepo := repository.NewUserRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	countryRepo := repository.NewCountryRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	eventRepo := repository.NewEventRepository(db)
	contentRepo := repository.NewContentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	accessSvc := service.NewAccessService(assignmentRepo, logr)
	userSvc := service.NewUserService(userRepo, nil, logr)
	catalogSvc := service.NewCatalogService(sectionRepo, countryRepo, nil, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, nil, logr)
	eventSvc := service.NewEventService(eventRepo, accessSvc, nil, logr)
	contentSvc := service.NewContentService(eventRepo, contentRepo, userRepo, accessSvc, nil, logr)
	documentSvc := service.NewDocumentService(eventRepo, documentRepo, contentRepo, nil, logr)
	librarySvc := service.NewLibraryService(documentRepo, eventRepo, contentRepo, export.NewPDFExporter(), logr)
	metricsSvc := service.NewMetricsService()

	if cfg.Cache.Enabled && redisClient != nil {
		contentSvc.EnableGridCache(cacheRepo, cfg.Cache.StatusGridTTL)
		eventSvc.EnableListCache(cacheRepo, cfg.Cache.EventListTTL)
	}
	contentSvc.EnableMetrics(metricsSvc)
	documentSvc.EnableMetrics(metricsSvc)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	contentHandler := handler.NewContentHandler(contentSvc, documentSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	libraryHandler := handler.NewLibraryHandler(librarySvc, cfg.Library.PDFEnabled)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)

	admin.POST("/sections", catalogHandler.CreateSection)
	admin.PUT("/sections/:id", catalogHandler.UpdateSection)
	admin.DELETE("/sections/:id", catalogHandler.DeleteSection)
	admin.POST("/countries", catalogHandler.CreateCountry)
	admin.PUT("/countries/:id", catalogHandler.UpdateCountry)
	admin.DELETE("/countries/:id", catalogHandler.DeleteCountry)

	admin.GET("/section-assignments", assignmentHandler.ListSectionAssignments)
	admin.POST("/section-assignments", assignmentHandler.CreateSectionAssignment)
	admin.DELETE("/section-assignments/:id", assignmentHandler.DeleteSectionAssignment)
	admin.GET("/country-assignments", assignmentHandler.GetCountryAssignments)
	admin.PUT("/country-assignments", assignmentHandler.ReplaceCountryAssignments)

	authed.GET("/sections", catalogHandler.ListSections)
	authed.GET("/countries", catalogHandler.ListCountries)

	authed.GET("/events", eventHandler.List)
	authed.GET("/events/upcoming", eventHandler.Upcoming)
	authed.GET("/events/upcoming-for-me", eventHandler.UpcomingForMe)
	authed.GET("/events/:id", eventHandler.Get)

	eventAdmin := authed.Group("")
	eventAdmin.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor, models.RoleChairman, models.RoleProtocol))
	eventAdmin.POST("/events", eventHandler.Create)
	eventAdmin.PUT("/events/:id", eventHandler.Update)
	eventAdmin.POST("/events/:id/end", eventHandler.End)

	authed.GET("/tp", contentHandler.Get)
	authed.POST("/tp/save", contentHandler.Save)
	authed.POST("/tp/submit", contentHandler.Submit)
	authed.POST("/tp/return", contentHandler.Return)
	authed.POST("/tp/approve-section", contentHandler.ApproveSection)
	authed.POST("/tp/approve-section-chairman", contentHandler.ApproveSectionChairman)
	authed.POST("/tp/approve-all-sections", contentHandler.ApproveAllSections)
	authed.GET("/tp/status-grid", contentHandler.StatusGrid)
	authed.GET("/tp/document-status", contentHandler.DocumentStatus)

	authed.POST("/document/submit-to-supervisor", documentHandler.SubmitToSupervisor)
	authed.POST("/document/submit-to-chairman", documentHandler.SubmitToChairman)
	authed.POST("/document/approve", documentHandler.Approve)
	authed.POST("/document/return", documentHandler.Return)

	authed.GET("/library", libraryHandler.List)
	authed.GET("/library/document", libraryHandler.Document)
	authed.GET("/library/document/pdf", libraryHandler.DocumentPDF)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// Package server assembles the HTTP application from its domain packages.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lostfound/internal/config"
	"lostfound/internal/domain/admin"
	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
	"lostfound/internal/mail"
	"lostfound/internal/matching"
	"lostfound/internal/media"
	"lostfound/internal/middleware"
	"lostfound/internal/pkg/jwt"
	"lostfound/internal/pkg/response"
	"lostfound/internal/realtime"
)

// Options carries the infrastructure picked by the caller. Nil collaborators
// fall back to local implementations: the in-process hub, log-only mail and
// disk storage under UploadsDir.
type Options struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Hub      *realtime.Hub
	Realtime matching.RealtimeChannel
	Mail     matching.EmailSender
	Uploader report.ImageUploader
}

type App struct {
	Router *gin.Engine
	Engine *matching.Engine
	Hub    *realtime.Hub
	Tokens *jwt.Service
	Users  *user.Service
}

func New(opts Options) *App {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub(log)
	}
	var channel matching.RealtimeChannel = hub
	if opts.Realtime != nil {
		channel = opts.Realtime
	}
	var mailer matching.EmailSender = mail.NewLogSender(log)
	if opts.Mail != nil {
		mailer = opts.Mail
	}
	var uploader report.ImageUploader
	local := media.NewLocalStore(cfg.UploadsDir, cfg.StaticURLBase)
	if opts.Uploader != nil {
		uploader = opts.Uploader
	} else {
		uploader = local
	}

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := user.NewRepository(opts.DB)
	reportRepo := report.NewRepository(opts.DB)
	notificationRepo := notification.NewRepository(opts.DB)

	engine := matching.NewEngine(matching.Deps{
		Reports:       reportRepo,
		Notifications: notificationRepo,
		Users:         userRepo,
		Realtime:      channel,
		Mail:          mailer,
	}, matching.Options{MinTokenLength: cfg.MatchMinTokenLength}, log)

	userService := user.NewService(userRepo, tokens)
	reportService := report.NewService(reportRepo, engine, engine, notificationRepo, log.Named("reports"))
	notificationService := notification.NewService(notificationRepo)

	userHandler := user.NewHandler(userService)
	reportHandler := report.NewHandler(reportService, uploader)
	notificationHandler := notification.NewHandler(notificationService)
	adminHandler := admin.NewHandler(engine)
	wsHandler := realtime.NewWSHandler(hub, tokens, cfg.CORSAllowedOrigins, log)

	r := gin.New()
	r.Use(middleware.ErrorLogger(log), middleware.RequestLogger(log), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", healthHandler(opts.DB, hub))
	r.GET("/ws", wsHandler.HandleWebSocket)
	if opts.Uploader == nil {
		r.Static(cfg.StaticURLBase, local.BaseDir())
	}

	v1 := r.Group("/api/v1")
	{
		user.RegisterPublicRoutes(v1, userHandler)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens))
		{
			user.RegisterProtectedRoutes(protected, userHandler)
			report.RegisterRoutes(protected, reportHandler)
			notification.RegisterRoutes(protected, notificationHandler)
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.JWTAuth(tokens), middleware.AdminOnly())
		{
			adminHandler.RegisterRoutes(adminGroup)
			report.RegisterAdminRoutes(adminGroup, reportHandler)
		}
	}

	return &App{
		Router: r,
		Engine: engine,
		Hub:    hub,
		Tokens: tokens,
		Users:  userService,
	}
}

func healthHandler(db *gorm.DB, hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"status":      "ok",
			"connections": hub.Count(),
		})
	}
}

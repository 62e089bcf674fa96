package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Shresth17/SahayAI/internal/config"
	"github.com/Shresth17/SahayAI/internal/middleware"
	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/service"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	grievances *service.GrievanceService
	storage    StorageHealth
	db         *pgxpool.Pool
	cache      *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	grievances *service.GrievanceService,
	storage StorageHealth,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:        log,
		cfg:        cfg,
		auth:       auth,
		grievances: grievances,
		storage:    storage,
		db:         db,
		cache:      cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireAuth := middleware.Auth(h.auth, h.cfg.Security.CookieName)

	user := router.Group("/user")
	{
		user.POST("/signup", h.Signup)
		user.POST("/login", h.Login)
		user.GET("/token/:token", h.TokenInfo)
		user.GET("/logout", h.Logout)

		protected := router.Group("/user")
		protected.Use(requireAuth)
		protected.PUT("/profileUpdate", h.ProfileUpdate)
		protected.GET("/username", h.Username)
	}

	grievance := router.Group("/grievance")
	grievance.Use(requireAuth)
	{
		grievance.POST("", h.FileGrievance)
		grievance.GET("", h.ListOwnGrievances)
		grievance.GET("/:id", h.GetGrievance)
	}

	admin := router.Group("/admin")
	admin.Use(requireAuth, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/grievances", h.AdminListGrievances)
		admin.PUT("/grievances/:id/status", h.AdminTriageGrievance)
	}
}

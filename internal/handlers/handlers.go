package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"freightdesk/api/internal/cache"
	"freightdesk/api/internal/config"
	"freightdesk/api/internal/middleware"
	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
	"freightdesk/api/internal/service"
)

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	authService    *service.AuthService
	licenseService *service.LicenseService
	whitelist      *service.WhitelistService
	db             *pgxpool.Pool
	rdb            *redis.Client
	users          *repository.UserRepository
	revocations    *cache.RevocationList
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	activationRepo := repository.NewActivationRepository(db)
	whitelistRepo := repository.NewWhitelistRepository(db)

	revocations := cache.NewRevocationList(rdb, cfg.Security.TokenTTL)
	events := service.NewStreamPublisher(rdb, log)
	limiter := service.NewLoginRateLimiter(rdb, cfg.RateLimit, log)

	whitelist := service.NewWhitelistService(whitelistRepo, log)
	auth := service.NewAuthService(userRepo, licenseRepo, activationRepo, whitelist, limiter, events, cfg, log)
	licenses := service.NewLicenseService(licenseRepo, activationRepo, userRepo, revocations, rdb, events, cfg, log)

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		authService:    auth,
		licenseService: licenses,
		whitelist:      whitelist,
		db:             db,
		rdb:            rdb,
		users:          userRepo,
		revocations:    revocations,
	}
}

func (h HandlerSet) Whitelist() *service.WhitelistService { return h.whitelist }

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.cfg, h.users, h.revocations))
		protected.GET("/me", h.Me)

		licenses := v1.Group("/licenses")
		licenses.POST("/:key/validate", h.ValidateLicense)

		licensesAdmin := v1.Group("/licenses")
		licensesAdmin.Use(
			middleware.Auth(h.cfg, h.users, h.revocations),
			middleware.RequireRoles(models.UserRoleAdmin),
			middleware.RequireAdminDevice(h.whitelist),
		)
		licensesAdmin.POST("", h.IssueLicense)
		licensesAdmin.PUT("/:id/revoke", h.RevokeLicense)

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Auth(h.cfg, h.users, h.revocations),
			middleware.RequireRoles(models.UserRoleAdmin),
			middleware.RequireAdminDevice(h.whitelist),
		)
		admin.GET("/whitelist", h.ListWhitelist)
		admin.POST("/whitelist", h.AddWhitelistEntry)
		admin.DELETE("/whitelist/:deviceId", h.RemoveWhitelistEntry)
		admin.DELETE("/activations/:licenseKey", h.ResetDeviceBinding)
		admin.PUT("/users/:id/status", h.UpdateUserStatus)
	}
}

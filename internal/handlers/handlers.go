package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"reviewhub/internal/config"
	"reviewhub/internal/events"
	"reviewhub/internal/middleware"
	"reviewhub/internal/models"
	"reviewhub/internal/repository"
	"reviewhub/internal/service"
)

type authService interface {
	Register(ctx context.Context, input service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (service.AuthResult, error)
	Profile(ctx context.Context, userID string) (models.User, error)
}

type reviewService interface {
	Create(ctx context.Context, input service.CreateReviewInput) (models.Review, error)
	List(ctx context.Context) ([]models.ReviewSummary, error)
	ListByUser(ctx context.Context, userID string) ([]models.ReviewSummary, error)
}

type statsReader interface {
	Get(ctx context.Context) (models.RatingStats, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	auth    authService
	reviews reviewService
	stats   statsReader
	db      pinger
	cache   *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	stats := service.NewStatsService(reviewRepo, cache, cfg.Stats.CacheTTL, log)
	publisher := events.NewPublisher(cache, cfg.Events.Stream)

	return HandlerSet{
		log:     log,
		cfg:     cfg,
		auth:    service.NewAuthService(userRepo, cfg.Security, log),
		reviews: service.NewReviewService(reviewRepo, stats, publisher, log),
		stats:   stats,
		db:      db,
		cache:   cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	limited := router.Group("")
	if h.cfg.RateLimit.Enabled {
		limit := h.cfg.RateLimit
		limited.Use(middleware.RateLimit(h.cache, "auth", limit.Requests, limit.Window, h.log))
	}
	limited.POST("/register", h.RegisterUser)
	limited.POST("/login", h.Login)

	router.GET("/reviews", h.ListReviews)
	router.GET("/reviews/stats", h.ReviewStats)

	protected := router.Group("")
	protected.Use(middleware.Auth(h.cfg.Security.JWTSecret))
	protected.POST("/reviews", h.CreateReview)
	protected.GET("/my-reviews", h.MyReviews)
	protected.GET("/profile", h.Profile)
}

const (
	msgInvalidBody     = "Invalid request body."
	msgEmailTaken      = "Account already exists with this email."
	msgBadCredentials  = "Invalid email or password."
	msgUnknownUser     = "User not found."
	msgInternalFailure = "Internal server error."
)

// writeError maps service errors onto status codes. Anything unrecognised is
// logged with the request id and redacted for the caller.
func (h HandlerSet) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": msgEmailTaken})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnknownUser})
	default:
		_ = c.Error(err)
		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFrom(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalFailure})
	}
}

func currentUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication token required."})
	}
	return userID, ok
}

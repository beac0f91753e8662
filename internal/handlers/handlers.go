package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prefeitura-digital/authgate/internal/apiclient"
	"github.com/prefeitura-digital/authgate/internal/config"
	"github.com/prefeitura-digital/authgate/internal/middleware"
	"github.com/prefeitura-digital/authgate/internal/models"
	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	redis         *redis.Client
	cookieKey     []byte
	backendURL    *url.URL
	baseTransport http.RoundTripper
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, redisClient *redis.Client, cookieKey []byte) (HandlerSet, error) {
	backendURL, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil {
		return HandlerSet{}, err
	}

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		redis:         redisClient,
		cookieKey:     cookieKey,
		backendURL:    backendURL,
		baseTransport: http.DefaultTransport,
	}, nil
}

// clientFor builds a backend client bound to one session's token store.
// The pooled base transport is shared across all of them.
func (h HandlerSet) clientFor(store tokenstore.Store, opts ...apiclient.Option) *apiclient.Client {
	opts = append([]apiclient.Option{
		apiclient.WithBaseTransport(h.baseTransport),
		apiclient.WithTimeout(h.cfg.Backend.Timeout),
	}, opts...)
	return apiclient.New(h.cfg.Backend.BaseURL, store, opts...)
}

func (h HandlerSet) Routes(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)

	auth := engine.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.RegisterUser)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)

	for _, prefix := range h.cfg.Routes.Admin {
		group := engine.Group(prefix)
		group.Use(middleware.RequireRoles(models.RoleAdmin))
		group.Any("", h.Proxy)
		group.Any("/*path", h.Proxy)
	}

	engine.NoRoute(h.Proxy)
}

// writeAPIError maps a normalized backend error onto the gateway response.
// Status 0 means the backend was unreachable, which is the gateway's 502.
func (h HandlerSet) writeAPIError(c *gin.Context, err error) {
	apiErr, ok := apiclient.AsError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := apiErr.Status
	if status == 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": apiErr.Message})
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	Secret       string
	TTL          time.Duration
	RememberTTL  time.Duration
	MaxIdle      time.Duration
}

// RouteConfig classifies request paths at the edge. A path matches a class
// when it equals an entry or extends it as a prefix; public wins over the
// other two, and admin paths additionally get the role guard.
type RouteConfig struct {
	Public    []string
	Protected []string
	Admin     []string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Backend          BackendConfig
	Redis            RedisConfig
	Session          SessionConfig
	Routes           RouteConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("AUTHGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session.secret is required (AUTHGATE_SESSION_SECRET)")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("backend.baseurl", "http://localhost:8000/api/v1")
	v.SetDefault("backend.timeout", "30s")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.cookiename", "authgate_session")
	// Registered empty so the env override binds; Load rejects the empty value.
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookiesecure", false)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.rememberttl", "720h") // 30 days
	v.SetDefault("session.maxidle", "72h")

	v.SetDefault("routes.public", []string{
		"/login", "/registro", "/esqueceu-senha", "/auth", "/api",
		"/healthz", "/favicon.ico", "/manifest.json",
	})
	v.SetDefault("routes.protected", []string{
		"/", "/busca", "/documentos", "/chat", "/upload", "/perfil",
	})
	v.SetDefault("routes.admin", []string{
		"/usuarios", "/configuracoes",
	})
}

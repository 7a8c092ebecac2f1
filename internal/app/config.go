package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/winnie-backend/internal/nutrition/mealplan"
	"github.com/yungbote/winnie-backend/internal/platform/envutil"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
	"github.com/yungbote/winnie-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port           string
	Environment    string
	Version        string
	ServiceName    string
	JWTSecretKey   string
	AccessTokenTTL time.Duration
	AllowedOrigins []string

	MealPlanTimeout time.Duration
	ChatTimeout     time.Duration

	Research services.ResearchConfig

	MetricsAddr string
}

// LoadDotEnv loads .env (or ENV_FILE) into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv() error {
	path := envutil.String("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:           envutil.String("PORT", "8080"),
		Environment:    envutil.String("APP_ENV", "development"),
		Version:        envutil.String("APP_VERSION", "dev"),
		ServiceName:    envutil.String("OTEL_SERVICE_NAME", "winnie-api"),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		MealPlanTimeout: envutil.Seconds("MEALPLAN_TIMEOUT_SECONDS", mealplan.DefaultTimeout),
		ChatTimeout:     envutil.Seconds("CHAT_TIMEOUT_SECONDS", services.DefaultChatTimeout),

		Research: services.ResearchConfig{
			Namespace: envutil.String("RESEARCH_NAMESPACE", "research"),
			TopK:      envutil.Int("RESEARCH_TOP_K", services.DefaultResearchTopK),
			Timeout:   envutil.Seconds("RESEARCH_TIMEOUT_SECONDS", services.DefaultResearchTimeout),
			CacheTTL:  envutil.Seconds("RESEARCH_CACHE_TTL_SECONDS", services.DefaultResearchCacheTTL),
		},

		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the insecure default", "environment", cfg.Environment)
	}
	return cfg
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

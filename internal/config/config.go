package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Admin tokens signed
// with it can be forged by anyone who has read the source.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Port            string
	DBDriver        string // sqlite | duckdb | postgres | mysql
	DBDSN           string
	OrderTable      string
	AdSpotTable     string
	JWTSecret       string
	CacheTTL        time.Duration // 查询结果缓存
	DatasetTTL      time.Duration // 数据集快照缓存
	RateLimit       int           // 每个客户端每分钟请求数
	LoadRetries     uint
	LoadTimeout     time.Duration
	LogVerbose      bool
	DashboardConfig string // 可选 YAML 路径，空则使用内置默认值
}

// Load 加载配置
// A missing .env file is not an error; the process environment is used as is.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	return &Config{
		Port:            getEnv("PORT", ":8080"),
		DBDriver:        getEnv("DB_DRIVER", "sqlite"),
		DBDSN:           getEnv("DB_DSN", "./data/retention.db"),
		OrderTable:      getEnv("ORDER_TABLE", "customer_order"),
		AdSpotTable:     getEnv("AD_SPOT_TABLE", "tv_program_spot"),
		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		CacheTTL:        getEnvDuration("CACHE_TTL", 10*time.Minute),
		DatasetTTL:      getEnvDuration("DATASET_TTL", time.Hour),
		RateLimit:       getEnvInt("RATE_LIMIT", 120),
		LoadRetries:     uint(getEnvInt("LOAD_RETRIES", 5)),
		LoadTimeout:     getEnvDuration("LOAD_TIMEOUT", 2*time.Minute),
		LogVerbose:      getEnvBool("LOG_VERBOSE", false),
		DashboardConfig: getEnv("DASHBOARD_CONFIG", ""),
	}
}

// DefaultSecret reports whether admin tokens are signed with DefaultJWTSecret
func (c *Config) DefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Config kits-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  int // 分钟
	}
	Resolver struct {
		CacheTTL int // 秒；下载路径缓存的最大陈旧窗口
	}
	Retention struct {
		MaxVersions int // 每配置保留的版本数上限
	}
	Events EventConfig
}

// EventConfig 发布事件外发配置（Redis Stream + 可选 webhook）
type EventConfig struct {
	StreamEnabled bool
	StreamName    string
	WebhookURL    string // 空 = 不发 webhook
}

func Load() *Config {
	// .env.local 仅本地开发使用，缺失时静默忽略
	_ = godotenv.Load(".env.local")

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3020")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "ifn_kits")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "dev-only-secret")
	cfg.Auth.TokenTTL = parseInt(getEnv("JWT_TTL_MINUTES", "720"), 720)

	// 下载路径缓存 TTL：publish/映射修改最迟在这个窗口内对服务器可见
	cfg.Resolver.CacheTTL = parseInt(getEnv("RESOLVE_CACHE_TTL", "30"), 30)

	cfg.Retention.MaxVersions = parseInt(getEnv("VERSION_RETENTION", "50"), 50)

	cfg.Events.StreamEnabled = getEnv("EVENTS_STREAM_ENABLED", "true") == "true"
	cfg.Events.StreamName = getEnv("EVENTS_STREAM", "kits:events")
	cfg.Events.WebhookURL = getEnv("PUBLISH_WEBHOOK_URL", "")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

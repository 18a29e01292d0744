package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string

	PhotoBackend  string
	PhotoPath     string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKeyID string
	S3SecretKey   string
	S3KeyPrefix   string

	RedisAddr     string
	RedisPassword string

	JWTSecret            string
	SessionTTL           time.Duration
	AdminDefaultPassword string

	Timezone           string
	CORSAllowedOrigins []string

	LogLevel  string
	LogFile   string
	LogFormat string
}

// Load reads the configuration from the environment. Variables in a .env
// file in the working directory are loaded first but never override the
// real environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/konsinyasi.db"),

		PhotoBackend:  getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:     getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", "auto"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID: getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3KeyPrefix:   getEnv("S3_KEY_PREFIX", "photos/"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:            getEnv("JWT_SECRET", ""),
		SessionTTL:           getDuration("SESSION_TTL", 12*time.Hour),
		AdminDefaultPassword: getEnv("ADMIN_DEFAULT_PASSWORD", "bos123"),

		Timezone:           getEnv("TIMEZONE", "Asia/Jakarta"),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return d
}

// getList splits a comma separated variable, dropping empty entries.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

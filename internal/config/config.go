package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
	LogMode        string

	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPass         string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	RedisURL string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	LoginMaxAttempts int64
	LoginWindow      time.Duration
	RegisterCooldown time.Duration
	LessonCountTTL   time.Duration

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	OtelExporter    string
	OtelEndpoint    string
	OtelServiceName string

	SeedAdminEmail    string
	SeedAdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogMode:        getEnv("LOG_MODE", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "course_platform"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTIssuer: getEnv("JWT_ISSUER", "course-platform"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "course_platform"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		OtelExporter:    getEnv("OTEL_EXPORTER", "none"),
		OtelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "course-platform"),

		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@courseplatform.dev"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
	}

	var err error
	if cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "2h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.LoginWindow, err = parseDuration(getEnv("RATE_LIMIT_LOGIN_WINDOW", "15m")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOGIN_WINDOW: %w", err)
	}
	if cfg.RegisterCooldown, err = parseDuration(getEnv("RATE_LIMIT_REGISTER", "10s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REGISTER: %w", err)
	}
	if cfg.LessonCountTTL, err = parseDuration(getEnv("LESSON_COUNT_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid LESSON_COUNT_CACHE_TTL: %w", err)
	}
	if cfg.LoginMaxAttempts, err = strconv.ParseInt(getEnv("RATE_LIMIT_LOGIN_ATTEMPTS", "5"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOGIN_ATTEMPTS: %w", err)
	}
	if cfg.DBMaxOpenConns, err = strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "20")); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxIdleConns, err = strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5")); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	if cfg.IsProduction() && cfg.JWTSecret == "change-me" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

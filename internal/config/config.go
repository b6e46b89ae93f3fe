package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAppEnv         = "dev"
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "lostfound.db"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTTTL         = "24h"
	defaultMinTokenLength = "1"
	defaultUploadsDir     = "./uploads"
	defaultStaticURLBase  = "/static/uploads"
	defaultMailFrom       = "lost-found@campus.local"
	defaultSMTPPort       = "587"
	defaultRedisChannel   = "lostfound.realtime"
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether outbound mail goes through a real SMTP server.
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

func (c MinioConfig) Enabled() bool { return c.Endpoint != "" && c.Bucket != "" }

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type Config struct {
	AppEnv      string `yaml:"app_env"`
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	// MatchMinTokenLength drops keywords shorter than this many runes.
	// 1 keeps every token (higher recall, more false positives on short words).
	MatchMinTokenLength int `yaml:"match_min_token_length"`

	UploadsDir         string   `yaml:"uploads_dir"`
	StaticURLBase      string   `yaml:"static_url_base"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	SentryDSN          string   `yaml:"sentry_dsn"`

	SMTP  SMTPConfig  `yaml:"smtp"`
	Minio MinioConfig `yaml:"minio"`
	Redis RedisConfig `yaml:"redis"`
}

// Load reads .env (if present), an optional YAML file named by CONFIG_FILE,
// then applies environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	appEnv := getEnv("APP_ENV", firstNonEmpty(cfg.AppEnv, os.Getenv("ENV"), defaultAppEnv))
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(appEnv))
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", firstNonEmpty(cfg.HTTPAddr, defaultHTTPAddr)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", firstNonEmpty(cfg.DatabaseURL, defaultDatabaseURL)))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", firstNonEmpty(cfg.JWTSecret, defaultJWTSecret)))

	var err error
	ttlFallback := defaultJWTTTL
	if cfg.JWTTTL > 0 {
		ttlFallback = cfg.JWTTTL.String()
	}
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", ttlFallback); err != nil {
		return err
	}

	minLenFallback := defaultMinTokenLength
	if cfg.MatchMinTokenLength > 0 {
		minLenFallback = strconv.Itoa(cfg.MatchMinTokenLength)
	}
	if cfg.MatchMinTokenLength, err = parseIntEnv("MATCH_MIN_TOKEN_LENGTH", minLenFallback); err != nil {
		return err
	}

	cfg.UploadsDir = getEnv("UPLOADS_DIR", firstNonEmpty(cfg.UploadsDir, defaultUploadsDir))
	cfg.StaticURLBase = getEnv("STATIC_URL_BASE", firstNonEmpty(cfg.StaticURLBase, defaultStaticURLBase))
	cfg.SentryDSN = getEnv("SENTRY_DSN", cfg.SentryDSN)

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		cfg.CORSAllowedOrigins = splitList(extra)
	}

	cfg.SMTP.Host = getEnv("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", cfg.SMTP.Username)
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", cfg.SMTP.Password)
	cfg.SMTP.From = getEnv("MAIL_FROM", firstNonEmpty(cfg.SMTP.From, defaultMailFrom))
	portFallback := defaultSMTPPort
	if cfg.SMTP.Port > 0 {
		portFallback = strconv.Itoa(cfg.SMTP.Port)
	}
	if cfg.SMTP.Port, err = parseIntEnv("SMTP_PORT", portFallback); err != nil {
		return err
	}

	cfg.Minio.Endpoint = getEnv("MINIO_ENDPOINT", cfg.Minio.Endpoint)
	cfg.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.Minio.AccessKey)
	cfg.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.Minio.SecretKey)
	cfg.Minio.Bucket = getEnv("MINIO_BUCKET", cfg.Minio.Bucket)
	cfg.Minio.PublicURL = getEnv("MINIO_PUBLIC_URL", cfg.Minio.PublicURL)
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.Minio.UseSSL = parseBool(v)
	}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.Channel = getEnv("REDIS_CHANNEL", firstNonEmpty(cfg.Redis.Channel, defaultRedisChannel))
	dbFallback := strconv.Itoa(cfg.Redis.DB)
	if cfg.Redis.DB, err = parseIntEnv("REDIS_DB", dbFallback); err != nil {
		return err
	}

	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.MatchMinTokenLength < 1 {
		return fmt.Errorf("MATCH_MIN_TOKEN_LENGTH must be >= 1")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.SMTP.Enabled() && (cfg.SMTP.Port <= 0 || cfg.SMTP.From == "") {
		return fmt.Errorf("SMTP_PORT and MAIL_FROM are required when SMTP_HOST is set")
	}
	if cfg.Minio.Endpoint != "" && cfg.Minio.Bucket == "" {
		return fmt.Errorf("MINIO_BUCKET is required when MINIO_ENDPOINT is set")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var (
	storageDrivers      = []string{StorageDriverPostgres, StorageDriverMemory}
	earlyPulangPolicies = []string{string(attendance.EarlyPulangReject), string(attendance.EarlyPulangAcknowledge)}
)

type Config struct {
	Database    DatabaseConfig
	JWT         JWTConfig
	App         AppConfig
	Admin       AdminConfig
	Attendance  AttendanceConfig
	Recognition RecognitionConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
	KioskExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	FrontendURL    string
	StorageDriver  string
	AllowedOrigins []string
}

// AdminConfig holds the single admin account. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// AttendanceConfig holds the raw window settings as HH:MM strings.
type AttendanceConfig struct {
	MasukStart  string
	MasukEnd    string
	PulangStart string
	MinInterval time.Duration
	EarlyPulang string
}

type RecognitionConfig struct {
	MatchThreshold        float64
	CandidateCacheTTL     time.Duration
	CandidateRefreshEvery time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	maxConnLifetime, err := time.ParseDuration(getEnv("DB_MAX_CONN_LIFETIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_LIFETIME: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "face_attendance"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		MaxConnLifetime: maxConnLifetime,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	allowedOrigins := getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", clock.DefaultTimezone),
		FrontendURL:    frontendURL,
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		AllowedOrigins: allowedOrigins,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		KioskExpiration:  getEnv("JWT_KIOSK_EXPIRATION_TIME", "720h"),
	}

	config.Admin = AdminConfig{
		Username:     getEnv("ADMIN_USERNAME", "admin"),
		PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}

	// Attendance policy
	minInterval, err := time.ParseDuration(getEnv("ATTENDANCE_MIN_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MIN_INTERVAL: %w", err)
	}
	defaults := attendance.DefaultPolicy()
	config.Attendance = AttendanceConfig{
		MasukStart:  getEnv("ATTENDANCE_MASUK_START", clock.FormatMinuteOfDay(defaults.MasukStart)),
		MasukEnd:    getEnv("ATTENDANCE_MASUK_END", clock.FormatMinuteOfDay(defaults.MasukEnd)),
		PulangStart: getEnv("ATTENDANCE_PULANG_START", clock.FormatMinuteOfDay(defaults.PulangStart)),
		MinInterval: minInterval,
		EarlyPulang: strings.ToLower(getEnv("ATTENDANCE_EARLY_PULANG_POLICY", string(defaults.EarlyPulang))),
	}

	// Recognition
	threshold, err := strconv.ParseFloat(getEnv("RECOGNITION_MATCH_THRESHOLD", "0.6"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RECOGNITION_MATCH_THRESHOLD: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CANDIDATE_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CANDIDATE_CACHE_TTL: %w", err)
	}
	refreshEvery, err := time.ParseDuration(getEnv("CANDIDATE_REFRESH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CANDIDATE_REFRESH_INTERVAL: %w", err)
	}
	config.Recognition = RecognitionConfig{
		MatchThreshold:        threshold,
		CandidateCacheTTL:     cacheTTL,
		CandidateRefreshEvery: refreshEvery,
	}

	// Redis configuration
	redisPoolSize, err := strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_POOL_SIZE: %w", err)
	}
	redisMinIdle, err := strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_MIN_IDLE_CONNS: %w", err)
	}
	config.Redis = RedisConfig{
		URL:          getEnv("REDIS_URL", ""),
		PoolSize:     redisPoolSize,
		MinIdleConns: redisMinIdle,
	}

	config.Kafka = KafkaConfig{
		Brokers:  getEnvSlice("KAFKA_BROKERS"),
		Topic:    getEnv("KAFKA_TOPIC", "attendance-events"),
		ClientID: getEnv("KAFKA_CLIENT_ID", "face-attendance"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.KioskExpiration); err != nil {
		return fmt.Errorf("invalid JWT_KIOSK_EXPIRATION_TIME: %w", err)
	}

	if !validator.IsInSlice(c.App.StorageDriver, storageDrivers) {
		return fmt.Errorf("STORAGE_DRIVER must be one of %v", storageDrivers)
	}
	if c.App.StorageDriver == StorageDriverPostgres && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	if !validator.IsInSlice(c.Attendance.EarlyPulang, earlyPulangPolicies) {
		return fmt.Errorf("ATTENDANCE_EARLY_PULANG_POLICY must be one of %v", earlyPulangPolicies)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}

	if c.Recognition.MatchThreshold <= 0 {
		return fmt.Errorf("RECOGNITION_MATCH_THRESHOLD must be positive")
	}
	if c.Recognition.CandidateCacheTTL <= 0 {
		return fmt.Errorf("CANDIDATE_CACHE_TTL must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// Policy parses the attendance window settings.
func (c *Config) Policy() (attendance.Policy, error) {
	masukStart, err := clock.ParseMinuteOfDay(c.Attendance.MasukStart)
	if err != nil {
		return attendance.Policy{}, fmt.Errorf("invalid ATTENDANCE_MASUK_START: %w", err)
	}
	masukEnd, err := clock.ParseMinuteOfDay(c.Attendance.MasukEnd)
	if err != nil {
		return attendance.Policy{}, fmt.Errorf("invalid ATTENDANCE_MASUK_END: %w", err)
	}
	pulangStart, err := clock.ParseMinuteOfDay(c.Attendance.PulangStart)
	if err != nil {
		return attendance.Policy{}, fmt.Errorf("invalid ATTENDANCE_PULANG_START: %w", err)
	}

	policy := attendance.Policy{
		MasukStart:  masukStart,
		MasukEnd:    masukEnd,
		PulangStart: pulangStart,
		MinInterval: c.Attendance.MinInterval,
		EarlyPulang: attendance.EarlyPulangPolicy(c.Attendance.EarlyPulang),
	}
	if err := policy.Validate(); err != nil {
		return attendance.Policy{}, fmt.Errorf("invalid attendance policy: %w", err)
	}
	return policy, nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Scheduling SchedulingConfig
	Kafka      KafkaConfig
	RateLimit  RateLimitConfig
	Telemetry  TelemetryConfig
}

type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type JWTConfig struct {
	Secret         string
	Issuer         string
	RequireSession bool
}

// SchedulingConfig holds the booking engine knobs.
type SchedulingConfig struct {
	SlotDurationMinutes int
	DefaultTimezone     string
	HardDeleteOnCancel  bool
	ScheduleWindowDays  int
	MaxScheduleDays     int
	LockIdleTTL         time.Duration
}

type KafkaConfig struct {
	Brokers      string
	Topic        string
	WriteTimeout time.Duration
}

type RateLimitConfig struct {
	BookingsPerSecond float64
	Burst             int
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SampleRatio  float64
}

const (
	defaultSlotDurationMinutes = 30
	defaultScheduleWindowDays  = 7
	defaultMaxScheduleDays     = 92
)

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Environment variables alone are enough to run.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			CacheTTL: parseDuration("REDIS_CACHE_TTL", 10*time.Minute),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("JWT_SECRET"),
			Issuer:         viper.GetString("JWT_ISSUER"),
			RequireSession: viper.GetBool("JWT_REQUIRE_SESSION"),
		},
		Scheduling: SchedulingConfig{
			SlotDurationMinutes: viper.GetInt("SCHEDULING_SLOT_DURATION_MINUTES"),
			DefaultTimezone:     viper.GetString("SCHEDULING_DEFAULT_TIMEZONE"),
			HardDeleteOnCancel:  viper.GetBool("SCHEDULING_HARD_DELETE_ON_CANCEL"),
			ScheduleWindowDays:  viper.GetInt("SCHEDULING_SCHEDULE_WINDOW_DAYS"),
			MaxScheduleDays:     viper.GetInt("SCHEDULING_MAX_SCHEDULE_DAYS"),
			LockIdleTTL:         parseDuration("SCHEDULING_LOCK_IDLE_TTL", 10*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:      viper.GetString("KAFKA_BROKERS"),
			Topic:        viper.GetString("KAFKA_APPOINTMENT_TOPIC"),
			WriteTimeout: parseDuration("KAFKA_WRITE_TIMEOUT", 2*time.Second),
		},
		RateLimit: RateLimitConfig{
			BookingsPerSecond: viper.GetFloat64("RATE_LIMIT_BOOKINGS_PER_SECOND"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      viper.GetBool("OTEL_ENABLED"),
			ServiceName:  viper.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRatio:  viper.GetFloat64("OTEL_SAMPLING_RATIO"),
		},
	}

	config.Scheduling.normalize()

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("SCHEDULING_SLOT_DURATION_MINUTES", defaultSlotDurationMinutes)
	viper.SetDefault("SCHEDULING_DEFAULT_TIMEZONE", "UTC")
	viper.SetDefault("SCHEDULING_SCHEDULE_WINDOW_DAYS", defaultScheduleWindowDays)
	viper.SetDefault("SCHEDULING_MAX_SCHEDULE_DAYS", defaultMaxScheduleDays)
	viper.SetDefault("KAFKA_APPOINTMENT_TOPIC", "appointment-events")
	viper.SetDefault("RATE_LIMIT_BOOKINGS_PER_SECOND", 1.0)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("OTEL_SERVICE_NAME", "clinic-scheduling-api")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	viper.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (c *SchedulingConfig) normalize() {
	if c.SlotDurationMinutes <= 0 {
		c.SlotDurationMinutes = defaultSlotDurationMinutes
	}
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = "UTC"
	}
	if c.ScheduleWindowDays <= 0 {
		c.ScheduleWindowDays = defaultScheduleWindowDays
	}
	if c.MaxScheduleDays < c.ScheduleWindowDays {
		c.MaxScheduleDays = defaultMaxScheduleDays
	}
	if c.LockIdleTTL <= 0 {
		c.LockIdleTTL = 10 * time.Minute
	}
}

// DefaultSchedulingConfig returns the settings used when nothing is configured.
func DefaultSchedulingConfig() SchedulingConfig {
	c := SchedulingConfig{}
	c.normalize()
	return c
}

// DSN returns the GORM postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// MigrationURL returns the connection URL understood by the migrate pgx/v5 driver.
func (c DBConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// Addr returns host:port for the Redis client.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// RedisEnabled reports whether a Redis host was configured.
func (c RedisConfig) RedisEnabled() bool {
	return c.Host != ""
}

package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const DateLayout = "2006-01-02"

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Holiday       HolidayConfig       `mapstructure:"holiday"`
	Leave         LeaveConfig         `mapstructure:"leave"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Notification  NotificationConfig  `mapstructure:"notification"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer              string        `mapstructure:"issuer"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

type HolidayConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey   string        `mapstructure:"api_key"`
	Country  string        `mapstructure:"country" validate:"omitempty,len=2"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type LeaveConfig struct {
	FloaterDates []string `mapstructure:"floater_dates" validate:"dive,datetime=2006-01-02"`
}

type SchedulerConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	Timezone               string        `mapstructure:"timezone"`
	MonthlyAccrualSpec     string        `mapstructure:"monthly_accrual_spec"`
	AnnualCarryForwardSpec string        `mapstructure:"annual_carry_forward_spec"`
	LockTTL                time.Duration `mapstructure:"lock_ttl"`
}

type NotificationConfig struct {
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	Topic        string   `mapstructure:"topic" validate:"required_with=KafkaBrokers"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`
	Burst             int     `mapstructure:"burst" validate:"min=0"`
}

// LoadConfigFromEnv builds the configuration for container deployments where
// no config file is mounted. A .env file, when present, is loaded first.
func LoadConfigFromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", ""),
			AllowedOrigins:    getEnv("HTTP_ALLOWED_ORIGINS", "*"),
			OpenAPIPath:       getEnv("HTTP_OPENAPI_PATH", "./api/openapi.yml"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			Issuer:              getEnv("JWT_ISSUER", "leave-management"),
			AccessTokenDuration: getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Holiday: HolidayConfig{
			BaseURL:  getEnv("CALENDARIFIC_BASE_URL", "https://calendarific.com/api/v2"),
			APIKey:   getEnv("CALENDARIFIC_API_KEY", ""),
			Country:  getEnv("CALENDARIFIC_COUNTRY", "IN"),
			Timeout:  getEnvAsDuration("CALENDARIFIC_TIMEOUT", 5*time.Second),
			CacheTTL: getEnvAsDuration("CALENDARIFIC_CACHE_TTL", 24*time.Hour),
		},
		Leave: LeaveConfig{
			FloaterDates: getEnvAsList("LEAVE_FLOATER_DATES", nil),
		},
		Scheduler: SchedulerConfig{
			Enabled:                getEnvAsBool("SCHEDULER_ENABLED", true),
			Timezone:               getEnv("SCHEDULER_TIMEZONE", "Asia/Kolkata"),
			MonthlyAccrualSpec:     getEnv("SCHEDULER_MONTHLY_ACCRUAL_SPEC", "9 9 9 * *"),
			AnnualCarryForwardSpec: getEnv("SCHEDULER_ANNUAL_CARRY_FORWARD_SPEC", "7 9 1 1 *"),
			LockTTL:                getEnvAsDuration("SCHEDULER_LOCK_TTL", 15*time.Minute),
		},
		Notification: NotificationConfig{
			KafkaBrokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:        getEnv("KAFKA_LEAVE_TOPIC", "leave-events"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("scheduler config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SchedulerConfig) Validate() error {
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %s: %w", c.Timezone, err)
		}
	}
	for _, spec := range []string{c.MonthlyAccrualSpec, c.AnnualCarryForwardSpec} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", spec, err)
		}
	}
	return nil
}

func (c *SchedulerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParsedFloaterDates returns the configured floater holidays as UTC dates.
func (c *LeaveConfig) ParsedFloaterDates() ([]time.Time, error) {
	dates := make([]time.Time, 0, len(c.FloaterDates))
	for _, raw := range c.FloaterDates {
		d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid floater date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func (c *NotificationConfig) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

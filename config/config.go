// config/config.go - Environment configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const defaultOrigin = "http://localhost:5173"

type DBDriver string

const (
	DriverSQLite   DBDriver = "sqlite"
	DriverPostgres DBDriver = "postgres"
	DriverMySQL    DBDriver = "mysql"
)

type Config struct {
	Port           string
	AppEnv         string
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string

	DBDriver      DBDriver
	DatabaseURL   string
	SQLitePath    string
	MySQLHost     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	MySQLPort     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	CardTablesPath string
	DailyResetTZ   string
	StartingCoins  int

	LogLevel string
	LogFile  string

	RateLimitEnabled    bool
	RateLimitMax        int
	RateLimitWindow     time.Duration
	AuthRateLimitMax    int
	AuthRateLimitWindow time.Duration
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

// Load reads the configuration from the environment. Callers load .env
// first.
func Load() Config {
	cfg := Config{
		Port:           getEnv("PORT", "3001"),
		AppEnv:         getEnv("APP_ENV", "development"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         getEnvDuration("JWT_TTL", time.Hour),
		AllowedOrigins: ParseAllowedOrigins(os.Getenv("ALLOWED_ORIGINS")),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnv("DB_PATH", "data.sqlite"),
		MySQLHost:     os.Getenv("MYSQL_HOST"),
		MySQLUser:     os.Getenv("MYSQL_USER"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLDatabase: os.Getenv("MYSQL_DATABASE"),
		MySQLPort:     getEnvInt("MYSQL_PORT", 3306),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTTL:      getEnvDuration("REDIS_TTL", 10*time.Minute),

		CardTablesPath: os.Getenv("CARD_TABLES_PATH"),
		DailyResetTZ:   getEnv("DAILY_RESET_TZ", "Europe/Paris"),
		StartingCoins:  getEnvInt("STARTING_COINS", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		RateLimitEnabled:    getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitMax:        getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitWindow:     getEnvMillis("RATE_LIMIT_WINDOW_MS", 15*time.Minute),
		AuthRateLimitMax:    getEnvInt("AUTH_RATE_LIMIT_MAX", 5),
		AuthRateLimitWindow: getEnvMillis("AUTH_RATE_LIMIT_WINDOW_MS", 5*time.Minute),
	}

	switch {
	case cfg.MySQLHost != "":
		cfg.DBDriver = DriverMySQL
	case cfg.DatabaseURL != "":
		cfg.DBDriver = DriverPostgres
	default:
		cfg.DBDriver = DriverSQLite
	}
	return cfg
}

// Validate checks the settings the server refuses to start without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable must be set"))
	} else if c.IsProduction() && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters long in production"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.StartingCoins < 0 {
		errs = append(errs, errors.New("STARTING_COINS must be >= 0"))
	}
	if _, err := time.LoadLocation(c.DailyResetTZ); err != nil {
		errs = append(errs, fmt.Errorf("DAILY_RESET_TZ: %w", err))
	}
	if c.DBDriver == DriverMySQL && (c.MySQLUser == "" || c.MySQLDatabase == "") {
		errs = append(errs, errors.New("MYSQL_USER and MYSQL_DATABASE are required with MYSQL_HOST"))
	}
	return errors.Join(errs...)
}

// MySQLDSN builds the go-sql-driver DSN from the MYSQL_* settings.
func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
}

// ParseAllowedOrigins splits a comma separated list, trims entries and
// drops empty ones. An empty input yields the local dev frontend.
func ParseAllowedOrigins(raw string) []string {
	if raw == "" {
		return []string{defaultOrigin}
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func getEnvMillis(key string, def time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "false", "0", "no":
		return false
	case "true", "1", "yes":
		return true
	}
	return def
}

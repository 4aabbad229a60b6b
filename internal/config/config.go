package config

import (
	"daylog-service/internal/domain"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultPostgresPort = 5432

// Driver dashboard backends selected by DRIVER_STORE.
const (
	DriverStorePostgres = "postgres"
	DriverStoreMemory   = "memory"
)

type Config struct {
	AppEnv          string
	LogLevel        slog.Level
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// DriverStore is DriverStorePostgres or DriverStoreMemory.
	DriverStore      string
	DriverDB         DriverDBConfig
	HealthcheckToken string
	StopFilterPolicy domain.ContainmentPolicy
	SeedPath         string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	TrackerDBPath   string
	TrackerLocation *time.Location
}

// DriverDBConfig is the Postgres connection of the driver dashboard.
// When Error is set the URL is unusable and the dashboard runs unconfigured.
type DriverDBConfig struct {
	URL   string
	Error string
}

func (c DriverDBConfig) Configured() bool { return c.Error == "" && c.URL != "" }

func (c *Config) Production() bool { return c.AppEnv == "production" }

// LoadDotEnv reads a .env file into the environment when one exists.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Info("no .env file found, using environment variables")
	}
}

func Load() (*Config, error) {
	policy, err := domain.ParseContainmentPolicy(getEnv("STOP_FILTER_POLICY", string(domain.DefaultContainmentPolicy)))
	if err != nil {
		return nil, fmt.Errorf("load config: STOP_FILTER_POLICY: %w", err)
	}

	store := strings.ToLower(strings.TrimSpace(getEnv("DRIVER_STORE", DriverStorePostgres)))
	if store != DriverStorePostgres && store != DriverStoreMemory {
		return nil, fmt.Errorf("load config: DRIVER_STORE: unknown store %q", store)
	}

	loc, err := getLocationEnv("TRACKER_TZ", time.Local)
	if err != nil {
		return nil, fmt.Errorf("load config: TRACKER_TZ: %w", err)
	}

	return &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getLogLevelEnv("LOG_LEVEL", slog.LevelInfo),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),

		DriverStore:      store,
		DriverDB:         loadDriverDB(),
		HealthcheckToken: getEnv("HEALTHCHECK_TOKEN", ""),
		StopFilterPolicy: policy,
		SeedPath:         getEnv("SEED_PATH", "data/seeds/driver_history.json"),

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		CacheTTL:      getDurationEnv("CACHE_TTL", 24*time.Hour),

		TrackerDBPath:   getEnv("DB_PATH", "data/baby-tracker.db"),
		TrackerLocation: loc,
	}, nil
}

// loadDriverDB prefers DATABASE_URL and otherwise assembles a URL from the PG* parts.
func loadDriverDB() DriverDBConfig {
	if u := strings.TrimSpace(os.Getenv("DATABASE_URL")); u != "" {
		return DriverDBConfig{URL: u}
	}

	required := []string{"PGHOST", "PGUSER", "PGPASSWORD", "PGDATABASE"}
	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return DriverDBConfig{Error: "Missing required database env vars: " + strings.Join(missing, ", ")}
	}

	port := defaultPostgresPort
	if v := os.Getenv("PGPORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return DriverDBConfig{Error: "Invalid PGPORT value: " + v}
		}
		port = p
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(os.Getenv("PGUSER"), os.Getenv("PGPASSWORD")),
		Host:   net.JoinHostPort(os.Getenv("PGHOST"), strconv.Itoa(port)),
		Path:   "/" + os.Getenv("PGDATABASE"),
	}
	q := url.Values{}
	q.Set("sslmode", getEnv("PGSSLMODE", "disable"))
	u.RawQuery = q.Encode()

	return DriverDBConfig{URL: u.String()}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}

func getLocationEnv(key string, defaultVal *time.Location) (*time.Location, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.LoadLocation(v)
}

package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	GraphQL   GraphQLConfig
	Session   SessionConfig
	UI        UIConfig
	Clearance ClearanceConfig
	Dashboard DashboardConfig
	Realtime  RealtimeConfig
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GraphQLConfig points at the remote library backend.
type GraphQLConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// SessionConfig controls where the bearer token issued by the auth provider is kept.
type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	CookieMaxAge time.Duration
	LoginURL     string
}

// UIConfig tunes the server-rendered dashboard.
type UIConfig struct {
	ThemeStorageKey string
	DefaultTheme    string
	StudentPhotoURL string
}

// ClearanceConfig governs the clearance decision engine.
type ClearanceConfig struct {
	DefaultOverdueFine int64
	Currency           string
	ActionLockTTL      time.Duration
	OverrideTTL        time.Duration
}

// DashboardConfig governs dashboard cache tuning.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// RealtimeConfig toggles the websocket change feed.
type RealtimeConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Enabled:      v.GetBool("ENABLE_AUDIT_DB"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.GraphQL = GraphQLConfig{
		Endpoint: v.GetString("GRAPHQL_ENDPOINT"),
		Timeout:  parseDuration(v.GetString("GRAPHQL_TIMEOUT"), 15*time.Second),
	}

	cfg.Session = SessionConfig{
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		CookieMaxAge: parseDuration(v.GetString("SESSION_COOKIE_MAX_AGE"), 12*time.Hour),
		LoginURL:     v.GetString("AUTH_LOGIN_URL"),
	}

	cfg.UI = UIConfig{
		ThemeStorageKey: v.GetString("UI_THEME_STORAGE_KEY"),
		DefaultTheme:    normaliseTheme(v.GetString("UI_DEFAULT_THEME")),
		StudentPhotoURL: v.GetString("UI_STUDENT_PHOTO_URL"),
	}

	defaultFine := v.GetInt64("CLEARANCE_DEFAULT_OVERDUE_FINE")
	if defaultFine < 0 {
		defaultFine = 0
	}
	cfg.Clearance = ClearanceConfig{
		DefaultOverdueFine: defaultFine,
		Currency:           v.GetString("CLEARANCE_CURRENCY"),
		ActionLockTTL:      parseDuration(v.GetString("CLEARANCE_ACTION_LOCK_TTL"), 30*time.Second),
		OverrideTTL:        parseDuration(v.GetString("CLEARANCE_OVERRIDE_TTL"), 0),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), time.Minute),
	}

	cfg.Realtime = RealtimeConfig{Enabled: v.GetBool("ENABLE_REALTIME")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ENABLE_AUDIT_DB", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "library_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRAPHQL_ENDPOINT", "http://localhost:4000/graphql")
	v.SetDefault("GRAPHQL_TIMEOUT", "15s")

	v.SetDefault("SESSION_COOKIE_NAME", "library_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_COOKIE_MAX_AGE", "12h")
	v.SetDefault("AUTH_LOGIN_URL", "")

	v.SetDefault("UI_THEME_STORAGE_KEY", "nkumba-theme")
	v.SetDefault("UI_DEFAULT_THEME", "light")
	v.SetDefault("UI_STUDENT_PHOTO_URL", "")

	v.SetDefault("CLEARANCE_DEFAULT_OVERDUE_FINE", 1000)
	v.SetDefault("CLEARANCE_CURRENCY", "UGX")
	v.SetDefault("CLEARANCE_ACTION_LOCK_TTL", "30s")
	v.SetDefault("CLEARANCE_OVERRIDE_TTL", "")

	v.SetDefault("DASHBOARD_CACHE_TTL", "1m")
	v.SetDefault("ENABLE_REALTIME", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func normaliseTheme(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "dark") {
		return "dark"
	}
	return "light"
}

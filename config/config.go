package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port string

	DatabaseURL   string
	MongoDatabase string

	DashboardPassword     string
	DashboardPasswordHash string
	JWTSecret             string
	TokenTTL              time.Duration

	WeddingDate  time.Time
	IPHashSalt   string
	CORSOrigins  []string
	DemoFallback bool

	LogLevel  string
	LogFormat string

	Timeouts Timeouts
}

// Timeouts bound each storage round trip per endpoint family.
type Timeouts struct {
	RSVP      time.Duration
	WellWish  time.Duration
	Visit     time.Duration
	Dashboard time.Duration
	Health    time.Duration
}

const defaultWeddingDate = "2026-05-16T17:00:00Z"

// LoadConfig reads .env when present, then the environment.
func LoadConfig() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables or defaults.
func FromEnv() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           resolveDatabaseURL(),
		MongoDatabase:         getEnv("MONGO_DATABASE", "wedding"),
		DashboardPassword:     getEnv("DASHBOARD_PASSWORD", "boda2026"),
		DashboardPasswordHash: os.Getenv("DASHBOARD_PASSWORD_HASH"),
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTL:              getDuration("TOKEN_TTL", 24*time.Hour),
		WeddingDate:           getTime("WEDDING_DATE", defaultWeddingDate),
		IPHashSalt:            getEnv("IP_HASH_SALT", "wedding-visit-salt"),
		CORSOrigins:           parseList(os.Getenv("CORS_ORIGINS")),
		DemoFallback:          getBool("DEMO_FALLBACK", true),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		Timeouts: Timeouts{
			RSVP:      getDuration("RSVP_TIMEOUT", 10*time.Second),
			WellWish:  getDuration("WELL_WISH_TIMEOUT", 8*time.Second),
			Visit:     getDuration("VISIT_TIMEOUT", 5*time.Second),
			Dashboard: getDuration("DASHBOARD_TIMEOUT", 15*time.Second),
			Health:    getDuration("HEALTH_TIMEOUT", 2*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getDuration accepts Go durations ("15s") or plain seconds ("15").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}

// getTime accepts RFC 3339 or a bare date, always in UTC.
func getTime(key, defaultValue string) time.Time {
	raw := getEnv(key, defaultValue)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	t, _ := time.Parse(time.RFC3339, defaultValue)
	return t.UTC()
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

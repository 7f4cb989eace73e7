package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full application configuration. It is populated once at
// startup and passed down by constructor; nothing mutates it afterwards.
type Config struct {
	App   AppConfig
	Mongo MongoConfig
	JWT   JWTConfig
	Mail  MailConfig
}

// AppConfig covers the HTTP server and environment basics.
type AppConfig struct {
	Env         string // "development" or "production"
	Port        string
	FrontendURL string   // base URL used in verification/reset links
	CORSOrigins []string // allowed origins for browser clients
	UploadDir   string   // local directory for patient documents
}

// MongoConfig is the document store connection.
type MongoConfig struct {
	URI      string
	Database string
}

// JWTConfig carries the shared signing secret and the expiry for each token
// class. All classes sign with HS256; the key is bound per class at
// sign/verify time so a refresh token can never pass as an access token.
type JWTConfig struct {
	Secret              string
	AccessExpiry        time.Duration
	RefreshExpiry       time.Duration
	VerificationExpiry  time.Duration
	PasswordResetExpiry time.Duration
}

// MailConfig is the SMTP transport used for verification and reset links.
type MailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Load builds a Config from environment variables, applying defaults for
// anything unset. Call godotenv.Load before this if a .env file is used.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:         getenv("APP_ENV", "development"),
			Port:        getenv("API_PORT", "8080"),
			FrontendURL: normalizeURL(getenv("FRONT_APP_HOST", "http://localhost:5173")),
			CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
			UploadDir:   getenv("UPLOAD_DIR", "uploads"),
		},
		Mongo: MongoConfig{
			URI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getenv("MONGO_DATABASE", "peditrack"),
		},
		JWT: JWTConfig{
			Secret: getenv("JWT_SECRET", ""),
		},
		Mail: MailConfig{
			Host: getenv("MAIL_HOST", "smtp.gmail.com"),
			Port: getenvInt("MAIL_PORT", 587),
			User: os.Getenv("MAIL_USER"),
			Pass: os.Getenv("MAIL_PASS"),
			From: getenv("MAIL_FROM", "noreply@peditrack.app"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not configured")
	}

	var err error
	if cfg.JWT.AccessExpiry, err = getenvDuration("JWT_ACCESS_EXPIRATION", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWT.RefreshExpiry, err = getenvDuration("JWT_REFRESH_EXPIRATION", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWT.VerificationExpiry, err = getenvDuration("JWT_VERIFICATION_EXPIRATION", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWT.PasswordResetExpiry, err = getenvDuration("JWT_RESET_EXPIRATION", time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// ParseDuration parses Go duration strings and additionally accepts a "d"
// suffix for days, so values like "7d" from existing deployments keep working.
func ParseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return strings.TrimSuffix(u, "/")
	}
	return "https://" + strings.TrimSuffix(u, "/")
}

// config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	DatabaseURL string
	RedisAddr   string
	RedisPwd    string
	WebOrigin   string
	Port        string
	SessionTTL  time.Duration

	AdminUIDs   []string
	AdminEmails []string

	AuthProvider            string // "firebase" | "jwt"
	FirebaseProjectID       string
	FirebaseCredentialsPath string
	JWTSigningKey           string
	JWTIssuer               string

	// Location is the reference zone for monthly request quotas.
	Location      *time.Location
	QuotaLimit    int
	WriteDebounce time.Duration
}

// LoadEnv reads .env if present. Real environment variables win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
}

func Load() Config {
	loc, err := time.LoadLocation(getEnv("PLATFORM_TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		slog.Warn("invalid PLATFORM_TIMEZONE, falling back to UTC", "err", err)
		loc = time.UTC
	}
	return Config{
		DatabaseURL:             databaseURL(),
		RedisAddr:               getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:                os.Getenv("REDIS_PASSWORD"),
		WebOrigin:               getEnv("WEB_ORIGIN", "http://localhost:5173"),
		Port:                    getEnv("PORT", "3001"),
		SessionTTL:              time.Duration(getEnvInt("SESSION_TTL_SECONDS", 86400)) * time.Second,
		AdminUIDs:               splitCSV(os.Getenv("ADMIN_UIDS"), false),
		AdminEmails:             splitCSV(os.Getenv("ADMIN_EMAILS"), true),
		AuthProvider:            strings.ToLower(getEnv("AUTH_PROVIDER", "firebase")),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		JWTSigningKey:           os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:               getEnv("JWT_ISSUER", "donations"),
		Location:                loc,
		QuotaLimit:              getEnvInt("MONTHLY_REQUEST_LIMIT", 3),
		WriteDebounce:           time.Duration(getEnvInt("WRITE_DEBOUNCE_MS", 1500)) * time.Millisecond,
	}
}

// IsAdmin matches either the uid or the (case-insensitive) email.
func (c Config) IsAdmin(uid, email string) bool {
	for _, a := range c.AdminUIDs {
		if a == uid {
			return true
		}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

// SecureCookies is true when the web origin is served over https.
func (c Config) SecureCookies() bool { return strings.HasPrefix(c.WebOrigin, "https://") }

func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "127.0.0.1"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "donations"),
		getEnv("DB_PORT", "5432"),
	)
}

func splitCSV(csv string, lower bool) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		t := strings.TrimSpace(s)
		if t == "" {
			continue
		}
		if lower {
			t = strings.ToLower(t)
		}
		out = append(out, t)
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

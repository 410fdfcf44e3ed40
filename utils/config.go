package utils

import (
	"os"
	"strconv"
	"strings"
)

// Config holds everything read from the environment at startup. It is built
// once in main and passed down; nothing else reads os.Getenv.
type Config struct {
	Env         string
	Port        int
	DatabaseURL string
	JWTSecret   string

	CORSOrigins []string

	PostmarkToken string
	EmailSender   string
	AdminEmail    string

	CourierBaseURL string
	CourierAPIKey  string
	CourierSecret  string

	PushEndpoint  string
	PushServerKey string
}

// LoadConfig reads configuration from environment variables with sane
// defaults for local development.
func LoadConfig() Config {
	return Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnvInt("PORT", 5000),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/avado?sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		PostmarkToken: getEnv("POSTMARK_API_TOKEN", ""),
		EmailSender:   getEnv("EMAIL_SENDER", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),

		CourierBaseURL: strings.TrimRight(getEnv("PACKZY_API_BASE", ""), "/"),
		CourierAPIKey:  getEnv("PACKZY_API_KEY", ""),
		CourierSecret:  getEnv("PACKZY_API_SECRET", ""),

		PushEndpoint:  getEnv("PUSH_ENDPOINT", ""),
		PushServerKey: getEnv("PUSH_SERVER_KEY", ""),
	}
}

// IsProd reports whether the server runs behind HTTPS in production, which
// controls cookie hardening attributes.
func (c Config) IsProd() bool { return c.Env == "production" }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

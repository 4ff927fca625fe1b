package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	OAuth    OAuthConfig
	Email    EmailConfig
	CORS     CORSConfig
}

type AppConfig struct {
	// Environment is one of development, staging, production.
	Environment string
	Domain      string
	Addr        string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type JWTConfig struct {
	PrivateKeyPath string
	KeyID          string
	// ExpirationMinutes bounds session token lifetime.
	ExpirationMinutes int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}

type EmailConfig struct {
	// Provider is console or smtp.
	Provider     string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

func Load() Config {
	return Config{
		App: AppConfig{
			Environment: strings.ToLower(getenv("ENVIRONMENT", "development")),
			Domain:      getenv("APP_DOMAIN", "localhost:5678"),
			Addr:        getenv("APP_ADDR", ":5678"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		JWT: JWTConfig{
			PrivateKeyPath:    getenv("JWT_PRIVATE_KEY_PATH", "storage/keys/private_key.pem"),
			KeyID:             getenv("JWT_KEY_ID", "gnosis-auth-1"),
			ExpirationMinutes: getenvInt("JWT_EXPIRATION_MINUTES", 30),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		},
		Email: EmailConfig{
			Provider:     getenv("EMAIL_PROVIDER", "console"),
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenv("SMTP_PORT", "587"),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			FromEmail:    getenv("FROM_EMAIL", "noreply@gnosis-auth.local"),
			FromName:     getenv("FROM_NAME", "Gnosis Auth"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(getenv("CORS_ORIGINS", "")),
			AllowCredentials: true,
		},
	}
}

func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// ConsoleDelivery reports whether login secrets are surfaced to the
// caller instead of being sent out-of-band. Development and staging
// only; production always delivers via email.
func (a AppConfig) ConsoleDelivery() bool {
	return !a.IsProduction()
}

// EnableDevEndpoints gates the destructive development-only routes.
func (a AppConfig) EnableDevEndpoints() bool {
	return a.Environment == "development" || a.Environment == "staging"
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

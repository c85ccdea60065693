package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	RedisURL           string
	LogLevel           string
	CORSAllowedOrigins []string
	SuperAdminEmail    string
	SuperAdminID       string
	RateLimitPerMin    int

	Postgres    PostgresConfig
	Credentials Credentials
}

// PostgresConfig holds identity-provider database settings
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Credentials is the service account used to sign and verify bearer tokens.
// Supplied via environment variables in production or serviceAccountKey.json
// for local development.
type Credentials struct {
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

const credentialFile = "serviceAccountKey.json"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	origins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		origins = append(origins, frontend)
	}

	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServerPort:         port,
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: origins,
		SuperAdminEmail:    getEnv("SUPERADMIN_EMAIL", "superadmin@vsurvey.com"),
		SuperAdminID:       getEnv("SUPERADMIN_ID", "default"),
		RateLimitPerMin:    rateLimit,
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     pgPort,
			User:     getEnv("POSTGRES_USER", "vsurvey"),
			Password: getEnv("POSTGRES_PASSWORD", "dev"),
			Database: getEnv("POSTGRES_DB", "vsurvey"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Credentials: creds,
	}, nil
}

// loadCredentials tries the environment triple first, then the local key file.
func loadCredentials() (Credentials, error) {
	projectID := os.Getenv("VSURVEY_PROJECT_ID")
	privateKey := os.Getenv("VSURVEY_PRIVATE_KEY")
	clientEmail := os.Getenv("VSURVEY_CLIENT_EMAIL")

	if projectID != "" && privateKey != "" && clientEmail != "" {
		return Credentials{
			ProjectID: projectID,
			// env vars carry the key with escaped newlines
			PrivateKey:  strings.ReplaceAll(privateKey, `\n`, "\n"),
			ClientEmail: clientEmail,
		}, nil
	}

	data, err := os.ReadFile(credentialFile)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("credentials not found: set VSURVEY_PROJECT_ID, VSURVEY_PRIVATE_KEY and VSURVEY_CLIENT_EMAIL or provide %s", credentialFile)
		}
		return Credentials{}, fmt.Errorf("read %s: %w", credentialFile, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse %s: %w", credentialFile, err)
	}
	if creds.ProjectID == "" || creds.PrivateKey == "" || creds.ClientEmail == "" {
		return Credentials{}, fmt.Errorf("%s is missing project_id, private_key or client_email", credentialFile)
	}
	return creds, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

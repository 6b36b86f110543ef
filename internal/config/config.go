package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL    string
	AdminUsername string
	AdminPassword string
	SessionFile   string
	EmailLogFile  string
	Environment   string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return &Config{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api"),
		// Empty admin credentials disable the admin login path entirely.
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		SessionFile:   getEnv("SESSION_FILE", ".quizmaster/session.json"),
		EmailLogFile:  getEnv("EMAIL_LOG_FILE", ""),
		Environment:   getEnv("ENVIRONMENT", "development"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

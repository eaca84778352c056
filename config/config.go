package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	QRSecret   string
	SMTPHost   string
	SMTPPort   string
	Port       string
	Env        string
}

// LoadConfig loads configuration from the environment, reading .env first
// when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine in deployed environments where everything comes
	// from the process environment.
	_ = godotenv.Load()

	config := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "promokart"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		QRSecret:   os.Getenv("QR_SECRET"),
		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getEnv("SMTP_PORT", "587"),
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	APP_ENV    string
	DB_URL     string
	JWT_SECRET string

	STRIPE_SECRET_KEY string
	STRIPE_API_URL    string
	GATEWAY_TIMEOUT   time.Duration

	APP_URL     string
	CORS_ORIGIN string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	APP_ENV = getEnv("APP_ENV", "prod")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_API_URL = getEnv("STRIPE_API_URL", "")
	GATEWAY_TIMEOUT = getDuration("GATEWAY_TIMEOUT", 10*time.Second)

	APP_URL = getEnv("APP_URL", "http://localhost:5173")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", APP_URL)
}

func IsDev() bool {
	return APP_ENV == "dev"
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Invalid duration for %s (%q), using %s", key, raw, fallback)
		return fallback
	}
	return d
}

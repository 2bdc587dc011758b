package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	LTIKey    string // OAuth consumer key shared with the LMS
	LTISecret string // shared secret for launch signatures and id_tokens
	AppURL    string // public base URL, used to rebuild the launch URL

	GeminiApiKey string
	GeminiModel  string

	SessionIdleMinutes int // active sessions idle longer than this are abandoned
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port: getEnv("PORT", "3000"),

		LTIKey:    getEnv("LTI_KEY", "roleplay-trainer"),
		LTISecret: getEnv("LTI_SECRET", "defaultSecret"),
		AppURL:    getEnv("APP_URL", "http://localhost:3000"),

		GeminiApiKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SessionIdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", 60),
	}

	// Validate critical configuration
	if cfg.LTISecret == "defaultSecret" {
		log.Println("Warning: Using default LTI_SECRET. Update it in your environment.")
	}
	if cfg.GeminiApiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set. Character replies will use fallback lines.")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

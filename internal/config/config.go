package config

import "os"

// Addr is the fixed listen address of the HTTP server.
const Addr = ":3000"

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string
}

// Load reads configuration from environment variables. Call godotenv.Load
// first so values from a local .env file are visible here.
func Load() Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Config{
		Addr:        Addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    level,
	}
}

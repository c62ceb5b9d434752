package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	StaticDir       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, with a .env file as
// optional overlay for local runs.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getEnvOrDefault("PORT", "3000"),
		StaticDir:       getEnvOrDefault("STATIC_DIR", "./public"),
		ShutdownTimeout: getDurationOrDefault("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func getEnvOrDefault(key, def string) string {
	if env, ok := os.LookupEnv(key); ok && env != "" {
		return env
	}
	return def
}

func getDurationOrDefault(key string, def time.Duration) time.Duration {
	env, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(env)
	if err != nil {
		return def
	}
	return d
}

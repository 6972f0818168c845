package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files (e.g. ".env"); with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvBool returns the boolean value of the environment variable named by
// key ("1", "true", "yes", "on" and their negations), or fallback.
func GetEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

// Settings is the service configuration assembled from the environment.
type Settings struct {
	Port              string
	LogLevel          string
	LogFormat         string
	MaterialsFile     string
	ProjectsDir       string
	DefaultController string
	PlaybackTickMS    int
	EnableMetrics     bool
}

// FromEnv reads Settings, applying defaults for anything unset.
func FromEnv() Settings {
	return Settings{
		Port:              GetEnv("PORT", "8080"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		LogFormat:         GetEnv("LOG_FORMAT", "json"),
		MaterialsFile:     GetEnv("MATERIALS_FILE", ""),
		ProjectsDir:       GetEnv("PROJECTS_DIR", ""),
		DefaultController: GetEnv("DEFAULT_CONTROLLER", "global settings"),
		PlaybackTickMS:    GetEnvInt("PLAYBACK_TICK_MS", 100),
		EnableMetrics:     GetEnvBool("ENABLE_METRICS", true),
	}
}

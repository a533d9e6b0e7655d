package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Render backend (FFmpeg service that produces the final MP4)
	RenderBackendURL string
	RenderAPIKey     string

	// Preview assets
	AssetsDir   string // base directory for relative scene media paths
	FontsDir    string // directory of TTF files, "<Family>-<Style>.ttf"
	TextBGDark  string // backdrop image behind white text scenes
	TextBGLight string // backdrop image behind black text scenes

	// Canvas
	CanvasWidth  int
	CanvasHeight int
	FrameRate    int

	// Editor
	HistoryCap int // bounded undo depth per project

	// Worker
	MaxConcurrentJobs int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		RenderBackendURL:   getEnv("RENDER_BACKEND_URL", "http://localhost:5001"),
		RenderAPIKey:       getEnv("RENDER_API_KEY", ""),
		AssetsDir:          getEnv("ASSETS_DIR", "assets"),
		FontsDir:           getEnv("FONTS_DIR", "assets/fonts"),
		TextBGDark:         getEnv("TEXT_BG_DARK", "assets/backgrounds/dark.jpg"),
		TextBGLight:        getEnv("TEXT_BG_LIGHT", "assets/backgrounds/light.jpg"),
		CanvasWidth:        getEnvInt("CANVAS_WIDTH", 1080),
		CanvasHeight:       getEnvInt("CANVAS_HEIGHT", 1920),
		FrameRate:          getEnvInt("FRAME_RATE", 30),
		HistoryCap:         getEnvInt("HISTORY_CAP", 20),
		MaxConcurrentJobs:  getEnvInt("MAX_CONCURRENT_JOBS", 2),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RenderBackendURL == "" {
		return nil, fmt.Errorf("RENDER_BACKEND_URL is required")
	}

	if cfg.HistoryCap < 1 {
		return nil, fmt.Errorf("HISTORY_CAP must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

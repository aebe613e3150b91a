package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration
type Config struct {
	TelegramToken string
	AdminUserIDs  map[int64]bool

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiTextModel  string
	GeminiImageModel string
	GeminiTTSModel   string

	// StoreDriver is one of memory, sqlite, postgres or redis
	StoreDriver   string
	DatabaseURL   string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPAddr     string
	APITokenHash string

	Location        *time.Location
	ReminderTime    string
	SchedulerEnable bool

	OfflineDeckPath string
}

// DefaultConfig returns the configuration used when no variables are set
func DefaultConfig() *Config {
	return &Config{
		AdminUserIDs:     make(map[int64]bool),
		GeminiBaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		GeminiTextModel:  "gemini-2.5-flash",
		GeminiImageModel: "imagen-4.0-generate-001",
		GeminiTTSModel:   "gemini-2.5-flash-preview-tts",
		StoreDriver:      "sqlite",
		DataDir:          "data",
		RedisAddr:        "localhost:6379",
		HTTPAddr:         ":8080",
		Location:         time.Local,
		ReminderTime:     "19:00",
		SchedulerEnable:  true,
	}
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}

	cfg := DefaultConfig()

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	setString(&cfg.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&cfg.GeminiTextModel, "GEMINI_TEXT_MODEL")
	setString(&cfg.GeminiImageModel, "GEMINI_IMAGE_MODEL")
	setString(&cfg.GeminiTTSModel, "GEMINI_TTS_MODEL")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.APITokenHash, "API_TOKEN_HASH")
	setString(&cfg.ReminderTime, "REMINDER_TIME")
	setString(&cfg.OfflineDeckPath, "OFFLINE_DECK_PATH")

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = db
	}

	if v := os.Getenv("TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", v, err)
		}
		cfg.Location = loc
	}

	cfg.SchedulerEnable = os.Getenv("ENABLE_SCHEDULER") != "false"

	if adminIDs := os.Getenv("ADMIN_USER_IDS"); adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			cfg.AdminUserIDs[id] = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can start the process
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres store")
	}
	if _, err := time.Parse("15:04", c.ReminderTime); err != nil {
		return fmt.Errorf("invalid REMINDER_TIME %q: %w", c.ReminderTime, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

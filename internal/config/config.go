package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings read from the environment
type Config struct {
	Port        string
	Environment string

	// Storage
	DatabaseDriver         string // "postgres" or "sqlite"
	DatabaseURL            string
	DBUser                 string
	DBPass                 string
	DBName                 string
	DBHost                 string
	InstanceConnectionName string
	UseMemoryStore         bool

	// WhatsApp Cloud API
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string
	GraphAPIVersion       string
	MessagingProvider     string // "cloudapi" or "twilio"

	// Twilio
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	DisableWebhookAuth bool
	PublicBaseURL      string

	// Admin and automation
	AdminWhatsAppNumber string
	AutomationToken     string

	// Google Sheets
	GoogleCredentialsJSON string
	GoogleSheetID         string
	GoogleSheetRange      string

	// Admin notification channels
	SlackBotToken    string
	SlackChannelID   string
	DiscordBotToken  string
	DiscordChannelID string

	RulesFile    string
	MessageDelay time.Duration
	SessionTTL   time.Duration
	DedupTTL     time.Duration

	LogLevel  string
	LogFormat string
}

// LoadEnvFiles loads .env files for local development. Missing files are
// not an error; production reads the real environment.
func LoadEnvFiles() error {
	if err := godotenv.Load(".env"); err == nil {
		return nil
	}
	if err := godotenv.Load("environments/.env.development"); err != nil {
		return fmt.Errorf("config: no .env file found: %w", err)
	}
	return nil
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),

		DatabaseDriver:         getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPass:                 os.Getenv("DB_PASS"),
		DBName:                 getEnv("DB_NAME", "daaqui"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		UseMemoryStore:         os.Getenv("USE_MEMORY_STORE") == "true",

		WhatsAppToken:         os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", "JoyasBot2025!"),
		WhatsAppAppSecret:     os.Getenv("WHATSAPP_APP_SECRET"),
		GraphAPIVersion:       getEnv("GRAPH_API_VERSION", "v20.0"),
		MessagingProvider:     getEnv("MESSAGING_PROVIDER", "cloudapi"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
		DisableWebhookAuth: os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true",
		PublicBaseURL:      strings.TrimSuffix(os.Getenv("PUBLIC_BASE_URL"), "/"),

		AdminWhatsAppNumber: os.Getenv("ADMIN_WHATSAPP_NUMBER"),
		AutomationToken:     os.Getenv("AUTOMATION_TOKEN"),

		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		GoogleSheetID:         os.Getenv("GOOGLE_SHEET_ID"),
		GoogleSheetRange:      getEnv("GOOGLE_SHEET_RANGE", "Sheet1"),

		SlackBotToken:    os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannelID:   os.Getenv("SLACK_CHANNEL_ID"),
		DiscordBotToken:  os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),

		RulesFile: os.Getenv("RULES_FILE"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.MessageDelay, err = getDuration("MESSAGE_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DedupTTL, err = getDuration("DEDUP_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make the server unusable.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.MessagingProvider {
	case "cloudapi", "twilio":
	default:
		return fmt.Errorf("config: unsupported MESSAGING_PROVIDER %q", c.MessagingProvider)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config: invalid PORT %q", c.Port)
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

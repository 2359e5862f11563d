package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	SlackWebhookURL   string `yaml:"slack_webhook_url"`
	ChatAlertsEnabled bool   `yaml:"chat_alerts_enabled"`

	SMTPServer          string `yaml:"smtp_server"`
	SMTPPort            int    `yaml:"smtp_port"`
	EmailUsername       string `yaml:"email_username"`
	EmailPassword       string `yaml:"email_password"`
	EmailAlertsEnabled  bool   `yaml:"email_alerts_enabled"`
	AlertEmailRecipient string `yaml:"alert_email_recipient"`

	AutoTicketThreshold int    `yaml:"auto_ticket_threshold"`
	TicketsFile         string `yaml:"tickets_file"`
	DBPath              string `yaml:"db_path"`
	InboxDir            string `yaml:"inbox_dir"`
	WatchSchedule       string `yaml:"watch_schedule"`
}

func LoadConfig() Config {
	// Local .env files are supported the same way the ops team uses them
	// elsewhere; missing file is fine.
	_ = godotenv.Load()

	// Defaults that yaml/env may override. Booleans with a true default are
	// seeded here so an absent key keeps the default.
	cfg := Config{
		ChatAlertsEnabled:   true,
		SMTPPort:            587,
		AutoTicketThreshold: 1,
	}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.SlackWebhookURL, "SLACK_WEBHOOK_URL")
	envOverrideBool(&cfg.ChatAlertsEnabled, "CHAT_ALERTS_ENABLED")
	envOverride(&cfg.SMTPServer, "SMTP_SERVER")
	envOverrideInt(&cfg.SMTPPort, "SMTP_PORT")
	envOverride(&cfg.EmailUsername, "EMAIL_USERNAME")
	envOverride(&cfg.EmailPassword, "EMAIL_PASSWORD")
	envOverrideBool(&cfg.EmailAlertsEnabled, "USE_EMAIL_ALERTS")
	envOverride(&cfg.AlertEmailRecipient, "ALERT_EMAIL_RECIPIENT")
	envOverrideInt(&cfg.AutoTicketThreshold, "AUTO_TICKET_THRESHOLD")
	envOverride(&cfg.TicketsFile, "TICKETS_FILE")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.InboxDir, "INBOX_DIR")
	envOverride(&cfg.WatchSchedule, "WATCH_SCHEDULE")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.TicketsFile == "" {
		cfg.TicketsFile = "./tickets.csv"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./ticketbot.db"
	}
	if cfg.InboxDir == "" {
		cfg.InboxDir = "./inbox"
	}

	// Validate required fields
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if cfg.AutoTicketThreshold < 1 {
		log.Fatalf("invalid auto_ticket_threshold '%d': must be >= 1", cfg.AutoTicketThreshold)
	}
	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		log.Fatalf("invalid smtp_port '%d'", cfg.SMTPPort)
	}
	if cfg.EmailAlertsEnabled && !cfg.EmailConfigured() {
		log.Printf("email alerts enabled but SMTP is not fully configured; email alerts will report failure")
	}

	return cfg
}

// EmailConfigured reports whether the mail transport settings are complete.
// Server, username, and password are required together.
func (c Config) EmailConfigured() bool {
	return c.SMTPServer != "" && c.EmailUsername != "" && c.EmailPassword != ""
}

// RunOptions carries the per-run settings; flags may override individual
// fields before a run starts.
type RunOptions struct {
	Threshold      int
	ChatAlerts     bool
	EmailAlerts    bool
	EmailRecipient string
}

func (c Config) RunOptions() RunOptions {
	return RunOptions{
		Threshold:      c.AutoTicketThreshold,
		ChatAlerts:     c.ChatAlertsEnabled,
		EmailAlerts:    c.EmailAlertsEnabled,
		EmailRecipient: c.AlertEmailRecipient,
	}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	// AI generation service
	AIServiceURL    string
	AIServiceAPIKey string
	AIProvider      string // "service" (lead-messages microservice) or "openai"
	OpenAIKey       string
	OpenAIModel     string

	// WhatsApp gateway
	WhatsAppGatewayURL   string
	WhatsAppFallbackURLs []string
	WhatsAppSendTimeout  time.Duration

	// Inactivity scanner
	InactivityCron       string
	InactivityShortDays  int
	InactivityMediumDays int
	InactivityLongDays   int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Port:                 os.Getenv("PORT"),
		Env:                  os.Getenv("ENV"),
		AIServiceURL:         os.Getenv("AI_SERVICE_URL"),
		AIServiceAPIKey:      os.Getenv("AI_SERVICE_API_KEY"),
		AIProvider:           os.Getenv("AI_PROVIDER"),
		OpenAIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          os.Getenv("OPENAI_MODEL"),
		WhatsAppGatewayURL:   os.Getenv("WHATSAPP_GATEWAY_URL"),
		WhatsAppFallbackURLs: splitList(os.Getenv("WHATSAPP_FALLBACK_URLS")),
		WhatsAppSendTimeout:  durationEnv("WHATSAPP_SEND_TIMEOUT", 5*time.Second),
		InactivityCron:       os.Getenv("INACTIVITY_CRON"),
		InactivityShortDays:  intEnv("INACTIVITY_SHORT_DAYS", 3),
		InactivityMediumDays: intEnv("INACTIVITY_MEDIUM_DAYS", 7),
		InactivityLongDays:   intEnv("INACTIVITY_LONG_DAYS", 14),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.AIServiceURL == "" {
		cfg.AIServiceURL = "http://localhost:8000"
	}
	if cfg.AIServiceAPIKey == "" {
		cfg.AIServiceAPIKey = "development_key"
	}
	if cfg.AIProvider == "" {
		cfg.AIProvider = "service"
	}
	if cfg.WhatsAppGatewayURL == "" {
		cfg.WhatsAppGatewayURL = "http://localhost:9029/api"
	}
	if cfg.InactivityCron == "" {
		// daily at 09:00
		cfg.InactivityCron = "0 0 9 * * *"
	}

	return cfg
}

// GatewayEndpoints returns the primary gateway URL followed by the
// configured fallbacks, preserving order.
func (c *Config) GatewayEndpoints() []string {
	endpoints := []string{c.WhatsAppGatewayURL}
	return append(endpoints, c.WhatsAppFallbackURLs...)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using default %s", key, raw, fallback)
		return fallback
	}
	return v
}

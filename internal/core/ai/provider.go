package ai

import (
	"context"
	"fmt"
)

// LeadInfo is the lead snapshot sent with every generation request.
type LeadInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SentimentStatus string `json:"sentiment_status"`
	LeadScore       int    `json:"lead_score"`
	ProjectName     string `json:"project_name"`
}

// EventContext describes the triggering event for event-driven messages.
type EventContext struct {
	EventType      string                 `json:"event_type"`
	EventData      map[string]interface{} `json:"event_data"`
	MessagePurpose string                 `json:"message_purpose"`
}

// LastInteraction is the most recent recorded event of an inactive lead.
type LastInteraction struct {
	EventType string                 `json:"event_type"`
	CreatedAt string                 `json:"created_at"`
	EventData map[string]interface{} `json:"event_data"`
}

// InactivityContext describes why a re-engagement message is being sent.
type InactivityContext struct {
	Level           string           `json:"level"`
	DaysInactive    int              `json:"days_inactive"`
	LastInteraction *LastInteraction `json:"last_interaction"`
}

// ConversationEntry is one prior WhatsApp message, oldest first.
type ConversationEntry struct {
	Direction string `json:"direction"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// GenerationRequest carries everything a provider needs to write one
// message. Exactly one of EventContext and InactivityContext is set.
type GenerationRequest struct {
	LeadInfo             LeadInfo            `json:"lead_info"`
	EventContext         *EventContext       `json:"event_context,omitempty"`
	InactivityContext    *InactivityContext  `json:"inactivity_context,omitempty"`
	ConversationHistory  []ConversationEntry `json:"conversation_history"`
	PersonalizationHints []string            `json:"personalization_hints"`
}

// Generator produces a personalized outbound message for a lead.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	GetProviderName() string
}

// ProviderType selects a generator implementation.
type ProviderType string

const (
	ProviderService ProviderType = "service"
	ProviderOpenAI  ProviderType = "openai"
)

// ProviderConfig holds the settings the factory needs.
type ProviderConfig struct {
	Type ProviderType

	ServiceURL string
	ServiceKey string

	OpenAIKey   string
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewGenerator builds the configured generator.
func NewGenerator(cfg *ProviderConfig) (Generator, error) {
	switch cfg.Type {
	case ProviderService, "":
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("AI_SERVICE_URL is required")
		}
		return NewServiceProvider(cfg.ServiceURL, cfg.ServiceKey), nil

	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Type)
	}
}

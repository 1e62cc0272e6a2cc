package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
)

// OpenAIProvider generates messages directly against the OpenAI API,
// for deployments that run without the generation microservice.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIProvider(apiKey string, model string, temperature float32, maxTokens int) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if temperature == 0 {
		temperature = 0.7
	}
	if maxTokens == 0 {
		maxTokens = 300
	}

	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *OpenAIProvider) GetProviderName() string {
	return "OpenAI"
}

const systemPrompt = `Você é um assistente de vendas imobiliárias. Escreva uma única mensagem curta de WhatsApp para o lead, em português brasileiro, com tom natural e humano. Não use saudações genéricas repetidas, não assine a mensagem e não use formatação.`

func (p *OpenAIProvider) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", &apperrors.UpstreamError{Service: "openai", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &apperrors.GenerationError{Err: fmt.Errorf("no response from OpenAI")}
	}

	message := strings.TrimSpace(resp.Choices[0].Message.Content)
	if message == "" {
		return "", &apperrors.GenerationError{Err: fmt.Errorf("empty response from OpenAI")}
	}
	return message, nil
}

func buildUserPrompt(req GenerationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lead: %s (sentimento: %s, score: %d)\n",
		req.LeadInfo.Name, req.LeadInfo.SentimentStatus, req.LeadInfo.LeadScore)
	if req.LeadInfo.ProjectName != "" {
		fmt.Fprintf(&b, "Empreendimento de interesse: %s\n", req.LeadInfo.ProjectName)
	}

	if req.EventContext != nil {
		fmt.Fprintf(&b, "Evento: %s\n", req.EventContext.EventType)
		if req.EventContext.MessagePurpose != "" {
			fmt.Fprintf(&b, "Objetivo da mensagem: %s\n", req.EventContext.MessagePurpose)
		}
	}
	if req.InactivityContext != nil {
		fmt.Fprintf(&b, "O lead está inativo há %d dias (nível: %s). Escreva uma mensagem de reengajamento.\n",
			req.InactivityContext.DaysInactive, req.InactivityContext.Level)
	}

	if len(req.PersonalizationHints) > 0 {
		b.WriteString("Dicas de personalização:\n")
		for _, hint := range req.PersonalizationHints {
			fmt.Fprintf(&b, "- %s\n", hint)
		}
	}

	if len(req.ConversationHistory) > 0 {
		b.WriteString("Histórico recente da conversa:\n")
		for _, entry := range req.ConversationHistory {
			fmt.Fprintf(&b, "[%s] %s\n", entry.Direction, entry.Content)
		}
	}

	return b.String()
}

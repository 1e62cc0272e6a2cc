package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
)

const apiVersion = "v1"

// ServiceProvider calls the dedicated message-generation microservice.
type ServiceProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewServiceProvider(baseURL, apiKey string) *ServiceProvider {
	return &ServiceProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *ServiceProvider) GetProviderName() string {
	return "AI Service"
}

type serviceResponse struct {
	Message string `json:"message"`
}

// Generate posts the request to the generation endpoint and returns the
// produced message text.
func (p *ServiceProvider) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	return p.post(ctx, fmt.Sprintf("%s/%s/lead-messages/generate", p.baseURL, apiVersion), req)
}

// GenerateRuth uses the alternative persona endpoint for chatbot replies.
func (p *ServiceProvider) GenerateRuth(ctx context.Context, req GenerationRequest) (string, error) {
	return p.post(ctx, fmt.Sprintf("%s/%s/lead-messages/ruth", p.baseURL, apiVersion), req)
}

func (p *ServiceProvider) post(ctx context.Context, url string, req GenerationRequest) (string, error) {
	if req.PersonalizationHints == nil {
		req.PersonalizationHints = []string{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &apperrors.UpstreamError{Service: "ai-service", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperrors.UpstreamError{Service: "ai-service", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &apperrors.UpstreamError{
			Service: "ai-service",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result serviceResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &apperrors.UpstreamError{Service: "ai-service", Err: fmt.Errorf("invalid response: %w", err)}
	}
	if result.Message == "" {
		return "", &apperrors.GenerationError{Err: fmt.Errorf("ai service returned an empty message")}
	}

	return result.Message, nil
}

// Health probes the generation service health endpoint.
func (p *ServiceProvider) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return &apperrors.UpstreamError{Service: "ai-service", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &apperrors.UpstreamError{Service: "ai-service", Err: fmt.Errorf("health status %d", resp.StatusCode)}
	}
	return nil
}

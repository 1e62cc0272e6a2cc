package whatsapp

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
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// GatewayClient talks to the external WhatsApp HTTP gateway. Sends are
// attempted against each configured endpoint in order until one
// succeeds; the other operations use the primary endpoint only.
type GatewayClient struct {
	endpoints []string
	client    *http.Client
}

// NewGatewayClient builds a client over one or more gateway base URLs.
// The first endpoint is the primary.
func NewGatewayClient(endpoints []string, timeout time.Duration) *GatewayClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	cleaned := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if e = strings.TrimRight(strings.TrimSpace(e), "/"); e != "" {
			cleaned = append(cleaned, e)
		}
	}
	return &GatewayClient{
		endpoints: cleaned,
		client:    &http.Client{Timeout: timeout},
	}
}

// Endpoints returns the configured base URLs in failover order.
func (c *GatewayClient) Endpoints() []string {
	return c.endpoints
}

type sendRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// Send delivers one text message, failing over across endpoints. The
// returned error is the last endpoint's error when all attempts fail.
func (c *GatewayClient) Send(ctx context.Context, number, message string) (*SendResult, error) {
	if len(c.endpoints) == 0 {
		return nil, &apperrors.UpstreamError{Service: "whatsapp", Err: fmt.Errorf("no gateway endpoints configured")}
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		result, err := c.sendTo(ctx, endpoint, number, message)
		if err == nil {
			result.Endpoint = endpoint
			return result, nil
		}
		lastErr = err
		utils.LogWarn("WhatsApp send failed, trying next endpoint", map[string]interface{}{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
	}
	return nil, &apperrors.UpstreamError{Service: "whatsapp", Err: lastErr}
}

func (c *GatewayClient) sendTo(ctx context.Context, endpoint, number, message string) (*SendResult, error) {
	body, err := json.Marshal(sendRequest{PhoneNumber: number, Message: message})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/send", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SendResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("invalid gateway response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("gateway rejected message: %s", string(respBody))
	}
	return &result, nil
}

// Status reports the gateway connection state. It prefers the
// verify-connection endpoint and falls back to the plain status
// endpoint; an unreachable gateway reads as disconnected, not an error.
func (c *GatewayClient) Status(ctx context.Context) *Status {
	var verify struct {
		Connected bool   `json:"connected"`
		Phone     string `json:"phone"`
	}
	if err := c.getJSON(ctx, "/verify-connection", &verify); err == nil && verify.Connected {
		return &Status{Status: "connected", Connected: true, Phone: verify.Phone}
	}

	var status Status
	if err := c.getJSON(ctx, "/status", &status); err != nil {
		utils.LogWarn("WhatsApp status probe failed", map[string]interface{}{"error": err.Error()})
		return &Status{Status: "disconnected", Connected: false}
	}
	return &status
}

// Connect asks the gateway to open a session.
func (c *GatewayClient) Connect(ctx context.Context) (map[string]interface{}, error) {
	return c.postJSON(ctx, "/connect")
}

// Disconnect tears the gateway session down.
func (c *GatewayClient) Disconnect(ctx context.Context) (map[string]interface{}, error) {
	return c.postJSON(ctx, "/disconnect")
}

// QRCode fetches the current pairing QR code payload. Returns
// ErrNotFound when the gateway has no code to offer.
func (c *GatewayClient) QRCode(ctx context.Context) (string, error) {
	var result struct {
		QRCode string `json:"qrcode"`
	}
	if err := c.getJSON(ctx, "/qrcode", &result); err != nil {
		return "", &apperrors.UpstreamError{Service: "whatsapp", Err: err}
	}
	if result.QRCode == "" {
		return "", apperrors.NotFound("QR code not available")
	}
	return result.QRCode, nil
}

func (c *GatewayClient) primary() string {
	if len(c.endpoints) == 0 {
		return ""
	}
	return c.endpoints[0]
}

func (c *GatewayClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.primary()+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *GatewayClient) postJSON(ctx context.Context, path string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.primary()+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &apperrors.UpstreamError{Service: "whatsapp", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.UpstreamError{Service: "whatsapp", Err: fmt.Errorf("gateway status %d", resp.StatusCode)}
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &apperrors.UpstreamError{Service: "whatsapp", Err: err}
	}
	return result, nil
}

package whatsapp

// SendResult is what the gateway reports for one outbound message.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Endpoint  string `json:"-"`
}

// Status is the gateway connection state.
type Status struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Phone     string `json:"phone,omitempty"`
}

// WebhookEvent is the envelope every gateway webhook delivers.
type WebhookEvent struct {
	Type      string          `json:"type"`
	Data      WebhookData     `json:"data"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// WebhookData carries the union of fields across event types. Message
// events use the message fields; qr and connection events use theirs.
type WebhookData struct {
	// message events
	ID        string `json:"id,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	FromMe    bool   `json:"fromMe,omitempty"`
	Body      string `json:"body,omitempty"`
	HasMedia  bool   `json:"hasMedia,omitempty"`
	Type      string `json:"type,omitempty"`
	Ack       int    `json:"ack,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	// connection events
	State string `json:"state,omitempty"`

	// qr events
	QRCode string `json:"qrcode,omitempty"`
}

const (
	EventTypeMessage    = "message"
	EventTypeQR         = "qr"
	EventTypeConnection = "connection"
)

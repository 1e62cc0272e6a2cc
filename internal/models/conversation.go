package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation directions.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// WhatsAppConversation is one logged chat turn, inbound or outbound.
// (lead_id, message_id) is unique: a duplicate webhook delivery must be
// a no-op, not a second row.
type WhatsAppConversation struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeadID              uuid.UUID      `json:"lead_id" gorm:"type:uuid;not null;uniqueIndex:idx_conversation_lead_message"`
	MessageID           string         `json:"message_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_conversation_lead_message"`
	PhoneNumber         string         `json:"phone_number" gorm:"type:varchar(50);index"`
	Direction           string         `json:"direction" gorm:"type:varchar(20);not null;index"`
	Content             string         `json:"content" gorm:"type:text"`
	MediaType           string         `json:"media_type" gorm:"type:varchar(50)"`
	MessageStatus       string         `json:"message_status" gorm:"type:varchar(50)"`
	MessageTimestamp    time.Time      `json:"message_timestamp" gorm:"not null;index"`
	ResponseTimeSeconds *int           `json:"response_time_seconds"`
	Sentiment           *float64       `json:"sentiment"`
	Intent              string         `json:"intent" gorm:"type:varchar(100)"`
	Entities            datatypes.JSON `json:"entities" gorm:"type:jsonb"`
	AIProcessed         bool           `json:"ai_processed" gorm:"default:false"`
	AnalyzedAt          *time.Time     `json:"analyzed_at"`
	CreatedAt           time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (WhatsAppConversation) TableName() string {
	return "whatsapp_conversations"
}

func (c *WhatsAppConversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

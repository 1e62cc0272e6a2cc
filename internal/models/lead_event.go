package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Common event types. EventType is free-form; these are the ones the
// automation pipeline produces itself.
const (
	EventTypeWhatsAppMessage = "whatsapp_message"
	EventTypeFormSubmit      = "form_submit"
	EventTypeInactivity      = "inactivity"
)

// LeadEvent is an append-only fact about a lead. Rows are never updated
// or deleted; they are the sole input to template matching and
// inactivity detection.
type LeadEvent struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeadID    uuid.UUID      `json:"lead_id" gorm:"type:uuid;not null;index"`
	EventType string         `json:"event_type" gorm:"type:varchar(100);not null;index"`
	EventData datatypes.JSON `json:"event_data" gorm:"type:jsonb;not null;default:'{}'"`
	Origin    string         `json:"origin" gorm:"type:varchar(100)"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (LeadEvent) TableName() string {
	return "lead_events"
}

func (e *LeadEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

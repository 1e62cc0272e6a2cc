package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Automated message statuses.
const (
	MessageStatusPending = "pending"
	MessageStatusSent    = "sent"
	MessageStatusError   = "error"
)

// AutomatedMessageLog records one generated-and-queued automated message.
// Created once per eligible template per triggering event; only the
// response fields are ever mutated afterwards. Score and sentiment are
// snapshots taken at generation time.
type AutomatedMessageLog struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TemplateID          *uuid.UUID     `json:"template_id" gorm:"type:uuid;index"`
	LeadID              uuid.UUID      `json:"lead_id" gorm:"type:uuid;not null;index"`
	MessageContent      string         `json:"message_content" gorm:"type:text;not null"`
	EventData           datatypes.JSON `json:"event_data" gorm:"type:jsonb;default:'{}'"`
	Metadata            datatypes.JSON `json:"metadata" gorm:"type:jsonb;default:'{}'"`
	LeadScoreAtTime     int            `json:"lead_score_at_time"`
	LeadSentimentAtTime string         `json:"lead_sentiment_at_time" gorm:"type:varchar(100)"`
	Status              string         `json:"status" gorm:"type:varchar(50);default:'pending';index"`
	ResponseReceived    bool           `json:"response_received" gorm:"default:false"`
	ResponseTimeMinutes *int           `json:"response_time_minutes"`
	SentAt              *time.Time     `json:"sent_at"`
	CreatedAt           time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (AutomatedMessageLog) TableName() string {
	return "automated_message_logs"
}

func (m *AutomatedMessageLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

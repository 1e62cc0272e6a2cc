package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead statuses tracked through the sales funnel.
const (
	LeadStatusNew       = "new"
	LeadStatusQualified = "qualified"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusGaveUp    = "gave_up"
	LeadStatusInactive  = "inactive"
)

// DefaultSentiment is used when a lead has no sentiment analysis yet.
const DefaultSentiment = "indeterminado"

// DefaultLeadScore is assumed when a lead has no score yet.
const DefaultLeadScore = 50

// Lead represents a prospective contact tracked through the funnel.
type Lead struct {
	ID                     uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID                 uuid.UUID  `json:"user_id" gorm:"type:uuid;index"`
	Name                   string     `json:"name" gorm:"type:varchar(255)"`
	Email                  string     `json:"email" gorm:"type:varchar(255);index"`
	Phone                  string     `json:"phone" gorm:"type:varchar(50);index"`
	Status                 string     `json:"status" gorm:"type:varchar(50);default:'new';index"`
	SentimentStatus        string     `json:"sentiment_status" gorm:"type:varchar(100)"`
	LeadScore              *int       `json:"lead_score"`
	DoNotContact           bool       `json:"do_not_contact" gorm:"default:false"`
	LastAutomatedMessageAt *time.Time `json:"last_automated_message_at"`
	AutomatedMessagesCount int        `json:"automated_messages_count" gorm:"default:0"`
	CreatedAt              time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt              time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Lead) TableName() string {
	return "leads"
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Sentiment returns the lead's sentiment status, defaulting to
// "indeterminado" when absent.
func (l *Lead) Sentiment() string {
	if l.SentimentStatus == "" {
		return DefaultSentiment
	}
	return l.SentimentStatus
}

// Score returns the lead's score, defaulting to 50 when absent.
func (l *Lead) Score() int {
	if l.LeadScore == nil {
		return DefaultLeadScore
	}
	return *l.LeadScore
}

// LeadProject links a lead to the project it was captured into.
type LeadProject struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeadID     uuid.UUID `json:"lead_id" gorm:"type:uuid;not null;index"`
	ProjectID  uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	CapturedAt time.Time `json:"captured_at" gorm:"autoCreateTime"`
}

func (LeadProject) TableName() string {
	return "lead_project"
}

func (lp *LeadProject) BeforeCreate(tx *gorm.DB) error {
	if lp.ID == uuid.Nil {
		lp.ID = uuid.New()
	}
	return nil
}

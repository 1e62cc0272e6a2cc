package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreFilter bounds the lead score a template applies to. Absent bounds
// default to the full 0-100 range.
type ScoreFilter struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// AutomatedMessageTemplate is a rule + prompt-instructions pair that
// fires an automated outbound message on a matching lead event.
type AutomatedMessageTemplate struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID         uuid.UUID      `json:"project_id" gorm:"type:uuid;not null;index"`
	Name              string         `json:"name" gorm:"type:varchar(255);not null"`
	Description       string         `json:"description" gorm:"type:text"`
	TriggerType       string         `json:"trigger_type" gorm:"type:varchar(100);not null;index"`
	TriggerConditions datatypes.JSON `json:"trigger_conditions" gorm:"type:jsonb;default:'[]'"`
	SentimentFilter   datatypes.JSON `json:"sentiment_filter" gorm:"type:jsonb;default:'[]'"`
	ScoreFilter       datatypes.JSON `json:"score_filter" gorm:"type:jsonb;default:'{}'"`
	Instructions      string         `json:"instructions" gorm:"type:text"`
	Active            bool           `json:"active" gorm:"default:true;index"`
	MaxSendsPerLead   int            `json:"max_sends_per_lead" gorm:"default:1"`
	SendDelayMinutes  int            `json:"send_delay_minutes" gorm:"default:0"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AutomatedMessageTemplate) TableName() string {
	return "automated_message_templates"
}

func (t *AutomatedMessageTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Sentiments decodes the sentiment filter list. An empty or missing list
// means the template applies to every sentiment.
func (t *AutomatedMessageTemplate) Sentiments() []string {
	if len(t.SentimentFilter) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(t.SentimentFilter, &out); err != nil {
		return nil
	}
	return out
}

// ScoreBounds decodes the score filter, applying the 0/100 defaults for
// absent bounds.
func (t *AutomatedMessageTemplate) ScoreBounds() (min, max int) {
	min, max = 0, 100
	if len(t.ScoreFilter) == 0 {
		return min, max
	}
	var f ScoreFilter
	if err := json.Unmarshal(t.ScoreFilter, &f); err != nil {
		return min, max
	}
	if f.Min != nil {
		min = *f.Min
	}
	if f.Max != nil {
		max = *f.Max
	}
	return min, max
}

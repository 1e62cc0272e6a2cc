package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
)

// ConversationFilter narrows conversation listings.
type ConversationFilter struct {
	LeadID      *uuid.UUID
	PhoneNumber string
	Direction   string
	StartDate   *time.Time
	EndDate     *time.Time
	Intent      string
	Limit       int
}

// ConversationAnalysis carries the post-hoc analysis fields written back
// onto a conversation row.
type ConversationAnalysis struct {
	Intent    string
	Entities  datatypes.JSON
	Sentiment *float64
}

// ConversationRepo stores WhatsApp conversation turns.
type ConversationRepo interface {
	Exists(leadID uuid.UUID, messageID string) (bool, error)
	Create(conversation *models.WhatsAppConversation) error
	RecentByLead(leadID uuid.UUID, limit int) ([]models.WhatsAppConversation, error)
	LastIncomingBefore(leadID uuid.UUID, before time.Time) (*models.WhatsAppConversation, error)
	SetResponseTime(leadID uuid.UUID, messageID string, seconds int) error
	UpdateAnalysis(id uuid.UUID, analysis ConversationAnalysis) error
	List(filter ConversationFilter) ([]models.WhatsAppConversation, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Exists(leadID uuid.UUID, messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WhatsAppConversation{}).
		Where("lead_id = ? AND message_id = ?", leadID, messageID).
		Count(&count).Error
	return count > 0, err
}

func (r *conversationRepo) Create(conversation *models.WhatsAppConversation) error {
	return r.db.Create(conversation).Error
}

// RecentByLead returns the newest turns first.
func (r *conversationRepo) RecentByLead(leadID uuid.UUID, limit int) ([]models.WhatsAppConversation, error) {
	var conversations []models.WhatsAppConversation
	query := r.db.Where("lead_id = ?", leadID).Order("message_timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&conversations).Error
	return conversations, err
}

func (r *conversationRepo) LastIncomingBefore(leadID uuid.UUID, before time.Time) (*models.WhatsAppConversation, error) {
	var conversation models.WhatsAppConversation
	err := r.db.Where("lead_id = ? AND direction = ? AND message_timestamp < ?",
		leadID, models.DirectionIncoming, before).
		Order("message_timestamp DESC").
		Limit(1).
		First(&conversation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepo) SetResponseTime(leadID uuid.UUID, messageID string, seconds int) error {
	return r.db.Model(&models.WhatsAppConversation{}).
		Where("lead_id = ? AND message_id = ?", leadID, messageID).
		Update("response_time_seconds", seconds).Error
}

func (r *conversationRepo) UpdateAnalysis(id uuid.UUID, analysis ConversationAnalysis) error {
	now := time.Now()
	updates := map[string]interface{}{
		"intent":       analysis.Intent,
		"ai_processed": true,
		"analyzed_at":  now,
	}
	if analysis.Entities != nil {
		updates["entities"] = analysis.Entities
	}
	if analysis.Sentiment != nil {
		updates["sentiment"] = *analysis.Sentiment
	}
	return r.db.Model(&models.WhatsAppConversation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *conversationRepo) List(filter ConversationFilter) ([]models.WhatsAppConversation, error) {
	query := r.db.Model(&models.WhatsAppConversation{})
	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.PhoneNumber != "" {
		query = query.Where("phone_number = ?", filter.PhoneNumber)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.StartDate != nil {
		query = query.Where("message_timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("message_timestamp <= ?", *filter.EndDate)
	}
	if filter.Intent != "" {
		query = query.Where("intent = ?", filter.Intent)
	}
	query = query.Order("message_timestamp ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var conversations []models.WhatsAppConversation
	err := query.Find(&conversations).Error
	return conversations, err
}

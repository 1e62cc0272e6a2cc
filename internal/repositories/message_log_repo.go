package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
)

// MessageLogFilter narrows automated message log listings.
type MessageLogFilter struct {
	LeadID     *uuid.UUID
	TemplateID *uuid.UUID
	Status     string
	Limit      int
}

// MessageLogRepo stores automated message logs. Rows are written once;
// only status and the response fields are mutated afterwards.
type MessageLogRepo interface {
	Create(log *models.AutomatedMessageLog) error
	CountByTemplateAndLead(templateID, leadID uuid.UUID) (int64, error)
	LastInactivityLog(leadID uuid.UUID) (*models.AutomatedMessageLog, error)
	UpdateStatus(id uuid.UUID, status string, sentAt *time.Time) error
	MarkResponse(id uuid.UUID, responseTimeMinutes int) error
	FindByID(id uuid.UUID) (*models.AutomatedMessageLog, error)
	List(filter MessageLogFilter) ([]models.AutomatedMessageLog, error)
}

type messageLogRepo struct {
	db *gorm.DB
}

func NewMessageLogRepo(db *gorm.DB) MessageLogRepo {
	return &messageLogRepo{db: db}
}

func (r *messageLogRepo) Create(log *models.AutomatedMessageLog) error {
	return r.db.Create(log).Error
}

// CountByTemplateAndLead backs the per-lead send cap.
func (r *messageLogRepo) CountByTemplateAndLead(templateID, leadID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.AutomatedMessageLog{}).
		Where("template_id = ? AND lead_id = ?", templateID, leadID).
		Count(&count).Error
	return count, err
}

// LastInactivityLog returns the most recent log tagged with an
// inactivity level in its metadata, used by the scanner's cooldown rule.
func (r *messageLogRepo) LastInactivityLog(leadID uuid.UUID) (*models.AutomatedMessageLog, error) {
	var log models.AutomatedMessageLog
	err := r.db.Where("lead_id = ? AND metadata ->> 'inactivity_level' IS NOT NULL", leadID).
		Order("created_at DESC").
		Limit(1).
		First(&log).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *messageLogRepo) UpdateStatus(id uuid.UUID, status string, sentAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if sentAt != nil {
		updates["sent_at"] = *sentAt
	}
	return r.db.Model(&models.AutomatedMessageLog{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *messageLogRepo) MarkResponse(id uuid.UUID, responseTimeMinutes int) error {
	return r.db.Model(&models.AutomatedMessageLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"response_received":     true,
			"response_time_minutes": responseTimeMinutes,
		}).Error
}

func (r *messageLogRepo) FindByID(id uuid.UUID) (*models.AutomatedMessageLog, error) {
	var log models.AutomatedMessageLog
	if err := r.db.Where("id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *messageLogRepo) List(filter MessageLogFilter) ([]models.AutomatedMessageLog, error) {
	query := r.db.Model(&models.AutomatedMessageLog{})
	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.TemplateID != nil {
		query = query.Where("template_id = ?", *filter.TemplateID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var logs []models.AutomatedMessageLog
	err := query.Find(&logs).Error
	return logs, err
}

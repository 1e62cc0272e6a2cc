package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
)

// LeadEventRepo is the append-only store for lead events.
type LeadEventRepo interface {
	Create(event *models.LeadEvent) error
	LastByLead(leadID uuid.UUID) (*models.LeadEvent, error)
	LastEventAt(leadID uuid.UUID) (*time.Time, error)
	FindByLead(leadID uuid.UUID, limit int) ([]models.LeadEvent, error)
}

type leadEventRepo struct {
	db *gorm.DB
}

func NewLeadEventRepo(db *gorm.DB) LeadEventRepo {
	return &leadEventRepo{db: db}
}

func (r *leadEventRepo) Create(event *models.LeadEvent) error {
	return r.db.Create(event).Error
}

func (r *leadEventRepo) LastByLead(leadID uuid.UUID) (*models.LeadEvent, error) {
	var event models.LeadEvent
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Limit(1).
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *leadEventRepo) LastEventAt(leadID uuid.UUID) (*time.Time, error) {
	event, err := r.LastByLead(leadID)
	if err != nil || event == nil {
		return nil, err
	}
	return &event.CreatedAt, nil
}

func (r *leadEventRepo) FindByLead(leadID uuid.UUID, limit int) ([]models.LeadEvent, error) {
	var events []models.LeadEvent
	query := r.db.Where("lead_id = ?", leadID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

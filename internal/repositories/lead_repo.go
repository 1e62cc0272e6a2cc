package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
)

// LeadRepo provides lead lookups and mutations for the automation
// pipeline. Physical deletion is out of scope.
type LeadRepo interface {
	FindByID(id uuid.UUID) (*models.Lead, error)
	FindByPhoneFormats(formats []string) (*models.Lead, error)
	FindByEmail(email string) (*models.Lead, error)
	FindContactable(limit int) ([]models.Lead, error)
	ProjectIDs(leadID uuid.UUID) ([]uuid.UUID, error)
	LatestProjectID(leadID uuid.UUID) (*uuid.UUID, error)
	RecordAutomatedMessage(leadID uuid.UUID, at time.Time) error
}

type leadRepo struct {
	db *gorm.DB
}

func NewLeadRepo(db *gorm.DB) LeadRepo {
	return &leadRepo{db: db}
}

func (r *leadRepo) FindByID(id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.Where("id = ?", id).First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByPhoneFormats matches the phone column against each search format
// in order (ILIKE), returning the first lead hit by any of them.
func (r *leadRepo) FindByPhoneFormats(formats []string) (*models.Lead, error) {
	if len(formats) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	query := r.db.Where("phone ILIKE ?", formats[0])
	for _, f := range formats[1:] {
		query = query.Or("phone ILIKE ?", f)
	}

	var lead models.Lead
	if err := r.db.Where(query).Limit(1).First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) FindByEmail(email string) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.Where("LOWER(email) = LOWER(?)", email).Limit(1).First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) FindContactable(limit int) ([]models.Lead, error) {
	var leads []models.Lead
	query := r.db.Where("do_not_contact = ?", false).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&leads).Error
	return leads, err
}

func (r *leadRepo) ProjectIDs(leadID uuid.UUID) ([]uuid.UUID, error) {
	var links []models.LeadProject
	if err := r.db.Where("lead_id = ?", leadID).Find(&links).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ProjectID)
	}
	return ids, nil
}

func (r *leadRepo) LatestProjectID(leadID uuid.UUID) (*uuid.UUID, error) {
	var link models.LeadProject
	err := r.db.Where("lead_id = ?", leadID).
		Order("captured_at DESC").
		Limit(1).
		First(&link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &link.ProjectID, nil
}

// RecordAutomatedMessage bumps the automated-message counters on the lead.
func (r *leadRepo) RecordAutomatedMessage(leadID uuid.UUID, at time.Time) error {
	return r.db.Model(&models.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]interface{}{
			"last_automated_message_at": at,
			"automated_messages_count":  gorm.Expr("automated_messages_count + 1"),
		}).Error
}

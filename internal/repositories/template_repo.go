package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
)

// TemplateRepo reads and manages automated message templates. The
// matching engine treats templates as read-only.
type TemplateRepo interface {
	Create(template *models.AutomatedMessageTemplate) error
	Update(template *models.AutomatedMessageTemplate) error
	FindByID(id uuid.UUID) (*models.AutomatedMessageTemplate, error)
	FindByProject(projectID uuid.UUID) ([]models.AutomatedMessageTemplate, error)
	FindActiveByTrigger(projectID uuid.UUID, triggerType string) ([]models.AutomatedMessageTemplate, error)
	FindActiveByTriggerType(triggerType string) ([]models.AutomatedMessageTemplate, error)
}

type templateRepo struct {
	db *gorm.DB
}

func NewTemplateRepo(db *gorm.DB) TemplateRepo {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(template *models.AutomatedMessageTemplate) error {
	return r.db.Create(template).Error
}

func (r *templateRepo) Update(template *models.AutomatedMessageTemplate) error {
	return r.db.Save(template).Error
}

func (r *templateRepo) FindByID(id uuid.UUID) (*models.AutomatedMessageTemplate, error) {
	var template models.AutomatedMessageTemplate
	if err := r.db.Where("id = ?", id).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepo) FindByProject(projectID uuid.UUID) ([]models.AutomatedMessageTemplate, error) {
	var templates []models.AutomatedMessageTemplate
	err := r.db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&templates).Error
	return templates, err
}

// FindActiveByTrigger pre-filters templates by project, trigger type and
// active flag; the eligibility filter applies the remaining predicates.
func (r *templateRepo) FindActiveByTrigger(projectID uuid.UUID, triggerType string) ([]models.AutomatedMessageTemplate, error) {
	var templates []models.AutomatedMessageTemplate
	err := r.db.Where("project_id = ? AND trigger_type = ? AND active = ?", projectID, triggerType, true).
		Order("created_at ASC").
		Find(&templates).Error
	return templates, err
}

func (r *templateRepo) FindActiveByTriggerType(triggerType string) ([]models.AutomatedMessageTemplate, error) {
	var templates []models.AutomatedMessageTemplate
	err := r.db.Where("trigger_type = ? AND active = ?", triggerType, true).
		Order("created_at ASC").
		Find(&templates).Error
	return templates, err
}

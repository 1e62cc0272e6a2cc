package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
)

// ProjectRepo reads project data for message context and chatbot answers.
type ProjectRepo interface {
	FindByID(id uuid.UUID) (*models.Project, error)
	FindByIDs(ids []uuid.UUID) ([]models.Project, error)
	FindByNameLike(name string) (*models.Project, error)
}

type projectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) FindByIDs(ids []uuid.UUID) ([]models.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var projects []models.Project
	err := r.db.Where("id IN ?", ids).Find(&projects).Error
	return projects, err
}

func (r *projectRepo) FindByNameLike(name string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("name ILIKE ?", "%"+name+"%").
		Limit(1).
		First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a real-estate development leads are captured into.
type Project struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID  `json:"company_id" gorm:"type:uuid;index"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Address      string     `json:"address" gorm:"type:text"`
	Price        *float64   `json:"price"`
	Size         *float64   `json:"size"`
	Bedrooms     *int       `json:"bedrooms"`
	DeliveryDate *time.Time `json:"delivery_date"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

package plan

import (
	"time"

	"clubevantagens-backend/services/benefit"
)

type Plan struct {
	ID           string            `gorm:"column:id;primaryKey"`
	Name         string            `gorm:"column:name"`
	Description  string            `gorm:"column:description"`
	Price        float64           `gorm:"column:price"`
	DurationDays int               `gorm:"column:duration_days"`
	Active       bool              `gorm:"column:active"`
	Benefits     []benefit.Benefit `gorm:"many2many:plan_benefits;"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
}

package partner

import (
	"time"

	"clubevantagens-backend/services/benefit"
)

type Partner struct {
	ID            string            `gorm:"column:id;primaryKey"`
	CompanyName   string            `gorm:"column:company_name"`
	TradeName     string            `gorm:"column:trade_name"`
	Slug          string            `gorm:"column:slug"`
	CNPJ          string            `gorm:"column:cnpj;uniqueIndex"`
	Category      string            `gorm:"column:category"`
	City          string            `gorm:"column:city"`
	Active        bool              `gorm:"column:active"`
	BenefitAccess []benefit.Benefit `gorm:"many2many:partner_benefit_access;"`
	CreatedAt     time.Time         `gorm:"column:created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at"`
}

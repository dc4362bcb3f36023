package benefit

import (
	"time"

	"gorm.io/datatypes"
)

type Type string

const (
	TypeDesconto        Type = "DESCONTO"
	TypeCashback        Type = "CASHBACK"
	TypePontos          Type = "PONTOS"
	TypeAcessoExclusivo Type = "ACESSO_EXCLUSIVO"
)

type Benefit struct {
	ID          string         `gorm:"column:id;primaryKey"`
	Name        string         `gorm:"column:name"`
	Description string         `gorm:"column:description"`
	Type        Type           `gorm:"column:type"`
	RawValue    datatypes.JSON `gorm:"column:value"`
	Active      bool           `gorm:"column:active"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

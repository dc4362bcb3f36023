package redemption

import (
	"time"

	"gorm.io/datatypes"
)

type TransactionType string

const (
	TypePurchase   TransactionType = "PURCHASE"
	TypeAdjustment TransactionType = "ADJUSTMENT"
)

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "COMPLETED"
)

// Transaction rows are append-only. Corrections happen through ADJUSTMENT rows,
// never by updating an existing one.
type Transaction struct {
	ID                string            `gorm:"column:id;primaryKey"`
	Code              string            `gorm:"column:code;uniqueIndex"`
	Type              TransactionType   `gorm:"column:type"`
	Status            TransactionStatus `gorm:"column:status"`
	SubscriberID      string            `gorm:"column:subscriber_id;index"`
	PartnerID         string            `gorm:"column:partner_id;index"`
	BenefitID         string            `gorm:"column:benefit_id"`
	Amount            float64           `gorm:"column:amount"`
	PointsUsed        int64             `gorm:"column:points_used"`
	CashbackGenerated float64           `gorm:"column:cashback_generated"`
	CashbackUsed      float64           `gorm:"column:cashback_used"`
	DiscountApplied   float64           `gorm:"column:discount_applied"`
	Description       string            `gorm:"column:description"`
	Metadata          datatypes.JSON    `gorm:"column:metadata"`
	CreatedAt         time.Time         `gorm:"column:created_at"`
}

// CashbackBalance is the per-subscriber, per-partner accumulator. The invariant
// balance == total_earned - total_used holds on every write path.
type CashbackBalance struct {
	ID           string    `gorm:"column:id;primaryKey"`
	SubscriberID string    `gorm:"column:subscriber_id;uniqueIndex:idx_cashback_sub_partner"`
	PartnerID    string    `gorm:"column:partner_id;uniqueIndex:idx_cashback_sub_partner"`
	Balance      float64   `gorm:"column:balance"`
	TotalEarned  float64   `gorm:"column:total_earned"`
	TotalUsed    float64   `gorm:"column:total_used"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

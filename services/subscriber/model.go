package subscriber

import (
	"time"

	"clubevantagens-backend/services/plan"
)

type SubscriptionStatus string

const (
	StatusPending   SubscriptionStatus = "PENDING"
	StatusActive    SubscriptionStatus = "ACTIVE"
	StatusInactive  SubscriptionStatus = "INACTIVE"
	StatusSuspended SubscriptionStatus = "SUSPENDED"
	StatusCanceled  SubscriptionStatus = "CANCELED"
	StatusExpired   SubscriptionStatus = "EXPIRED"
	StatusGuest     SubscriptionStatus = "GUEST"
)

type Subscriber struct {
	ID                 string             `gorm:"column:id;primaryKey"`
	UserID             string             `gorm:"column:user_id"`
	Name               string             `gorm:"column:name"`
	CPF                string             `gorm:"column:cpf;uniqueIndex"`
	Phone              string             `gorm:"column:phone"`
	Email              string             `gorm:"column:email"`
	QRCode             string             `gorm:"column:qr_code;uniqueIndex"`
	SubscriptionStatus SubscriptionStatus `gorm:"column:subscription_status"`
	GatewayCustomerID  string             `gorm:"column:gateway_customer_id"`
	PlanID             *string            `gorm:"column:plan_id"`
	Plan               *plan.Plan         `gorm:"foreignKey:PlanID"`
	PlanStartDate      *time.Time         `gorm:"column:plan_start_date"`
	PlanEndDate        *time.Time         `gorm:"column:plan_end_date"`
	Points             int64              `gorm:"column:points"`
	Cashback           float64            `gorm:"column:cashback"`
	CreatedAt          time.Time          `gorm:"column:created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at"`
}

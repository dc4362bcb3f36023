package notification

import "time"

type InstanceStatus string

const (
	InstanceConnected    InstanceStatus = "connected"
	InstanceDisconnected InstanceStatus = "disconnected"
)

// WhatsAppInstance tracks a gateway session. Outbound messages require at
// least one connected instance.
type WhatsAppInstance struct {
	ID         string         `gorm:"column:id;primaryKey"`
	Name       string         `gorm:"column:name"`
	Status     InstanceStatus `gorm:"column:status"`
	LastSeenAt *time.Time     `gorm:"column:last_seen_at"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

// PushDevice is a browser push subscription. Devices rejected by the push
// service with 404 or 410 are pruned on the next send.
type PushDevice struct {
	ID           string    `gorm:"column:id;primaryKey"`
	SubscriberID string    `gorm:"column:subscriber_id;index"`
	Endpoint     string    `gorm:"column:endpoint"`
	P256dh       string    `gorm:"column:p256dh"`
	Auth         string    `gorm:"column:auth"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

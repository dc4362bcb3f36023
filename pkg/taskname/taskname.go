package taskname

const (
	// Notification tasks
	NotificationExpiryRun = "notification:expiry:run"

	// Billing tasks
	BillingWebhookReplay = "billing:webhook:replay"
)

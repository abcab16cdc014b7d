// internal/models/notification.go
package models

const (
	NotificationChannelEmail = "email"
	NotificationChannelSMS   = "sms"

	NotificationStatusSent     = "sent"
	NotificationStatusFailed   = "failed"
	NotificationStatusDisabled = "disabled"
)

// Notification records a message sent to a company about a moderation decision.
type Notification struct {
	ID        string           `json:"id"`
	CompanyID int64            `json:"companyId"`
	Decision  ModerationStatus `json:"decision"`
	Channel   string           `json:"channel"`
	Status    string           `json:"status"`
	SentAt    string           `json:"sentAt"`
}

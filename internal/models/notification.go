package models

// Notification channels
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// NotificationMessage is a formatted body bound for one channel.
type NotificationMessage struct {
	Body    string
	Channel string
}

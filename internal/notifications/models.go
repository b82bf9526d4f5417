package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeTicketIssued    NotificationType = "ticket.issued"
	NotificationTypeTicketCheckedIn NotificationType = "ticket.checked_in"
	NotificationTypeGrantCreated    NotificationType = "authorization.granted"
	NotificationTypeGrantRevoked    NotificationType = "authorization.revoked"
)

type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "QUEUED"
	NotificationStatusFailed NotificationStatus = "FAILED"
)

// Notification is the message published to the notification topic for every
// domain occurrence worth telling someone about.
type Notification struct {
	ID             uuid.UUID          `json:"id"`
	Type           NotificationType   `json:"type"`
	RecipientEmail string             `json:"recipient_email"`
	RecipientName  string             `json:"recipient_name"`
	EventID        *uuid.UUID         `json:"event_id,omitempty"`
	TicketID       *uuid.UUID         `json:"ticket_id,omitempty"`
	TicketCode     string             `json:"ticket_code,omitempty"`
	Subject        string             `json:"subject"`
	Data           map[string]string  `json:"data,omitempty"`
	Status         NotificationStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

func NewNotification(notificationType NotificationType, recipientEmail, recipientName string) *Notification {
	return &Notification{
		ID:             uuid.New(),
		Type:           notificationType,
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		Data:           make(map[string]string),
		CreatedAt:      time.Now(),
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func FromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// GetPartitionKey routes all messages for one recipient to the same
// partition so delivery order is preserved per recipient.
func (n *Notification) GetPartitionKey() string {
	if n.RecipientEmail != "" {
		return n.RecipientEmail
	}
	return n.ID.String()
}

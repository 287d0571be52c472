package notifications

import (
	"encoding/json"
	"time"

	"tikiti/pkg/money"

	"github.com/google/uuid"
)

type NotificationType string

const (
	// NotificationTypeOrderCompleted asks the e-ticket mailer to issue tickets
	NotificationTypeOrderCompleted NotificationType = "ORDER_COMPLETED"
)

type NotificationPriority string

const (
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

type TicketLine struct {
	CategoryName string       `json:"category_name"`
	Quantity     int          `json:"quantity"`
	UnitPrice    money.Amount `json:"unit_price"`
}

// OrderNotification is the message consumed by the e-ticket mailer
type OrderNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	OrderID        string `json:"order_id"`
	OrderReference string `json:"order_reference"`
	EventID        string `json:"event_id"`
	EventTitle     string `json:"event_title"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`

	Tickets  []TicketLine `json:"tickets"`
	Total    money.Amount `json:"total"`
	Currency string       `json:"currency"`

	CreatedAt time.Time `json:"created_at"`
}

type NotificationBuilder struct {
	notification *OrderNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		notification: &OrderNotification{
			ID:        uuid.New(),
			CreatedAt: time.Now().UTC(),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	return nb
}

func (nb *NotificationBuilder) WithOrder(orderID, reference string, total money.Amount, currency string) *NotificationBuilder {
	nb.notification.OrderID = orderID
	nb.notification.OrderReference = reference
	nb.notification.Total = total
	nb.notification.Currency = currency
	return nb
}

func (nb *NotificationBuilder) WithEvent(eventID, title string) *NotificationBuilder {
	nb.notification.EventID = eventID
	nb.notification.EventTitle = title
	return nb
}

func (nb *NotificationBuilder) WithRecipient(email, name, phone string) *NotificationBuilder {
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	nb.notification.RecipientPhone = phone
	return nb
}

func (nb *NotificationBuilder) WithTicket(categoryName string, quantity int, unitPrice money.Amount) *NotificationBuilder {
	nb.notification.Tickets = append(nb.notification.Tickets, TicketLine{
		CategoryName: categoryName,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
	})
	return nb
}

func (nb *NotificationBuilder) Build() *OrderNotification {
	return nb.notification
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeOrderCompleted:
		return NotificationPriorityHigh
	default:
		return NotificationPriorityMedium
	}
}

// GetPartitionKey keeps every message of one order on one partition
func (n *OrderNotification) GetPartitionKey() string {
	return n.OrderID
}

func (n *OrderNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

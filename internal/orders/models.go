package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"tikiti/pkg/money"
)

// Order is one submitted checkout attempt. It is created pending and moves
// to completed or failed once payment settles.
type Order struct {
	ID               string       `gorm:"primaryKey;size:36" json:"id"`
	Reference        string       `gorm:"uniqueIndex;size:32;not null" json:"reference"`
	CheckoutID       string       `gorm:"size:36;not null" json:"checkout_id"`
	EventID          string       `gorm:"size:64;index;not null" json:"event_id"`
	BuyerName        string       `gorm:"size:255;not null" json:"buyer_name"`
	BuyerEmail       string       `gorm:"size:255;not null" json:"buyer_email"`
	BuyerPhone       string       `gorm:"size:32;not null" json:"buyer_phone"`
	PaymentMethod    string       `gorm:"type:varchar(20);not null" json:"payment_method"`
	Total            money.Amount `gorm:"not null;check:total >= 0" json:"total"`
	Currency         string       `gorm:"type:varchar(3);not null" json:"currency"`
	Status           Status       `gorm:"type:varchar(20);check:status IN ('pending', 'completed', 'failed');default:'pending'" json:"status"`
	PaymentReference string       `gorm:"size:64" json:"payment_reference,omitempty"`
	FailureReason    string       `gorm:"size:500" json:"failure_reason,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	SettledAt        *time.Time   `json:"settled_at,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;" json:"items"`
}

// OrderItem is a cart line frozen at submission
type OrderItem struct {
	ID           uint         `gorm:"primaryKey" json:"-"`
	OrderID      string       `gorm:"size:36;index;not null" json:"-"`
	CategoryID   string       `gorm:"size:64;not null" json:"category_id"`
	CategoryName string       `gorm:"size:100;not null" json:"category_name"`
	Quantity     int          `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice    money.Amount `gorm:"not null" json:"unit_price"`
	LineTotal    money.Amount `gorm:"not null" json:"line_total"`
}

// Update is the terminal outcome applied to a pending order
type Update struct {
	Status           Status
	PaymentReference string
	FailureReason    string
	SettledAt        time.Time
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}

// GenerateReference builds a human-facing order reference like TKT-20250905-QWERTY
func GenerateReference(now time.Time) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("TKT-%s-%s", now.Format("20060102"), string(randomPart)), nil
}

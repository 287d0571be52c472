package database

import (
	"tikiti/internal/catalog"
	"tikiti/internal/orders"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Event{},
		&catalog.TicketCategory{},
		&orders.Order{},
		&orders.OrderItem{},
	)
}

package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds indexes and checks AutoMigrate does not express
func MigrateConstraints(db *gorm.DB) error {
	// Declaration order of categories must be unambiguous within an event
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_ticket_categories_event_position
		ON ticket_categories (event_id, position);
	`).Error
	if err != nil {
		return err
	}

	// Catalog listing is ordered by date ascending
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_starts_at
		ON events (starts_at);
	`).Error
	if err != nil {
		return err
	}

	// Orders are looked up by the checkout that produced them
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_orders_checkout_id
		ON orders (checkout_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}

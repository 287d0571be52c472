package catalog

import (
	"context"
	"errors"
	"fmt"

	"tikiti/internal/shared/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Provider
	Seed(ctx context.Context, events []Event) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func orderedCategories(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *repository) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Preload("Categories", orderedCategories).
		Order("starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *repository) GetEvent(ctx context.Context, id string) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Preload("Categories", orderedCategories).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("event", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// Seed upserts events and replaces their categories in one transaction
func (r *repository) Seed(ctx context.Context, events []Event) error {
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return err
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range events {
			event := events[i]
			categories := event.Categories
			event.Categories = nil

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&event).Error
			if err != nil {
				return fmt.Errorf("failed to upsert event %s: %w", event.ID, err)
			}

			if err := tx.Where("event_id = ?", event.ID).Delete(&TicketCategory{}).Error; err != nil {
				return fmt.Errorf("failed to clear categories of %s: %w", event.ID, err)
			}

			for pos := range categories {
				categories[pos].EventID = event.ID
				categories[pos].Position = pos
			}
			if len(categories) > 0 {
				if err := tx.Create(&categories).Error; err != nil {
					return fmt.Errorf("failed to insert categories of %s: %w", event.ID, err)
				}
			}
		}
		return nil
	})
}

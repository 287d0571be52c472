package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tikiti/internal/catalog"
	"tikiti/internal/shared/config"
	"tikiti/internal/shared/database"
	"tikiti/pkg/cache"
	"tikiti/pkg/logger"

	"github.com/joho/godotenv"
)

type Seeder struct {
	db  *database.DB
	log *logger.Logger
}

func main() {
	clean := flag.Bool("clean", false, "truncate orders and catalog tables before seeding")
	flag.Parse()

	fmt.Println("🌱 Starting Tikiti Catalog Seeder...")

	if err := godotenv.Load(); err != nil {
		fmt.Println("ℹ️  No .env file found, using system environment variables")
	}

	// Load configuration; seeding always needs PostgreSQL
	cfg := config.Load()
	cfg.Database.Enabled = true

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, log: logger.GetDefault()}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *clean {
		fmt.Println("\n🧹 Cleaning database...")
		if err := seeder.CleanDatabase(ctx); err != nil {
			log.Fatalf("Failed to clean database: %v", err)
		}
		fmt.Println("✅ Database cleaned successfully")
	}

	fmt.Println("\n🌱 Seeding catalog...")
	if err := seeder.SeedCatalog(ctx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	fmt.Println("✅ Catalog seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Set CATALOG_SOURCE=postgres to serve it.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	tables := []string{
		"order_items",
		"orders",
		"ticket_categories",
		"events",
	}

	for _, table := range tables {
		if err := s.db.GetPostgreSQL().WithContext(ctx).Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
		fmt.Printf("   Truncated %s\n", table)
	}
	return nil
}

// SeedCatalog upserts the built-in events and drops cached catalog reads
func (s *Seeder) SeedCatalog(ctx context.Context) error {
	events := catalog.BuiltinEvents()
	repo := catalog.NewRepository(s.db.GetPostgreSQL())
	if err := repo.Seed(ctx, events); err != nil {
		return err
	}
	for _, e := range events {
		fmt.Printf("   %s: %s (%d categories)\n", e.ID, e.Title, len(e.Categories))
	}

	if s.db.GetRedisClient() != nil {
		svc := catalog.NewService(repo, cache.NewService(s.db.GetRedisClient(), s.log))
		if err := svc.Invalidate(ctx); err != nil {
			return fmt.Errorf("failed to invalidate catalog cache: %w", err)
		}
		fmt.Println("   Catalog cache invalidated")
	}
	return nil
}

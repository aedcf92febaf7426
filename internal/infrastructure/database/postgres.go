package database

import (
	"fmt"
	"log"

	"github.com/jkorir/sellpoint-api/internal/config"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Product{},
		&entity.Customer{},
		&entity.Sale{},
		&entity.SaleItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds an initial admin account and a handful of catalog
// entries so a fresh install has something to sell.
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	var admin entity.User
	if err := db.Where("email = ?", "admin@sellpoint.local").First(&admin).Error; err != nil {
		admin = entity.User{
			Name:  "Administrator",
			Email: "admin@sellpoint.local",
			Role:  "admin",
		}
		if err := admin.SetPassword("admin1234"); err != nil {
			return fmt.Errorf("failed to hash seed admin password: %w", err)
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Printf("Warning: failed to create seed admin: %v", err)
		}
	}

	products := []entity.Product{
		{Name: "Bottled Water 500ml", Code: "P-WATER05", UnitPrice: 100, Quantity: 120, QuantityAlert: 24},
		{Name: "White Bread", Code: "P-BREAD01", UnitPrice: 260, Quantity: 40, QuantityAlert: 10},
		{Name: "Milk 1L", Code: "P-MILK1L", UnitPrice: 150, Quantity: 60, QuantityAlert: 12},
	}
	for i := range products {
		var existing entity.Product
		if err := db.Where("code = ?", products[i].Code).First(&existing).Error; err != nil {
			if err := db.Create(&products[i]).Error; err != nil {
				log.Printf("Warning: failed to create seed product %s: %v", products[i].Code, err)
			}
		}
	}

	log.Println("Seeding completed")
	return nil
}

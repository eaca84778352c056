package config

import (
	"fmt"

	"github.com/retailkart/promokart/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the shared database handle, set by InitDB.
var DB *gorm.DB

// InitDB opens the postgres connection and migrates the schema. The unique
// indexes on campaigns.code and entitlements.unique_code come from the model
// tags; the engine's collision-retry and duplicate detection depend on them
// existing, so migration failure is fatal.
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	err = DB.AutoMigrate(
		&models.Campaign{},
		&models.Entitlement{},
		&models.Referral{},
		&models.Customer{},
		&models.Staff{},
		&models.Store{},
		&models.Purchase{},
		&models.PurchaseItem{},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}

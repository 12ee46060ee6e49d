package database

import (
	"fmt"
	"log"

	"clicker-backend/internal/config"
	"clicker-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	log.Println("database connected")
	return db
}

func AutoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.UserStats{},
		&models.GlobalCounter{},
	)
	if err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// The global total is a singleton row; every increment assumes it exists.
	global := models.GlobalCounter{Key: models.GlobalTotalKey}
	if err := db.FirstOrCreate(&global, models.GlobalCounter{Key: models.GlobalTotalKey}).Error; err != nil {
		log.Fatalf("failed to seed global counter: %v", err)
	}

	log.Println("database migrated")
}

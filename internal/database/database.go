package database

import (
	"log"

	"citamed/config"
	"citamed/internal/domain"
	"citamed/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		// TranslateError maps driver duplicate-key errors to
		// gorm.ErrDuplicatedKey; the slot and settlement invariants rely on it.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.PaymentAttempt{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedDoctors creates a couple of doctors so a fresh install is bookable.
// No-op when any doctor already exists.
func SeedDoctors(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleDoctor).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("doctor123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] bcrypt: %v", err)
		return
	}
	doctors := []models.User{
		{Email: "c.soto@citamed.local", FirstName: "Carla", LastName: "Soto", Role: domain.RoleDoctor, Specialty: "General Medicine", Active: true, PasswordHash: string(hash)},
		{Email: "m.reyes@citamed.local", FirstName: "Manuel", LastName: "Reyes", Role: domain.RoleDoctor, Specialty: "Cardiology", Active: true, PasswordHash: string(hash)},
	}
	for i := range doctors {
		if err := db.Create(&doctors[i]).Error; err != nil {
			log.Printf("[seed] doctor %s: %v", doctors[i].Email, err)
		}
	}
}

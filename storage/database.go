package storage

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

// PerformMigrations creates or updates the schema for the reservation
// engine's model set.
func PerformMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CancellationPolicy{}, // referenced by units
		&models.Unit{},
		&models.Room{},
		&models.AvailabilityBlock{},
		&models.Reservation{},
		&models.ReservationRoom{},
		&models.ReservationCounter{},
		&models.Coupon{},
		&models.CouponRedemption{},
		&models.PaymentEvent{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	if err := PerformMigrations(db); err != nil {
		log.Panic("error running migrations: " + err.Error())
	}
	return db
}

// Open connects with an arbitrary dialector and runs migrations.
// Tests use it with an in-memory SQLite database.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := PerformMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

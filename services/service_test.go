package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.Open(sqlite.Open("file::memory:"))
	require.NoError(t, err)
	// A second pool connection to an unnamed in-memory database would
	// see an empty schema, so keep every goroutine on the same one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedUnit creates a unit with the given number of rooms, all priced
// at roomPrice per night.
func seedUnit(t *testing.T, db *gorm.DB, roomCount int, basePrice, roomPrice string) *models.Unit {
	t.Helper()
	unit := models.Unit{
		HostID:    1,
		Name:      "Test Unit",
		BasePrice: dec(basePrice),
	}
	require.NoError(t, db.Create(&unit).Error)
	for i := 0; i < roomCount; i++ {
		room := models.Room{
			UnitID:    unit.ID,
			Name:      "Room",
			BasePrice: dec(roomPrice),
		}
		require.NoError(t, db.Create(&room).Error)
	}
	require.NoError(t, db.Preload("Rooms").First(&unit, unit.ID).Error)
	return &unit
}

func seedPolicy(t *testing.T, db *gorm.DB, full, partial, pct int, isDefault bool) *models.CancellationPolicy {
	t.Helper()
	policy := models.CancellationPolicy{
		Name:                    "Test Policy",
		FullRefundDays:          full,
		PartialRefundDays:       partial,
		PartialRefundPercentage: pct,
		IsDefault:               isDefault,
	}
	require.NoError(t, db.Create(&policy).Error)
	return &policy
}

func newTestService(t *testing.T, db *gorm.DB, now time.Time) *ReservationService {
	t.Helper()
	return NewReservationService(db, NewFixedClock(now), nil, NoopNotifier{}, nil)
}

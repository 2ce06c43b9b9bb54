package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

const numberPrefix = "HJZ"

// typeTag distinguishes booking categories in reservation numbers.
func typeTag(reservationType string) string {
	switch reservationType {
	case models.ReservationWholeUnit:
		return "U"
	case models.ReservationStandalone:
		return "S"
	default:
		return "R"
	}
}

// NumberAllocator issues human-readable reservation numbers of the
// form HJZ-{typeTag}-{yyyyMMdd}-{seq}. One counter row per bucket is
// incremented with an atomic UPDATE inside the caller's transaction,
// so two concurrent creations in the same bucket block on the counter
// row and never share a sequence. A rolled-back creation rolls the
// increment back with it.
type NumberAllocator struct{}

// Next allocates the next number in the bucket for the given booking
// type and date. Must run inside the reservation's transaction.
func (NumberAllocator) Next(tx *gorm.DB, reservationType string, day time.Time) (string, error) {
	bucket := fmt.Sprintf("%s-%s-%s", numberPrefix, typeTag(reservationType), day.Format("20060102"))

	for attempt := 0; attempt < 2; attempt++ {
		update := tx.Model(&models.ReservationCounter{}).
			Where("bucket = ?", bucket).
			UpdateColumn("seq", gorm.Expr("seq + 1"))
		if update.Error != nil {
			return "", update.Error
		}
		if update.RowsAffected == 0 {
			// First allocation in this bucket; a concurrent insert is
			// absorbed by the conflict clause and retried as an update.
			seed := models.ReservationCounter{Bucket: bucket, Seq: 0}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
				return "", err
			}
			continue
		}

		var counter models.ReservationCounter
		if err := tx.Where("bucket = ?", bucket).First(&counter).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("%s-%04d", bucket, counter.Seq), nil
	}
	return "", fmt.Errorf("allocate reservation number: bucket %s unavailable", bucket)
}

package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

// ResourceRef identifies one bookable resource: a standalone unit or a
// single room.
type ResourceRef struct {
	Type string
	ID   uint
}

// UnitRef and RoomRef build resource references.
func UnitRef(id uint) ResourceRef { return ResourceRef{Type: models.ResourceUnit, ID: id} }
func RoomRef(id uint) ResourceRef { return ResourceRef{Type: models.ResourceRoom, ID: id} }

// AvailabilityLedger is the authoritative record of which date ranges
// are free per resource. All methods operate on the caller's
// transaction; Reserve and Release must share the transaction of the
// reservation write they belong to.
//
// Ranges are half-open [start, end): a checkout on day N and a
// check-in on day N for the same resource do not conflict.
type AvailabilityLedger struct{}

// IsRangeFree reports whether the range is free of blocked ledger rows
// and of overlapping non-cancelled reservations. excludeReservationID
// ignores one reservation's own footprint, which date modification
// needs.
func (AvailabilityLedger) IsRangeFree(tx *gorm.DB, res ResourceRef, start, end time.Time, excludeReservationID *uint) (bool, error) {
	var blocked int64
	q := tx.Model(&models.AvailabilityBlock{}).
		Where("resource_type = ? AND resource_id = ? AND blocked = ?", res.Type, res.ID, true).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeReservationID != nil {
		q = q.Where("reservation_id IS NULL OR reservation_id <> ?", *excludeReservationID)
	}
	if err := q.Count(&blocked).Error; err != nil {
		return false, err
	}
	if blocked > 0 {
		return false, nil
	}

	overlapping, err := countOverlappingReservations(tx, res, start, end, excludeReservationID)
	if err != nil {
		return false, err
	}
	return overlapping == 0, nil
}

func countOverlappingReservations(tx *gorm.DB, res ResourceRef, start, end time.Time, excludeReservationID *uint) (int64, error) {
	var count int64
	var q *gorm.DB
	switch res.Type {
	case models.ResourceUnit:
		q = tx.Model(&models.Reservation{}).
			Where("unit_id = ? AND type IN ?", res.ID, []string{models.ReservationStandalone, models.ReservationWholeUnit}).
			Where("status <> ?", models.ReservationCancelled).
			Where("check_in < ? AND check_out > ?", end, start)
	default:
		q = tx.Model(&models.Reservation{}).
			Joins("JOIN reservation_rooms ON reservation_rooms.reservation_id = reservations.id").
			Where("reservation_rooms.room_id = ?", res.ID).
			Where("reservations.status <> ?", models.ReservationCancelled).
			Where("reservations.check_in < ? AND reservations.check_out > ?", end, start)
	}
	if excludeReservationID != nil {
		q = q.Where("reservations.id <> ?", *excludeReservationID)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CheckMany runs IsRangeFree for every resource of a booking. All must
// be free for the booking to proceed.
func (l AvailabilityLedger) CheckMany(tx *gorm.DB, resources []ResourceRef, start, end time.Time, excludeReservationID *uint) (map[ResourceRef]bool, error) {
	result := make(map[ResourceRef]bool, len(resources))
	for _, res := range resources {
		free, err := l.IsRangeFree(tx, res, start, end, excludeReservationID)
		if err != nil {
			return nil, err
		}
		result[res] = free
	}
	return result, nil
}

// Reserve writes a blocked ledger row per resource tied to the
// reservation. Runs inside the reservation's transaction so a later
// failure rolls the block back together with the reservation insert.
func (AvailabilityLedger) Reserve(tx *gorm.DB, resources []ResourceRef, reservationID uint, start, end time.Time) error {
	blocks := make([]models.AvailabilityBlock, 0, len(resources))
	for _, res := range resources {
		blocks = append(blocks, models.AvailabilityBlock{
			ResourceType:  res.Type,
			ResourceID:    res.ID,
			StartDate:     start,
			EndDate:       end,
			Blocked:       true,
			ReservationID: &reservationID,
			Notes:         "booked",
		})
	}
	return tx.Create(&blocks).Error
}

// Release removes only the blocks owned by this reservation. Blocks of
// other reservations on the same resources, and administrative blocks,
// are untouched.
func (AvailabilityLedger) Release(tx *gorm.DB, reservationID uint) error {
	return tx.Where("reservation_id = ?", reservationID).
		Delete(&models.AvailabilityBlock{}).Error
}

// SetOverride records an administrative block or price override,
// independent of any reservation.
func (AvailabilityLedger) SetOverride(tx *gorm.DB, res ResourceRef, start, end time.Time, blocked bool, price *decimal.Decimal, notes string) (*models.AvailabilityBlock, error) {
	block := models.AvailabilityBlock{
		ResourceType: res.Type,
		ResourceID:   res.ID,
		StartDate:    dateOnly(start),
		EndDate:      dateOnly(end),
		Blocked:      blocked,
		NightlyPrice: price,
		Notes:        notes,
	}
	if !block.StartDate.Before(block.EndDate) {
		return nil, ErrInvalidDates("override start date must be before end date")
	}
	if err := tx.Create(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// CalendarFor returns the ledger rows touching a resource/date range,
// ordered by start date. Read-only admin surface.
func (AvailabilityLedger) CalendarFor(tx *gorm.DB, res ResourceRef, start, end time.Time) ([]models.AvailabilityBlock, error) {
	var blocks []models.AvailabilityBlock
	err := tx.Where("resource_type = ? AND resource_id = ?", res.Type, res.ID).
		Where("start_date < ? AND end_date > ?", end, start).
		Order("start_date ASC").
		Find(&blocks).Error
	return blocks, err
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Resource types an availability block can point at.
const (
	ResourceUnit = "unit"
	ResourceRoom = "room"
)

// AvailabilityBlock is one ledger entry for a resource over a half-open
// date range [StartDate, EndDate). Blocked rows make the range
// unbookable; unblocked rows carry a nightly price override. Rows with
// a ReservationID were written by the reservation engine and are
// released when that reservation is cancelled; administrative rows have
// no ReservationID and outlive reservations.
type AvailabilityBlock struct {
	gorm.Model
	ResourceType  string           `json:"resourceType" gorm:"type:varchar(8);not null;index:idx_blocks_resource"`
	ResourceID    uint             `json:"resourceID" gorm:"not null;index:idx_blocks_resource"`
	StartDate     time.Time        `json:"startDate" gorm:"not null"`
	EndDate       time.Time        `json:"endDate" gorm:"not null"`
	Blocked       bool             `json:"blocked" gorm:"not null"`
	NightlyPrice  *decimal.Decimal `json:"nightlyPrice,omitempty" gorm:"type:decimal(12,2)"`
	ReservationID *uint            `json:"reservationID,omitempty" gorm:"index"`
	Notes         string           `json:"notes"`
}

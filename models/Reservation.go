package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reservation statuses. Transitions are owned by services.ReservationService;
// nothing else writes Status.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCheckedIn = "checked_in"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentPending       = "pending"
	PaymentPartiallyPaid = "partially_paid"
	PaymentPaid          = "paid"
	PaymentRefunded      = "refunded"
)

// Reservation types. A whole_unit reservation books every room of a
// multi-room unit, a standalone reservation books a unit with no rooms,
// and a rooms reservation books a chosen set of rooms.
const (
	ReservationWholeUnit  = "whole_unit"
	ReservationStandalone = "standalone"
	ReservationRooms      = "rooms"
)

// Reservation is a claim on a unit (or a set of its rooms) for the
// half-open date range [CheckIn, CheckOut). Cancellation is a status
// change, never a row deletion.
type Reservation struct {
	gorm.Model
	Number        string          `json:"number" gorm:"uniqueIndex;size:32;not null"`
	Type          string          `json:"type" gorm:"type:varchar(16);not null;index"`
	UnitID        uint            `json:"unitID" gorm:"not null;index"`
	GuestID       uint            `json:"guestID" gorm:"not null;index"`
	CheckIn       time.Time       `json:"checkIn" gorm:"not null;index"`
	CheckOut      time.Time       `json:"checkOut" gorm:"not null"`
	NumGuests     int             `json:"numGuests"`
	NightlyRate   decimal.Decimal `json:"nightlyRate" gorm:"type:decimal(12,2)"`
	TotalPrice    decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	PaidAmount    decimal.Decimal `json:"paidAmount" gorm:"type:decimal(12,2);not null"`
	Status        string          `json:"status" gorm:"type:varchar(16);not null;index"`
	PaymentStatus string          `json:"paymentStatus" gorm:"type:varchar(16);not null"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`

	Rooms []ReservationRoom `json:"rooms,omitempty" gorm:"foreignKey:ReservationID"`
	Unit  *Unit             `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}

// Nights returns the stay length in whole days over calendar dates.
func (r *Reservation) Nights() int {
	in := time.Date(r.CheckIn.Year(), r.CheckIn.Month(), r.CheckIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(r.CheckOut.Year(), r.CheckOut.Month(), r.CheckOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

// ReservationRoom links a rooms-type reservation to one booked room,
// carrying the nightly price frozen at booking time.
type ReservationRoom struct {
	gorm.Model
	ReservationID uint            `json:"reservationID" gorm:"not null;index"`
	RoomID        uint            `json:"roomID" gorm:"not null;index"`
	NightlyPrice  decimal.Decimal `json:"nightlyPrice" gorm:"type:decimal(12,2);not null"`

	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

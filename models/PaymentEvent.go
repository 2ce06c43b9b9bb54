package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentEvent is one append-only ledger entry against a reservation.
// Positive amounts are charges, negative amounts are refunds. The
// reservation's PaidAmount is the running sum; history is never edited
// or deleted, corrections are appended with the opposite sign.
type PaymentEvent struct {
	gorm.Model
	ReservationID uint            `json:"reservationID" gorm:"not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method        string          `json:"method" gorm:"type:varchar(32)"`
	Reference     string          `json:"reference" gorm:"size:64;index"`
}

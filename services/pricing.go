package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

// RoomPrice is one room's share of a quote, with the nightly rate the
// reservation will freeze.
type RoomPrice struct {
	RoomID  uint            `json:"roomID"`
	Nightly decimal.Decimal `json:"nightly"`
	Total   decimal.Decimal `json:"total"`
}

// PriceQuote is the authoritative price for a resource set over a date
// range, before any promotional discount.
type PriceQuote struct {
	Nights      int             `json:"nights"`
	NightlyRate decimal.Decimal `json:"nightlyRate"`
	Total       decimal.Decimal `json:"total"`
	Rooms       []RoomPrice     `json:"rooms,omitempty"`
}

// PricingCalculator derives prices from base nightly rates and ledger
// price overrides. Prices are fixed-point decimals throughout; nights
// are whole calendar days.
type PricingCalculator struct{}

// nightlyFor resolves the effective nightly rate for one resource: the
// price of the single non-blocked override whose range fully contains
// [start, end), or the base rate when none applies.
func (PricingCalculator) nightlyFor(tx *gorm.DB, res ResourceRef, base decimal.Decimal, start, end time.Time) (decimal.Decimal, error) {
	var override models.AvailabilityBlock
	err := tx.Where("resource_type = ? AND resource_id = ?", res.Type, res.ID).
		Where("blocked = ? AND nightly_price IS NOT NULL", false).
		Where("start_date <= ? AND end_date >= ?", start, end).
		Order("created_at DESC").
		First(&override).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return base, nil
		}
		return decimal.Zero, err
	}
	return *override.NightlyPrice, nil
}

// QuoteRooms prices a set of rooms over [start, end). Each room is
// priced independently so one room's override never leaks into
// another's total.
func (c PricingCalculator) QuoteRooms(tx *gorm.DB, rooms []models.Room, start, end time.Time) (*PriceQuote, error) {
	start, end = dateOnly(start), dateOnly(end)
	nights := daysBetween(start, end)
	quote := &PriceQuote{Nights: nights, Rooms: make([]RoomPrice, 0, len(rooms))}
	nightsDec := decimal.NewFromInt(int64(nights))
	for _, room := range rooms {
		nightly, err := c.nightlyFor(tx, RoomRef(room.ID), room.BasePrice, start, end)
		if err != nil {
			return nil, err
		}
		total := nightly.Mul(nightsDec)
		quote.Rooms = append(quote.Rooms, RoomPrice{RoomID: room.ID, Nightly: nightly, Total: total})
		quote.NightlyRate = quote.NightlyRate.Add(nightly)
		quote.Total = quote.Total.Add(total)
	}
	return quote, nil
}

// QuoteStandalone prices a unit that owns no rooms directly from its
// own base rate.
func (c PricingCalculator) QuoteStandalone(tx *gorm.DB, unit *models.Unit, start, end time.Time) (*PriceQuote, error) {
	start, end = dateOnly(start), dateOnly(end)
	nights := daysBetween(start, end)
	nightly, err := c.nightlyFor(tx, UnitRef(unit.ID), unit.BasePrice, start, end)
	if err != nil {
		return nil, err
	}
	return &PriceQuote{
		Nights:      nights,
		NightlyRate: nightly,
		Total:       nightly.Mul(decimal.NewFromInt(int64(nights))),
	}, nil
}

// Quote prices a booking. Whole-unit bookings of a multi-room unit sum
// the room prices; the unit's own base rate is used only when it is
// standalone.
func (c PricingCalculator) Quote(tx *gorm.DB, unit *models.Unit, rooms []models.Room, start, end time.Time) (*PriceQuote, error) {
	if len(rooms) == 0 {
		return c.QuoteStandalone(tx, unit, start, end)
	}
	return c.QuoteRooms(tx, rooms, start, end)
}

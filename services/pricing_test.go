package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteStandaloneUsesUnitRate(t *testing.T) {
	db := newTestDB(t)
	unit := seedUnit(t, db, 0, "150.00", "0")
	calc := PricingCalculator{}

	quote, err := calc.Quote(db, unit, nil, date(2026, time.March, 10), date(2026, time.March, 13))
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Nights)
	assert.True(t, quote.NightlyRate.Equal(dec("150.00")))
	assert.True(t, quote.Total.Equal(dec("450.00")), "got %s", quote.Total)
	assert.Empty(t, quote.Rooms)
}

func TestQuoteRoomsIsAdditive(t *testing.T) {
	db := newTestDB(t)
	unit := seedUnit(t, db, 2, "999.00", "80.00")
	calc := PricingCalculator{}

	quote, err := calc.Quote(db, unit, unit.Rooms, date(2026, time.March, 10), date(2026, time.March, 12))
	require.NoError(t, err)

	// Two rooms at 80 for two nights. The unit's own base rate plays
	// no part when rooms are priced.
	assert.Equal(t, 2, quote.Nights)
	assert.True(t, quote.NightlyRate.Equal(dec("160.00")))
	assert.True(t, quote.Total.Equal(dec("320.00")), "got %s", quote.Total)
	require.Len(t, quote.Rooms, 2)
	for _, rp := range quote.Rooms {
		assert.True(t, rp.Nightly.Equal(dec("80.00")))
		assert.True(t, rp.Total.Equal(dec("160.00")))
	}
}

func TestQuoteAppliesContainingOverride(t *testing.T) {
	db := newTestDB(t)
	unit := seedUnit(t, db, 1, "999.00", "80.00")
	room := unit.Rooms[0]
	ledger := AvailabilityLedger{}

	// Seasonal price covering the whole stay.
	price := dec("120.00")
	_, err := ledger.SetOverride(db, RoomRef(room.ID), date(2026, time.March, 1), date(2026, time.April, 1), false, &price, "high season")
	require.NoError(t, err)

	calc := PricingCalculator{}
	quote, err := calc.QuoteRooms(db, unit.Rooms, date(2026, time.March, 10), date(2026, time.March, 12))
	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(dec("240.00")), "got %s", quote.Total)
}

func TestQuoteIgnoresPartialOverride(t *testing.T) {
	db := newTestDB(t)
	unit := seedUnit(t, db, 1, "999.00", "80.00")
	room := unit.Rooms[0]
	ledger := AvailabilityLedger{}

	// Override covers only part of the stay, so the base rate holds.
	price := dec("120.00")
	_, err := ledger.SetOverride(db, RoomRef(room.ID), date(2026, time.March, 10), date(2026, time.March, 11), false, &price, "one night only")
	require.NoError(t, err)

	calc := PricingCalculator{}
	quote, err := calc.QuoteRooms(db, unit.Rooms, date(2026, time.March, 10), date(2026, time.March, 13))
	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(dec("240.00")), "got %s", quote.Total) // 3 nights at 80
}

func TestQuoteOverrideDoesNotLeakAcrossRooms(t *testing.T) {
	db := newTestDB(t)
	unit := seedUnit(t, db, 2, "999.00", "80.00")
	ledger := AvailabilityLedger{}

	price := dec("200.00")
	_, err := ledger.SetOverride(db, RoomRef(unit.Rooms[0].ID), date(2026, time.March, 1), date(2026, time.April, 1), false, &price, "")
	require.NoError(t, err)

	calc := PricingCalculator{}
	quote, err := calc.QuoteRooms(db, unit.Rooms, date(2026, time.March, 10), date(2026, time.March, 11))
	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(dec("280.00")), "got %s", quote.Total) // 200 + 80
}

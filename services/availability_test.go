package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

func TestIsRangeFreeHalfOpenBoundaries(t *testing.T) {
	db := newTestDB(t)
	ledger := AvailabilityLedger{}
	room := RoomRef(42)

	require.NoError(t, ledger.Reserve(db, []ResourceRef{room}, 1, date(2026, time.March, 10), date(2026, time.March, 13)))

	cases := []struct {
		name       string
		start, end time.Time
		free       bool
	}{
		{"identical range", date(2026, time.March, 10), date(2026, time.March, 13), false},
		{"contained", date(2026, time.March, 11), date(2026, time.March, 12), false},
		{"overlaps start", date(2026, time.March, 8), date(2026, time.March, 11), false},
		{"overlaps end", date(2026, time.March, 12), date(2026, time.March, 15), false},
		{"back to back before", date(2026, time.March, 7), date(2026, time.March, 10), true},
		{"back to back after", date(2026, time.March, 13), date(2026, time.March, 16), true},
		{"disjoint", date(2026, time.April, 1), date(2026, time.April, 5), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			free, err := ledger.IsRangeFree(db, room, tc.start, tc.end, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.free, free)
		})
	}
}

func TestIsRangeFreeIgnoresOtherResources(t *testing.T) {
	db := newTestDB(t)
	ledger := AvailabilityLedger{}

	require.NoError(t, ledger.Reserve(db, []ResourceRef{RoomRef(1)}, 1, date(2026, time.March, 10), date(2026, time.March, 13)))

	free, err := ledger.IsRangeFree(db, RoomRef(2), date(2026, time.March, 10), date(2026, time.March, 13), nil)
	require.NoError(t, err)
	assert.True(t, free)

	// Same numeric ID but unit type is a different resource.
	free, err = ledger.IsRangeFree(db, UnitRef(1), date(2026, time.March, 10), date(2026, time.March, 13), nil)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestReleaseRemovesOnlyOwnBlocks(t *testing.T) {
	db := newTestDB(t)
	ledger := AvailabilityLedger{}
	room := RoomRef(7)

	require.NoError(t, ledger.Reserve(db, []ResourceRef{room}, 1, date(2026, time.March, 1), date(2026, time.March, 5)))
	require.NoError(t, ledger.Reserve(db, []ResourceRef{room}, 2, date(2026, time.March, 5), date(2026, time.March, 9)))
	_, err := ledger.SetOverride(db, room, date(2026, time.June, 1), date(2026, time.June, 10), true, nil, "maintenance")
	require.NoError(t, err)

	require.NoError(t, ledger.Release(db, 1))

	// Reservation 2's block and the administrative block survive.
	free, err := ledger.IsRangeFree(db, room, date(2026, time.March, 1), date(2026, time.March, 5), nil)
	require.NoError(t, err)
	assert.True(t, free)

	free, err = ledger.IsRangeFree(db, room, date(2026, time.March, 5), date(2026, time.March, 9), nil)
	require.NoError(t, err)
	assert.False(t, free)

	free, err = ledger.IsRangeFree(db, room, date(2026, time.June, 3), date(2026, time.June, 5), nil)
	require.NoError(t, err)
	assert.False(t, free)
}

func TestSetOverrideRejectsEmptyRange(t *testing.T) {
	db := newTestDB(t)
	ledger := AvailabilityLedger{}

	_, err := ledger.SetOverride(db, UnitRef(1), date(2026, time.March, 10), date(2026, time.March, 10), true, nil, "")
	require.Error(t, err)
	engineErr, ok := AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidDates, engineErr.Kind)
}

func TestPriceOverrideDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	ledger := AvailabilityLedger{}
	room := RoomRef(3)

	price := dec("140.00")
	_, err := ledger.SetOverride(db, room, date(2026, time.March, 1), date(2026, time.April, 1), false, &price, "season")
	require.NoError(t, err)

	free, err := ledger.IsRangeFree(db, room, date(2026, time.March, 10), date(2026, time.March, 13), nil)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestCheckManyExcludesOwnReservation(t *testing.T) {
	db := newTestDB(t)
	ledger := AvailabilityLedger{}
	room := RoomRef(5)

	// A reservation row plus its ledger block, the shape Create leaves
	// behind.
	res := models.Reservation{
		Number:   "HJZ-R-20260310-0001",
		Type:     models.ReservationRooms,
		UnitID:   1,
		GuestID:  9,
		CheckIn:  date(2026, time.March, 10),
		CheckOut: date(2026, time.March, 13),
		Status:   models.ReservationConfirmed,
	}
	require.NoError(t, db.Create(&res).Error)
	require.NoError(t, db.Create(&models.ReservationRoom{ReservationID: res.ID, RoomID: 5, NightlyPrice: dec("80")}).Error)
	require.NoError(t, ledger.Reserve(db, []ResourceRef{room}, res.ID, res.CheckIn, res.CheckOut))

	// An extended range overlapping its own footprint is free when the
	// reservation is excluded, and busy otherwise.
	result, err := ledger.CheckMany(db, []ResourceRef{room}, date(2026, time.March, 11), date(2026, time.March, 15), &res.ID)
	require.NoError(t, err)
	assert.True(t, result[room])

	result, err = ledger.CheckMany(db, []ResourceRef{room}, date(2026, time.March, 11), date(2026, time.March, 15), nil)
	require.NoError(t, err)
	assert.False(t, result[room])
}

func TestCalendarForReturnsTouchingBlocks(t *testing.T) {
	db := newTestDB(t)
	ledger := AvailabilityLedger{}
	room := RoomRef(8)

	require.NoError(t, ledger.Reserve(db, []ResourceRef{room}, 1, date(2026, time.March, 1), date(2026, time.March, 5)))
	_, err := ledger.SetOverride(db, room, date(2026, time.March, 20), date(2026, time.March, 25), true, nil, "maintenance")
	require.NoError(t, err)
	require.NoError(t, ledger.Reserve(db, []ResourceRef{room}, 2, date(2026, time.May, 1), date(2026, time.May, 5)))

	blocks, err := ledger.CalendarFor(db, room, date(2026, time.March, 1), date(2026, time.April, 1))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.True(t, blocks[0].StartDate.Before(blocks[1].StartDate))
}

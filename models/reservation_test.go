package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func room(price string, state RoomState) *Room {
	return &Room{ID: 1, Number: "101", Price: decimal.RequireFromString(price), State: state}
}

func TestTotalValue(t *testing.T) {
	tests := []struct {
		name   string
		room   *Room
		nights int
		want   string
	}{
		{"price times nights", room("25000", RoomAvailable), 3, "75000"},
		{"no room", nil, 3, "0"},
		{"zero nights", room("25000", RoomAvailable), 0, "0"},
		{"zero price", room("0", RoomAvailable), 2, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reservation{Room: tt.room, Nights: tt.nights}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(r.TotalValue()), "got %s", r.TotalValue())
		})
	}
}

func TestValidate_AcceptsConsistentReservation(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rm := room("25000", RoomAvailable)
	r := Reservation{
		RegisteredAt: now,
		CheckInDate:  now.Add(24 * time.Hour),
		Nights:       3,
		FinalPrice:   decimal.NewNullDecimal(decimal.RequireFromString("75000")),
	}
	assert.NoError(t, r.Validate(rm))
}

func TestValidate_CollectsEveryFailedRule(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rm := room("25000", RoomOccupied)
	r := Reservation{
		RegisteredAt: now,
		CheckInDate:  now.Add(-time.Hour),
		Nights:       2,
		FinalPrice:   decimal.NewNullDecimal(decimal.RequireFromString("10000")),
	}

	err := r.Validate(rm)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)

	var dateErr *DateOrderError
	var roomErr *RoomUnavailableError
	var priceErr *PriceMismatchError
	assert.True(t, errors.As(err, &dateErr))
	assert.True(t, errors.As(err, &roomErr))
	require.True(t, errors.As(err, &priceErr))
	assert.Equal(t, "50000", priceErr.Expected.String())
	assert.Equal(t, "101", roomErr.Number)
}

func TestValidate_NullFinalPriceSkipsPriceRule(t *testing.T) {
	now := time.Now()
	r := Reservation{RegisteredAt: now, CheckInDate: now, Nights: 2}
	assert.NoError(t, r.Validate(room("25000", RoomReserved)))
}

func TestValidate_AvailabilityRule(t *testing.T) {
	now := time.Now()
	r := Reservation{RegisteredAt: now, CheckInDate: now, Nights: 1}
	assert.NoError(t, r.Validate(room("1000", RoomAvailable)))
	assert.NoError(t, r.Validate(room("1000", RoomReserved)))

	for _, state := range []RoomState{RoomMaintenance, RoomOccupied} {
		var roomErr *RoomUnavailableError
		err := r.Validate(room("1000", state))
		require.True(t, errors.As(err, &roomErr), state)
		assert.Equal(t, state, roomErr.State)
	}
}

func TestValidateTerms_IgnoresRoomState(t *testing.T) {
	now := time.Now()
	r := Reservation{
		RegisteredAt: now,
		CheckInDate:  now,
		Nights:       1,
		FinalPrice:   decimal.NewNullDecimal(decimal.RequireFromString("1000")),
	}
	rm := room("1000", RoomOccupied)
	assert.Error(t, r.Validate(rm))
	assert.NoError(t, r.ValidateTerms(rm))
}

func TestRoomStateIsValid(t *testing.T) {
	assert.True(t, RoomOccupied.IsValid())
	assert.False(t, RoomState("en uso").IsValid())
}

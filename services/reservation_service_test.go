package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-server/models"
	"hostel-server/repository"
)

func TestCreate_PendingReservationReservesRoom(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "25000", models.RoomAvailable)
	client := f.client("12345678-9", "ana@example.cl")

	res, err := f.reservations.Create(f.ctx, 7, models.ReservationRequest{
		RoomID:      room.ID,
		ClientID:    &client.ID,
		Status:      models.ReservationPaid,
		CheckInDate: "2026-03-12",
		Nights:      3,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReservationPending, res.Status, "status is forced to pending")
	assert.Equal(t, models.OriginManual, res.Origin)
	assert.Equal(t, testNow, res.RegisteredAt)
	assert.Equal(t, time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC), res.CheckInDate)
	require.True(t, res.FinalPrice.Valid)
	assert.True(t, decimal.NewFromInt(75000).Equal(res.FinalPrice.Decimal))
	require.NotNil(t, res.WorkerID)
	assert.Equal(t, uint(7), *res.WorkerID)
	require.NotNil(t, res.Client)

	assert.Equal(t, models.RoomReserved, f.roomState(room.ID))
	assert.Equal(t, models.RoomReserved, f.publisher.last().State)
	assert.Equal(t, []uint{res.ID}, f.queue.queued)
}

func TestCreate_SameDayCheckInIsNotBeforeRegistration(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "10000", models.RoomAvailable)
	f.reservations.now = func() time.Time { return testNow.Add(8 * time.Hour) } // 17:00, past the check-in hour

	res, err := f.reservations.Create(f.ctx, 1, models.ReservationRequest{
		RoomID:      room.ID,
		CheckInDate: "2026-03-10",
		Nights:      1,
	})
	require.NoError(t, err)
	assert.False(t, res.CheckInDate.Before(res.RegisteredAt))
}

func TestCreate_RejectsPastCheckIn(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "10000", models.RoomAvailable)

	_, err := f.reservations.Create(f.ctx, 1, models.ReservationRequest{
		RoomID:      room.ID,
		CheckInDate: "2026-03-09",
		Nights:      1,
	})
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "check_in_in_past", rule.Code)

	list, err := f.reservations.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, models.RoomAvailable, f.roomState(room.ID))
}

func TestCreate_RejectsOccupiedRoom(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "10000", models.RoomOccupied)

	_, err := f.reservations.Create(f.ctx, 1, models.ReservationRequest{
		RoomID:      room.ID,
		CheckInDate: "2026-03-11",
		Nights:      1,
	})
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "room_occupied", rule.Code)
	assert.Equal(t, models.RoomOccupied, f.roomState(room.ID))
	assert.Empty(t, f.queue.queued)
}

func TestCreate_RejectsRoomUnderMaintenance(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "10000", models.RoomMaintenance)

	_, err := f.reservations.Create(f.ctx, 1, models.ReservationRequest{
		RoomID:      room.ID,
		CheckInDate: "2026-03-11",
		Nights:      1,
	})
	var unavailable *models.RoomUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, models.RoomMaintenance, unavailable.State)

	assert.Equal(t, models.RoomMaintenance, f.roomState(room.ID))
	list, err := f.reservations.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdate_RejectsMoveToRoomUnderMaintenance(t *testing.T) {
	f := newFixture(t)
	first := f.room("101", "20000", models.RoomAvailable)
	broken := f.room("102", "20000", models.RoomMaintenance)
	res := f.book(first, 1)

	req := request(res)
	req.RoomID = broken.ID
	_, err := f.reservations.Update(f.ctx, res.ID, req)
	var unavailable *models.RoomUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, models.RoomMaintenance, f.roomState(broken.ID))
	assert.Equal(t, models.RoomReserved, f.roomState(first.ID))
}

func TestCreate_ExplicitTimeEarlierTodayIsRejected(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "10000", models.RoomAvailable)

	_, err := f.reservations.Create(f.ctx, 1, models.ReservationRequest{
		RoomID:      room.ID,
		CheckInDate: "2026-03-10T08:00",
		Nights:      1,
	})
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "check_in_in_past", rule.Code)

	res, err := f.reservations.Create(f.ctx, 1, models.ReservationRequest{
		RoomID:      room.ID,
		CheckInDate: "2026-03-10T10:30",
		Nights:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC), res.CheckInDate)
}

func TestCreate_FieldErrors(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "10000", models.RoomAvailable)
	missing := uint(999)

	tests := []struct {
		name  string
		req   models.ReservationRequest
		field string
	}{
		{"unknown room", models.ReservationRequest{RoomID: 999, CheckInDate: "2026-03-11", Nights: 1}, "room_id"},
		{"unknown client", models.ReservationRequest{RoomID: room.ID, ClientID: &missing, CheckInDate: "2026-03-11", Nights: 1}, "client_id"},
		{"malformed date", models.ReservationRequest{RoomID: room.ID, CheckInDate: "11/03/2026", Nights: 1}, "check_in_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reservations.Create(f.ctx, 1, tt.req)
			var fields FieldErrors
			require.True(t, errors.As(err, &fields), "got %v", err)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestCreate_WithoutClientSkipsConfirmation(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "10000", models.RoomAvailable)

	res := f.book(room, 2)
	assert.Nil(t, res.ClientID)
	assert.Empty(t, f.queue.queued)
}

func TestUpdate_RecomputesOmittedFinalPrice(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 1)

	req := request(res)
	req.Nights = 4
	updated, err := f.reservations.Update(f.ctx, res.ID, req)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80000).Equal(updated.FinalPrice.Decimal))
	assert.True(t, updated.FinalPrice.Decimal.Equal(updated.TotalValue()))
}

func TestUpdate_RejectsMismatchedFinalPrice(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 2)

	req := request(res)
	wrong := decimal.NewFromInt(1000)
	req.FinalPrice = &wrong
	_, err := f.reservations.Update(f.ctx, res.ID, req)

	var mismatch *models.PriceMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.True(t, decimal.NewFromInt(40000).Equal(mismatch.Expected))

	stored, err := f.reservations.Get(f.ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40000).Equal(stored.FinalPrice.Decimal))
}

func TestUpdate_CancellationReleasesRoom(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 2)
	require.Equal(t, models.RoomReserved, f.roomState(room.ID))

	req := request(res)
	req.Status = models.ReservationCancelled
	updated, err := f.reservations.Update(f.ctx, res.ID, req)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationCancelled, updated.Status)
	assert.Equal(t, models.RoomAvailable, f.roomState(room.ID))
	assert.Equal(t, models.RoomAvailable, f.publisher.last().State)
}

func TestUpdate_MovingRoomsReleasesPreviousRoom(t *testing.T) {
	f := newFixture(t)
	first := f.room("101", "20000", models.RoomAvailable)
	second := f.room("102", "30000", models.RoomAvailable)
	res := f.book(first, 2)

	req := request(res)
	req.RoomID = second.ID
	updated, err := f.reservations.Update(f.ctx, res.ID, req)
	require.NoError(t, err)

	assert.Equal(t, second.ID, updated.RoomID)
	assert.True(t, decimal.NewFromInt(60000).Equal(updated.FinalPrice.Decimal))
	assert.Equal(t, models.RoomAvailable, f.roomState(first.ID))
	assert.Equal(t, models.RoomReserved, f.roomState(second.ID))
}

func TestUpdate_CheckInStaysBeforeRegistrationIsRejected(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 1)

	req := request(res)
	req.CheckInDate = "2026-03-01"
	_, err := f.reservations.Update(f.ctx, res.ID, req)

	var order *models.DateOrderError
	assert.True(t, errors.As(err, &order))
}

func TestUpdate_UnknownReservation(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	_, err := f.reservations.Update(f.ctx, 42, models.ReservationRequest{RoomID: room.ID, CheckInDate: "2026-03-11", Nights: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCancel_KeepsRoomHeldByAnotherPendingReservation(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	first := f.book(room, 1)
	f.book(room, 1)

	cancelled, err := f.reservations.Cancel(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.Equal(t, models.RoomReserved, f.roomState(room.ID))
}

func TestCancel_KeepsRoomHeldByPaidReservation(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	first := f.book(room, 1)
	second := f.book(room, 1)

	req := request(second)
	req.Status = models.ReservationPaid
	_, err := f.reservations.Update(f.ctx, second.ID, req)
	require.NoError(t, err)

	_, err = f.reservations.Cancel(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomReserved, f.roomState(room.ID))

	form, err := f.reservations.FormOptions(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, form.Rooms)
}

func TestCancel_RejectsFinalizedReservation(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 1)
	_, err := f.stays.CheckIn(f.ctx, res.ID, true, nil)
	require.NoError(t, err)
	_, err = f.stays.CheckOut(f.ctx, res.ID, true)
	require.NoError(t, err)

	_, err = f.reservations.Cancel(f.ctx, res.ID)
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "already_finalized", rule.Code)

	req := request(res)
	req.Status = models.ReservationCancelled
	_, err = f.reservations.Update(f.ctx, res.ID, req)
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "already_finalized", rule.Code)

	stored, err := f.reservations.Get(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationFinalized, stored.Status)
}

func TestCancel_Twice(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 1)

	_, err := f.reservations.Cancel(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, f.roomState(room.ID))

	_, err = f.reservations.Cancel(f.ctx, res.ID)
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "already_cancelled", rule.Code)
}

func TestFormOptions_OffersOnlyAvailableRooms(t *testing.T) {
	f := newFixture(t)
	free := f.room("101", "20000", models.RoomAvailable)
	f.room("102", "20000", models.RoomMaintenance)
	f.room("103", "20000", models.RoomOccupied)
	f.client("12345678-9", "ana@example.cl")

	form, err := f.reservations.FormOptions(f.ctx)
	require.NoError(t, err)
	require.Len(t, form.Rooms, 1)
	assert.Equal(t, free.ID, form.Rooms[0].ID)
	assert.Len(t, form.Clients, 1)
	assert.Len(t, form.Statuses, 4)
}

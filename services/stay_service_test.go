package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-server/models"
)

func TestCheckIn_OccupiesRoom(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 2)

	in, err := f.stays.CheckIn(f.ctx, res.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, models.QRScanned, in.QRScanned)
	assert.Nil(t, in.DocumentPhotoURL)
	assert.Equal(t, models.RoomOccupied, f.roomState(room.ID))
	assert.Equal(t, models.RoomOccupied, f.publisher.last().State)
}

func TestCheckIn_UploadsDocumentPhoto(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 1)

	in, err := f.stays.CheckIn(f.ctx, res.ID, false, strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	require.NotNil(t, in.DocumentPhotoURL)
	assert.Equal(t, f.media.url, *in.DocumentPhotoURL)
	assert.Len(t, f.media.uploads, 1)
	assert.Equal(t, models.QRNotScanned, in.QRScanned)
}

func TestCheckIn_Rejections(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)

	cancelled := f.book(room, 1)
	_, err := f.reservations.Cancel(f.ctx, cancelled.ID)
	require.NoError(t, err)

	_, err = f.stays.CheckIn(f.ctx, cancelled.ID, false, nil)
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "reservation_not_active", rule.Code)

	res := f.book(room, 1)
	_, err = f.stays.CheckIn(f.ctx, res.ID, false, nil)
	require.NoError(t, err)
	_, err = f.stays.CheckIn(f.ctx, res.ID, false, nil)
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "already_checked_in", rule.Code)
}

func TestCheckedInReservationCanStillBeEdited(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 2)
	_, err := f.stays.CheckIn(f.ctx, res.ID, true, nil)
	require.NoError(t, err)

	req := request(res)
	req.Status = models.ReservationPaid
	updated, err := f.reservations.Update(f.ctx, res.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPaid, updated.Status)
	assert.Equal(t, models.RoomOccupied, f.roomState(room.ID))

	req.Status = models.ReservationCancelled
	_, err = f.reservations.Update(f.ctx, res.ID, req)
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "stay_in_progress", rule.Code)
}

func TestCheckOut_FreesRoomAndFinalizes(t *testing.T) {
	f := newFixture(t)
	room := f.room("101", "20000", models.RoomAvailable)
	res := f.book(room, 2)

	_, err := f.stays.CheckOut(f.ctx, res.ID, false)
	var rule *RuleError
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "not_checked_in", rule.Code)

	_, err = f.stays.CheckIn(f.ctx, res.ID, true, nil)
	require.NoError(t, err)
	out, err := f.stays.CheckOut(f.ctx, res.ID, true)
	require.NoError(t, err)
	assert.Equal(t, res.ID, out.ReservationID)

	assert.Equal(t, models.RoomAvailable, f.roomState(room.ID))
	stored, err := f.reservations.Get(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationFinalized, stored.Status)

	_, err = f.stays.CheckOut(f.ctx, res.ID, true)
	require.True(t, errors.As(err, &rule))
	assert.Equal(t, "already_checked_out", rule.Code)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"hostel-server/models"
	"hostel-server/repository"
)

// MediaStore keeps uploaded document photos and returns their public URL.
type MediaStore interface {
	Upload(ctx context.Context, r io.Reader, subfolder, name string) (string, error)
}

// StayService records guest arrivals and departures
type StayService struct {
	store     repository.Store
	media     MediaStore
	publisher RoomPublisher
	now       func() time.Time
}

// NewStayService creates a new stay service. media and publisher may be nil.
func NewStayService(store repository.Store, media MediaStore, publisher RoomPublisher) *StayService {
	return &StayService{store: store, media: media, publisher: publisher, now: time.Now}
}

// CheckIn records the guest's arrival and marks the room occupied.
// photo, when given, is uploaded before the check-in is written.
func (s *StayService) CheckIn(ctx context.Context, reservationID uint, qrScanned bool, photo io.Reader) (*models.CheckIn, error) {
	var photoURL *string
	if photo != nil {
		if s.media == nil {
			return nil, FieldErrors{"document_photo": "Photo uploads are not configured."}
		}
		url, err := s.media.Upload(ctx, photo, fmt.Sprintf("reservation-%d", reservationID), "document")
		if err != nil {
			return nil, err
		}
		photoURL = &url
	}

	var in *models.CheckIn
	var room *models.Room
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !res.Status.Active() {
			return errNotActive
		}
		if _, err := tx.Stays().FindCheckIn(ctx, res.ID); err == nil {
			return errAlreadyCheckedIn
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		room, err = tx.Rooms().FindForUpdate(ctx, res.RoomID)
		if err != nil {
			return err
		}
		if !room.Bookable() {
			return errRoomNotReady
		}

		in = &models.CheckIn{
			ReservationID:    res.ID,
			At:               s.now(),
			QRScanned:        models.QRScanFrom(qrScanned),
			DocumentPhotoURL: photoURL,
		}
		if err := tx.Stays().CreateCheckIn(ctx, in); err != nil {
			return err
		}
		room.State = models.RoomOccupied
		return tx.Rooms().UpdateState(ctx, room.ID, models.RoomOccupied)
	})
	if err != nil {
		return nil, err
	}

	s.publish(*room)
	log.Info().Uint("reservation_id", reservationID).Str("room", room.Number).Msg("🧳 Guest checked in")
	return in, nil
}

// CheckOut records the departure, frees the room and finalizes the reservation.
func (s *StayService) CheckOut(ctx context.Context, reservationID uint, qrScanned bool) (*models.CheckOut, error) {
	var out *models.CheckOut
	var room *models.Room
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if _, err := tx.Stays().FindCheckIn(ctx, res.ID); errors.Is(err, repository.ErrNotFound) {
			return errNotCheckedIn
		} else if err != nil {
			return err
		}
		if _, err := tx.Stays().FindCheckOut(ctx, res.ID); err == nil {
			return errAlreadyCheckedOut
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		room, err = tx.Rooms().FindForUpdate(ctx, res.RoomID)
		if err != nil {
			return err
		}

		out = &models.CheckOut{
			ReservationID: res.ID,
			At:            s.now(),
			QRScanned:     models.QRScanFrom(qrScanned),
		}
		if err := tx.Stays().CreateCheckOut(ctx, out); err != nil {
			return err
		}

		res.Status = models.ReservationFinalized
		res.Room, res.Client, res.Worker = nil, nil, nil
		if err := tx.Reservations().Save(ctx, res); err != nil {
			return err
		}
		room.State = models.RoomAvailable
		return tx.Rooms().UpdateState(ctx, room.ID, models.RoomAvailable)
	})
	if err != nil {
		return nil, err
	}

	s.publish(*room)
	log.Info().Uint("reservation_id", reservationID).Str("room", room.Number).Msg("👋 Guest checked out")
	return out, nil
}

func (s *StayService) publish(room models.Room) {
	if s.publisher != nil {
		s.publisher.PublishRoom(room)
	}
}

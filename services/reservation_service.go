package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hostel-server/models"
	"hostel-server/repository"
)

// RoomPublisher announces room state changes to connected desk screens.
type RoomPublisher interface {
	PublishRoom(room models.Room)
}

// ConfirmationQueue schedules the confirmation e-mail for a new reservation.
type ConfirmationQueue interface {
	EnqueueConfirmation(ctx context.Context, res *models.Reservation) error
}

// ReservationConfig carries the collaborators and hostel settings.
type ReservationConfig struct {
	Location    *time.Location
	CheckInHour int
	Publisher   RoomPublisher
	Mail        ConfirmationQueue
}

// ReservationService creates and edits reservations and keeps room states in step.
type ReservationService struct {
	store       repository.Store
	loc         *time.Location
	checkInHour int
	publisher   RoomPublisher
	mail        ConfirmationQueue
	now         func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(store repository.Store, cfg ReservationConfig) *ReservationService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationService{
		store:       store,
		loc:         loc,
		checkInHour: cfg.CheckInHour,
		publisher:   cfg.Publisher,
		mail:        cfg.Mail,
		now:         time.Now,
	}
}

// ReservationForm lists the choices offered by the reservation form.
type ReservationForm struct {
	Rooms    []models.Room              `json:"rooms"`
	Clients  []models.Client            `json:"clients"`
	Origins  []models.ReservationOrigin `json:"origins"`
	Statuses []models.ReservationStatus `json:"statuses"`
}

// FormOptions returns the rooms currently available for booking and every client.
func (s *ReservationService) FormOptions(ctx context.Context) (*ReservationForm, error) {
	rooms, err := s.store.Rooms().ListByState(ctx, models.RoomAvailable)
	if err != nil {
		return nil, err
	}
	clients, err := s.store.Clients().List(ctx)
	if err != nil {
		return nil, err
	}
	return &ReservationForm{
		Rooms:    rooms,
		Clients:  clients,
		Origins:  []models.ReservationOrigin{models.OriginManual, models.OriginOtherPlatform},
		Statuses: []models.ReservationStatus{models.ReservationPending, models.ReservationPaid, models.ReservationCancelled, models.ReservationFinalized},
	}, nil
}

func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	return s.store.Reservations().List(ctx)
}

func (s *ReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.store.Reservations().FindByID(ctx, id)
}

// Create records a new pending reservation taken by workerID.
// The room row stays locked from the availability check until commit.
func (s *ReservationService) Create(ctx context.Context, workerID uint, req models.ReservationRequest) (*models.Reservation, error) {
	now := s.now().In(s.loc)
	checkIn, explicit, err := s.parseCheckIn(req.CheckInDate)
	if err != nil {
		return nil, err
	}
	if startOfDay(checkIn).Before(startOfDay(now)) {
		return nil, errCheckInPast
	}
	if explicit && checkIn.Before(now.Truncate(time.Minute)) {
		return nil, errCheckInPast
	}
	checkIn = clampToDay(checkIn, now)

	origin := req.Origin
	if origin == "" {
		origin = models.OriginManual
	}
	var worker *uint
	if workerID != 0 {
		worker = &workerID
	}

	var res *models.Reservation
	var changed []models.Room
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		room, err := lockRoom(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}
		if err := checkClient(ctx, tx, req.ClientID); err != nil {
			return err
		}
		if room.State == models.RoomOccupied {
			return errRoomOccupied
		}

		res = &models.Reservation{
			RoomID:       room.ID,
			Room:         room,
			ClientID:     req.ClientID,
			WorkerID:     worker,
			Origin:       origin,
			Status:       models.ReservationPending,
			RegisteredAt: now,
			Nights:       req.Nights,
			CheckInDate:  checkIn,
			FinalPrice:   decimal.NewNullDecimal(models.PriceFor(room, req.Nights)),
		}
		changed, err = s.save(ctx, tx, res, room, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(changed)
	full := s.reload(ctx, res)
	s.enqueueConfirmation(ctx, full)
	log.Info().
		Uint("reservation_id", res.ID).
		Uint("room_id", res.RoomID).
		Int("nights", res.Nights).
		Str("final_price", res.FinalPrice.Decimal.StringFixed(2)).
		Msg("🛏️ Reservation created")
	return full, nil
}

// Update edits a reservation. A missing final price is recomputed from the room and nights.
func (s *ReservationService) Update(ctx context.Context, id uint, req models.ReservationRequest) (*models.Reservation, error) {
	checkIn, _, err := s.parseCheckIn(req.CheckInDate)
	if err != nil {
		return nil, err
	}

	var res *models.Reservation
	var changed []models.Room
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		res, err = tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return err
		}
		prevRoomID, prevStatus := res.RoomID, res.Status

		room, err := lockRoom(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}
		if err := checkClient(ctx, tx, req.ClientID); err != nil {
			return err
		}
		inStay, err := stayInProgress(ctx, tx, res.ID)
		if err != nil {
			return err
		}

		status := req.Status
		if status == "" {
			status = res.Status
		}
		if inStay && room.ID != prevRoomID {
			return errRoomChangeInStay
		}
		if inStay && status == models.ReservationCancelled {
			return errStayInProgress
		}
		if prevStatus == models.ReservationFinalized && status == models.ReservationCancelled {
			return errAlreadyFinalized
		}

		res.RoomID = room.ID
		res.Room = room
		res.ClientID = req.ClientID
		res.Client = nil
		if req.Origin != "" {
			res.Origin = req.Origin
		}
		res.Status = status
		res.Nights = req.Nights
		res.CheckInDate = clampToDay(checkIn, res.RegisteredAt)
		if req.FinalPrice != nil {
			res.FinalPrice = decimal.NewNullDecimal(*req.FinalPrice)
		} else {
			res.FinalPrice = decimal.NewNullDecimal(models.PriceFor(room, req.Nights))
		}

		// A cancellation or the guest's own stay must not trip the availability rule.
		checkRoom := status != models.ReservationCancelled && !inStay
		changed, err = s.save(ctx, tx, res, room, checkRoom)
		if err != nil {
			return err
		}

		if status == models.ReservationCancelled && prevStatus != models.ReservationCancelled {
			released, err := releaseRoom(ctx, tx, room, res.ID)
			if err != nil {
				return err
			}
			changed = append(changed, released...)
		}
		if room.ID != prevRoomID && prevStatus.Active() {
			prev, err := lockRoom(ctx, tx, prevRoomID)
			if err != nil {
				return err
			}
			released, err := releaseRoom(ctx, tx, prev, res.ID)
			if err != nil {
				return err
			}
			changed = append(changed, released...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(changed)
	log.Info().Uint("reservation_id", res.ID).Str("status", string(res.Status)).Msg("✏️ Reservation updated")
	return s.reload(ctx, res), nil
}

// Cancel marks the reservation cancelled and frees its room.
func (s *ReservationService) Cancel(ctx context.Context, id uint) (*models.Reservation, error) {
	var res *models.Reservation
	var changed []models.Room
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		res, err = tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return err
		}
		switch res.Status {
		case models.ReservationCancelled:
			return errAlreadyCancelled
		case models.ReservationFinalized:
			return errAlreadyFinalized
		}
		inStay, err := stayInProgress(ctx, tx, res.ID)
		if err != nil {
			return err
		}
		if inStay {
			return errStayInProgress
		}

		room, err := tx.Rooms().FindForUpdate(ctx, res.RoomID)
		if err != nil {
			return err
		}
		res.Status = models.ReservationCancelled
		res.Room = room
		if _, err := s.save(ctx, tx, res, room, false); err != nil {
			return err
		}
		changed, err = releaseRoom(ctx, tx, room, res.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(changed)
	log.Info().Uint("reservation_id", res.ID).Msg("🚫 Reservation cancelled")
	return s.reload(ctx, res), nil
}

// save validates and persists res, then marks the room reserved while the
// reservation is pending. It returns the rooms whose state changed.
func (s *ReservationService) save(ctx context.Context, tx repository.Store, res *models.Reservation, room *models.Room, checkRoom bool) ([]models.Room, error) {
	var err error
	if checkRoom {
		err = res.Validate(room)
	} else {
		err = res.ValidateTerms(room)
	}
	if err != nil {
		return nil, err
	}

	if res.ID == 0 {
		err = tx.Reservations().Create(ctx, res)
	} else {
		err = tx.Reservations().Save(ctx, res)
	}
	if err != nil {
		return nil, err
	}

	if res.Status != models.ReservationPending || room.State == models.RoomReserved || room.State == models.RoomOccupied {
		return nil, nil
	}
	if err := tx.Rooms().UpdateState(ctx, room.ID, models.RoomReserved); err != nil {
		return nil, err
	}
	room.State = models.RoomReserved
	return []models.Room{*room}, nil
}

// releaseRoom makes a reserved room available again unless another pending
// or paid reservation still holds it.
func releaseRoom(ctx context.Context, tx repository.Store, room *models.Room, reservationID uint) ([]models.Room, error) {
	if room.State != models.RoomReserved {
		return nil, nil
	}
	held, err := tx.Reservations().HasActiveForRoom(ctx, room.ID, reservationID)
	if err != nil || held {
		return nil, err
	}
	if err := tx.Rooms().UpdateState(ctx, room.ID, models.RoomAvailable); err != nil {
		return nil, err
	}
	room.State = models.RoomAvailable
	return []models.Room{*room}, nil
}

func lockRoom(ctx context.Context, tx repository.Store, id uint) (*models.Room, error) {
	room, err := tx.Rooms().FindForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, FieldErrors{"room_id": "Select a valid room."}
	}
	return room, err
}

func checkClient(ctx context.Context, tx repository.Store, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := tx.Clients().FindByID(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return FieldErrors{"client_id": "Select a valid client."}
	}
	return err
}

// stayInProgress reports whether the guest has checked in and not yet out.
func stayInProgress(ctx context.Context, tx repository.Store, reservationID uint) (bool, error) {
	_, err := tx.Stays().FindCheckIn(ctx, reservationID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, err = tx.Stays().FindCheckOut(ctx, reservationID)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	return false, err
}

func (s *ReservationService) reload(ctx context.Context, res *models.Reservation) *models.Reservation {
	full, err := s.store.Reservations().FindByID(ctx, res.ID)
	if err != nil {
		log.Warn().Err(err).Uint("reservation_id", res.ID).Msg("⚠️ Could not reload reservation")
		return res
	}
	return full
}

func (s *ReservationService) publish(rooms []models.Room) {
	if s.publisher == nil {
		return
	}
	for _, room := range rooms {
		s.publisher.PublishRoom(room)
	}
}

func (s *ReservationService) enqueueConfirmation(ctx context.Context, res *models.Reservation) {
	if s.mail == nil || res.Client == nil || res.Client.Email == "" {
		return
	}
	if err := s.mail.EnqueueConfirmation(ctx, res); err != nil {
		log.Error().Err(err).Uint("reservation_id", res.ID).Msg("❌ Failed to queue confirmation e-mail")
	}
}

// Local layouts accepted for the check-in field besides RFC 3339.
// Date-only values are placed at the hostel's check-in hour; explicit
// reports whether the caller supplied the time of day.
var (
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"}
	dateLayout   = "2006-01-02"
)

func (s *ReservationService) parseCheckIn(raw string) (checkIn time.Time, explicit bool, err error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(s.loc), true, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return t, true, nil
		}
	}
	if d, err := time.ParseInLocation(dateLayout, raw, s.loc); err == nil {
		return d.Add(time.Duration(s.checkInHour) * time.Hour), false, nil
	}
	return time.Time{}, false, FieldErrors{"check_in_date": "Enter a valid date (YYYY-MM-DD)."}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// clampToDay moves a check-in on floor's calendar day but before floor up to floor,
// so a same-day booking never precedes its own registration.
func clampToDay(checkIn, floor time.Time) time.Time {
	floor = floor.In(checkIn.Location())
	if startOfDay(checkIn).Equal(startOfDay(floor)) && checkIn.Before(floor) {
		return floor
	}
	return checkIn
}

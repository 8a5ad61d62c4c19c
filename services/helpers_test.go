package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hostel-server/models"
	"hostel-server/repository"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu    sync.Mutex
	rooms []models.Room
}

func (p *recordingPublisher) PublishRoom(room models.Room) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rooms = append(p.rooms, room)
}

func (p *recordingPublisher) last() models.Room {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rooms[len(p.rooms)-1]
}

type recordingQueue struct {
	queued []uint
	err    error
}

func (q *recordingQueue) EnqueueConfirmation(_ context.Context, res *models.Reservation) error {
	q.queued = append(q.queued, res.ID)
	return q.err
}

type fakeMedia struct {
	uploads []string
	url     string
}

func (m *fakeMedia) Upload(_ context.Context, r io.Reader, subfolder, name string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.uploads = append(m.uploads, subfolder+"/"+name)
	return m.url, nil
}

type fixture struct {
	t            *testing.T
	ctx          context.Context
	store        *repository.MemoryStore
	publisher    *recordingPublisher
	queue        *recordingQueue
	reservations *ReservationService
	stays        *StayService
	media        *fakeMedia
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	queue := &recordingQueue{}
	media := &fakeMedia{url: "https://res.cloudinary.com/demo/document.jpg"}

	reservations := NewReservationService(store, ReservationConfig{
		Location:    time.UTC,
		CheckInHour: 14,
		Publisher:   pub,
		Mail:        queue,
	})
	reservations.now = func() time.Time { return testNow }

	stays := NewStayService(store, media, pub)
	stays.now = func() time.Time { return testNow.Add(5 * time.Hour) }

	return &fixture{
		t:            t,
		ctx:          context.Background(),
		store:        store,
		publisher:    pub,
		queue:        queue,
		reservations: reservations,
		stays:        stays,
		media:        media,
	}
}

func (f *fixture) room(number, price string, state models.RoomState) *models.Room {
	f.t.Helper()
	r := &models.Room{Number: number, Price: decimal.RequireFromString(price), State: state}
	require.NoError(f.t, f.store.Rooms().Create(f.ctx, r))
	return r
}

func (f *fixture) client(rut, email string) *models.Client {
	f.t.Helper()
	c := &models.Client{RUT: rut, FirstName: "Ana", LastName: "Rojas", Email: email, Phone: "+56912345678"}
	require.NoError(f.t, f.store.Clients().Create(f.ctx, c))
	return c
}

func (f *fixture) roomState(id uint) models.RoomState {
	f.t.Helper()
	r, err := f.store.Rooms().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return r.State
}

// book creates a pending reservation for tomorrow.
func (f *fixture) book(room *models.Room, nights int) *models.Reservation {
	f.t.Helper()
	res, err := f.reservations.Create(f.ctx, 1, models.ReservationRequest{
		RoomID:      room.ID,
		CheckInDate: "2026-03-11",
		Nights:      nights,
	})
	require.NoError(f.t, err)
	return res
}

func request(res *models.Reservation) models.ReservationRequest {
	return models.ReservationRequest{
		RoomID:      res.RoomID,
		ClientID:    res.ClientID,
		Origin:      res.Origin,
		Status:      res.Status,
		CheckInDate: res.CheckInDate.Format(time.RFC3339),
		Nights:      res.Nights,
	}
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"hostel-server/models"
)

// memoryData is the full state of a MemoryStore. Values are stored without
// their associations; reads attach fresh copies.
type memoryData struct {
	rooms        map[uint]models.Room
	clients      map[uint]models.Client
	workers      map[uint]models.Worker
	reservations map[uint]models.Reservation
	checkIns     map[uint]models.CheckIn
	checkOuts    map[uint]models.CheckOut
	lastID       uint
}

func newMemoryData() *memoryData {
	return &memoryData{
		rooms:        map[uint]models.Room{},
		clients:      map[uint]models.Client{},
		workers:      map[uint]models.Worker{},
		reservations: map[uint]models.Reservation{},
		checkIns:     map[uint]models.CheckIn{},
		checkOuts:    map[uint]models.CheckOut{},
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for k, v := range d.rooms {
		c.rooms[k] = v
	}
	for k, v := range d.clients {
		c.clients[k] = v
	}
	for k, v := range d.workers {
		c.workers[k] = v
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	for k, v := range d.checkIns {
		c.checkIns[k] = v
	}
	for k, v := range d.checkOuts {
		c.checkOuts[k] = v
	}
	c.lastID = d.lastID
	return c
}

func (d *memoryData) nextID() uint {
	d.lastID++
	return d.lastID
}

// MemoryStore is a Store kept in process memory. Transactions are serialized
// and rolled back by restoring a snapshot. It backs STORE_DRIVER=memory and
// the service tests.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemoryData()}
}

func (s *MemoryStore) Rooms() RoomRepository               { return memRooms{s} }
func (s *MemoryStore) Clients() ClientRepository           { return memClients{s} }
func (s *MemoryStore) Workers() WorkerRepository           { return memWorkers{s} }
func (s *MemoryStore) Reservations() ReservationRepository { return memReservations{s} }
func (s *MemoryStore) Stays() StayRepository               { return memStays{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// with runs fn holding the store lock unless a transaction already holds it.
func (s *MemoryStore) with(fn func(d *memoryData) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type memRooms struct{ s *MemoryStore }

func (r memRooms) List(ctx context.Context) ([]models.Room, error) {
	return r.ListByState(ctx, "")
}

func (r memRooms) ListByState(_ context.Context, state models.RoomState) ([]models.Room, error) {
	var out []models.Room
	_ = r.s.with(func(d *memoryData) error {
		for _, room := range d.rooms {
			if state == "" || room.State == state {
				out = append(out, room)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r memRooms) FindByID(_ context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.s.with(func(d *memoryData) error {
		found, ok := d.rooms[id]
		if !ok {
			return ErrNotFound
		}
		room = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r memRooms) FindForUpdate(ctx context.Context, id uint) (*models.Room, error) {
	return r.FindByID(ctx, id)
}

func (r memRooms) Create(_ context.Context, room *models.Room) error {
	return r.s.with(func(d *memoryData) error {
		if err := d.checkRoomNumber(room); err != nil {
			return err
		}
		room.ID = d.nextID()
		if room.State == "" {
			room.State = models.RoomAvailable
		}
		stamp(&room.CreatedAt, &room.UpdatedAt)
		d.rooms[room.ID] = *room
		return nil
	})
}

func (r memRooms) Save(_ context.Context, room *models.Room) error {
	return r.s.with(func(d *memoryData) error {
		if _, ok := d.rooms[room.ID]; !ok {
			return ErrNotFound
		}
		if err := d.checkRoomNumber(room); err != nil {
			return err
		}
		stamp(&room.CreatedAt, &room.UpdatedAt)
		d.rooms[room.ID] = *room
		return nil
	})
}

func (r memRooms) UpdateState(_ context.Context, id uint, state models.RoomState) error {
	return r.s.with(func(d *memoryData) error {
		room, ok := d.rooms[id]
		if !ok {
			return ErrNotFound
		}
		room.State = state
		room.UpdatedAt = time.Now()
		d.rooms[id] = room
		return nil
	})
}

func (d *memoryData) checkRoomNumber(room *models.Room) error {
	for id, other := range d.rooms {
		if id != room.ID && other.Number == room.Number {
			return &DuplicateError{Field: "number"}
		}
	}
	return nil
}

type memClients struct{ s *MemoryStore }

func (r memClients) List(context.Context) ([]models.Client, error) {
	var out []models.Client
	_ = r.s.with(func(d *memoryData) error {
		for _, c := range d.clients {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (r memClients) FindByID(_ context.Context, id uint) (*models.Client, error) {
	var c models.Client
	err := r.s.with(func(d *memoryData) error {
		found, ok := d.clients[id]
		if !ok {
			return ErrNotFound
		}
		c = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r memClients) FindByEmail(_ context.Context, email string) (*models.Client, error) {
	var c *models.Client
	_ = r.s.with(func(d *memoryData) error {
		for _, found := range d.clients {
			if found.Email == email {
				found := found
				c = &found
				return nil
			}
		}
		return nil
	})
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r memClients) Create(_ context.Context, c *models.Client) error {
	return r.s.with(func(d *memoryData) error {
		if err := d.checkClient(c); err != nil {
			return err
		}
		_ = c.BeforeCreate(nil)
		c.ID = d.nextID()
		stamp(&c.CreatedAt, &c.UpdatedAt)
		d.clients[c.ID] = *c
		return nil
	})
}

func (r memClients) Save(_ context.Context, c *models.Client) error {
	return r.s.with(func(d *memoryData) error {
		if _, ok := d.clients[c.ID]; !ok {
			return ErrNotFound
		}
		if err := d.checkClient(c); err != nil {
			return err
		}
		stamp(&c.CreatedAt, &c.UpdatedAt)
		d.clients[c.ID] = *c
		return nil
	})
}

func (d *memoryData) checkClient(c *models.Client) error {
	for id, other := range d.clients {
		if id == c.ID {
			continue
		}
		if other.RUT == c.RUT {
			return &DuplicateError{Field: "rut"}
		}
		if other.Email == c.Email {
			return &DuplicateError{Field: "email"}
		}
	}
	return nil
}

type memWorkers struct{ s *MemoryStore }

func (r memWorkers) FindByID(_ context.Context, id uint) (*models.Worker, error) {
	var w models.Worker
	err := r.s.with(func(d *memoryData) error {
		found, ok := d.workers[id]
		if !ok {
			return ErrNotFound
		}
		w = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r memWorkers) FindByRUT(_ context.Context, rut string) (*models.Worker, error) {
	var w *models.Worker
	_ = r.s.with(func(d *memoryData) error {
		for _, found := range d.workers {
			if found.RUT == rut {
				found := found
				w = &found
				return nil
			}
		}
		return nil
	})
	if w == nil {
		return nil, ErrNotFound
	}
	return w, nil
}

func (r memWorkers) Create(_ context.Context, w *models.Worker) error {
	return r.s.with(func(d *memoryData) error {
		for _, other := range d.workers {
			if other.RUT == w.RUT {
				return &DuplicateError{Field: "rut"}
			}
		}
		w.ID = d.nextID()
		stamp(&w.CreatedAt, &w.UpdatedAt)
		d.workers[w.ID] = *w
		return nil
	})
}

func (r memWorkers) Save(_ context.Context, w *models.Worker) error {
	return r.s.with(func(d *memoryData) error {
		if _, ok := d.workers[w.ID]; !ok {
			return ErrNotFound
		}
		stamp(&w.CreatedAt, &w.UpdatedAt)
		d.workers[w.ID] = *w
		return nil
	})
}

type memReservations struct{ s *MemoryStore }

// load attaches copies of the room, client and worker, like gorm's Preload.
func (d *memoryData) load(res models.Reservation) models.Reservation {
	res.ClientID = copyUint(res.ClientID)
	res.WorkerID = copyUint(res.WorkerID)
	res.Room, res.Client, res.Worker = nil, nil, nil
	if room, ok := d.rooms[res.RoomID]; ok {
		res.Room = &room
	}
	if res.ClientID != nil {
		if c, ok := d.clients[*res.ClientID]; ok {
			res.Client = &c
		}
	}
	if res.WorkerID != nil {
		if w, ok := d.workers[*res.WorkerID]; ok {
			res.Worker = &w
		}
	}
	return res
}

func (r memReservations) List(context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	_ = r.s.with(func(d *memoryData) error {
		for _, res := range d.reservations {
			out = append(out, d.load(res))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.After(out[j].RegisteredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r memReservations) FindByID(_ context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := r.s.with(func(d *memoryData) error {
		found, ok := d.reservations[id]
		if !ok {
			return ErrNotFound
		}
		res = d.load(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r memReservations) Create(_ context.Context, res *models.Reservation) error {
	return r.s.with(func(d *memoryData) error {
		res.ID = d.nextID()
		stamp(&res.CreatedAt, &res.UpdatedAt)
		d.reservations[res.ID] = stripped(res)
		return nil
	})
}

func (r memReservations) Save(_ context.Context, res *models.Reservation) error {
	return r.s.with(func(d *memoryData) error {
		if _, ok := d.reservations[res.ID]; !ok {
			return ErrNotFound
		}
		stamp(&res.CreatedAt, &res.UpdatedAt)
		d.reservations[res.ID] = stripped(res)
		return nil
	})
}

func (r memReservations) HasActiveForRoom(_ context.Context, roomID, excludeID uint) (bool, error) {
	found := false
	_ = r.s.with(func(d *memoryData) error {
		for id, res := range d.reservations {
			if id != excludeID && res.RoomID == roomID && res.Status.Active() {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, nil
}

func stripped(res *models.Reservation) models.Reservation {
	out := *res
	out.Room, out.Client, out.Worker = nil, nil, nil
	out.ClientID = copyUint(res.ClientID)
	out.WorkerID = copyUint(res.WorkerID)
	return out
}

type memStays struct{ s *MemoryStore }

func (r memStays) FindCheckIn(_ context.Context, reservationID uint) (*models.CheckIn, error) {
	var in *models.CheckIn
	_ = r.s.with(func(d *memoryData) error {
		for _, found := range d.checkIns {
			if found.ReservationID == reservationID {
				found := found
				in = &found
			}
		}
		return nil
	})
	if in == nil {
		return nil, ErrNotFound
	}
	return in, nil
}

func (r memStays) FindCheckOut(_ context.Context, reservationID uint) (*models.CheckOut, error) {
	var out *models.CheckOut
	_ = r.s.with(func(d *memoryData) error {
		for _, found := range d.checkOuts {
			if found.ReservationID == reservationID {
				found := found
				out = &found
			}
		}
		return nil
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r memStays) CreateCheckIn(_ context.Context, in *models.CheckIn) error {
	return r.s.with(func(d *memoryData) error {
		for _, other := range d.checkIns {
			if other.ReservationID == in.ReservationID {
				return &DuplicateError{Field: "reservation_id"}
			}
		}
		in.ID = d.nextID()
		in.CreatedAt = time.Now()
		stored := *in
		stored.Reservation = nil
		d.checkIns[in.ID] = stored
		return nil
	})
}

func (r memStays) CreateCheckOut(_ context.Context, out *models.CheckOut) error {
	return r.s.with(func(d *memoryData) error {
		for _, other := range d.checkOuts {
			if other.ReservationID == out.ReservationID {
				return &DuplicateError{Field: "reservation_id"}
			}
		}
		out.ID = d.nextID()
		out.CreatedAt = time.Now()
		stored := *out
		stored.Reservation = nil
		d.checkOuts[out.ID] = stored
		return nil
	})
}

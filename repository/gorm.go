package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-server/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// constraintFields maps unique index names to the form field they guard.
var constraintFields = map[string]string{
	"uq_rooms_number":           "number",
	"uq_clients_rut":            "rut",
	"uq_clients_email":          "email",
	"uq_workers_rut":            "rut",
	"uq_check_ins_reservation":  "reservation_id",
	"uq_check_outs_reservation": "reservation_id",
}

// translate maps driver errors onto the package's error values.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ConstraintName
		}
		return &DuplicateError{Field: field}
	}
	return err
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns a Store backed by db.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Rooms() RoomRepository               { return &gormRooms{db: s.db} }
func (s *gormStore) Clients() ClientRepository           { return &gormClients{db: s.db} }
func (s *gormStore) Workers() WorkerRepository           { return &gormWorkers{db: s.db} }
func (s *gormStore) Reservations() ReservationRepository { return &gormReservations{db: s.db} }
func (s *gormStore) Stays() StayRepository               { return &gormStays{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type gormRooms struct{ db *gorm.DB }

func (r *gormRooms) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).Order("number").Find(&rooms).Error
	return rooms, translate(err)
}

func (r *gormRooms) ListByState(ctx context.Context, state models.RoomState) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).Where("state = ?", state).Order("number").Find(&rooms).Error
	return rooms, translate(err)
}

func (r *gormRooms) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *gormRooms) FindForUpdate(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *gormRooms) Create(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error)
}

func (r *gormRooms) Save(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Save(room).Error)
}

func (r *gormRooms) UpdateState(ctx context.Context, id uint, state models.RoomState) error {
	res := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Update("state", state)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormClients struct{ db *gorm.DB }

func (r *gormClients) List(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.WithContext(ctx).Order("last_name, first_name").Find(&clients).Error
	return clients, translate(err)
}

func (r *gormClients) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormClients) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormClients) Create(ctx context.Context, c *models.Client) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormClients) Save(ctx context.Context, c *models.Client) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

type gormWorkers struct{ db *gorm.DB }

func (r *gormWorkers) FindByID(ctx context.Context, id uint) (*models.Worker, error) {
	var w models.Worker
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *gormWorkers) FindByRUT(ctx context.Context, rut string) (*models.Worker, error) {
	var w models.Worker
	if err := r.db.WithContext(ctx).Where("rut = ?", rut).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *gormWorkers) Create(ctx context.Context, w *models.Worker) error {
	return translate(r.db.WithContext(ctx).Create(w).Error)
}

func (r *gormWorkers) Save(ctx context.Context, w *models.Worker) error {
	return translate(r.db.WithContext(ctx).Save(w).Error)
}

type gormReservations struct{ db *gorm.DB }

func (r *gormReservations) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Room").Preload("Client").Preload("Worker")
}

func (r *gormReservations) List(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.preloaded(ctx).Order("registered_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

func (r *gormReservations) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.preloaded(ctx).First(&res, id).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

// Associations are written by their own repositories, never through a reservation.
func (r *gormReservations) Create(ctx context.Context, res *models.Reservation) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(res).Error)
}

func (r *gormReservations) Save(ctx context.Context, res *models.Reservation) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(res).Error)
}

func (r *gormReservations) HasActiveForRoom(ctx context.Context, roomID, excludeID uint) (bool, error) {
	var count int64
	active := []models.ReservationStatus{models.ReservationPending, models.ReservationPaid}
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("room_id = ? AND status IN ? AND id <> ?", roomID, active, excludeID).
		Count(&count).Error
	return count > 0, translate(err)
}

type gormStays struct{ db *gorm.DB }

func (r *gormStays) FindCheckIn(ctx context.Context, reservationID uint) (*models.CheckIn, error) {
	var in models.CheckIn
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&in).Error; err != nil {
		return nil, translate(err)
	}
	return &in, nil
}

func (r *gormStays) FindCheckOut(ctx context.Context, reservationID uint) (*models.CheckOut, error) {
	var out models.CheckOut
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *gormStays) CreateCheckIn(ctx context.Context, in *models.CheckIn) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(in).Error)
}

func (r *gormStays) CreateCheckOut(ctx context.Context, out *models.CheckOut) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(out).Error)
}

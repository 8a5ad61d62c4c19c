// Package repository holds the persistence interfaces used by the services
// and their gorm and in-memory implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"hostel-server/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("a record with this %s already exists", e.Field)
}

type RoomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	ListByState(ctx context.Context, state models.RoomState) ([]models.Room, error)
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	// FindForUpdate loads the room and, inside a transaction, locks its row until commit.
	FindForUpdate(ctx context.Context, id uint) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Save(ctx context.Context, room *models.Room) error
	UpdateState(ctx context.Context, id uint, state models.RoomState) error
}

type ClientRepository interface {
	List(ctx context.Context) ([]models.Client, error)
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Save(ctx context.Context, client *models.Client) error
}

type WorkerRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Worker, error)
	FindByRUT(ctx context.Context, rut string) (*models.Worker, error)
	Create(ctx context.Context, worker *models.Worker) error
	Save(ctx context.Context, worker *models.Worker) error
}

type ReservationRepository interface {
	// List returns every reservation with its room, client and worker, newest first.
	List(ctx context.Context) ([]models.Reservation, error)
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	Create(ctx context.Context, r *models.Reservation) error
	Save(ctx context.Context, r *models.Reservation) error
	// HasActiveForRoom reports whether a pending or paid reservation other than excludeID holds the room.
	HasActiveForRoom(ctx context.Context, roomID, excludeID uint) (bool, error)
}

type StayRepository interface {
	FindCheckIn(ctx context.Context, reservationID uint) (*models.CheckIn, error)
	FindCheckOut(ctx context.Context, reservationID uint) (*models.CheckOut, error)
	CreateCheckIn(ctx context.Context, in *models.CheckIn) error
	CreateCheckOut(ctx context.Context, out *models.CheckOut) error
}

// Store groups the repositories and runs units of work atomically.
type Store interface {
	Rooms() RoomRepository
	Clients() ClientRepository
	Workers() WorkerRepository
	Reservations() ReservationRepository
	Stays() StayRepository

	// Transaction runs fn against a transactional view of the store.
	// Any error returned by fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

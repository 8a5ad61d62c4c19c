package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReservationOrigin records where a reservation was taken
type ReservationOrigin string

const (
	OriginManual        ReservationOrigin = "manual"
	OriginOtherPlatform ReservationOrigin = "other_platform"
)

// ReservationStatus represents the lifecycle status of a reservation
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationPaid      ReservationStatus = "paid"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationFinalized ReservationStatus = "finalized"
)

// Active reports whether the guest may still check in under this status.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationPaid
}

// Reservation represents a booking of one room for a number of nights
type Reservation struct {
	ID           uint                `json:"id" gorm:"primaryKey"`
	RoomID       uint                `json:"room_id" gorm:"not null;index"`
	Room         *Room               `json:"room,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	ClientID     *uint               `json:"client_id" gorm:"index"`
	Client       *Client             `json:"client,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL"`
	WorkerID     *uint               `json:"worker_id" gorm:"index"`
	Worker       *Worker             `json:"worker,omitempty" gorm:"foreignKey:WorkerID;constraint:OnDelete:SET NULL"`
	Origin       ReservationOrigin   `json:"origin" gorm:"type:varchar(20);not null;default:'manual'"`
	Status       ReservationStatus   `json:"status" gorm:"type:varchar(15);not null;default:'pending'"`
	RegisteredAt time.Time           `json:"registered_at" gorm:"not null"`
	Nights       int                 `json:"nights" gorm:"not null;default:1;check:chk_reservations_nights,nights >= 1"`
	CheckInDate  time.Time           `json:"check_in_date" gorm:"not null"`
	FinalPrice   decimal.NullDecimal `json:"final_price" gorm:"type:decimal(10,2)"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (Reservation) TableName() string { return "reservations" }

// PriceFor returns room price times nights, or zero when either is missing.
func PriceFor(room *Room, nights int) decimal.Decimal {
	if room == nil || nights <= 0 {
		return decimal.Zero
	}
	return room.Price.Mul(decimal.NewFromInt(int64(nights)))
}

// TotalValue is the derived amount for the stay.
func (r *Reservation) TotalValue() decimal.Decimal {
	return PriceFor(r.Room, r.Nights)
}

// Validate runs every reservation rule against room, the room the reservation points at.
// It returns nil or a ValidationErrors holding each failed rule.
func (r *Reservation) Validate(room *Room) error {
	errs := r.termErrors(room)
	if room != nil && !room.Bookable() {
		errs = append(errs, &RoomUnavailableError{Number: room.Number, State: room.State})
	}
	return errs.orNil()
}

// ValidateTerms checks the date and price rules only. It is used when the
// room's state is expected to disagree, such as a cancellation or a room
// already occupied by this reservation's own stay.
func (r *Reservation) ValidateTerms(room *Room) error {
	return r.termErrors(room).orNil()
}

func (r *Reservation) termErrors(room *Room) ValidationErrors {
	var errs ValidationErrors
	if r.CheckInDate.Before(r.RegisteredAt) {
		errs = append(errs, &DateOrderError{CheckIn: r.CheckInDate, RegisteredAt: r.RegisteredAt})
	}
	if r.FinalPrice.Valid && room != nil {
		expected := PriceFor(room, r.Nights)
		if !r.FinalPrice.Decimal.Equal(expected) {
			errs = append(errs, &PriceMismatchError{Expected: expected, Got: r.FinalPrice.Decimal})
		}
	}
	return errs
}

// ReservationRequest represents the reservation form, used for both create and edit
type ReservationRequest struct {
	RoomID      uint              `json:"room_id" form:"room_id" validate:"required"`
	ClientID    *uint             `json:"client_id" form:"client_id"`
	Origin      ReservationOrigin `json:"origin" form:"origin" validate:"omitempty,oneof=manual other_platform"`
	Status      ReservationStatus `json:"status" form:"status" validate:"omitempty,oneof=pending paid cancelled finalized"`
	CheckInDate string            `json:"check_in_date" form:"check_in_date" validate:"required"`
	Nights      int               `json:"nights" form:"nights" validate:"required,min=1"`
	FinalPrice  *decimal.Decimal  `json:"final_price" form:"final_price"`
}

// DateOrderError reports a check-in date earlier than the registration time
type DateOrderError struct {
	CheckIn      time.Time
	RegisteredAt time.Time
}

func (e *DateOrderError) Error() string {
	return "the check-in date cannot be earlier than the registration date"
}

func (e *DateOrderError) Code() string { return "date_order" }

// RoomUnavailableError reports a room that cannot take the reservation
type RoomUnavailableError struct {
	Number string
	State  RoomState
}

func (e *RoomUnavailableError) Error() string {
	return fmt.Sprintf("room %s is not available (state: %s)", e.Number, e.State)
}

func (e *RoomUnavailableError) Code() string { return "room_unavailable" }

// PriceMismatchError reports a final price that differs from price times nights
type PriceMismatchError struct {
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("the final price must equal the room price times the nights (%s, got %s)",
		e.Expected.StringFixed(2), e.Got.StringFixed(2))
}

func (e *PriceMismatchError) Code() string { return "price_mismatch" }

// ValidationErrors collects every failed reservation rule
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error { return v }

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

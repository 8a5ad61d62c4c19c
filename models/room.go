package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoomState represents the occupancy state of a room
type RoomState string

const (
	RoomAvailable   RoomState = "available"
	RoomReserved    RoomState = "reserved"
	RoomMaintenance RoomState = "maintenance"
	RoomOccupied    RoomState = "occupied"
)

// RoomStates lists every state in display order.
var RoomStates = []RoomState{RoomAvailable, RoomReserved, RoomMaintenance, RoomOccupied}

// IsValid reports whether s is a known room state.
func (s RoomState) IsValid() bool {
	for _, known := range RoomStates {
		if s == known {
			return true
		}
	}
	return false
}

// Room represents a rentable hostel room
type Room struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Number    string          `json:"number" gorm:"type:varchar(10);not null;uniqueIndex:uq_rooms_number"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	State     RoomState       `json:"state" gorm:"type:varchar(15);not null;default:'available'"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }

// Bookable reports whether a reservation may be attached to the room.
func (r *Room) Bookable() bool {
	return r.State == RoomAvailable || r.State == RoomReserved
}

// RoomRequest represents the request structure for creating or editing a room
type RoomRequest struct {
	Number string          `json:"number" form:"number" validate:"required,max=10"`
	Price  decimal.Decimal `json:"price" form:"price" validate:"gte=0"`
	State  RoomState       `json:"state" form:"state" validate:"omitempty,oneof=available reserved maintenance occupied"`
}

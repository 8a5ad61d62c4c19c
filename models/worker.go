package models

import (
	"strings"
	"time"
)

// Worker represents a staff member who can log in and record reservations
type Worker struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	RUT                string    `json:"rut" gorm:"column:rut;type:varchar(12);not null;uniqueIndex:uq_workers_rut"`
	FirstName          string    `json:"first_name" gorm:"type:varchar(50);not null"`
	LastName           string    `json:"last_name" gorm:"type:varchar(50);not null"`
	Email              *string   `json:"email,omitempty" gorm:"type:varchar(100)"`
	PasswordHash       string    `json:"-" gorm:"type:varchar(100);not null"`
	MustChangePassword bool      `json:"must_change_password" gorm:"not null;default:true"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Worker) TableName() string { return "workers" }

// DisplayName returns the name shown in the session banner.
func (w *Worker) DisplayName() string {
	return strings.TrimSpace(w.FirstName + " " + w.LastName)
}

// LoginRequest represents the login form
type LoginRequest struct {
	RUT      string `json:"rut" form:"rut" validate:"required,max=12"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ChangePasswordRequest represents the password change form
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Client represents a hostel guest
type Client struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RUT          string    `json:"rut" gorm:"column:rut;type:varchar(12);not null;uniqueIndex:uq_clients_rut"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(50);not null"`
	LastName     string    `json:"last_name" gorm:"type:varchar(50);not null"`
	Email        string    `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:uq_clients_email"`
	Phone        string    `json:"phone" gorm:"type:varchar(12);not null"`
	RegisteredAt time.Time `json:"registered_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// BeforeCreate stamps the registration time when the caller left it empty
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.RegisteredAt.IsZero() {
		c.RegisteredAt = time.Now()
	}
	return nil
}

// FullName returns "first last".
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ClientRequest represents the request structure for registering or editing a client
type ClientRequest struct {
	RUT       string `json:"rut" form:"rut" validate:"required,max=12,rut"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=50,personname"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=50,personname"`
	Email     string `json:"email" form:"email" validate:"required,max=100,email"`
	Phone     string `json:"phone" form:"phone" validate:"required,clphone"`
}

// Normalize trims surrounding whitespace and lowercases the e-mail.
func (r *ClientRequest) Normalize() {
	r.RUT = strings.ToUpper(strings.TrimSpace(r.RUT))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

// Apply copies the request fields onto c.
func (r *ClientRequest) Apply(c *Client) {
	c.RUT = r.RUT
	c.FirstName = r.FirstName
	c.LastName = r.LastName
	c.Email = r.Email
	c.Phone = r.Phone
}

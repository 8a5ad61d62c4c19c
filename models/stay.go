package models

import "time"

// QRScan records whether the reservation QR code was scanned at the desk
type QRScan string

const (
	QRScanned    QRScan = "yes"
	QRNotScanned QRScan = "no"
)

// QRScanFrom converts a form flag to a QRScan.
func QRScanFrom(scanned bool) QRScan {
	if scanned {
		return QRScanned
	}
	return QRNotScanned
}

// CheckIn records a guest's arrival for a reservation
type CheckIn struct {
	ID               uint         `json:"id" gorm:"primaryKey"`
	ReservationID    uint         `json:"reservation_id" gorm:"not null;uniqueIndex:uq_check_ins_reservation"`
	Reservation      *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	At               time.Time    `json:"at" gorm:"column:checked_in_at;not null"`
	QRScanned        QRScan       `json:"qr_scanned" gorm:"type:varchar(3);not null;default:'no'"`
	DocumentPhotoURL *string      `json:"document_photo_url,omitempty" gorm:"type:varchar(500)"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (CheckIn) TableName() string { return "check_ins" }

// CheckOut records a guest's departure for a reservation
type CheckOut struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	ReservationID uint         `json:"reservation_id" gorm:"not null;uniqueIndex:uq_check_outs_reservation"`
	Reservation   *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	At            time.Time    `json:"at" gorm:"column:checked_out_at;not null"`
	QRScanned     QRScan       `json:"qr_scanned" gorm:"type:varchar(3);not null;default:'no'"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (CheckOut) TableName() string { return "check_outs" }

// StayRequest represents the check-in and check-out forms
type StayRequest struct {
	QRScanned bool `json:"qr_scanned" form:"qr_scanned"`
}

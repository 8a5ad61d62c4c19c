package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-server/models"
)

func TestRenderVoucher(t *testing.T) {
	room := &models.Room{Number: "101", Price: decimal.NewFromInt(25000)}
	res := &models.Reservation{
		ID:           12,
		Room:         room,
		Client:       &models.Client{FirstName: "José", LastName: "Ñuñez", RUT: "12345678-9"},
		Status:       models.ReservationPending,
		RegisteredAt: time.Now(),
		CheckInDate:  time.Now().Add(24 * time.Hour),
		Nights:       2,
		FinalPrice:   decimal.NewNullDecimal(decimal.NewFromInt(50000)),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderVoucher(&buf, res, "Hostal Los Andes"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

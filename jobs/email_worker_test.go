package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-server/models"
	"hostel-server/repository"
)

type sentMail struct {
	to, subject, body string
	attachment        *Attachment
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(to, subject, body string, attachment *Attachment) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to, subject, body, attachment})
	return nil
}

func seedReservation(t *testing.T, store *repository.MemoryStore, email string) *models.Reservation {
	t.Helper()
	ctx := context.Background()
	room := &models.Room{Number: "101", Price: decimal.NewFromInt(20000)}
	require.NoError(t, store.Rooms().Create(ctx, room))
	client := &models.Client{RUT: "12345678-9", FirstName: "Ana", LastName: "Rojas", Email: email}
	require.NoError(t, store.Clients().Create(ctx, client))
	now := time.Now()
	res := &models.Reservation{
		RoomID:       room.ID,
		ClientID:     &client.ID,
		Status:       models.ReservationPending,
		RegisteredAt: now,
		CheckInDate:  now.Add(24 * time.Hour),
		Nights:       2,
		FinalPrice:   decimal.NewNullDecimal(decimal.NewFromInt(40000)),
	}
	require.NoError(t, store.Reservations().Create(ctx, res))
	return res
}

func payload(t *testing.T, id uint) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(ConfirmationPayload{ReservationID: id})
	require.NoError(t, err)
	return data
}

func TestHandle_SendsVoucher(t *testing.T) {
	store := repository.NewMemoryStore()
	res := seedReservation(t, store, "ana@example.cl")
	sender := &fakeSender{}
	w := NewConfirmationWorker(nil, store, sender, "Hostal Los Andes")

	require.NoError(t, w.Handle(context.Background(), payload(t, res.ID)))
	require.Len(t, sender.sent, 1)

	mail := sender.sent[0]
	assert.Equal(t, "ana@example.cl", mail.to)
	assert.Contains(t, mail.subject, "Hostal Los Andes")
	assert.Contains(t, mail.body, "Room: 101")
	assert.Contains(t, mail.body, "Total: $40000")
	require.NotNil(t, mail.attachment)
	assert.Equal(t, "application/pdf", mail.attachment.ContentType)
	assert.Equal(t, []byte("%PDF-"), mail.attachment.Data[:5])
}

func TestHandle_SkipsMissingReservation(t *testing.T) {
	sender := &fakeSender{}
	w := NewConfirmationWorker(nil, repository.NewMemoryStore(), sender, "Hostal")
	assert.NoError(t, w.Handle(context.Background(), payload(t, 99)))
	assert.Empty(t, sender.sent)
}

func TestHandle_ReturnsSenderErrorsForRetry(t *testing.T) {
	store := repository.NewMemoryStore()
	res := seedReservation(t, store, "ana@example.cl")
	w := NewConfirmationWorker(nil, store, &fakeSender{err: errors.New("smtp down")}, "Hostal")
	assert.Error(t, w.Handle(context.Background(), payload(t, res.ID)))
}

func TestProcess_LogsFailedRequeue(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repository.NewMemoryStore()
	res := seedReservation(t, store, "ana@example.cl")
	w := NewConfirmationWorker(rdb, store, &fakeSender{err: errors.New("smtp down")}, "Hostal")

	raw, err := json.Marshal(Job{Payload: payload(t, res.ID)})
	require.NoError(t, err)
	w.process(context.Background(), string(raw))

	assert.Contains(t, buf.String(), "failed to requeue job")
}

type countingSweeper struct{ calls atomic.Int32 }

func (c *countingSweeper) Sweep() int {
	c.calls.Add(1)
	return 0
}

func TestSweepJob_RunsUntilStopped(t *testing.T) {
	sweeper := &countingSweeper{}
	job := NewSweepJob(sweeper, 5*time.Millisecond)
	job.Start()
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	job.Stop()
}

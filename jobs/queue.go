package jobs

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"hostel-server/models"
)

const (
	QueueConfirmations = "hostel:jobs:confirmations"
	DLQPrefix          = "hostel:dlq:"
	maxAttempts        = 3
)

// Job is the envelope pushed onto a Redis list.
type Job struct {
	Type     string          `json:"type"`
	Attempts int             `json:"attempts"`
	Payload  json.RawMessage `json:"payload"`
}

// ConfirmationPayload identifies the reservation whose confirmation must be sent.
type ConfirmationPayload struct {
	ReservationID uint   `json:"reservation_id"`
	ToEmail       string `json:"to_email"`
}

// Dispatcher enqueues jobs into Redis lists. Workers pop them with BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueConfirmation queues the confirmation e-mail for res.
func (d *Dispatcher) EnqueueConfirmation(ctx context.Context, res *models.Reservation) error {
	payload := ConfirmationPayload{ReservationID: res.ID}
	if res.Client != nil {
		payload.ToEmail = res.Client.Email
	}
	return d.enqueue(ctx, QueueConfirmations, Job{Type: "confirmation"}, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, job Job, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job.Payload = data
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hostel-server/models"
	"hostel-server/repository"
	"hostel-server/services"
)

// ConfirmationWorker sends reservation confirmations with the PDF voucher attached.
type ConfirmationWorker struct {
	rdb        *redis.Client
	store      repository.Store
	sender     Sender
	hostelName string
}

func NewConfirmationWorker(rdb *redis.Client, store repository.Store, sender Sender, hostelName string) *ConfirmationWorker {
	return &ConfirmationWorker{rdb: rdb, store: store, sender: sender, hostelName: hostelName}
}

// Start launches n goroutines consuming the confirmation queue until ctx is done.
func (w *ConfirmationWorker) Start(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go w.run(ctx, i)
	}
	log.Info().Int("workers", n).Msg("🚀 Confirmation e-mail workers started")
}

func (w *ConfirmationWorker) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("🛑 Confirmation worker stopped")
			return
		default:
		}

		// Blocking pop; wakes up every 5s to check ctx.
		result, err := w.rdb.BRPop(ctx, 5*time.Second, QueueConfirmations).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Msg("confirmation worker: BRPOP failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		w.process(ctx, result[1])
	}
}

func (w *ConfirmationWorker) process(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("confirmation worker: invalid job")
		return
	}
	err := w.Handle(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		w.deadLetter(ctx, job, err)
		return
	}
	log.Warn().Err(err).Int("attempts", job.Attempts).Msg("confirmation worker: requeueing job")
	data, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Msg("confirmation worker: failed to encode job")
		return
	}
	if err := w.rdb.LPush(ctx, QueueConfirmations, data).Err(); err != nil {
		log.Error().Err(err).Int("attempts", job.Attempts).Msg("confirmation worker: failed to requeue job")
	}
}

func (w *ConfirmationWorker) deadLetter(ctx context.Context, job Job, reason error) {
	entry, _ := json.Marshal(map[string]interface{}{
		"job":       job,
		"reason":    reason.Error(),
		"failed_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err := w.rdb.LPush(ctx, DLQPrefix+QueueConfirmations, entry).Err(); err != nil {
		log.Error().Err(err).Msg("dlq: failed to push entry")
		return
	}
	log.Warn().Str("reason", reason.Error()).Int("attempts", job.Attempts).Msg("dlq: confirmation moved to dead letter queue")
}

// Handle sends one confirmation. A reservation that no longer exists, or has no
// e-mail to send to, is skipped without error.
func (w *ConfirmationWorker) Handle(ctx context.Context, raw json.RawMessage) error {
	var payload ConfirmationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("confirmation worker: invalid payload")
		return nil
	}

	res, err := w.store.Reservations().FindByID(ctx, payload.ReservationID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn().Uint("reservation_id", payload.ReservationID).Msg("confirmation worker: reservation is gone, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	to := payload.ToEmail
	if res.Client != nil && res.Client.Email != "" {
		to = res.Client.Email
	}
	if to == "" {
		log.Warn().Uint("reservation_id", res.ID).Msg("confirmation worker: no e-mail address, skipping")
		return nil
	}

	var pdf bytes.Buffer
	if err := services.RenderVoucher(&pdf, res, w.hostelName); err != nil {
		return err
	}

	subject, body := confirmationText(res, w.hostelName)
	attachment := &Attachment{
		Name:        fmt.Sprintf("reservation-%d.pdf", res.ID),
		ContentType: "application/pdf",
		Data:        pdf.Bytes(),
	}
	if err := w.sender.Send(to, subject, body, attachment); err != nil {
		return fmt.Errorf("send confirmation %d: %w", res.ID, err)
	}
	log.Info().Uint("reservation_id", res.ID).Str("to", to).Msg("📧 Confirmation e-mail sent")
	return nil
}

func confirmationText(res *models.Reservation, hostelName string) (subject, body string) {
	subject = fmt.Sprintf("%s: reservation #%d confirmed", hostelName, res.ID)

	guest := "guest"
	if res.Client != nil {
		guest = res.Client.FullName()
	}
	room := "-"
	if res.Room != nil {
		room = res.Room.Number
	}
	total := res.TotalValue()
	if res.FinalPrice.Valid {
		total = res.FinalPrice.Decimal
	}

	body = fmt.Sprintf(
		"Hello %s,\n\nYour reservation at %s is registered.\n\nRoom: %s\nCheck-in: %s\nNights: %d\nTotal: $%s\n\nThe voucher is attached. Please show it at check-in.\n",
		guest, hostelName, room, res.CheckInDate.Format("02/01/2006 15:04"), res.Nights, total.StringFixed(0),
	)
	return subject, body
}

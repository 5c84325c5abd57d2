package worker

// email_worker.go
// Processes email jobs from QueueEmail: appointment notifications, document
// sends and digests. All SMTP traffic goes through the circuit breaker so a
// downed relay fails fast instead of blocking the pool.

import (
	"context"
	"encoding/json"

	"github.com/badkluster/taller-backend-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

type EmailWorker struct {
	mailer infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends one queued email. A returned error makes the pool requeue the
// job (or move it to the DLQ once retries are exhausted).
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var msg infra.Mensaje
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload — dropping")
		return nil // malformed payloads never succeed, don't retry
	}
	if msg.To == "" {
		log.Warn().Msg("email_worker: empty recipient — skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.mailer.Send(msg)
	})
	if err != nil {
		log.Error().Err(err).Str("to", msg.To).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email_worker: email sent")
	return nil
}

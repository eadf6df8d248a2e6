// Package worker forwards accepted submissions from the broker to the
// Google Sheets mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"precos/internal/amqp"
	"precos/internal/core"
	"precos/internal/log"
)

// ObservationMirror is the outbound side of the worker. Implemented by
// mirror/google.Client.
type ObservationMirror interface {
	AppendObservations(ctx context.Context, rows []core.PriceObservation) error
}

// MirrorWorker handles ObservationsRecorded messages. A failed append is
// returned to the broker for redelivery; the ledger itself is never touched
// here.
type MirrorWorker struct {
	mirror ObservationMirror
}

func NewMirrorWorker(mirror ObservationMirror) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// HandleRecorded processes one accepted-submission event.
func (w *MirrorWorker) HandleRecorded(ctx context.Context, msg *amqp.ObservationsRecordedMessage) error {
	rows, err := msg.Observations()
	if err != nil {
		// Malformed payloads cannot succeed on redelivery either; the
		// caller nacks without requeue on this error class.
		return fmt.Errorf("decode observations: %w", err)
	}
	if len(rows) == 0 {
		slog.WarnContext(ctx, "Recorded message carried no rows",
			log.FieldComponent, log.ComponentMirror, "submitter", msg.Submitter)
		return nil
	}

	if err := w.mirror.AppendObservations(ctx, rows); err != nil {
		return fmt.Errorf("mirror observations: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored accepted submission",
		log.FieldComponent, log.ComponentMirror,
		"submitter", msg.Submitter, "rows", len(rows))
	return nil
}

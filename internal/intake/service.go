// Package intake gates raw price submissions into the ledger: authorization,
// validation, zero-price filtering and the append itself.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"precos/internal/amqp"
	"precos/internal/authz"
	"precos/internal/core"
	"precos/internal/ledger"
	"precos/internal/log"
)

// Outcome is the terminal result of one submission. Rejections and the
// nothing-to-save case are outcomes, not errors; only infrastructure
// failures surface as errors.
type Outcome string

const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeInvalidCode     Outcome = "invalid_code"
	OutcomeMissingLocation Outcome = "missing_location"
	OutcomeUnauthorized    Outcome = "unauthorized"
	OutcomeNothingToSave   Outcome = "nothing_to_save"
)

// Result reports what happened to a submission. Saved is the number of
// ledger rows written; Submitter is the resolved identity on acceptance.
type Result struct {
	Outcome   Outcome
	Submitter string
	Saved     int
}

// EventPublisher announces accepted submissions. Publishing is best-effort:
// a publish failure never fails the submission.
type EventPublisher interface {
	PublishObservationsRecorded(ctx context.Context, msg *amqp.ObservationsRecordedMessage) error
}

// Service validates submission batches and appends accepted rows to the
// ledger. publisher may be nil when no broker is configured.
type Service struct {
	registry  authz.Registry
	store     ledger.Store
	publisher EventPublisher
}

func NewService(registry authz.Registry, store ledger.Store, publisher EventPublisher) *Service {
	return &Service{
		registry:  registry,
		store:     store,
		publisher: publisher,
	}
}

// Submit applies the validation rules in order, fails fast on the first
// violation, and on success appends every positive-priced entry to the
// ledger as one atomic batch.
//
// combination is the basket variant the entries were collected for; entry
// order is preserved into the ledger rows.
func (s *Service) Submit(ctx context.Context, batch core.SubmissionBatch, combination core.Combination) (Result, error) {
	code := strings.TrimSpace(batch.Code)
	if len([]rune(code)) != core.CodeLength {
		return Result{Outcome: OutcomeInvalidCode}, nil
	}

	location := strings.TrimSpace(batch.Location)
	if location == "" {
		return Result{Outcome: OutcomeMissingLocation}, nil
	}

	fullName, ok := s.registry.Resolve(ctx, code)
	if !ok {
		slog.WarnContext(ctx, "Submission with unauthorized code rejected",
			log.FieldComponent, log.ComponentIntake,
			"combination", combination.Label())
		return Result{Outcome: OutcomeUnauthorized}, nil
	}

	var rows []core.PriceObservation
	for _, entry := range batch.Entries {
		if entry.UnitPrice.Cents <= 0 {
			// Zero means "not filled in"; dropped silently.
			continue
		}
		rows = append(rows, core.PriceObservation{
			Submitter:   fullName,
			Combination: combination,
			Category:    entry.Category,
			Item:        entry.Item,
			UnitPrice:   entry.UnitPrice,
			ObservedAt:  batch.ObservedAt,
			Location:    location,
		})
	}

	if len(rows) == 0 {
		return Result{Outcome: OutcomeNothingToSave, Submitter: fullName}, nil
	}

	if err := s.store.Append(ctx, rows); err != nil {
		return Result{}, fmt.Errorf("append to ledger: %w", err)
	}

	slog.InfoContext(ctx, "Submission accepted",
		log.FieldComponent, log.ComponentIntake,
		"submitter", fullName,
		"combination", combination.Label(),
		"rows", len(rows),
		"location", location)

	s.publishRecorded(ctx, rows)

	return Result{Outcome: OutcomeAccepted, Submitter: fullName, Saved: len(rows)}, nil
}

func (s *Service) publishRecorded(ctx context.Context, rows []core.PriceObservation) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewObservationsRecordedMessage(rows)
	if err := s.publisher.PublishObservationsRecorded(ctx, msg); err != nil {
		// The rows are already durable; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish observations recorded message",
			log.FieldComponent, log.ComponentIntake,
			"error", err, "rows", len(rows))
	}
}

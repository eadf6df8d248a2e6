package intake

import (
	"context"
	"errors"
	"testing"

	"precos/internal/amqp"
	"precos/internal/authz"
	"precos/internal/core"
	"precos/internal/ledger/memory"
)

const mariaCode = "123456789012345"

var adultoPequeno = core.Combination{AgeClass: "Adulto", SizeClass: "Pequeno"}

func testRegistry() authz.Registry {
	return authz.NewStaticRegistry(map[string]string{mariaCode: "Maria Silva"})
}

func batch(code, location string, prices map[string]int64) core.SubmissionBatch {
	b := core.SubmissionBatch{
		Code:       code,
		ObservedAt: core.NewDate(2024, 1, 1),
		Location:   location,
	}
	// Fixed entry order, mirroring catalog iteration order.
	for _, item := range []string{"Ração", "Areia"} {
		cents, ok := prices[item]
		if !ok {
			continue
		}
		category := "Alimentação"
		if item == "Areia" {
			category = "Higiene"
		}
		b.Entries = append(b.Entries, core.SubmissionEntry{
			Category:  category,
			Item:      item,
			UnitPrice: core.Money{Cents: cents},
		})
	}
	return b
}

func TestSubmitRejectsInvalidCode(t *testing.T) {
	store := memory.New()
	svc := NewService(testRegistry(), store, nil)

	for _, code := range []string{"", "short", "1234567890123456", "  12345678901234  "} {
		res, err := svc.Submit(context.Background(), batch(code, "Loja X", map[string]int64{"Ração": 1550}), adultoPequeno)
		if err != nil {
			t.Fatalf("Submit(%q): %v", code, err)
		}
		if res.Outcome != OutcomeInvalidCode {
			t.Errorf("Submit(%q) outcome = %s, want %s", code, res.Outcome, OutcomeInvalidCode)
		}
	}
	if store.Len() != 0 {
		t.Error("rejected submissions must not touch the ledger")
	}
}

func TestSubmitTrimsCodeBeforeLengthCheck(t *testing.T) {
	svc := NewService(testRegistry(), memory.New(), nil)
	res, err := svc.Submit(context.Background(),
		batch("  "+mariaCode+"  ", "Loja X", map[string]int64{"Ração": 1550}), adultoPequeno)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeAccepted {
		t.Errorf("outcome = %s, want %s (code should be trimmed before the length check)", res.Outcome, OutcomeAccepted)
	}
}

func TestSubmitRejectsMissingLocation(t *testing.T) {
	store := memory.New()
	svc := NewService(testRegistry(), store, nil)

	for _, loc := range []string{"", "   "} {
		res, err := svc.Submit(context.Background(), batch(mariaCode, loc, map[string]int64{"Ração": 1550}), adultoPequeno)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if res.Outcome != OutcomeMissingLocation {
			t.Errorf("Submit(location=%q) outcome = %s, want %s", loc, res.Outcome, OutcomeMissingLocation)
		}
	}
	if store.Len() != 0 {
		t.Error("rejected submissions must not touch the ledger")
	}
}

func TestSubmitRejectsUnauthorizedCode(t *testing.T) {
	store := memory.New()
	svc := NewService(testRegistry(), store, nil)

	res, err := svc.Submit(context.Background(),
		batch("999999999999999", "Loja X", map[string]int64{"Ração": 1550, "Areia": 900}), adultoPequeno)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeUnauthorized {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeUnauthorized)
	}
	if store.Len() != 0 {
		t.Error("unauthorized submissions must write no rows, regardless of prices supplied")
	}
}

func TestSubmitDropsZeroPricesAndSavesRest(t *testing.T) {
	store := memory.New()
	svc := NewService(testRegistry(), store, nil)
	ctx := context.Background()

	res, err := svc.Submit(ctx, batch(mariaCode, "Loja X", map[string]int64{"Ração": 1550, "Areia": 0}), adultoPequeno)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeAccepted {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeAccepted)
	}
	if res.Saved != 1 {
		t.Errorf("Saved = %d, want 1", res.Saved)
	}
	if res.Submitter != "Maria Silva" {
		t.Errorf("Submitter = %q, want Maria Silva", res.Submitter)
	}

	rows, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ledger has %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Submitter != "Maria Silva" ||
		row.Category != "Alimentação" ||
		row.Item != "Ração" ||
		row.UnitPrice.Cents != 1550 ||
		row.ObservedAt.String() != "2024-01-01" ||
		row.Location != "Loja X" ||
		row.Combination != adultoPequeno {
		t.Errorf("unexpected ledger row: %+v", row)
	}
}

func TestSubmitAllZeroPricesIsNothingToSave(t *testing.T) {
	store := memory.New()
	svc := NewService(testRegistry(), store, nil)

	res, err := svc.Submit(context.Background(),
		batch(mariaCode, "Loja X", map[string]int64{"Ração": 0, "Areia": 0}), adultoPequeno)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeNothingToSave {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeNothingToSave)
	}
	if store.Len() != 0 {
		t.Error("nothing-to-save must not write rows")
	}
}

func TestSubmitPreservesEntryOrder(t *testing.T) {
	store := memory.New()
	svc := NewService(testRegistry(), store, nil)
	ctx := context.Background()

	res, err := svc.Submit(ctx, batch(mariaCode, "Loja X", map[string]int64{"Ração": 1550, "Areia": 900}), adultoPequeno)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Saved != 2 {
		t.Fatalf("Saved = %d, want 2", res.Saved)
	}
	rows, _ := store.Load(ctx)
	if rows[0].Item != "Ração" || rows[1].Item != "Areia" {
		t.Errorf("batch order not preserved: got %q then %q", rows[0].Item, rows[1].Item)
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context) ([]core.PriceObservation, error) { return nil, nil }
func (failingStore) Append(context.Context, []core.PriceObservation) error {
	return errors.New("disk full")
}

func TestSubmitSurfacesPersistFailure(t *testing.T) {
	svc := NewService(testRegistry(), failingStore{}, nil)

	_, err := svc.Submit(context.Background(),
		batch(mariaCode, "Loja X", map[string]int64{"Ração": 1550}), adultoPequeno)
	if err == nil {
		t.Fatal("a ledger persist failure must surface as an error")
	}
}

type recordingPublisher struct {
	messages []*amqp.ObservationsRecordedMessage
	fail     bool
}

func (p *recordingPublisher) PublishObservationsRecorded(_ context.Context, msg *amqp.ObservationsRecordedMessage) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestSubmitPublishesEventOnAcceptance(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(testRegistry(), memory.New(), pub)

	if _, err := svc.Submit(context.Background(),
		batch(mariaCode, "Loja X", map[string]int64{"Ração": 1550}), adultoPequeno); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(pub.messages) != 1 || pub.messages[0].Count != 1 {
		t.Errorf("expected one recorded event with one row, got %+v", pub.messages)
	}
}

func TestSubmitSucceedsWhenPublishFails(t *testing.T) {
	store := memory.New()
	svc := NewService(testRegistry(), store, &recordingPublisher{fail: true})

	res, err := svc.Submit(context.Background(),
		batch(mariaCode, "Loja X", map[string]int64{"Ração": 1550}), adultoPequeno)
	if err != nil {
		t.Fatalf("Submit should not fail on publish error: %v", err)
	}
	if res.Outcome != OutcomeAccepted || store.Len() != 1 {
		t.Errorf("rows must stay durable despite a publish failure, got %+v", res)
	}
}

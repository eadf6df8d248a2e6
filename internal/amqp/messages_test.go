package amqp

import (
	"testing"

	"precos/internal/core"
)

func TestObservationsRecordedMessageRoundTrip(t *testing.T) {
	rows := []core.PriceObservation{{
		Submitter:   "Maria Silva",
		Combination: core.Combination{AgeClass: "Adulto", SizeClass: "Pequeno"},
		Category:    "Alimentação",
		Item:        "Ração",
		UnitPrice:   core.Money{Cents: 1550},
		ObservedAt:  core.NewDate(2024, 1, 1),
		Location:    "Loja X",
	}}

	msg := NewObservationsRecordedMessage(rows)
	if msg.Count != 1 || msg.Submitter != "Maria Silva" {
		t.Fatalf("message header = (%d, %q), want (1, Maria Silva)", msg.Count, msg.Submitter)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	decoded, err := ObservationsRecordedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	got, err := decoded.Observations()
	if err != nil {
		t.Fatalf("Observations: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Observations returned %d rows, want 1", len(got))
	}
	if got[0].Item != "Ração" || got[0].UnitPrice.Cents != 1550 || got[0].ObservedAt.String() != "2024-01-01" {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestObservationsRejectsBadDate(t *testing.T) {
	msg := &ObservationsRecordedMessage{Rows: []ObservationRow{{ObservedOn: "not-a-date"}}}
	if _, err := msg.Observations(); err == nil {
		t.Error("Observations should reject a malformed date")
	}
}

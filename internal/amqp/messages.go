package amqp

import (
	"encoding/json"
	"time"

	"precos/internal/core"
)

// ObservationRow is the wire form of a ledger row carried inside an event.
type ObservationRow struct {
	Submitter  string `json:"submitter"`
	SizeClass  string `json:"size_class"`
	AgeClass   string `json:"age_class"`
	Category   string `json:"category"`
	Item       string `json:"item"`
	PriceCents int64  `json:"price_cents"`
	ObservedOn string `json:"observed_on"`
	Location   string `json:"location"`
}

// ObservationsRecordedMessage announces an accepted submission. It carries
// the full rows so consumers (the sheets mirror) need no access to the
// ledger backend.
type ObservationsRecordedMessage struct {
	Submitter string           `json:"submitter"`
	Count     int              `json:"count"`
	Rows      []ObservationRow `json:"rows"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewObservationsRecordedMessage(rows []core.PriceObservation) *ObservationsRecordedMessage {
	msg := &ObservationsRecordedMessage{
		Count:     len(rows),
		Rows:      make([]ObservationRow, 0, len(rows)),
		Timestamp: time.Now(),
	}
	for _, o := range rows {
		msg.Submitter = o.Submitter
		msg.Rows = append(msg.Rows, ObservationRow{
			Submitter:  o.Submitter,
			SizeClass:  o.Combination.SizeClass,
			AgeClass:   o.Combination.AgeClass,
			Category:   o.Category,
			Item:       o.Item,
			PriceCents: o.UnitPrice.Cents,
			ObservedOn: o.ObservedAt.String(),
			Location:   o.Location,
		})
	}
	return msg
}

// Observations rebuilds the domain rows from the wire form.
func (m *ObservationsRecordedMessage) Observations() ([]core.PriceObservation, error) {
	out := make([]core.PriceObservation, 0, len(m.Rows))
	for _, r := range m.Rows {
		date, err := core.ParseDate(r.ObservedOn)
		if err != nil {
			return nil, err
		}
		out = append(out, core.PriceObservation{
			Submitter:   r.Submitter,
			Combination: core.Combination{SizeClass: r.SizeClass, AgeClass: r.AgeClass},
			Category:    r.Category,
			Item:        r.Item,
			UnitPrice:   core.Money{Cents: r.PriceCents},
			ObservedAt:  date,
			Location:    r.Location,
		})
	}
	return out, nil
}

func (m *ObservationsRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ObservationsRecordedMessageFromJSON(data []byte) (*ObservationsRecordedMessage, error) {
	var msg ObservationsRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

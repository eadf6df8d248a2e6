package core

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// CodeLength is the exact length of a volunteer authorization code.
const CodeLength = 15

type (
	Date struct {
		time.Time
	}

	// Money holds a price in centavos.
	Money struct {
		Cents int64
	}

	// Combination is the composite key selecting a basket variant.
	Combination struct {
		AgeClass  string
		SizeClass string
	}

	// CatalogEntry is one required item of a basket variant. Immutable after load.
	CatalogEntry struct {
		Combination Combination
		Category    string
		Item        string
		Description string
	}

	// AuthorizationRecord maps a volunteer code to a display identity.
	AuthorizationRecord struct {
		Code     string
		FullName string
	}

	// PriceObservation is a single ledger row. Rows are never edited or
	// removed once written; UnitPrice is strictly positive for persisted rows.
	PriceObservation struct {
		Submitter   string
		Combination Combination
		Category    string
		Item        string
		UnitPrice   Money
		ObservedAt  Date
		Location    string
	}

	// SubmissionEntry is one priced item of a submission. A zero price means
	// the volunteer did not observe the item.
	SubmissionEntry struct {
		Category  string
		Item      string
		UnitPrice Money
	}

	// SubmissionBatch is the transient form payload for one basket variant.
	SubmissionBatch struct {
		Code       string
		ObservedAt Date
		Location   string
		Entries    []SubmissionEntry
	}
)

var (
	ErrInvalidCode     = errors.New("authorization code must be exactly 15 characters")
	ErrMissingLocation = errors.New("consultation location is required")
	ErrNegativePrice   = errors.New("negative price")
	ErrInvalidDate     = errors.New("invalid date")
)

// NewDate creates a date-only value in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the YYYY-MM-DD wire format used by the ledger file.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the YYYY-MM-DD wire format.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Matches reports whether the combination matches the given classifier
// values, ignoring case.
func (c Combination) Matches(ageClass, sizeClass string) bool {
	return strings.EqualFold(c.AgeClass, ageClass) && strings.EqualFold(c.SizeClass, sizeClass)
}

// Normalized returns the combination with both classifiers capitalized
// (first letter upper, remainder lower), the canonical display form.
func (c Combination) Normalized() Combination {
	return Combination{
		AgeClass:  Capitalize(c.AgeClass),
		SizeClass: Capitalize(c.SizeClass),
	}
}

// Label renders the display form, e.g. "Adulto / Pequeno".
func (c Combination) Label() string {
	n := c.Normalized()
	return n.AgeClass + " / " + n.SizeClass
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Validate checks the invariants of a row about to be persisted.
func (o PriceObservation) Validate() error {
	if strings.TrimSpace(o.Submitter) == "" {
		return errors.New("empty submitter identity")
	}
	if o.UnitPrice.Cents <= 0 {
		return errors.New("unit price must be positive")
	}
	if err := o.ObservedAt.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(o.Location) == "" {
		return ErrMissingLocation
	}
	return nil
}

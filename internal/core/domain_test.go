package core

import "testing"

func TestCombinationLabel(t *testing.T) {
	tests := []struct {
		name string
		in   Combination
		want string
	}{
		{name: "already capitalized", in: Combination{AgeClass: "Adulto", SizeClass: "Pequeno"}, want: "Adulto / Pequeno"},
		{name: "lowercase input", in: Combination{AgeClass: "adulto", SizeClass: "pequeno"}, want: "Adulto / Pequeno"},
		{name: "uppercase input", in: Combination{AgeClass: "FILHOTE", SizeClass: "GRANDE"}, want: "Filhote / Grande"},
		{name: "accented first rune", in: Combination{AgeClass: "idoso", SizeClass: "médio"}, want: "Idoso / Médio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCombinationMatches(t *testing.T) {
	c := Combination{AgeClass: "Adulto", SizeClass: "Pequeno"}
	if !c.Matches("adulto", "PEQUENO") {
		t.Error("Matches should ignore case")
	}
	if c.Matches("filhote", "pequeno") {
		t.Error("Matches should reject a different age class")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2024-01-01" {
		t.Errorf("String() = %q, want 2024-01-01", d.String())
	}
	if _, err := ParseDate("01/02/2024"); err == nil {
		t.Error("ParseDate should reject non ISO dates")
	}
}

func TestPriceObservationValidate(t *testing.T) {
	valid := PriceObservation{
		Submitter:   "Maria Silva",
		Combination: Combination{AgeClass: "Adulto", SizeClass: "Pequeno"},
		Category:    "Alimentação",
		Item:        "Ração",
		UnitPrice:   Money{Cents: 1550},
		ObservedAt:  NewDate(2024, 1, 1),
		Location:    "Loja X",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid observation rejected: %v", err)
	}

	zeroPrice := valid
	zeroPrice.UnitPrice = Money{}
	if err := zeroPrice.Validate(); err == nil {
		t.Error("zero price should be rejected for a persisted row")
	}

	noSubmitter := valid
	noSubmitter.Submitter = " "
	if err := noSubmitter.Validate(); err == nil {
		t.Error("blank submitter should be rejected")
	}

	noLocation := valid
	noLocation.Location = ""
	if err := noLocation.Validate(); err == nil {
		t.Error("blank location should be rejected")
	}
}

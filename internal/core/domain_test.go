package core

import (
	"errors"
	"math"
	"testing"
)

func validDebt() Debt {
	return Debt{
		Name:           "HDFC Credit Card",
		Type:           CreditCard,
		Balance:        Money{Paise: 5000000},
		InterestRate:   36.0,
		MinimumPayment: Money{Paise: 250000},
		Frequency:      Monthly,
		StartDate:      NewDate(2026, 1, 5),
	}
}

func TestDebtValidate(t *testing.T) {
	if err := validDebt().Validate(); err != nil {
		t.Fatalf("valid debt rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Debt)
		want   error
	}{
		{"empty name", func(d *Debt) { d.Name = "  " }, ErrEmptyName},
		{"bad type", func(d *Debt) { d.Type = "mortgage?" }, ErrInvalidDebtType},
		{"negative balance", func(d *Debt) { d.Balance.Paise = -1 }, ErrInvalidAmount},
		{"nan rate", func(d *Debt) { d.InterestRate = math.NaN() }, ErrInvalidRate},
		{"negative rate", func(d *Debt) { d.InterestRate = -0.5 }, ErrInvalidRate},
		{"zero minimum", func(d *Debt) { d.MinimumPayment.Paise = 0 }, ErrInvalidAmount},
		{"bad frequency", func(d *Debt) { d.Frequency = "fortnightly" }, ErrInvalidFrequency},
		{"zero start date", func(d *Debt) { d.StartDate = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		d := validDebt()
		tc.mutate(&d)
		err := d.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestDebtZeroBalanceAllowed(t *testing.T) {
	d := validDebt()
	d.Balance.Paise = 0 // paid off but still tracked
	if err := d.Validate(); err != nil {
		t.Fatalf("paid-off debt rejected: %v", err)
	}
}

func TestPaymentValidate(t *testing.T) {
	p := Payment{DebtID: 1, Amount: Money{Paise: 100000}, PaidAt: NewDate(2026, 8, 1)}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}
	p.DebtID = 0
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for missing debt reference")
	}
}

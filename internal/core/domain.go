package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	CreditCard    DebtType = "credit_card"
	PersonalLoan  DebtType = "personal_loan"
	HomeLoan      DebtType = "home_loan"
	AutoLoan      DebtType = "auto_loan"
	EducationLoan DebtType = "education_loan"
	OtherDebt     DebtType = "other"
)

const (
	Weekly    PaymentFrequency = "weekly"
	Monthly   PaymentFrequency = "monthly"
	Quarterly PaymentFrequency = "quarterly"
	Yearly    PaymentFrequency = "yearly"
)

type (
	DebtType string

	PaymentFrequency string

	Date struct {
		time.Time
	}

	Money struct {
		Paise int64
	}

	// Debt is a single tracked liability: a credit card, loan or EMI with
	// an outstanding balance, an annual interest rate and a payment schedule.
	Debt struct {
		ID             int64
		Name           string
		Type           DebtType
		Balance        Money // outstanding balance
		InterestRate   float64
		MinimumPayment Money
		Frequency      PaymentFrequency
		StartDate      Date // schedule anchor: first payment date
	}

	// Payment is a recorded repayment against a tracked debt.
	Payment struct {
		ID     int64
		DebtID int64
		Amount Money
		PaidAt Date
	}

	// UpcomingPayment is a scheduled payment falling due within the
	// configured upcoming window. Counted by the summary, itemized by the
	// upcoming-payments list.
	UpcomingPayment struct {
		DebtID   int64
		DebtName string
		Amount   Money
		DueOn    time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRate      = errors.New("invalid interest rate")
	ErrInvalidFrequency = errors.New("invalid payment frequency")
	ErrInvalidDebtType  = errors.New("invalid debt type")
	ErrEmptyName        = errors.New("empty debt name")
	ErrInvalidDate      = errors.New("invalid date")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t DebtType) Valid() bool {
	switch t {
	case CreditCard, PersonalLoan, HomeLoan, AutoLoan, EducationLoan, OtherDebt:
		return true
	default:
		return false
	}
}

func (f PaymentFrequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Quarterly, Yearly:
		return true
	default:
		return false
	}
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Name)) == 0 {
		return ErrEmptyName
	}
	if len(d.Name) > 120 {
		return errors.New("debt name too long (max 120 characters)")
	}
	if !d.Type.Valid() {
		return ErrInvalidDebtType
	}
	// Balance may legitimately reach zero as a debt is paid off.
	if d.Balance.Paise < 0 {
		return ErrInvalidAmount
	}
	if math.IsNaN(d.InterestRate) || math.IsInf(d.InterestRate, 0) || d.InterestRate < 0 {
		return ErrInvalidRate
	}
	if d.InterestRate > 100 {
		return errors.New("interest rate above 100% per year")
	}
	if err := d.MinimumPayment.Validate(); err != nil {
		return err
	}
	if !d.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if err := d.StartDate.Validate(); err != nil {
		return err
	}
	return nil
}

func (p Payment) Validate() error {
	if p.DebtID <= 0 {
		return errors.New("payment missing debt reference")
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.PaidAt.Validate(); err != nil {
		return err
	}
	return nil
}

package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"debtflow/internal/core"
	"debtflow/internal/ledger"
)

// handleCreateDebt processes the new-debt form.
func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	name := formValue(r, "name")
	debtType := core.DebtType(formValue(r, "type"))
	frequency := core.PaymentFrequency(formValue(r, "frequency"))

	balance, err := core.ParseDecimalToPaise(formValue(r, "balance"))
	if err != nil {
		UnprocessableEntityError("Invalid balance amount").Write(w)
		return
	}
	minimum, err := core.ParseDecimalToPaise(formValue(r, "minimum_payment"))
	if err != nil {
		UnprocessableEntityError("Invalid minimum payment").Write(w)
		return
	}
	startDate, err := parseDate(formValue(r, "start_date"))
	if err != nil {
		UnprocessableEntityError("Invalid start date, use YYYY-MM-DD").Write(w)
		return
	}

	debt := core.Debt{
		Name:           name,
		Type:           debtType,
		Balance:        core.Money{Paise: balance},
		InterestRate:   parseRate(formValue(r, "interest_rate")),
		MinimumPayment: core.Money{Paise: minimum},
		Frequency:      frequency,
		StartDate:      startDate,
	}
	if err := debt.Validate(); err != nil {
		UnprocessableEntityError("Invalid debt: " + err.Error()).Write(w)
		return
	}

	id, err := s.debts.CreateDebt(r.Context(), debt)
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt create error", "error", err, "name", debt.Name)
		InternalServerError("Could not save debt").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerDebtCreated(id).
		TriggerSummaryRefresh().
		TriggerFormReset().
		TriggerSuccessNotification("Debt added: " + debt.Name).
		BodyHTML(`<div class="success">Tracking ` + template.HTMLEscapeString(debt.Name) + ` (` + core.FormatINR(debt.Balance.Paise) + `)</div>`).
		Write(w)
}

// handleDeleteDebt removes a tracked debt.
func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := formInt64(r, "id")
	if id <= 0 {
		BadRequestError("Missing debt id").Write(w)
		return
	}

	if err := s.debts.DeleteDebt(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrDebtNotFound) {
			NotFoundError("Debt not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Debt delete error", "error", err, "debt_id", id)
		InternalServerError("Could not delete debt").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerDebtDeleted(id).
		TriggerSummaryRefresh().
		TriggerSuccessNotification("Debt removed").
		Write(w)
}

// handleRecordPayment processes the record-payment form.
func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	debtID := formInt64(r, "debt_id")
	if debtID <= 0 {
		BadRequestError("Missing debt id").Write(w)
		return
	}

	amount, err := core.ParseDecimalToPaise(formValue(r, "amount"))
	if err != nil {
		UnprocessableEntityError("Invalid payment amount").Write(w)
		return
	}

	paidAt := core.Date{Time: time.Now().UTC().Truncate(24 * time.Hour)}
	if v := formValue(r, "paid_at"); v != "" {
		paidAt, err = parseDate(v)
		if err != nil {
			UnprocessableEntityError("Invalid payment date, use YYYY-MM-DD").Write(w)
			return
		}
	}

	payment := core.Payment{
		DebtID: debtID,
		Amount: core.Money{Paise: amount},
		PaidAt: paidAt,
	}

	if _, err := s.debts.RecordPayment(r.Context(), payment); err != nil {
		if errors.Is(err, ledger.ErrDebtNotFound) {
			NotFoundError("Debt not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Payment record error", "error", err, "debt_id", debtID)
		InternalServerError("Could not record payment").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerPaymentRecorded(debtID).
		TriggerSummaryRefresh().
		TriggerFormReset().
		TriggerSuccessNotification("Payment of " + core.FormatINR(amount) + " recorded").
		Write(w)
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"debtflow/internal/core"
)

const partialTimeout = 7 * time.Second

// handleDashboard renders the dashboard page shell. The stat card and lists
// load as htmx partials.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", nil); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// debtSummaryView is the display form of the aggregated snapshot: currency
// and rate are pre-formatted strings, counts render as plain integers.
type debtSummaryView struct {
	TotalDebt             string
	AverageInterestRate   string
	DebtCount             int
	UpcomingPaymentsCount int
}

func newDebtSummaryView(s core.DebtSummary) debtSummaryView {
	return debtSummaryView{
		TotalDebt:             core.FormatINR(s.TotalDebt.Paise),
		AverageInterestRate:   core.FormatRate(s.AverageInterestRate),
		DebtCount:             s.DebtCount,
		UpcomingPaymentsCount: s.UpcomingPaymentsCount,
	}
}

// handleDebtSummary renders the debt summary stat card partial.
func (s *Server) handleDebtSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	ctx, cancel := context.WithTimeout(r.Context(), partialTimeout)
	defer cancel()

	summary, err := s.summaries.Get(ctx, time.Now())
	if err != nil {
		slog.ErrorContext(ctx, "Debt summary error", "error", err)
		_, _ = w.Write([]byte(`<section id="debt-summary" class="stat-card"><div class="placeholder">Could not load summary</div></section>`))
		return
	}

	data := newDebtSummaryView(summary)
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="debt-summary" class="stat-card"><div class="placeholder">Total debt: ` + data.TotalDebt + `</div></section>`))
		return
	}

	if err := s.templates.ExecuteTemplate(w, "debt_summary.html", data); err != nil {
		slog.ErrorContext(ctx, "Template execution error", "error", err, "template", "debt_summary.html")
		_, _ = w.Write([]byte(`<section id="debt-summary" class="stat-card"><div class="placeholder">Could not render summary</div></section>`))
	}
}

// debtRow is the display form of a single debt in the list partial.
type debtRow struct {
	ID             int64
	Name           string
	Type           string
	Balance        string
	InterestRate   string
	MinimumPayment string
	Frequency      string
}

// handleDebtList renders the tracked-debts list partial.
func (s *Server) handleDebtList(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	ctx, cancel := context.WithTimeout(r.Context(), partialTimeout)
	defer cancel()

	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Debt list error", "error", err)
		_, _ = w.Write([]byte(`<section id="debt-list" class="debt-list"><div class="placeholder">Could not load debts</div></section>`))
		return
	}

	data := struct{ Debts []debtRow }{}
	for _, d := range debts {
		data.Debts = append(data.Debts, debtRow{
			ID:             d.ID,
			Name:           d.Name,
			Type:           debtTypeLabel(d.Type),
			Balance:        core.FormatINR(d.Balance.Paise),
			InterestRate:   core.FormatRate(d.InterestRate),
			MinimumPayment: core.FormatINR(d.MinimumPayment.Paise),
			Frequency:      string(d.Frequency),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "debt_list.html", data); err != nil {
		slog.ErrorContext(ctx, "Template execution error", "error", err, "template", "debt_list.html")
		_, _ = w.Write([]byte(`<section id="debt-list" class="debt-list"><div class="placeholder">Could not render debts</div></section>`))
	}
}

// upcomingRow is the display form of one scheduled payment.
type upcomingRow struct {
	DebtName string
	Amount   string
	DueOn    string
}

// handleUpcomingPayments renders the upcoming-payments list partial,
// itemizing what the summary card only counts.
func (s *Server) handleUpcomingPayments(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	ctx, cancel := context.WithTimeout(r.Context(), partialTimeout)
	defer cancel()

	upcoming, err := s.store.ListUpcomingPayments(ctx, time.Now(), s.summaries.Window())
	if err != nil {
		slog.ErrorContext(ctx, "Upcoming payments error", "error", err)
		_, _ = w.Write([]byte(`<section id="upcoming-payments" class="upcoming"><div class="placeholder">Could not load upcoming payments</div></section>`))
		return
	}

	data := struct{ Payments []upcomingRow }{}
	for _, p := range upcoming {
		data.Payments = append(data.Payments, upcomingRow{
			DebtName: p.DebtName,
			Amount:   core.FormatINR(p.Amount.Paise),
			DueOn:    p.DueOn.Format("Mon, 2 Jan"),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "upcoming_payments.html", data); err != nil {
		slog.ErrorContext(ctx, "Template execution error", "error", err, "template", "upcoming_payments.html")
		_, _ = w.Write([]byte(`<section id="upcoming-payments" class="upcoming"><div class="placeholder">Could not render upcoming payments</div></section>`))
	}
}

func debtTypeLabel(t core.DebtType) string {
	switch t {
	case core.CreditCard:
		return "Credit card"
	case core.PersonalLoan:
		return "Personal loan"
	case core.HomeLoan:
		return "Home loan"
	case core.AutoLoan:
		return "Auto loan"
	case core.EducationLoan:
		return "Education loan"
	default:
		return "Other"
	}
}

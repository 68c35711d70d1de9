package http

import (
	"log/slog"
	"net/http"
)

// Feature is one entry in the landing page's feature grid.
type Feature struct {
	Icon        string
	Title       string
	Description string
}

// Benefit is one entry in the landing page's benefits list.
type Benefit struct {
	Title       string
	Description string
}

// Landing copy is static; the page carries no per-user data.
var (
	landingFeatures = []Feature{
		{
			Icon:        "📊",
			Title:       "One debt snapshot",
			Description: "Total outstanding balance, average interest rate and upcoming payments on a single card.",
		},
		{
			Icon:        "🗂",
			Title:       "Every debt in one place",
			Description: "Credit cards, personal loans, home loans, EMIs. Track balances and minimum payments together.",
		},
		{
			Icon:        "⏰",
			Title:       "Never miss a due date",
			Description: "Weekly, monthly, quarterly or yearly schedules with payments due in the next days surfaced for you.",
		},
		{
			Icon:        "📉",
			Title:       "Watch balances fall",
			Description: "Record payments as you make them and see your total debt shrink in real time.",
		},
	}

	landingBenefits = []Benefit{
		{
			Title:       "Know where you stand",
			Description: "A single number for what you owe beats a drawer full of statements.",
		},
		{
			Title:       "Pay less interest",
			Description: "Seeing your average rate makes it obvious which debt to attack first.",
		},
		{
			Title:       "Your data stays yours",
			Description: "Runs on your own server with your own database. No bank logins required.",
		},
	}
)

// handleLanding renders the marketing landing page at the root path.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Features []Feature
		Benefits []Benefit
	}{
		Features: landingFeatures,
		Benefits: landingBenefits,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "landing.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Landing template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

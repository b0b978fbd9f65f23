package http

import (
	"net/http"

	"spendlog/internal/core"
)

// Suggested values offered to clients. Writes accept any non-empty label.
var (
	defaultCategories   = []string{"Food", "Transport", "Shopping", "Bills", "Entertainment", "Health", "Other"}
	defaultPaymentModes = []string{"Cash", "UPI", "Card", "Net Banking", "Other"}
)

// expenseCreated is the body returned after a successful append.
type expenseCreated struct {
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	PaymentMode string  `json:"paymentMode"`
	Notes       string  `json:"notes"`
	CreatedAt   string  `json:"createdAt"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	expenses, err := s.expenses.List(r.Context(), id.UserID, sanitizeInput(q.Get("from")), sanitizeInput(q.Get("to")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	OK(map[string][]core.Expense{"expenses": expenses}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.expenses.Add(r.Context(), id.UserID, core.ExpenseInput{
		Date:        p.Get("date"),
		Time:        p.Get("time"),
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		PaymentMode: p.Get("paymentMode"),
		Notes:       p.Get("notes"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.events.LogExpenseRecorded(r.Context(), id.UserID, e.ID, e.Amount, e.Category, e.PaymentMode)
	Created(expenseCreated{
		Date:        e.Date,
		Time:        e.Time,
		Amount:      e.Amount,
		Category:    e.Category,
		PaymentMode: e.PaymentMode,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}).Write(w)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	totals, err := s.expenses.Totals(r.Context(), id.UserID, sanitizeInput(r.URL.Query().Get("date")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	OK(totals).Write(w)
}

func (s *Server) handleHours(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	report, err := s.expenses.Hours(r.Context(), id.UserID, sanitizeInput(r.URL.Query().Get("month")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	OK(report).Write(w)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	OK(map[string][]string{
		"categories":   defaultCategories,
		"paymentModes": defaultPaymentModes,
	}).Write(w)
}

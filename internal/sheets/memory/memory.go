package memory

import (
	"context"
	"sync"

	"spendlog/internal/core"
	ports "spendlog/internal/sheets"
)

// Store keeps the Users and Expenses tables as raw cell rows, the same
// shape the spreadsheet API returns, so reads go through the shared row codecs.
type Store struct {
	mu       sync.Mutex
	users    [][]any
	expenses [][]any
}

var (
	_ ports.ExpenseStore    = (*Store)(nil)
	_ ports.CredentialStore = (*Store)(nil)
	_ ports.Pinger          = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// SeedExpenseRows appends raw Expenses rows, bypassing validation.
func (s *Store) SeedExpenseRows(rows ...[]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.expenses = append(s.expenses, append([]any(nil), r...))
	}
}

// SeedUserRows appends raw Users rows.
func (s *Store) SeedUserRows(rows ...[]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.users = append(s.users, append([]any(nil), r...))
	}
}

// ExpenseRowCount returns the number of stored Expenses data rows.
func (s *Store) ExpenseRowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expenses)
}

// UserRowCount returns the number of stored Users data rows.
func (s *Store) UserRowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) ListExpenses(_ context.Context, userID string, r core.DateRange) ([]core.Expense, error) {
	if userID == "" {
		return nil, core.ErrUserIDRequired
	}
	s.mu.Lock()
	rows := append([][]any(nil), s.expenses...)
	s.mu.Unlock()
	return ports.DecodeExpenses(rows, userID, r), nil
}

// AppendExpense stores the expense and returns it with its row number as id.
func (s *Store) AppendExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if e.UserID == "" {
		return core.Expense{}, core.ErrUserIDRequired
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, ports.ExpenseRow(e))
	e.ID = int64(len(s.expenses) - 1 + ports.FirstDataRow)
	return e, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	rows := append([][]any(nil), s.users...)
	s.mu.Unlock()
	return ports.FindUser(rows, email)
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	u.Email = core.NormalizeEmail(u.Email)
	if u.Email == "" {
		return core.User{}, core.ErrEmailRequired
	}
	if u.UserID == "" {
		u.UserID = ports.NewUserID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, ports.UserRow(u))
	return u, nil
}

func (s *Store) Ping(context.Context) error { return nil }

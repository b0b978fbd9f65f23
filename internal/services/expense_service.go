package services

import (
	"context"
	"fmt"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/sheets"
)

// ExpenseService implements the expense operations on top of an ExpenseStore.
// Calendar defaults and totals windows are evaluated in loc.
type ExpenseService struct {
	store sheets.ExpenseStore
	loc   *time.Location
	now   func() time.Time
}

func NewExpenseService(store sheets.ExpenseStore, loc *time.Location) *ExpenseService {
	if loc == nil {
		loc = time.Local
	}
	return &ExpenseService{store: store, loc: loc, now: time.Now}
}

// HoursReport is the hour-of-day histogram of one month.
type HoursReport struct {
	Month   string            `json:"month"`
	Buckets []core.HourBucket `json:"buckets"`
}

// List returns the user's expenses with dates in [from, to]; empty bounds are open.
func (s *ExpenseService) List(ctx context.Context, userID, from, to string) ([]core.Expense, error) {
	r, err := core.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, userID, r)
}

// Add validates the input, fills defaults from the current clock and appends the row.
func (s *ExpenseService) Add(ctx context.Context, userID string, in core.ExpenseInput) (core.Expense, error) {
	e, err := core.NewExpense(userID, in, s.now().In(s.loc))
	if err != nil {
		return core.Expense{}, err
	}
	stored, err := s.store.AppendExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("append expense: %w", err)
	}
	return stored, nil
}

// Totals sums the day, week and month around date (YYYY-MM-DD, default today)
// with a single storage read.
func (s *ExpenseService) Totals(ctx context.Context, userID, date string) (core.Totals, error) {
	ref := s.now().In(s.loc)
	if date != "" {
		d, err := time.ParseInLocation(core.DateLayout, date, s.loc)
		if err != nil {
			return core.Totals{}, core.ErrInvalidDate
		}
		ref = d
	}
	w := core.WindowsFor(ref)
	rows, err := s.store.ListExpenses(ctx, userID, w.FetchRange())
	if err != nil {
		return core.Totals{}, err
	}
	return core.SumTotals(rows, w, s.loc), nil
}

// Hours buckets the expenses of month (YYYY-MM, default current month) by hour of day.
func (s *ExpenseService) Hours(ctx context.Context, userID, month string) (HoursReport, error) {
	now := s.now().In(s.loc)
	year, m := now.Year(), now.Month()
	if month != "" {
		var err error
		if year, m, err = core.ParseMonth(month); err != nil {
			return HoursReport{}, err
		}
	}
	rows, err := s.store.ListExpenses(ctx, userID, core.MonthRange(year, m))
	if err != nil {
		return HoursReport{}, err
	}
	return HoursReport{
		Month:   fmt.Sprintf("%04d-%02d", year, int(m)),
		Buckets: core.HourHistogram(rows),
	}, nil
}

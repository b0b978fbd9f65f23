package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/sheets/memory"
)

func newTestExpenseService(now time.Time) (*ExpenseService, *memory.Store) {
	store := memory.New()
	svc := NewExpenseService(store, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestExpenseService_AddDefaults(t *testing.T) {
	now := time.Date(2026, 2, 12, 9, 7, 0, 0, time.UTC)
	svc, store := newTestExpenseService(now)

	e, err := svc.Add(context.Background(), "u1", core.ExpenseInput{
		Amount:      "12.5",
		Category:    "Food",
		PaymentMode: "Card",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if e.Date != "2026-02-12" || e.Time != "09:07" {
		t.Fatalf("defaults = %s %s", e.Date, e.Time)
	}
	if e.ID != 2 {
		t.Fatalf("id = %d, want 2", e.ID)
	}
	if store.ExpenseRowCount() != 1 {
		t.Fatalf("rows = %d", store.ExpenseRowCount())
	}
}

func TestExpenseService_ListRepeatable(t *testing.T) {
	svc, store := newTestExpenseService(time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC))
	store.SeedExpenseRows(
		[]any{"u1", float64(46065), 0.65625, float64(250), "Food", "UPI", "lunch", "2026-02-12T10:15:00.000Z"},
		[]any{"u2", "2026-02-12", "09:00", "10", "Bills", "Card", "", ""},
		[]any{"u1", "2026-02-13", "08:30", "12.5", "Transport", "Cash", "", ""},
	)
	ctx := context.Background()

	first, err := svc.List(ctx, "u1", "2026-02-01", "2026-02-28")
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, err := svc.List(ctx, "u1", "2026-02-01", "2026-02-28")
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 expenses, got %+v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated reads differ:\n%+v\n%+v", first, second)
	}
}

func TestExpenseService_AddInvalid(t *testing.T) {
	svc, store := newTestExpenseService(time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		in   core.ExpenseInput
		want error
	}{
		{"negative amount", core.ExpenseInput{Amount: "-5", Category: "Food", PaymentMode: "Cash"}, core.ErrInvalidAmount},
		{"text amount", core.ExpenseInput{Amount: "abc", Category: "Food", PaymentMode: "Cash"}, core.ErrInvalidAmount},
		{"no category", core.ExpenseInput{Amount: "3", PaymentMode: "Cash"}, core.ErrCategoryRequired},
		{"no payment mode", core.ExpenseInput{Amount: "3", Category: "Food"}, core.ErrPaymentModeRequired},
		{"bad date", core.ExpenseInput{Date: "12/02/2026", Amount: "3", Category: "Food", PaymentMode: "Cash"}, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), "u1", tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if store.ExpenseRowCount() != 0 {
		t.Fatalf("invalid input appended %d rows", store.ExpenseRowCount())
	}
}

func TestExpenseService_ListIsolatesUsers(t *testing.T) {
	svc, store := newTestExpenseService(time.Now())
	store.SeedExpenseRows(
		[]any{"u1", "2026-02-01", "10:00", 5.0, "Food", "Cash", "", ""},
		[]any{"u2", "2026-02-01", "10:00", 7.0, "Food", "Cash", "", ""},
		[]any{"u1", "2026-03-01", "10:00", 9.0, "Rent", "Bank", "", ""},
	)

	all, err := svc.List(context.Background(), "u1", "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	feb, err := svc.List(context.Background(), "u1", "2026-02-01", "2026-02-28")
	if err != nil {
		t.Fatalf("List range: %v", err)
	}
	if len(feb) != 1 || feb[0].Amount != 5 {
		t.Fatalf("range result = %+v", feb)
	}

	if _, err := svc.List(context.Background(), "u1", "bad", ""); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("bad from err = %v", err)
	}
}

func TestExpenseService_Totals(t *testing.T) {
	// Thursday 2026-02-12.
	svc, store := newTestExpenseService(time.Date(2026, 2, 12, 20, 0, 0, 0, time.UTC))
	store.SeedExpenseRows(
		[]any{"u1", "2026-02-12", "08:00", 10.0, "Food", "Cash", "", ""},
		[]any{"u1", "2026-02-09", "08:00", 20.0, "Food", "Cash", "", ""},
		[]any{"u1", "2026-02-02", "08:00", 40.0, "Food", "Cash", "", ""},
		[]any{"u1", "2026-01-31", "08:00", 80.0, "Food", "Cash", "", ""},
		[]any{"u2", "2026-02-12", "08:00", 99.0, "Food", "Cash", "", ""},
	)

	got, err := svc.Totals(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	want := core.Totals{Daily: 10, Weekly: 30, Monthly: 70}
	if got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}

	got, err = svc.Totals(context.Background(), "u1", "2026-01-31")
	if err != nil {
		t.Fatalf("Totals with date: %v", err)
	}
	if got.Daily != 80 || got.Monthly != 80 {
		t.Fatalf("totals for 2026-01-31 = %+v", got)
	}

	if _, err := svc.Totals(context.Background(), "u1", "31-01-2026"); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("bad date err = %v", err)
	}
}

func TestExpenseService_Hours(t *testing.T) {
	svc, store := newTestExpenseService(time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC))
	store.SeedExpenseRows(
		[]any{"u1", "2026-02-03", "08:15", 3.0, "Food", "Cash", "", ""},
		[]any{"u1", "2026-02-04", "08:45", 4.0, "Food", "Cash", "", ""},
		[]any{"u1", "2026-02-05", "21:00", 5.0, "Food", "Cash", "", ""},
		[]any{"u1", "2026-03-05", "08:00", 50.0, "Food", "Cash", "", ""},
	)

	report, err := svc.Hours(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Hours: %v", err)
	}
	if report.Month != "2026-02" {
		t.Fatalf("month = %q", report.Month)
	}
	if len(report.Buckets) != 24 {
		t.Fatalf("buckets = %d", len(report.Buckets))
	}
	if b := report.Buckets[8]; b.Count != 2 || b.Total != 7 {
		t.Fatalf("08h bucket = %+v", b)
	}
	if b := report.Buckets[21]; b.Count != 1 || b.Total != 5 {
		t.Fatalf("21h bucket = %+v", b)
	}

	if _, err := svc.Hours(context.Background(), "u1", "2026-13"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("bad month err = %v", err)
	}
}

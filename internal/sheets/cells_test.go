package sheets

import (
	"testing"

	"spendlog/internal/core"
)

func TestNormalizeDateCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{float64(46061), "2026-02-08"},
		{float64(46065), "2026-02-12"},
		{"46065", "2026-02-12"},
		{float64(25569), "1970-01-01"},
		{46065.75, "2026-02-12"},
		{"2026-02-12", "2026-02-12"},
		{" 2026-02-12 ", "2026-02-12"},
		{float64(999), "999"},
		{float64(1000), "1000"},
		{"", ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := NormalizeDateCell(tc.in); got != tc.want {
			t.Fatalf("NormalizeDateCell(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTimeCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{0.65625, "15:45"},
		{"0.65625", "15:45"},
		{float64(0), "00:00"},
		{0.5, "12:00"},
		{0.9999999, "00:00"},
		{"15:44", "15:44"},
		{float64(1), "1"},
		{float64(-0.25), "-0.25"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := NormalizeTimeCell(tc.in); got != tc.want {
			t.Fatalf("NormalizeTimeCell(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeExpenseRowMixedRepresentations(t *testing.T) {
	rows := [][]any{
		{"u1", float64(46065), 0.65625, float64(250), "Food", "UPI", "lunch", "2026-02-12T10:15:00.000Z"},
		{"u1", "2026-02-13", "09:05", "12.5", "Transport", "Cash"},
		{"u2", "2026-02-13", "10:00", "x", "Bills", "Card", "", ""},
	}

	first := DecodeExpenseRow(rows[0], 0)
	if first.ID != 2 || first.Date != "2026-02-12" || first.Time != "15:45" || first.Amount != 250 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	second := DecodeExpenseRow(rows[1], 1)
	if second.ID != 3 || second.Amount != 12.5 || second.Notes != "" || second.CreatedAt != "" {
		t.Fatalf("short row not padded: %+v", second)
	}
	if got := DecodeExpenseRow(rows[2], 2); got.Amount != 0 {
		t.Fatalf("unreadable amount should be zero, got %v", got.Amount)
	}

	r, _ := core.NewDateRange("2026-02-12", "2026-02-12")
	filtered := DecodeExpenses(rows, "u1", r)
	if len(filtered) != 1 || filtered[0].ID != 2 {
		t.Fatalf("unexpected filtered rows: %+v", filtered)
	}
}

func TestExpenseRowOrder(t *testing.T) {
	e := core.Expense{UserID: "u", Date: "d", Time: "t", Amount: 1.5, Category: "c", PaymentMode: "p", Notes: "n", CreatedAt: "ts"}
	row := ExpenseRow(e)
	if len(row) != len(ExpenseHeader) {
		t.Fatalf("row has %d cells, header %d", len(row), len(ExpenseHeader))
	}
	if got := DecodeExpenseRow(row, 0); got.Category != "c" || got.Amount != 1.5 || got.CreatedAt != "ts" {
		t.Fatalf("unexpected decode: %+v", got)
	}
}

func TestFindUser(t *testing.T) {
	rows := [][]any{
		{"id1", "Alice@Example.com ", "hash1", "t1"},
		{"id2", "bob@example.com", "hash2"},
	}
	u, err := FindUser(rows, "  ALICE@example.com")
	if err != nil || u.UserID != "id1" || u.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v err=%v", u, err)
	}
	if _, err := FindUser(rows, "carol@example.com"); err != core.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestNewUserID(t *testing.T) {
	a, b := NewUserID(), NewUserID()
	if len(a) != 32 || a == b {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}

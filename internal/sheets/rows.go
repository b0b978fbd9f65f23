package sheets

import (
	"spendlog/internal/core"
)

// ExpenseRow encodes an expense in ExpenseHeader column order.
func ExpenseRow(e core.Expense) []any {
	return []any{e.UserID, e.Date, e.Time, e.Amount, e.Category, e.PaymentMode, e.Notes, e.CreatedAt}
}

// DecodeExpenseRow normalizes one Expenses row. index is the 0-based
// position among data rows; the id is the sheet row number.
func DecodeExpenseRow(row []any, index int) core.Expense {
	cell := func(i int) any {
		if i < len(row) {
			return row[i]
		}
		return nil
	}
	date := NormalizeDateCell(cell(1))
	if date == "" {
		date = CellString(cell(1))
	}
	return core.Expense{
		ID:          int64(index + FirstDataRow),
		UserID:      CellString(cell(0)),
		Date:        date,
		Time:        NormalizeTimeCell(cell(2)),
		Amount:      cellAmount(cell(3)),
		Category:    CellString(cell(4)),
		PaymentMode: CellString(cell(5)),
		Notes:       CellString(cell(6)),
		CreatedAt:   CellString(cell(7)),
	}
}

// DecodeExpenses normalizes every data row and filters to userID within r.
func DecodeExpenses(rows [][]any, userID string, r core.DateRange) []core.Expense {
	all := make([]core.Expense, 0, len(rows))
	for i, row := range rows {
		all = append(all, DecodeExpenseRow(row, i))
	}
	return core.FilterExpenses(all, userID, r)
}

// UserRow encodes a user in UserHeader column order.
func UserRow(u core.User) []any {
	return []any{u.UserID, u.Email, u.PasswordHash, u.CreatedAt}
}

func DecodeUserRow(row []any) core.User {
	cell := func(i int) any {
		if i < len(row) {
			return row[i]
		}
		return nil
	}
	return core.User{
		UserID:       CellString(cell(0)),
		Email:        core.NormalizeEmail(CellString(cell(1))),
		PasswordHash: CellString(cell(2)),
		CreatedAt:    CellString(cell(3)),
	}
}

// FindUser scans decoded user rows for a normalized email.
func FindUser(rows [][]any, email string) (core.User, error) {
	email = core.NormalizeEmail(email)
	for _, row := range rows {
		u := DecodeUserRow(row)
		if u.Email != "" && u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

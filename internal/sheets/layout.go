package sheets

import (
	"strings"

	"github.com/google/uuid"
)

// Default tab names.
const (
	UsersTable    = "Users"
	ExpensesTable = "Expenses"
)

// FirstDataRow is the 1-based row number of the first record; row 1 holds the header.
const FirstDataRow = 2

var (
	UserHeader    = []string{"UserId", "Email", "PasswordHash", "CreatedAt"}
	ExpenseHeader = []string{"UserId", "Date", "Time", "Amount", "Category", "PaymentMode", "Notes", "CreatedAt"}
)

// UserColumns and ExpenseColumns are the A1 column spans of each table.
const (
	UserColumns    = "A:D"
	ExpenseColumns = "A:H"
)

// NewUserID returns a random 128-bit identifier rendered as 32 hex characters.
func NewUserID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HeaderFor returns the header row of a default-named tab, or nil.
func HeaderFor(table string) []string {
	switch table {
	case UsersTable:
		return UserHeader
	case ExpensesTable:
		return ExpenseHeader
	}
	return nil
}

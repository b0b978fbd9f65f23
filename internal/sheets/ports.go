package sheets

import (
	"context"

	"spendlog/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseStore reads and appends rows of the Expenses table.
	ExpenseStore interface {
		// ListExpenses returns the expenses of userID dated within r, in storage order.
		ListExpenses(ctx context.Context, userID string, r core.DateRange) ([]core.Expense, error)
		// AppendExpense stores a validated expense and returns the stored record.
		AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	}

	// CredentialStore reads and appends rows of the Users table.
	CredentialStore interface {
		// FindByEmail returns core.ErrUserNotFound when no row matches.
		FindByEmail(ctx context.Context, email string) (core.User, error)
		// CreateUser appends a user row. Uniqueness is not re-checked.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
	}

	// Pinger is implemented by stores that can probe their backing storage.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

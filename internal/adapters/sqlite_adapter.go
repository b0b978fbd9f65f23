package adapters

import (
	"context"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	ports "spendlog/internal/sheets"
	"spendlog/internal/storage"
)

// Publisher sends mirror notifications. *amqp.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, msg *amqp.SyncMessage) error
}

// SQLiteAdapter stores rows in SQLite and announces each new row on the
// broker so the sheets-sync worker can mirror it into the spreadsheet.
// Publishing is best effort: the local write is the source of truth and
// the worker's pending sweep picks up anything a lost message missed.
type SQLiteAdapter struct {
	storage   *storage.SQLiteRepository
	publisher Publisher
}

var (
	_ ports.ExpenseStore    = (*SQLiteAdapter)(nil)
	_ ports.CredentialStore = (*SQLiteAdapter)(nil)
	_ ports.Pinger          = (*SQLiteAdapter)(nil)
)

// NewSQLiteAdapter wires the repository to an optional publisher (nil disables mirroring).
func NewSQLiteAdapter(storage *storage.SQLiteRepository, publisher Publisher) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage, publisher: publisher}
}

func (a *SQLiteAdapter) ListExpenses(ctx context.Context, userID string, r core.DateRange) ([]core.Expense, error) {
	return a.storage.ListExpenses(ctx, userID, r)
}

func (a *SQLiteAdapter) AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	stored, err := a.storage.AppendExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	a.publish(ctx, amqp.NewExpenseRecorded(stored.ID))
	return stored, nil
}

func (a *SQLiteAdapter) FindByEmail(ctx context.Context, email string) (core.User, error) {
	return a.storage.FindByEmail(ctx, email)
}

func (a *SQLiteAdapter) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	stored, err := a.storage.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, err
	}
	a.publish(ctx, amqp.NewUserCreated(stored.UserID))
	return stored, nil
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

func (a *SQLiteAdapter) publish(ctx context.Context, msg *amqp.SyncMessage) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"kind", msg.Kind,
			"expense_id", msg.ExpenseID,
			"user_id", msg.UserID,
			"error", err)
	}
}

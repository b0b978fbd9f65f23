package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/sheets"
)

// Source is the local store the worker mirrors from. *storage.SQLiteRepository implements it.
type Source interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	GetUser(ctx context.Context, userID string) (core.User, error)
	ExpenseSynced(ctx context.Context, id int64) (bool, error)
	UserSynced(ctx context.Context, userID string) (bool, error)
	PendingExpenses(ctx context.Context, limit int) ([]int64, error)
	PendingUsers(ctx context.Context, limit int) ([]string, error)
	MarkExpenseSynced(ctx context.Context, id int64) error
	MarkExpenseSyncError(ctx context.Context, id int64) error
	MarkUserSynced(ctx context.Context, userID string) error
	MarkUserSyncError(ctx context.Context, userID string) error
}

// SyncWorker mirrors locally stored users and expenses into the spreadsheet tabs.
type SyncWorker struct {
	source    Source
	expenses  sheets.ExpenseStore
	users     sheets.CredentialStore
	batchSize int
}

func NewSyncWorker(source Source, expenses sheets.ExpenseStore, users sheets.CredentialStore, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		source:    source,
		expenses:  expenses,
		users:     users,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single sync message from AMQP. A returned
// error makes the consumer requeue the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"kind", msg.Kind,
		"expense_id", msg.ExpenseID,
		"user_id", msg.UserID)

	switch msg.Kind {
	case amqp.KindExpenseRecorded:
		return w.syncExpense(ctx, msg.ExpenseID)
	case amqp.KindUserCreated:
		return w.syncUser(ctx, msg.UserID)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

// ProcessPending mirrors rows that are still pending, covering messages
// lost while the broker or the worker was down.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	userIDs, err := w.source.PendingUsers(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending users: %w", err)
	}
	expenseIDs, err := w.source.PendingExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(userIDs) == 0 && len(expenseIDs) == 0 {
		return nil
	}

	synced, failed := 0, 0
	for _, id := range userIDs {
		if err := w.syncUser(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync user", "user_id", id, "error", err)
			failed++
			continue
		}
		synced++
	}
	for _, id := range expenseIDs {
		if err := w.syncExpense(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", id, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync completed",
		"users", len(userIDs),
		"expenses", len(expenseIDs),
		"synced", synced,
		"errors", failed)
	return nil
}

// RunPendingLoop sweeps pending rows immediately and then every interval
// until ctx is cancelled.
func (w *SyncWorker) RunPendingLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Pending sync loop started",
		"interval", interval,
		"batch_size", w.batchSize)

	for {
		if err := w.ProcessPending(ctx); err != nil {
			slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// syncExpense and syncUser skip rows already mirrored. The sweep and
// a queued message can carry the same id.
func (w *SyncWorker) syncExpense(ctx context.Context, id int64) error {
	synced, err := w.source.ExpenseSynced(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense sync status: %w", err)
	}
	if synced {
		slog.DebugContext(ctx, "Expense already synced", "id", id)
		return nil
	}
	e, err := w.source.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}
	ref, err := w.expenses.AppendExpense(ctx, e)
	if err != nil {
		if markErr := w.source.MarkExpenseSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}
	if err := w.source.MarkExpenseSynced(ctx, id); err != nil {
		// the row is already in the sheet; log only
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}
	slog.InfoContext(ctx, "Successfully synced expense", "id", id, "sheet_row", ref.ID)
	return nil
}

func (w *SyncWorker) syncUser(ctx context.Context, userID string) error {
	synced, err := w.source.UserSynced(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user sync status: %w", err)
	}
	if synced {
		slog.DebugContext(ctx, "User already synced", "user_id", userID)
		return nil
	}
	u, err := w.source.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user from storage: %w", err)
	}
	if _, err := w.users.CreateUser(ctx, u); err != nil {
		if markErr := w.source.MarkUserSyncError(ctx, userID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "user_id", userID, "error", markErr)
		}
		return fmt.Errorf("append user to sheets: %w", err)
	}
	if err := w.source.MarkUserSynced(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "user_id", userID, "error", err)
	}
	slog.InfoContext(ctx, "Successfully synced user", "user_id", userID)
	return nil
}

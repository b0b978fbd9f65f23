package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"spendlog/internal/core"
	ports "spendlog/internal/sheets"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ ports.ExpenseStore    = (*SQLiteRepository)(nil)
	_ ports.CredentialStore = (*SQLiteRepository)(nil)
	_ ports.Pinger          = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListExpenses implements sheets.ExpenseStore
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string, rng core.DateRange) ([]core.Expense, error) {
	if userID == "" {
		return nil, core.ErrUserIDRequired
	}
	rows, err := r.queries.GetExpensesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get expenses by user: %w", err)
	}
	out := make([]core.Expense, len(rows))
	for i, e := range rows {
		out[i] = e.toCore()
	}
	return core.FilterExpenses(out, userID, rng), nil
}

// AppendExpense implements sheets.ExpenseStore. The returned id is the
// autoincrement key and stays stable.
func (r *SQLiteRepository) AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.UserID == "" {
		return core.Expense{}, core.ErrUserIDRequired
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		UserID:      e.UserID,
		Date:        e.Date,
		Time:        e.Time,
		Amount:      e.Amount,
		Category:    e.Category,
		PaymentMode: e.PaymentMode,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"amount", row.Amount,
		"date", row.Date)

	return row.toCore(), nil
}

// GetExpense retrieves a single expense by ID
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return row.toCore(), nil
}

// ExpenseSynced reports whether the expense has already been mirrored.
func (r *SQLiteRepository) ExpenseSynced(ctx context.Context, id int64) (bool, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get expense by id: %w", err)
	}
	return row.SyncStatus == syncStatusSynced, nil
}

// FindByEmail implements sheets.CredentialStore
func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return row.toCore(), nil
}

// CreateUser implements sheets.CredentialStore. The unique email index
// turns a concurrent duplicate signup into core.ErrEmailTaken.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Email = core.NormalizeEmail(u.Email)
	if u.Email == "" {
		return core.User{}, core.ErrEmailRequired
	}
	if u.UserID == "" {
		u.UserID = ports.NewUserID()
	}
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		UserID:       u.UserID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User saved to SQLite", "user_id", row.UserID)
	return row.toCore(), nil
}

// GetUser retrieves a user by id.
func (r *SQLiteRepository) GetUser(ctx context.Context, userID string) (core.User, error) {
	row, err := r.queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return row.toCore(), nil
}

// UserSynced reports whether the user has already been mirrored.
func (r *SQLiteRepository) UserSynced(ctx context.Context, userID string) (bool, error) {
	row, err := r.queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, core.ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	return row.SyncStatus == syncStatusSynced, nil
}

// PendingExpenses returns ids of expenses not yet mirrored to the spreadsheet.
func (r *SQLiteRepository) PendingExpenses(ctx context.Context, limit int) ([]int64, error) {
	ids, err := r.queries.GetPendingSyncExpenses(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	return ids, nil
}

// PendingUsers returns ids of users not yet mirrored to the spreadsheet.
func (r *SQLiteRepository) PendingUsers(ctx context.Context, limit int) ([]string, error) {
	ids, err := r.queries.GetPendingSyncUsers(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync users: %w", err)
	}
	return ids, nil
}

// MarkExpenseSynced marks an expense as successfully synced
func (r *SQLiteRepository) MarkExpenseSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkExpenseSynced(ctx, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

// MarkExpenseSyncError marks an expense as having sync errors
func (r *SQLiteRepository) MarkExpenseSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkExpenseSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkUserSynced(ctx context.Context, userID string) error {
	if err := r.queries.MarkUserSynced(ctx, userID); err != nil {
		return fmt.Errorf("mark user synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkUserSyncError(ctx context.Context, userID string) error {
	if err := r.queries.MarkUserSyncError(ctx, userID); err != nil {
		return fmt.Errorf("mark user sync error: %w", err)
	}
	slog.WarnContext(ctx, "User marked with sync error", "user_id", userID)
	return nil
}

func (e Expense) toCore() core.Expense {
	return core.Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		Date:        e.Date,
		Time:        e.Time,
		Amount:      e.Amount,
		Category:    e.Category,
		PaymentMode: e.PaymentMode,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}
}

func (u User) toCore() core.User {
	return core.User{
		UserID:       u.UserID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

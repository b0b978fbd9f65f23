package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Expense is a row of the expenses table.
type Expense struct {
	ID          int64
	UserID      string
	Date        string
	Time        string
	Amount      float64
	Category    string
	PaymentMode string
	Notes       string
	CreatedAt   string
	SyncStatus  string
	SyncedAt    sql.NullString
}

// User is a row of the users table.
type User struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    string
	SyncStatus   string
	SyncedAt     sql.NullString
}

const syncStatusSynced = "synced"

const expenseColumns = `id, user_id, date, time, amount, category, payment_mode, notes, created_at, sync_status, synced_at`

func scanExpense(row interface{ Scan(...any) error }) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Time, &e.Amount, &e.Category,
		&e.PaymentMode, &e.Notes, &e.CreatedAt, &e.SyncStatus, &e.SyncedAt)
	return e, err
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (user_id, date, time, amount, category, payment_mode, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	UserID      string
	Date        string
	Time        string
	Amount      float64
	Category    string
	PaymentMode string
	Notes       string
	CreatedAt   string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.UserID, arg.Date, arg.Time, arg.Amount, arg.Category, arg.PaymentMode, arg.Notes, arg.CreatedAt)
	return scanExpense(row)
}

const getExpense = `-- name: GetExpense :one
SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const getExpensesByUser = `-- name: GetExpensesByUser :many
SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ? ORDER BY id`

func (q *Queries) GetExpensesByUser(ctx context.Context, userID string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, getExpensesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPendingSyncExpenses = `-- name: GetPendingSyncExpenses :many
SELECT id FROM expenses WHERE sync_status = 'pending' ORDER BY id LIMIT ?`

func (q *Queries) GetPendingSyncExpenses(ctx context.Context, limit int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncExpenses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const markExpenseSynced = `-- name: MarkExpenseSynced :exec
UPDATE expenses SET sync_status = 'synced', synced_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE id = ?`

func (q *Queries) MarkExpenseSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markExpenseSynced, id)
	return err
}

const markExpenseSyncError = `-- name: MarkExpenseSyncError :exec
UPDATE expenses SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkExpenseSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markExpenseSyncError, id)
	return err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (user_id, email, password_hash, created_at)
VALUES (?, ?, ?, ?)
RETURNING user_id, email, password_hash, created_at, sync_status, synced_at`

type CreateUserParams struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    string
}

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.SyncStatus, &u.SyncedAt)
	return u, err
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, createUser, arg.UserID, arg.Email, arg.PasswordHash, arg.CreatedAt))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT user_id, email, password_hash, created_at, sync_status, synced_at FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUser = `-- name: GetUser :one
SELECT user_id, email, password_hash, created_at, sync_status, synced_at FROM users WHERE user_id = ?`

func (q *Queries) GetUser(ctx context.Context, userID string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, userID))
}

const getPendingSyncUsers = `-- name: GetPendingSyncUsers :many
SELECT user_id FROM users WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?`

func (q *Queries) GetPendingSyncUsers(ctx context.Context, limit int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncUsers, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const markUserSynced = `-- name: MarkUserSynced :exec
UPDATE users SET sync_status = 'synced', synced_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE user_id = ?`

func (q *Queries) MarkUserSynced(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, markUserSynced, userID)
	return err
}

const markUserSyncError = `-- name: MarkUserSyncError :exec
UPDATE users SET sync_status = 'error' WHERE user_id = ?`

func (q *Queries) MarkUserSyncError(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, markUserSyncError, userID)
	return err
}

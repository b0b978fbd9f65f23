package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/storage"
)

type recordingPublisher struct {
	msgs []*amqp.SyncMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *amqp.SyncMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func newAdapter(t *testing.T, pub Publisher) *SQLiteAdapter {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewSQLiteAdapter(repo, pub)
}

func TestSQLiteAdapter_PublishesNewRows(t *testing.T) {
	pub := &recordingPublisher{}
	a := newAdapter(t, pub)
	ctx := context.Background()

	u, err := a.CreateUser(ctx, core.User{Email: "a@b.co", PasswordHash: "h", CreatedAt: "t"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	e, err := a.AppendExpense(ctx, core.Expense{UserID: u.UserID, Date: "2026-02-12", Amount: 5, Category: "Food", PaymentMode: "UPI"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if len(pub.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(pub.msgs))
	}
	if pub.msgs[0].Kind != amqp.KindUserCreated || pub.msgs[0].UserID != u.UserID {
		t.Errorf("unexpected user message: %+v", pub.msgs[0])
	}
	if pub.msgs[1].Kind != amqp.KindExpenseRecorded || pub.msgs[1].ExpenseID != e.ID {
		t.Errorf("unexpected expense message: %+v", pub.msgs[1])
	}
}

func TestSQLiteAdapter_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("circuit breaker is open")}
	a := newAdapter(t, pub)

	_, err := a.AppendExpense(context.Background(), core.Expense{UserID: "u1", Date: "2026-02-12", Amount: 5, Category: "Food", PaymentMode: "UPI"})
	if err != nil {
		t.Fatalf("append should succeed when publish fails: %v", err)
	}
	list, _ := a.ListExpenses(context.Background(), "u1", core.FullRange())
	if len(list) != 1 {
		t.Fatalf("expected stored expense, got %+v", list)
	}
}

func TestSQLiteAdapter_InvalidRowsAreNotPublished(t *testing.T) {
	pub := &recordingPublisher{}
	a := newAdapter(t, pub)

	_, err := a.AppendExpense(context.Background(), core.Expense{UserID: "u1", Amount: -1, Category: "Food", PaymentMode: "UPI"})
	if err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("invalid row published: %+v", pub.msgs)
	}
}

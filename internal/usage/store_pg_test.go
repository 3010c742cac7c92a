package usage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGConsumeIncrementsCounter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db, 30)
	resetsAt := nextMonthStart(time.Now().UTC())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT plan, limit_amount, used, resets_at FROM usage_counters WHERE user_id = $1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "limit_amount", "used", "resets_at"}).
			AddRow("Starter", 30, 2, resetsAt))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE usage_counters SET used = $1 WHERE user_id = $2`)).
		WithArgs(3, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := store.Consume(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if u.Used != 3 {
		t.Fatalf("expected used 3, got %d", u.Used)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGConsumeLimitReached(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db, 30)
	resetsAt := nextMonthStart(time.Now().UTC())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT plan, limit_amount, used, resets_at FROM usage_counters WHERE user_id = $1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "limit_amount", "used", "resets_at"}).
			AddRow("Starter", 30, 30, resetsAt))
	mock.ExpectRollback()

	if _, err := store.Consume(context.Background(), "u1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGEnsureCreatesDefaultRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db, 30)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT plan, limit_amount, used, resets_at FROM usage_counters WHERE user_id = $1 FOR UPDATE`)).
		WithArgs("new-user").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO usage_counters (user_id, plan, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs("new-user", defaultPlan, 30, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := store.EnsurePeriod(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("EnsurePeriod: %v", err)
	}
	if u.Plan != defaultPlan || u.Used != 0 || u.Limit != 30 {
		t.Fatalf("unexpected default usage: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func TestDriverFor(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
	}{
		{"postgres://u:p@localhost/complyhr", "postgres", "postgres://u:p@localhost/complyhr"},
		{"postgresql://localhost/complyhr", "postgres", "postgresql://localhost/complyhr"},
		{"file:./data/complyhr.db", "sqlite3", "./data/complyhr.db?_foreign_keys=on&_busy_timeout=5000"},
		{"./data/x.db?_fk=1", "sqlite3", "./data/x.db?_fk=1"},
	}
	for _, tt := range tests {
		driver, dsn := driverFor(tt.url)
		if driver != tt.wantDriver || dsn != tt.wantDSN {
			t.Errorf("driverFor(%q) = %s, %s; want %s, %s", tt.url, driver, dsn, tt.wantDriver, tt.wantDSN)
		}
	}
}

func TestOpenInMemoryAppliesSchema(t *testing.T) {
	db, err := OpenInMemory(context.Background())
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM schema_migrations`); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count == 0 {
		t.Error("expected at least one applied migration")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db, err := OpenInMemory(ctx)
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()

	insert := `INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, 'x', ?, ?)`
	now := time.Now().Unix()
	if _, err := db.ExecContext(ctx, insert, "u1", "a@example.com", now, now); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err = db.ExecContext(ctx, insert, "u2", "a@example.com", now, now)
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}

	if !IsUniqueViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})) {
		t.Error("expected postgres 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error is not a unique violation")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db, err := OpenInMemory(ctx)
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()

	boom := errors.New("boom")
	err = WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES ('u1', 'a@example.com', 'x', 1, 1)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected rollback, found %d users", count)
	}
}

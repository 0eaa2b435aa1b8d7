// Package testdb builds migrated in-memory databases with minimal fixtures for tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
)

func New(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenInMemory(context.Background())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func SeedCompany(t *testing.T, db *sqlx.DB, id, sector, tier string) {
	t.Helper()
	now := time.Now().Unix()
	_, err := db.Exec(db.Rebind(`
		INSERT INTO companies (id, name, sector, employee_count_range, subscription_tier, subscription_status, created_at, updated_at)
		VALUES (?, ?, ?, '1-10', ?, 'active', ?, ?)
	`), id, "Company "+id, sector, tier, now, now)
	if err != nil {
		t.Fatalf("seed company: %v", err)
	}
}

func SeedEmployee(t *testing.T, db *sqlx.DB, companyID, id, first, last string, active bool) {
	t.Helper()
	now := time.Now().Unix()
	_, err := db.Exec(db.Rebind(`
		INSERT INTO employees (id, company_id, first_name, last_name, employment_type, start_date, weekly_hours, is_active,
			holiday_entitlement_days, holiday_days_used, rtw_status, contract_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'full_time', '2024-01-08', 40, ?, 28, 0, ?, ?, ?, ?)
	`), id, companyID, first, last, active, models.RTWPendingReview, models.NonCompliant, now, now)
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
}

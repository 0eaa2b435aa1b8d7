package policies

import (
	"context"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/storage"
)

func TestAcknowledgeRaceLosesToUniqueIndex(t *testing.T) {
	tests := []struct {
		name      string
		insertErr error
	}{
		{"sqlite", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}},
		{"postgres", &pq.Error{Code: "23505"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
			}
			defer mockDB.Close()

			db := sqlx.NewDb(mockDB, "sqlite3")
			bucket := storage.NewBucketWithFs(afero.NewMemMapFs(), config.StorageConfig{SigningSecret: "s"}, "https://api.example.com")
			s := NewService(db, audit.NewLogger(db), bucket, Config{AppURL: "https://app.example.com"})

			mock.ExpectQuery("SELECT (.+) FROM company_policies WHERE access_token = ?").
				WithArgs("tok-1").
				WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "title", "status", "requires_acknowledgement"}).
					AddRow("pol-1", "co-1", "Safeguarding", models.PolicyActive, true))
			mock.ExpectQuery("SELECT (.+) FROM employees WHERE id = ? AND company_id = ?").
				WithArgs("emp-1", "co-1").
				WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "first_name", "last_name", "is_active"}).
					AddRow("emp-1", "co-1", "Zoe", "Adams", true))
			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM policy_acknowledgements`).
				WithArgs("pol-1", "emp-1").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectExec("INSERT INTO policy_acknowledgements").
				WillReturnError(tt.insertErr)

			err = s.Acknowledge(context.Background(), "tok-1", AcknowledgeInput{SignerName: "Zoe Adams", EmployeeID: "emp-1"}, "203.0.113.7", "")
			if apperrors.StatusOf(err) != http.StatusConflict || err.Error() != "Already acknowledged" {
				t.Errorf("Acknowledge = %v, want 409 Already acknowledged", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

package cases

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
	"complyhr/internal/platform/testdb"
)

var fixedNow = time.Date(2026, time.May, 4, 9, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, tenant.Context) {
	db := testdb.New(t)
	testdb.SeedCompany(t, db, "co-1", "retail", models.TierProfessional)
	testdb.SeedCompany(t, db, "co-2", "retail", models.TierProfessional)
	testdb.SeedEmployee(t, db, "co-1", "emp-1", "Priya", "Shah", true)

	s := NewService(db, audit.NewLogger(db))
	s.now = func() time.Time { return fixedNow }
	return s, tenant.Context{CompanyID: "co-1", UserID: "user-1", Role: models.RoleManager}
}

func TestReference(t *testing.T) {
	tests := []struct {
		caseType string
		prefix   string
	}{
		{models.CaseDisciplinary, "DIS-"},
		{models.CaseGrievance, "GRV-"},
	}
	for _, tt := range tests {
		ref := Reference(tt.caseType, fixedNow)
		if !strings.HasPrefix(ref, tt.prefix) || ref != strings.ToUpper(ref) || len(ref) <= len(tt.prefix) {
			t.Errorf("Reference(%s) = %s", tt.caseType, ref)
		}
	}
}

func TestDisciplinaryLifecycle(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	c, err := s.CreateCase(ctx, tc, CreateInput{EmployeeID: "emp-1", CaseType: models.CaseDisciplinary, Subject: "Lateness"})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	if c.Status != models.CaseOpen || !strings.HasPrefix(c.CaseReference, "DIS-") || c.OpenedDate.String() != "2026-05-04" {
		t.Errorf("case = %+v", c)
	}
	if len(c.Steps) != 6 || c.Steps[0].Title != "Investigation" || c.Steps[5].Title != "Appeal (if requested)" {
		t.Fatalf("steps = %+v", c.Steps)
	}

	if _, err := s.CloseCase(ctx, tc, c.ID, "verbal_warning"); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("close with open steps = %v", err)
	}
	if _, err := s.CompleteStep(ctx, tc, c.ID, c.Steps[2].ID, ""); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("out of order completion = %v", err)
	}

	for i, step := range c.Steps {
		got, err := s.CompleteStep(ctx, tc, c.ID, step.ID, "done")
		if err != nil {
			t.Fatalf("CompleteStep %d: %v", i+1, err)
		}
		if !got.Steps[i].IsCompleted || got.Steps[i].CompletedBy == nil || *got.Steps[i].CompletedBy != "user-1" {
			t.Errorf("step %d = %+v", i+1, got.Steps[i])
		}
	}
	if _, err := s.CompleteStep(ctx, tc, c.ID, c.Steps[0].ID, ""); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("recompletion = %v", err)
	}

	if _, err := s.CloseCase(ctx, tc, c.ID, "upheld"); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("grievance outcome on disciplinary case = %v", err)
	}
	closed, err := s.CloseCase(ctx, tc, c.ID, "final_written_warning")
	if err != nil {
		t.Fatalf("CloseCase: %v", err)
	}
	if closed.Status != models.CaseClosed || *closed.Outcome != "final_written_warning" || closed.ClosedDate == nil {
		t.Errorf("closed = %+v", closed)
	}

	if _, err := s.UpdateStatus(ctx, tc, c.ID, models.CaseHearing); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("status change on closed case = %v", err)
	}

	logs, err := s.audit.List(ctx, "co-1", audit.Filter{})
	if err != nil {
		t.Fatalf("audit List: %v", err)
	}
	// open + six steps + close
	if len(logs) != 8 {
		t.Fatalf("audit entries = %d, want 8", len(logs))
	}
	if logs[0].Description != "Closed case with outcome: final written warning" {
		t.Errorf("latest audit = %s", logs[0].Description)
	}
	if logs[len(logs)-1].Description != "Opened disciplinary case: Lateness" {
		t.Errorf("first audit = %s", logs[len(logs)-1].Description)
	}
}

func TestCaseTenantIsolation(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	c, err := s.CreateCase(ctx, tc, CreateInput{EmployeeID: "emp-1", CaseType: models.CaseGrievance, Subject: "Rota"})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	other := tenant.Context{CompanyID: "co-2", UserID: "user-2", Role: models.RoleOwner}

	if _, err := s.Get(ctx, other, c.ID); apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("Get across tenants = %v", err)
	}
	if _, err := s.CompleteStep(ctx, other, c.ID, c.Steps[0].ID, ""); apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("CompleteStep across tenants = %v", err)
	}
	if _, err := s.CreateCase(ctx, other, CreateInput{EmployeeID: "emp-1", CaseType: models.CaseGrievance, Subject: "x"}); apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("CreateCase for foreign employee = %v", err)
	}
}

func TestCreateCaseValidation(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"unknown type", CreateInput{EmployeeID: "emp-1", CaseType: "capability", Subject: "x"}},
		{"blank subject", CreateInput{EmployeeID: "emp-1", CaseType: models.CaseGrievance, Subject: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateCase(ctx, tc, tt.in); apperrors.StatusOf(err) != http.StatusBadRequest {
				t.Errorf("err = %v", err)
			}
		})
	}

	list, err := s.List(ctx, tc, "")
	if err != nil || len(list) != 0 {
		t.Errorf("List = %d, %v", len(list), err)
	}
}

func TestUpdateStatus(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	c, err := s.CreateCase(ctx, tc, CreateInput{EmployeeID: "emp-1", CaseType: models.CaseGrievance, Subject: "Pay"})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	if _, err := s.UpdateStatus(ctx, tc, c.ID, models.CaseClosed); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("manual close = %v", err)
	}
	got, err := s.UpdateStatus(ctx, tc, c.ID, models.CaseInvestigation)
	if err != nil || got.Status != models.CaseInvestigation {
		t.Fatalf("UpdateStatus = %+v, %v", got, err)
	}

	filtered, err := s.List(ctx, tc, models.CaseInvestigation)
	if err != nil || len(filtered) != 1 {
		t.Errorf("List(investigation) = %d, %v", len(filtered), err)
	}
}

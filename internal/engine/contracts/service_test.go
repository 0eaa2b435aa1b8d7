package contracts

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"complyhr/internal/engine/employees"
	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/storage"
	"complyhr/internal/platform/tenant"
	"complyhr/internal/platform/testdb"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, tenant.Context) {
	db := testdb.New(t)
	testdb.SeedCompany(t, db, "co-1", "hospitality", models.TierProfessional)
	testdb.SeedCompany(t, db, "co-2", "hospitality", models.TierProfessional)
	testdb.SeedEmployee(t, db, "co-1", "emp-1", "Sam", "Patel", true)
	testdb.SeedEmployee(t, db, "co-2", "emp-other", "Other", "Tenant", true)

	bucket := storage.NewBucketWithFs(afero.NewMemMapFs(), config.StorageConfig{SigningSecret: "secret"}, "https://api.example.com")
	s := NewService(db, audit.NewLogger(db), bucket, Config{AppURL: "https://app.example.com/", MaxUploadBytes: 1024})
	s.now = func() time.Time { return fixedNow }
	return s, tenant.Context{CompanyID: "co-1", UserID: "user-1", Role: models.RoleAdmin}
}

func contractStatus(t *testing.T, s *Service) string {
	t.Helper()
	e, err := employees.Lookup(context.Background(), s.db, "co-1", "emp-1", false)
	if err != nil || e == nil {
		t.Fatalf("lookup employee: %v", err)
	}
	return e.ContractStatus
}

func TestCreateKeepsSingleCurrent(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	first, err := s.Create(ctx, tc, CreateInput{EmployeeID: "emp-1", ContractType: "fixed_term", StartDate: "2025-01-01", EndDate: "2026-03-20"})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if first.ExpiryStatus != models.RTWExpiringSoon {
		t.Errorf("expiry status = %s", first.ExpiryStatus)
	}
	if got := contractStatus(t, s); got != models.AtRisk {
		t.Errorf("contract_status = %s, want at_risk", got)
	}

	second, err := s.Create(ctx, tc, CreateInput{EmployeeID: "emp-1", ContractType: "full_time", StartDate: "2026-03-21", SalaryAmount: floatPtr(32000)})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.SalaryCurrency != "GBP" {
		t.Errorf("currency = %s", second.SalaryCurrency)
	}
	if got := contractStatus(t, s); got != models.Compliant {
		t.Errorf("contract_status = %s, want compliant", got)
	}

	current, err := s.List(ctx, tc, "emp-1", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(current) != 1 || current[0].ID != second.ID {
		t.Errorf("current contracts = %+v", current)
	}
}

func TestCreateValidation(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		in     CreateInput
		status int
	}{
		{"bad type", CreateInput{EmployeeID: "emp-1", ContractType: "casual", StartDate: "2026-01-01"}, http.StatusBadRequest},
		{"bad start", CreateInput{EmployeeID: "emp-1", ContractType: "full_time", StartDate: "01/01/2026"}, http.StatusBadRequest},
		{"end before start", CreateInput{EmployeeID: "emp-1", ContractType: "full_time", StartDate: "2026-01-01", EndDate: "2025-01-01"}, http.StatusBadRequest},
		{"other tenant employee", CreateInput{EmployeeID: "emp-other", ContractType: "full_time", StartDate: "2026-01-01"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tc, tt.in)
			if got := apperrors.StatusOf(err); got != tt.status {
				t.Errorf("status = %d, want %d (err %v)", got, tt.status, err)
			}
		})
	}
}

func TestSigningFlow(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	c, err := s.Create(ctx, tc, CreateInput{EmployeeID: "emp-1", ContractType: "part_time", StartDate: "2026-04-01"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	link, err := s.GenerateSigningLink(ctx, tc, c.ID)
	if err != nil {
		t.Fatalf("GenerateSigningLink: %v", err)
	}
	if link.URL != "https://app.example.com/sign/"+link.Token {
		t.Errorf("url = %s", link.URL)
	}
	again, err := s.GenerateSigningLink(ctx, tc, c.ID)
	if err != nil || again.Token != link.Token {
		t.Errorf("second link = %+v, %v", again, err)
	}

	png, err := s.SigningQRCode(ctx, tc, c.ID, 256)
	if err != nil || len(png) == 0 {
		t.Fatalf("SigningQRCode: %d bytes, %v", len(png), err)
	}

	view, err := s.GetForSigning(ctx, link.Token)
	if err != nil {
		t.Fatalf("GetForSigning: %v", err)
	}
	if view.Employee.FirstName != "Sam" || view.Company.Name != "Company co-1" || view.SigningStatus != models.SigningPending {
		t.Errorf("view = %+v", view)
	}

	tests := []struct {
		name   string
		in     SignInput
		status int
	}{
		{"missing name", SignInput{SignatureData: "data:image/png;base64,AAA"}, http.StatusBadRequest},
		{"too large", SignInput{SignatureData: strings.Repeat("A", MaxSignatureChars+1), SignerName: "Sam"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Sign(ctx, link.Token, tt.in, "203.0.113.9")
			if got := apperrors.StatusOf(err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}

	if err := s.Sign(ctx, link.Token, SignInput{SignatureData: "data:image/png;base64,AAA", SignerName: " Sam Patel "}, "203.0.113.9"); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	err = s.Sign(ctx, link.Token, SignInput{SignatureData: "data:image/png;base64,BBB", SignerName: "Someone Else"}, "198.51.100.1")
	if apperrors.StatusOf(err) != http.StatusBadRequest || err.Error() != "Contract is already signed" {
		t.Errorf("second Sign = %v", err)
	}

	signed, err := s.Get(ctx, tc, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if signed.SigningStatus != models.SigningSigned || *signed.SignatureData != "data:image/png;base64,AAA" || *signed.SignerName != "Sam Patel" {
		t.Errorf("signed contract = %+v", signed.Contract)
	}
	if signed.SignedAt == nil || *signed.SignedAt != fixedNow.Unix() {
		t.Errorf("signed_at = %v", signed.SignedAt)
	}

	if _, err := s.GenerateSigningLink(ctx, tc, c.ID); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("link after signing = %v", err)
	}

	logs, err := s.audit.List(ctx, "co-1", audit.Filter{EntityType: "contract"})
	if err != nil {
		t.Fatalf("audit List: %v", err)
	}
	if len(logs) == 0 || logs[0].Description != "Contract signed by Sam Patel" || logs[0].UserID != nil {
		t.Errorf("latest audit = %+v", logs)
	}
}

func TestSignUnknownToken(t *testing.T) {
	s, _ := setup(t)
	err := s.Sign(context.Background(), "nope", SignInput{SignatureData: "x", SignerName: "y"}, "unknown")
	if apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("status = %d", apperrors.StatusOf(err))
	}
}

func TestAttachDocument(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	c, err := s.Create(ctx, tc, CreateInput{EmployeeID: "emp-1", ContractType: "full_time", StartDate: "2026-01-01"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.AttachDocument(ctx, tc, c.ID, "contract.exe", 10, strings.NewReader("x")); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("exe upload = %v", err)
	}
	if _, err := s.AttachDocument(ctx, tc, c.ID, "contract.pdf", 4096, strings.NewReader("x")); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("oversized upload = %v", err)
	}

	v, err := s.AttachDocument(ctx, tc, c.ID, "Contract.PDF", 7, strings.NewReader("%PDF-1."))
	if err != nil {
		t.Fatalf("AttachDocument: %v", err)
	}
	if !strings.HasPrefix(*v.DocumentPath, "co-1/contracts/") || !strings.HasSuffix(*v.DocumentPath, ".pdf") {
		t.Errorf("path = %s", *v.DocumentPath)
	}
	if !strings.HasPrefix(v.DocumentURL, "https://api.example.com/files/co-1/contracts/") {
		t.Errorf("url = %s", v.DocumentURL)
	}
}

func TestRefreshRollups(t *testing.T) {
	s, tc := setup(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, tc, CreateInput{EmployeeID: "emp-1", ContractType: "fixed_term", StartDate: "2025-01-01", EndDate: "2026-06-30"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := contractStatus(t, s); got != models.Compliant {
		t.Fatalf("contract_status = %s", got)
	}

	s.now = func() time.Time { return fixedNow.AddDate(0, 3, 0) }
	changed, err := s.RefreshRollups(ctx)
	if err != nil {
		t.Fatalf("RefreshRollups: %v", err)
	}
	// emp-1 becomes at risk; emp-other has no contract and already reads non_compliant.
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}
	if got := contractStatus(t, s); got != models.AtRisk {
		t.Errorf("contract_status = %s, want at_risk", got)
	}
}

func floatPtr(v float64) *float64 { return &v }

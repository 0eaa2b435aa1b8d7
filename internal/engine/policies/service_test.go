package policies

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/storage"
	"complyhr/internal/platform/tenant"
	"complyhr/internal/platform/testdb"
)

var fixedNow = time.Date(2026, time.February, 2, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T, tier string) (*Service, tenant.Context) {
	db := testdb.New(t)
	testdb.SeedCompany(t, db, "co-1", "care_homes", tier)
	testdb.SeedEmployee(t, db, "co-1", "emp-1", "Zoe", "Adams", true)
	testdb.SeedEmployee(t, db, "co-1", "emp-2", "Ben", "Carter", true)
	testdb.SeedEmployee(t, db, "co-1", "emp-left", "Leo", "Gone", false)

	bucket := storage.NewBucketWithFs(afero.NewMemMapFs(), config.StorageConfig{SigningSecret: "s"}, "https://api.example.com")
	s := NewService(db, audit.NewLogger(db), bucket, Config{AppURL: "https://app.example.com", MaxUploadBytes: 1 << 20})
	s.now = func() time.Time { return fixedNow }

	desc := "Safeguarding adults at risk"
	for _, tpl := range []models.PolicyTemplate{
		{ID: "tpl-safeguarding", Title: "Safeguarding", Category: "care", Description: &desc, Content: "# Safeguarding", ApplicableSectors: models.StringList{"care_homes"}, IsMandatory: true},
		{ID: "tpl-alcohol", Title: "Alcohol Licensing", Category: "licensing", Content: "# Licensing", ApplicableSectors: models.StringList{"hospitality"}},
		{ID: "tpl-equality", Title: "Equality", Category: "hr", Content: "# Equality"},
	} {
		if err := s.SeedTemplate(context.Background(), tpl); err != nil {
			t.Fatalf("seed template: %v", err)
		}
	}
	return s, tenant.Context{CompanyID: "co-1", UserID: "user-1", Role: models.RoleAdmin}
}

func TestTemplatesFilteredBySector(t *testing.T) {
	s, tc := setup(t, models.TierProfessional)
	list, err := s.Templates(context.Background(), tc)
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	var ids []string
	for _, tpl := range list {
		ids = append(ids, tpl.ID)
	}
	if strings.Join(ids, ",") != "tpl-safeguarding,tpl-equality" {
		t.Errorf("templates = %v", ids)
	}
}

func TestStatusMachine(t *testing.T) {
	s, tc := setup(t, models.TierProfessional)
	ctx := context.Background()

	p, err := s.Adopt(ctx, tc, "tpl-equality")
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	if p.Status != models.PolicyDraft || *p.Content != "# Equality" || *p.TemplateID != "tpl-equality" {
		t.Fatalf("adopted = %+v", p)
	}

	if _, err := s.Archive(ctx, tc, p.ID); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("draft -> archived = %v", err)
	}

	active, err := s.Activate(ctx, tc, p.ID)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if active.AccessToken == nil || active.ActivatedBy == nil || *active.ActivatedBy != "user-1" {
		t.Errorf("active = %+v", active.CompanyPolicy)
	}
	token := *active.AccessToken
	if active.AccessURL != "https://app.example.com/policy/"+token {
		t.Errorf("access url = %s", active.AccessURL)
	}

	if _, err := s.Activate(ctx, tc, p.ID); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("active -> active = %v", err)
	}
	if _, err := s.Archive(ctx, tc, p.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, err := s.Fetch(ctx, token); apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("Fetch archived = %v", err)
	}

	draft, err := s.Reactivate(ctx, tc, p.ID)
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if draft.Status != models.PolicyDraft || draft.ArchivedAt != nil {
		t.Errorf("reactivated = %+v", draft.CompanyPolicy)
	}
	again, err := s.Activate(ctx, tc, p.ID)
	if err != nil {
		t.Fatalf("second Activate: %v", err)
	}
	if *again.AccessToken != token {
		t.Errorf("token changed on reactivation")
	}
}

func TestStarterPlanGates(t *testing.T) {
	s, tc := setup(t, models.TierStarter)
	ctx := context.Background()

	var first *models.CompanyPolicy
	for i := 0; i < StarterPolicyLimit; i++ {
		p, err := s.Adopt(ctx, tc, "tpl-equality")
		if err != nil {
			t.Fatalf("Adopt %d: %v", i, err)
		}
		if first == nil {
			first = p
		}
	}
	_, err := s.Adopt(ctx, tc, "tpl-safeguarding")
	if apperrors.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("11th adopt = %v", err)
	}
	var appErr *apperrors.Error
	if e, ok := err.(*apperrors.Error); ok {
		appErr = e
	}
	if appErr == nil || appErr.Code != apperrors.ErrCodeQuotaExceeded {
		t.Errorf("error = %#v", err)
	}

	if _, err := s.Activate(ctx, tc, first.ID); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if _, err := s.RegenerateToken(ctx, tc, first.ID); apperrors.StatusOf(err) != http.StatusForbidden {
		t.Errorf("RegenerateToken on starter = %v", err)
	}
	if _, err := s.AccessQRCode(ctx, tc, first.ID, 256); apperrors.StatusOf(err) != http.StatusForbidden {
		t.Errorf("AccessQRCode on starter = %v", err)
	}
	if _, err := s.ListAcknowledgements(ctx, tc, first.ID); apperrors.StatusOf(err) != http.StatusForbidden {
		t.Errorf("ListAcknowledgements on starter = %v", err)
	}

	if _, err := s.Archive(ctx, tc, first.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, err := s.Adopt(ctx, tc, "tpl-safeguarding"); err != nil {
		t.Errorf("adopt after archiving = %v", err)
	}
	if _, err := s.Reactivate(ctx, tc, first.ID); apperrors.StatusOf(err) != http.StatusForbidden {
		t.Errorf("reactivate over quota = %v", err)
	}
}

func activePolicy(t *testing.T, s *Service, tc tenant.Context) (string, string) {
	t.Helper()
	p, err := s.Adopt(context.Background(), tc, "tpl-safeguarding")
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	v, err := s.Activate(context.Background(), tc, p.ID)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	return p.ID, *v.AccessToken
}

func TestPublicAcknowledgement(t *testing.T) {
	s, tc := setup(t, models.TierProfessional)
	ctx := context.Background()
	id, token := activePolicy(t, s, tc)

	pub, err := s.Fetch(ctx, token)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if pub.CompanyName != "Company co-1" || !pub.RequiresAcknowledgement || len(pub.Employees) != 2 {
		t.Fatalf("public = %+v", pub)
	}
	if pub.Employees[0].Name != "Ben Carter" || pub.Employees[0].Acknowledged {
		t.Errorf("roster[0] = %+v", pub.Employees[0])
	}

	tests := []struct {
		name   string
		token  string
		in     AcknowledgeInput
		status int
	}{
		{"unknown token", "missing", AcknowledgeInput{SignerName: "Zoe"}, http.StatusNotFound},
		{"blank name", token, AcknowledgeInput{SignerName: " "}, http.StatusBadRequest},
		{"inactive employee", token, AcknowledgeInput{SignerName: "Leo", EmployeeID: "emp-left"}, http.StatusBadRequest},
		{"bad email", token, AcknowledgeInput{SignerName: "Zoe", SignerEmail: "nope"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Acknowledge(ctx, tt.token, tt.in, "203.0.113.7", "curl/8")
			if got := apperrors.StatusOf(err); got != tt.status {
				t.Errorf("status = %d, want %d (%v)", got, tt.status, err)
			}
		})
	}

	in := AcknowledgeInput{SignerName: "Zoe Adams", EmployeeID: "emp-1"}
	if err := s.Acknowledge(ctx, token, in, "203.0.113.7", "Mozilla/5.0"); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if err := s.Acknowledge(ctx, token, in, "203.0.113.7", "Mozilla/5.0"); apperrors.StatusOf(err) != http.StatusConflict {
		t.Errorf("duplicate = %v", err)
	}
	// Signers without an employee identity are not deduplicated.
	for i := 0; i < 2; i++ {
		if err := s.Acknowledge(ctx, token, AcknowledgeInput{SignerName: "Agency Worker"}, "", ""); err != nil {
			t.Fatalf("anonymous Acknowledge: %v", err)
		}
	}

	acks, err := s.ListAcknowledgements(ctx, tc, id)
	if err != nil || len(acks) != 3 {
		t.Fatalf("ListAcknowledgements = %d, %v", len(acks), err)
	}

	pub, err = s.Fetch(ctx, token)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !pub.Employees[1].Acknowledged {
		t.Errorf("roster[1] = %+v", pub.Employees[1])
	}
}

func TestAcknowledgementUniqueIndex(t *testing.T) {
	s, tc := setup(t, models.TierProfessional)
	ctx := context.Background()
	id, _ := activePolicy(t, s, tc)

	emp := "emp-2"
	insert := func() error {
		return s.repo.InsertAcknowledgement(ctx, &models.PolicyAcknowledgement{
			ID: uuid.NewString(), PolicyID: id, CompanyID: "co-1", EmployeeID: &emp,
			SignerName: "Ben Carter", AcknowledgedAt: fixedNow.Unix(),
		})
	}
	if err := insert(); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := insert(); !database.IsUniqueViolation(err) {
		t.Errorf("second insert = %v, want unique violation", err)
	}
}

func TestAcknowledgeNotRequired(t *testing.T) {
	s, tc := setup(t, models.TierProfessional)
	ctx := context.Background()
	id, token := activePolicy(t, s, tc)

	off := false
	if _, err := s.Update(ctx, tc, id, UpdateInput{RequiresAcknowledgement: &off}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	pub, err := s.Fetch(ctx, token)
	if err != nil || len(pub.Employees) != 0 {
		t.Fatalf("Fetch = %+v, %v", pub, err)
	}
	err = s.Acknowledge(ctx, token, AcknowledgeInput{SignerName: "Zoe"}, "", "")
	if apperrors.StatusOf(err) != http.StatusBadRequest || err.Error() != "This policy does not require acknowledgement" {
		t.Errorf("Acknowledge = %v", err)
	}
}

func TestRegenerateTokenInvalidatesLink(t *testing.T) {
	s, tc := setup(t, models.TierProfessional)
	ctx := context.Background()
	id, token := activePolicy(t, s, tc)

	link, err := s.RegenerateToken(ctx, tc, id)
	if err != nil {
		t.Fatalf("RegenerateToken: %v", err)
	}
	if link.Token == token {
		t.Fatal("token unchanged")
	}
	if _, err := s.Fetch(ctx, token); apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("old token = %v", err)
	}
	if _, err := s.Fetch(ctx, link.Token); err != nil {
		t.Errorf("new token = %v", err)
	}
	png, err := s.AccessQRCode(ctx, tc, id, 0)
	if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("AccessQRCode = %d bytes, %v", len(png), err)
	}
}

func TestUploadAndReviewDates(t *testing.T) {
	s, tc := setup(t, models.TierProfessional)
	ctx := context.Background()

	if _, err := s.Upload(ctx, tc, UploadInput{FileName: "handbook.docx", Size: 10}, strings.NewReader("x")); apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("docx upload = %v", err)
	}
	p, err := s.Upload(ctx, tc, UploadInput{FileName: "Staff Handbook.pdf", Size: 8}, strings.NewReader("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if p.Title != "Staff Handbook" || *p.FileSizeBytes != 8 || !strings.HasPrefix(*p.FilePath, "co-1/policies/") {
		t.Errorf("uploaded = %+v", p)
	}

	past := "2026-01-15"
	if _, err := s.Update(ctx, tc, p.ID, UpdateInput{ReviewDate: &past}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n, err := s.OverdueReviews(ctx, tc); err != nil || n != 0 {
		t.Errorf("draft overdue = %d, %v", n, err)
	}
	v, err := s.Activate(ctx, tc, p.ID)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !strings.HasPrefix(v.DocumentURL, "https://api.example.com/files/co-1/policies/") {
		t.Errorf("document url = %s", v.DocumentURL)
	}
	if n, err := s.OverdueReviews(ctx, tc); err != nil || n != 1 {
		t.Errorf("overdue = %d, %v", n, err)
	}
}

func TestExportAcknowledgements(t *testing.T) {
	tests := []struct {
		tier   string
		status int
	}{
		{models.TierProfessional, http.StatusForbidden},
		{models.TierEnterprise, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			s, tc := setup(t, tt.tier)
			ctx := context.Background()
			id, token := activePolicy(t, s, tc)
			if err := s.Acknowledge(ctx, token, AcknowledgeInput{SignerName: "Zoe Adams", EmployeeID: "emp-1"}, "198.51.100.2", "ua"); err != nil {
				t.Fatalf("Acknowledge: %v", err)
			}

			var buf bytes.Buffer
			err := s.ExportAcknowledgements(ctx, tc, id, &buf)
			if got := apperrors.StatusOf(err); got != tt.status {
				t.Fatalf("status = %d, want %d", got, tt.status)
			}
			if err != nil {
				return
			}
			rows, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("read csv: %v", err)
			}
			want := fmt.Sprintf("Zoe Adams||emp-1|198.51.100.2|ua|%s", fixedNow.Format(time.RFC3339))
			if len(rows) != 2 || strings.Join(rows[1], "|") != want {
				t.Errorf("rows = %v", rows)
			}
		})
	}
}

func TestExportNeutralisesFormulas(t *testing.T) {
	s, tc := setup(t, models.TierEnterprise)
	ctx := context.Background()
	id, token := activePolicy(t, s, tc)
	name := `=HYPERLINK("http://evil.example","click")`
	if err := s.Acknowledge(ctx, token, AcknowledgeInput{SignerName: name, EmployeeID: "emp-1"}, "198.51.100.2", "@SUM(A1)"); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}

	var buf bytes.Buffer
	if err := s.ExportAcknowledgements(ctx, tc, id, &buf); err != nil {
		t.Fatalf("ExportAcknowledgements: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][0] != "'"+name || rows[1][4] != "'@SUM(A1)" {
		t.Errorf("row = %q", rows[1])
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Zoe Adams", "Zoe Adams"},
		{"", ""},
		{"=1+1", "'=1+1"},
		{"+44 7700 900000", "'+44 7700 900000"},
		{"-2", "'-2"},
		{"@cmd", "'@cmd"},
		{"\tTab", "'\tTab"},
	}
	for _, tt := range tests {
		if got := cell(tt.in); got != tt.want {
			t.Errorf("cell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

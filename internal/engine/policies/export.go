package policies

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
)

var exportHeader = []string{"signer_name", "signer_email", "employee_id", "ip_address", "user_agent", "acknowledged_at"}

// ExportAcknowledgements writes a policy's acknowledgements as CSV.
func (s *Service) ExportAcknowledgements(ctx context.Context, tc tenant.Context, id string, w io.Writer) error {
	c, err := s.company(ctx, tc)
	if err != nil {
		return err
	}
	if !canExport(c.SubscriptionTier) {
		return upgradeRequired("Acknowledgement export", models.TierEnterprise)
	}
	if _, err := s.get(ctx, tc, id); err != nil {
		return err
	}
	acks, err := s.repo.Acknowledgements(ctx, id)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, a := range acks {
		record := []string{
			cell(a.SignerName),
			cell(deref(a.SignerEmail)),
			deref(a.EmployeeID),
			cell(deref(a.IPAddress)),
			cell(deref(a.UserAgent)),
			time.Unix(a.AcknowledgedAt, 0).UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// cell neutralises values a spreadsheet would evaluate as a formula.
func cell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package policies

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"complyhr/internal/engine/employees"
	"complyhr/internal/pkg/clientinfo"
	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
)

type RosterEmployee struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Acknowledged bool   `json:"acknowledged"`
}

// PublicPolicy is what anyone holding a policy's access token may read.
type PublicPolicy struct {
	ID                      string           `json:"id"`
	Title                   string           `json:"title"`
	Description             *string          `json:"description"`
	Content                 *string          `json:"content,omitempty"`
	Category                string           `json:"category"`
	Version                 string           `json:"version"`
	CompanyName             string           `json:"companyName"`
	RequiresAcknowledgement bool             `json:"requiresAcknowledgement"`
	DocumentURL             *string          `json:"documentUrl"`
	Employees               []RosterEmployee `json:"employees"`
}

// Fetch resolves an access token to an active policy.
func (s *Service) Fetch(ctx context.Context, token string) (*PublicPolicy, error) {
	p, err := s.repo.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status != models.PolicyActive {
		return nil, apperrors.NotFound("Policy not found or no longer available")
	}

	out := &PublicPolicy{
		ID:                      p.ID,
		Title:                   p.Title,
		Description:             p.Description,
		Content:                 p.Content,
		Category:                p.Category,
		Version:                 p.Version,
		CompanyName:             "Unknown",
		RequiresAcknowledgement: p.RequiresAcknowledgement,
		Employees:               []RosterEmployee{},
	}
	c, err := s.companies.GetByID(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		out.CompanyName = c.Name
	}
	if p.FilePath != nil {
		u := s.bucket.SignedURL(*p.FilePath, s.now())
		out.DocumentURL = &u
	}

	if p.RequiresAcknowledgement {
		roster, err := s.repo.Roster(ctx, p.CompanyID, p.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range roster {
			out.Employees = append(out.Employees, RosterEmployee{
				ID:           e.ID,
				Name:         e.FirstName + " " + e.LastName,
				Acknowledged: e.Acknowledged,
			})
		}
	}
	return out, nil
}

type AcknowledgeInput struct {
	SignerName  string `json:"signerName"`
	EmployeeID  string `json:"employeeId"`
	SignerEmail string `json:"signerEmail"`
}

// Acknowledge records a one-time acknowledgement. A second acknowledgement by the
// same employee is a conflict whether caught up front or by the unique index.
func (s *Service) Acknowledge(ctx context.Context, token string, in AcknowledgeInput, ip, userAgent string) error {
	p, err := s.repo.GetByAccessToken(ctx, token)
	if err != nil {
		return err
	}
	if p == nil {
		return apperrors.NotFound("Policy not found")
	}
	if p.Status != models.PolicyActive {
		return apperrors.InvalidInput("Policy is no longer active")
	}
	if !p.RequiresAcknowledgement {
		return apperrors.InvalidInput("This policy does not require acknowledgement")
	}
	name := strings.TrimSpace(in.SignerName)
	if name == "" {
		return apperrors.InvalidInput("Name is required")
	}

	ack := &models.PolicyAcknowledgement{
		ID:             uuid.NewString(),
		PolicyID:       p.ID,
		CompanyID:      p.CompanyID,
		SignerName:     name,
		AcknowledgedAt: s.now().Unix(),
	}
	if email := strings.TrimSpace(in.SignerEmail); email != "" {
		if err := validator.Email(email); err != nil {
			return apperrors.InvalidInput(err.Error())
		}
		ack.SignerEmail = &email
	}
	if ip != "" {
		ack.IPAddress = &ip
	}
	if userAgent != "" {
		ack.UserAgent = &userAgent
	}

	if employeeID := strings.TrimSpace(in.EmployeeID); employeeID != "" {
		emp, err := employees.Lookup(ctx, s.db, p.CompanyID, employeeID, true)
		if err != nil {
			return err
		}
		if emp == nil {
			return apperrors.InvalidInput("Unknown employee")
		}
		done, err := s.repo.Acknowledged(ctx, p.ID, employeeID)
		if err != nil {
			return err
		}
		if done {
			return apperrors.Conflict("Already acknowledged")
		}
		ack.EmployeeID = &employeeID
	}

	if err := s.repo.InsertAcknowledgement(ctx, ack); err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("Already acknowledged")
		}
		return err
	}

	os, browser := clientinfo.ParseUserAgent(userAgent)
	metadata := map[string]interface{}{"ip_address": ip, "os": os, "browser": browser}
	if ack.EmployeeID != nil {
		metadata["employee_id"] = *ack.EmployeeID
	}
	s.audit.Record(ctx, audit.Entry{
		CompanyID:   p.CompanyID,
		Action:      audit.ActionApprove,
		EntityType:  "company_policy",
		EntityID:    p.ID,
		Description: "Policy acknowledged by " + name,
		Metadata:    metadata,
		IPAddress:   ip,
	})
	return nil
}

package contracts

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/models"
)

type SigningParty struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SigningCompany struct {
	Name string `json:"name"`
}

// SigningView is what a counterparty holding the signature token may see.
type SigningView struct {
	ID             string          `json:"id"`
	ContractType   string          `json:"contractType"`
	StartDate      models.Date     `json:"startDate"`
	EndDate        *models.Date    `json:"endDate"`
	WeeklyHours    *float64        `json:"weeklyHours"`
	SalaryAmount   *float64        `json:"salaryAmount"`
	SalaryCurrency string          `json:"salaryCurrency"`
	SigningStatus  string          `json:"signingStatus"`
	SignerName     *string         `json:"signerName"`
	Notes          *string         `json:"notes"`
	DocumentURL    *string         `json:"documentUrl"`
	Employee       *SigningParty   `json:"employee"`
	Company        *SigningCompany `json:"company"`
}

func (s *Service) GetForSigning(ctx context.Context, token string) (*SigningView, error) {
	row, err := s.repo.GetBySignatureToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.NotFound("Contract not found")
	}

	v := &SigningView{
		ID:             row.ID,
		ContractType:   row.ContractType,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		WeeklyHours:    row.WeeklyHours,
		SalaryAmount:   row.SalaryAmount,
		SalaryCurrency: row.SalaryCurrency,
		SigningStatus:  row.SigningStatus,
		SignerName:     row.SignerName,
		Notes:          row.Notes,
		Employee:       &SigningParty{FirstName: row.EmployeeFirstName, LastName: row.EmployeeLastName},
		Company:        &SigningCompany{Name: row.CompanyName},
	}
	if row.DocumentPath != nil {
		u := s.bucket.SignedURL(*row.DocumentPath, s.now())
		v.DocumentURL = &u
	}
	return v, nil
}

type SignInput struct {
	SignatureData string `json:"signatureData"`
	SignerName    string `json:"signerName"`
}

// Sign records a signature once. Every later attempt fails without touching the stored signature.
func (s *Service) Sign(ctx context.Context, token string, in SignInput, signerIP string) error {
	row, err := s.repo.GetBySignatureToken(ctx, token)
	if err != nil {
		return err
	}
	if row == nil {
		return apperrors.NotFound("Contract not found")
	}
	if row.SigningStatus == models.SigningSigned {
		return apperrors.InvalidInput("Contract is already signed")
	}

	name := strings.TrimSpace(in.SignerName)
	if in.SignatureData == "" || name == "" {
		return apperrors.InvalidInput("Signature and name are required")
	}
	if len(in.SignatureData) > MaxSignatureChars {
		return apperrors.InvalidInput("Signature data too large")
	}

	signed, err := s.repo.Sign(ctx, row.ID, in.SignatureData, name, signerIP, s.now().Unix())
	if err != nil {
		log.Error().Err(err).Str("contract_id", row.ID).Msg("failed to save signature")
		return apperrors.New(http.StatusInternalServerError, apperrors.ErrCodeInternal, "Failed to save signature")
	}
	if !signed {
		return apperrors.InvalidInput("Contract is already signed")
	}

	s.audit.Record(ctx, audit.Entry{
		CompanyID:   row.CompanyID,
		Action:      audit.ActionUpdate,
		EntityType:  "contract",
		EntityID:    row.ID,
		Description: "Contract signed by " + name,
		Metadata:    map[string]interface{}{"signer_ip": signerIP},
		IPAddress:   signerIP,
	})
	return nil
}

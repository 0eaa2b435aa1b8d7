// Package dashboard computes a company's compliance overview on read.
package dashboard

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"complyhr/internal/engine/alerts"
	"complyhr/internal/engine/cases"
	"complyhr/internal/engine/compliance"
	"complyhr/internal/engine/contracts"
	"complyhr/internal/engine/employees"
	"complyhr/internal/engine/policies"
	"complyhr/internal/engine/rtw"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
)

type AreaSummary struct {
	Area   compliance.Area `json:"area"`
	Status string          `json:"status"`
	Issues int             `json:"issues"`
}

type Summary struct {
	OverallStatus        string        `json:"overall_status"`
	Areas                []AreaSummary `json:"areas"`
	ActiveEmployees      int           `json:"active_employees"`
	PendingRTWChecks     int           `json:"pending_rtw_checks"`
	OpenCases            int           `json:"open_cases"`
	UnacknowledgedAlerts int           `json:"unacknowledged_alerts"`
	GeneratedAt          int64         `json:"generated_at"`
}

type Service struct {
	employees *employees.Repository
	rtw       *rtw.Repository
	contracts *contracts.Repository
	cases     *cases.Repository
	policies  *policies.Service
	alerts    *alerts.Service
	now       func() time.Time
}

func NewService(db *sqlx.DB, policySvc *policies.Service, alertSvc *alerts.Service) *Service {
	return &Service{
		employees: employees.NewRepository(db),
		rtw:       rtw.NewRepository(db),
		contracts: contracts.NewRepository(db),
		cases:     cases.NewRepository(db),
		policies:  policySvc,
		alerts:    alertSvc,
		now:       time.Now,
	}
}

func atRisk(status string) bool {
	return status == models.RTWExpired || status == models.RTWExpiringSoon
}

func (s *Service) Summary(ctx context.Context, tc tenant.Context) (*Summary, error) {
	now := s.now()

	roster, err := s.employees.ActiveRoster(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(roster))
	for _, e := range roster {
		active[e.ID] = true
	}

	checks, err := s.rtw.LatestForCompany(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	rtwIssues := 0
	checked := make(map[string]bool, len(checks))
	for _, c := range checks {
		checked[c.EmployeeID] = true
		if atRisk(compliance.RTWStatus(c.ExpiryDate, now)) {
			rtwIssues++
		}
	}

	current, err := s.contracts.List(ctx, tc.CompanyID, "", true)
	if err != nil {
		return nil, err
	}
	contractIssues := 0
	for _, c := range current {
		if active[c.EmployeeID] && atRisk(compliance.ContractExpiryStatus(c.RenewalDate, c.EndDate, now)) {
			contractIssues++
		}
	}

	policyIssues, err := s.policies.OverdueReviews(ctx, tc)
	if err != nil {
		return nil, err
	}
	openCases, err := s.cases.OpenCount(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	unacknowledged, err := s.alerts.Unacknowledged(ctx, tc)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		ActiveEmployees:      len(roster),
		OpenCases:            openCases,
		UnacknowledgedAlerts: unacknowledged,
		GeneratedAt:          now.Unix(),
	}
	for _, e := range roster {
		if !checked[e.ID] {
			out.PendingRTWChecks++
		}
	}

	statuses := make([]string, 0, 4)
	for _, a := range []struct {
		area   compliance.Area
		issues int
	}{
		{compliance.AreaRTW, rtwIssues},
		{compliance.AreaContracts, contractIssues},
		{compliance.AreaPolicies, policyIssues},
		{compliance.AreaCases, openCases},
	} {
		status := compliance.AreaStatus(a.area, a.issues)
		out.Areas = append(out.Areas, AreaSummary{Area: a.area, Status: status, Issues: a.issues})
		statuses = append(statuses, status)
	}
	out.OverallStatus = compliance.OverallCompliance(statuses)
	return out, nil
}

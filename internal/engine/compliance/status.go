// Package compliance derives compliance states from dates and issue counts.
// Every function is pure; callers supply the clock.
package compliance

import (
	"time"

	"complyhr/internal/platform/models"
)

// ExpiryLookahead is how far ahead an expiry turns a document amber.
const ExpiryLookahead = 30 * 24 * time.Hour

// expiryStatus compares the start of the expiry day (UTC) against now.
func expiryStatus(expiry *models.Date, now time.Time) string {
	if expiry == nil {
		return models.RTWValid
	}
	at := expiry.Time
	switch {
	case at.Before(now):
		return models.RTWExpired
	case at.Before(now.Add(ExpiryLookahead)):
		return models.RTWExpiringSoon
	default:
		return models.RTWValid
	}
}

// RTWStatus classifies a right-to-work document. No expiry means indefinite leave.
func RTWStatus(expiry *models.Date, now time.Time) string {
	return expiryStatus(expiry, now)
}

// ContractExpiryStatus applies the RTW rule to the renewal date, falling back to the end date.
func ContractExpiryStatus(renewal, end *models.Date, now time.Time) string {
	if renewal != nil {
		return expiryStatus(renewal, now)
	}
	return expiryStatus(end, now)
}

// ContractRollup maps a current contract's expiry status onto the employee's contract_status.
func ContractRollup(expiryStatus string) string {
	switch expiryStatus {
	case models.RTWExpired:
		return models.NonCompliant
	case models.RTWExpiringSoon:
		return models.AtRisk
	default:
		return models.Compliant
	}
}

type Area string

const (
	AreaRTW       Area = "right_to_work"
	AreaContracts Area = "contracts"
	AreaPolicies  Area = "policies"
	AreaCases     Area = "cases"
)

// AreaStatus: RTW and contracts go red above two issues; policies and cases only reach amber.
func AreaStatus(area Area, issues int) string {
	if issues <= 0 {
		return models.Compliant
	}
	switch area {
	case AreaRTW, AreaContracts:
		if issues <= 2 {
			return models.AtRisk
		}
		return models.NonCompliant
	default:
		return models.AtRisk
	}
}

// OverallCompliance is the worst of the given area statuses.
func OverallCompliance(statuses []string) string {
	overall := models.Compliant
	for _, s := range statuses {
		if s == models.NonCompliant {
			return models.NonCompliant
		}
		if s == models.AtRisk {
			overall = models.AtRisk
		}
	}
	return overall
}

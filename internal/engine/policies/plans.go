package policies

import (
	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/platform/models"
)

// StarterPolicyLimit caps non-archived policies held by a starter tenant.
const StarterPolicyLimit = 10

func canDistribute(tier string) bool {
	return tier != models.TierStarter
}

func canTrackAcknowledgements(tier string) bool {
	return tier != models.TierStarter
}

func canExport(tier string) bool {
	return tier == models.TierEnterprise
}

func upgradeRequired(feature, plan string) error {
	return apperrors.Forbidden(feature + " is available on the " + plan + " plan")
}

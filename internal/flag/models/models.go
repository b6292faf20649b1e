package models

import (
	"tasklane/pkg/domain"
	dErrors "tasklane/pkg/domain-errors"
)

// FeatureFlag is a per-tenant rollout decision rule set. The global Enabled
// field is a kill switch: a disabled flag is off for everyone, overrides
// included. Resolution precedence lives in the flag service; this type only
// carries the configuration.
type FeatureFlag struct {
	ID                string            `json:"id"`
	Enabled           bool              `json:"enabled"`
	TierRequired      domain.Tier       `json:"tier_required,omitempty"`
	RolloutPercentage int               `json:"rollout_percentage"`
	OrgWhitelist      []domain.TenantID `json:"org_whitelist,omitempty"`
	OrgBlacklist      []domain.TenantID `json:"org_blacklist,omitempty"`
}

// Validate checks the flag's invariants.
func (f FeatureFlag) Validate() error {
	if f.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "flag field id is required")
	}
	if f.RolloutPercentage < 0 || f.RolloutPercentage > 100 {
		return dErrors.Newf(dErrors.CodeValidation,
			"flag %s: rollout_percentage must be between 0 and 100, got %d", f.ID, f.RolloutPercentage)
	}
	if f.TierRequired != "" && !f.TierRequired.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation,
			"flag %s: tier_required is invalid: %q", f.ID, string(f.TierRequired))
	}
	return nil
}

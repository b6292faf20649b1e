package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"tasklane/internal/flag/models"
	"tasklane/internal/flag/store/override"
	"tasklane/pkg/domain"
	dErrors "tasklane/pkg/domain-errors"
)

// =============================================================================
// Feature Flag Service Test Suite
// =============================================================================
// Justification for unit tests: the resolution precedence (override >
// blacklist > whitelist > tier > rollout) and rollout determinism are exact
// contracts consumed by every request-time check.

type FlagServiceSuite struct {
	suite.Suite
	service *Service
}

func TestFlagServiceSuite(t *testing.T) {
	suite.Run(t, new(FlagServiceSuite))
}

func (s *FlagServiceSuite) SetupTest() {
	var err error
	s.service, err = New(override.NewInMemoryStore())
	s.Require().NoError(err)
}

// =============================================================================
// Constructor and Registration Tests
// =============================================================================

func (s *FlagServiceSuite) TestNew() {
	s.Run("nil override store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "override store is required")
	})
}

func (s *FlagServiceSuite) TestRegisterFlag() {
	s.Run("empty id fails validation", func() {
		err := s.service.RegisterFlag(models.FeatureFlag{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rollout percentage outside 0..100 fails validation", func() {
		err := s.service.RegisterFlag(models.FeatureFlag{ID: "f", RolloutPercentage: 101})
		s.Require().Error(err)
		s.Contains(err.Error(), "rollout_percentage")

		err = s.service.RegisterFlag(models.FeatureFlag{ID: "f", RolloutPercentage: -1})
		s.Require().Error(err)
	})

	s.Run("unknown tier fails validation", func() {
		err := s.service.RegisterFlag(models.FeatureFlag{ID: "f", TierRequired: domain.Tier("platinum")})
		s.Require().Error(err)
		s.Contains(err.Error(), "tier_required")
	})

	s.Run("valid flag is retrievable and overwrites on re-register", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{ID: "f", Enabled: true, RolloutPercentage: 10}))
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{ID: "f", Enabled: true, RolloutPercentage: 90}))

		f, ok := s.service.Flag("f")
		s.Require().True(ok)
		s.Equal(90, f.RolloutPercentage)
		s.Len(s.service.Flags(), 1)
	})
}

// =============================================================================
// Resolution Precedence Tests
// =============================================================================

func (s *FlagServiceSuite) TestIsEnabled() {
	ctx := context.Background()

	s.Run("unknown flag resolves false", func() {
		enabled, err := s.service.IsEnabled(ctx, "ghost", "org-1", domain.TierEnterprise)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("kill switch off resolves false even for whitelisted tenants", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "dark",
			Enabled:           false,
			RolloutPercentage: 100,
			OrgWhitelist:      []domain.TenantID{"org-1"},
		}))

		enabled, err := s.service.IsEnabled(ctx, "dark", "org-1", domain.TierEnterprise)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("blacklisted tenant resolves false", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "gated",
			Enabled:           true,
			RolloutPercentage: 100,
			OrgBlacklist:      []domain.TenantID{"org-9"},
		}))

		enabled, err := s.service.IsEnabled(ctx, "gated", "org-9", domain.TierEnterprise)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("blacklist wins over whitelist", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "conflicted",
			Enabled:           true,
			RolloutPercentage: 100,
			OrgWhitelist:      []domain.TenantID{"org-9"},
			OrgBlacklist:      []domain.TenantID{"org-9"},
		}))

		enabled, err := s.service.IsEnabled(ctx, "conflicted", "org-9", domain.TierEnterprise)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("whitelisted tenant resolves true regardless of tier and rollout", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "vip",
			Enabled:           true,
			TierRequired:      domain.TierEnterprise,
			RolloutPercentage: 0,
			OrgWhitelist:      []domain.TenantID{"org-5"},
		}))

		enabled, err := s.service.IsEnabled(ctx, "vip", "org-5", domain.TierStarter)
		s.NoError(err)
		s.True(enabled)
	})

	s.Run("tenant below required tier resolves false regardless of rollout", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "pro-only",
			Enabled:           true,
			TierRequired:      domain.TierPro,
			RolloutPercentage: 100,
		}))

		enabled, err := s.service.IsEnabled(ctx, "pro-only", "org-1", domain.TierStarter)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("trial tenants meet every tier requirement", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "preview",
			Enabled:           true,
			TierRequired:      domain.TierEnterprise,
			RolloutPercentage: 100,
		}))

		enabled, err := s.service.IsEnabled(ctx, "preview", "org-1", domain.TierTrial)
		s.NoError(err)
		s.True(enabled)
	})
}

// =============================================================================
// Override Tests
// =============================================================================

func (s *FlagServiceSuite) TestOverrides() {
	ctx := context.Background()

	s.Run("validation of override parameters", func() {
		err := s.service.SetOrgOverride(ctx, "", "f", true)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		err = s.service.SetOrgOverride(ctx, "org-1", "", true)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("override wins over blacklist", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "f1",
			Enabled:           true,
			RolloutPercentage: 0,
			OrgBlacklist:      []domain.TenantID{"org-9"},
		}))
		s.Require().NoError(s.service.SetOrgOverride(ctx, "org-9", "f1", true))

		enabled, err := s.service.IsEnabled(ctx, "f1", "org-9", domain.TierEnterprise)
		s.NoError(err)
		s.True(enabled)
	})

	s.Run("override wins over whitelist", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "f2",
			Enabled:           true,
			RolloutPercentage: 100,
			OrgWhitelist:      []domain.TenantID{"org-1"},
		}))
		s.Require().NoError(s.service.SetOrgOverride(ctx, "org-1", "f2", false))

		enabled, err := s.service.IsEnabled(ctx, "f2", "org-1", domain.TierEnterprise)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("override wins over tier requirement", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "f3",
			Enabled:           true,
			TierRequired:      domain.TierEnterprise,
			RolloutPercentage: 0,
		}))
		s.Require().NoError(s.service.SetOrgOverride(ctx, "org-1", "f3", true))

		enabled, err := s.service.IsEnabled(ctx, "f3", "org-1", domain.TierStarter)
		s.NoError(err)
		s.True(enabled)
	})

	s.Run("override wins over rollout", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "f4",
			Enabled:           true,
			RolloutPercentage: 100,
		}))
		s.Require().NoError(s.service.SetOrgOverride(ctx, "org-1", "f4", false))

		enabled, err := s.service.IsEnabled(ctx, "f4", "org-1", domain.TierEnterprise)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("clearing an override restores regular resolution", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "f5",
			Enabled:           true,
			RolloutPercentage: 100,
		}))
		s.Require().NoError(s.service.SetOrgOverride(ctx, "org-1", "f5", false))
		s.Require().NoError(s.service.ClearOrgOverride(ctx, "org-1", "f5"))

		enabled, err := s.service.IsEnabled(ctx, "f5", "org-1", domain.TierEnterprise)
		s.NoError(err)
		s.True(enabled)
	})
}

// =============================================================================
// Rollout Tests
// =============================================================================

func (s *FlagServiceSuite) TestRollout() {
	ctx := context.Background()

	s.Run("zero percent is false for every tenant", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "none",
			Enabled:           true,
			RolloutPercentage: 0,
		}))

		for _, tenant := range []domain.TenantID{"org-1", "org-2", "org-3", "org-42"} {
			enabled, err := s.service.IsEnabled(ctx, "none", tenant, domain.TierEnterprise)
			s.NoError(err)
			s.False(enabled)
		}
	})

	s.Run("hundred percent is true for every tenant", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "all",
			Enabled:           true,
			RolloutPercentage: 100,
		}))

		for _, tenant := range []domain.TenantID{"org-1", "org-2", "org-3", "org-42"} {
			enabled, err := s.service.IsEnabled(ctx, "all", tenant, domain.TierEnterprise)
			s.NoError(err)
			s.True(enabled)
		}
	})

	s.Run("repeated evaluations are deterministic", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "half",
			Enabled:           true,
			RolloutPercentage: 50,
		}))

		first, err := s.service.IsEnabled(ctx, "half", "org-7", domain.TierEnterprise)
		s.Require().NoError(err)
		for i := 0; i < 20; i++ {
			again, err := s.service.IsEnabled(ctx, "half", "org-7", domain.TierEnterprise)
			s.Require().NoError(err)
			s.Equal(first, again)
		}
	})

	s.Run("rollout decision matches the tenant bucket", func() {
		s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
			ID:                "bucketed",
			Enabled:           true,
			RolloutPercentage: 50,
		}))

		enabled, err := s.service.IsEnabled(ctx, "bucketed", "org-1", domain.TierEnterprise)
		s.NoError(err)
		s.Equal(inRollout("org-1", 50), enabled)
	})
}

// =============================================================================
// Launch Scenario Tests
// =============================================================================

func (s *FlagServiceSuite) TestNewUIScenario() {
	ctx := context.Background()

	s.Require().NoError(s.service.RegisterFlag(models.FeatureFlag{
		ID:                "new-ui",
		Enabled:           true,
		TierRequired:      domain.TierPro,
		RolloutPercentage: 50,
		OrgBlacklist:      []domain.TenantID{"org-9"},
	}))

	s.Run("blacklist beats tier", func() {
		enabled, err := s.service.IsEnabled(ctx, "new-ui", "org-9", domain.TierEnterprise)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("starter tenant is below the pro gate regardless of rollout", func() {
		enabled, err := s.service.IsEnabled(ctx, "new-ui", "org-1", domain.TierStarter)
		s.NoError(err)
		s.False(enabled)
	})

	s.Run("enterprise tenant falls through to the deterministic rollout", func() {
		enabled, err := s.service.IsEnabled(ctx, "new-ui", "org-1", domain.TierEnterprise)
		s.NoError(err)
		s.Equal(inRollout("org-1", 50), enabled)
	})
}

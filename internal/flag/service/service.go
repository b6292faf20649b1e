package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"

	"tasklane/internal/flag/models"
	"tasklane/internal/platform/metrics"
	"tasklane/pkg/domain"
	dErrors "tasklane/pkg/domain-errors"
)

// OverrideStore is the sparse (tenant, flag) -> bool mapping with the
// highest resolution precedence.
type OverrideStore interface {
	Get(ctx context.Context, tenantID domain.TenantID, flagID string) (*bool, error)
	Set(ctx context.Context, tenantID domain.TenantID, flagID string, enabled bool) error
	Delete(ctx context.Context, tenantID domain.TenantID, flagID string) error
}

// Service resolves per-tenant feature flag enablement. Flag definitions are
// registered at bootstrap and held in memory; overrides may change at any
// time through the override store.
type Service struct {
	mu        sync.RWMutex
	flags     map[string]models.FeatureFlag
	overrides OverrideStore

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics publishes evaluation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(overrides OverrideStore, opts ...Option) (*Service, error) {
	if overrides == nil {
		return nil, fmt.Errorf("override store is required")
	}

	svc := &Service{
		flags:     make(map[string]models.FeatureFlag),
		overrides: overrides,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RegisterFlag validates and stores a flag definition, overwriting any
// prior definition with the same id.
func (s *Service) RegisterFlag(f models.FeatureFlag) error {
	if err := f.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[f.ID] = f
	return nil
}

// Flag returns the flag definition, if registered.
func (s *Service) Flag(id string) (models.FeatureFlag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.flags[id]
	return f, ok
}

// Flags returns all registered flags sorted by id.
func (s *Service) Flags() []models.FeatureFlag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FeatureFlag, 0, len(s.flags))
	for _, f := range s.flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetOrgOverride sets the highest-precedence per-tenant decision for a flag.
func (s *Service) SetOrgOverride(ctx context.Context, tenantID domain.TenantID, flagID string, enabled bool) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant_id is required")
	}
	if flagID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "flag_id is required")
	}

	if err := s.overrides.Set(ctx, tenantID, flagID, enabled); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set flag override")
	}
	s.logger.Info("flag override set",
		"flag_id", flagID,
		"tenant_id", tenantID,
		"enabled", enabled,
	)
	return nil
}

// ClearOrgOverride removes a per-tenant override, returning the tenant to
// the flag's regular resolution rules.
func (s *Service) ClearOrgOverride(ctx context.Context, tenantID domain.TenantID, flagID string) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant_id is required")
	}
	if flagID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "flag_id is required")
	}

	if err := s.overrides.Delete(ctx, tenantID, flagID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear flag override")
	}
	return nil
}

// IsEnabled resolves the flag for a tenant. Rules apply in strict order,
// short-circuiting at the first decisive one:
//
//  1. unknown flag -> false (fail closed)
//  2. kill switch off -> false
//  3. explicit per-tenant override -> its value
//  4. blacklisted tenant -> false
//  5. whitelisted tenant -> true
//  6. tenant tier below the required tier -> false (trial tenants are
//     treated as meeting every tier requirement)
//  7. deterministic rollout bucket of the tenant id vs the percentage
func (s *Service) IsEnabled(ctx context.Context, flagID string, tenantID domain.TenantID, tier domain.Tier) (bool, error) {
	f, ok := s.Flag(flagID)
	if !ok {
		return s.outcome(flagID, false), nil
	}
	if !f.Enabled {
		return s.outcome(flagID, false), nil
	}

	override, err := s.overrides.Get(ctx, tenantID, flagID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read flag override")
	}
	if override != nil {
		return s.outcome(flagID, *override), nil
	}

	for _, t := range f.OrgBlacklist {
		if t == tenantID {
			return s.outcome(flagID, false), nil
		}
	}
	for _, t := range f.OrgWhitelist {
		if t == tenantID {
			return s.outcome(flagID, true), nil
		}
	}

	if f.TierRequired != "" && tier != domain.TierTrial && !tier.AtLeast(f.TierRequired) {
		return s.outcome(flagID, false), nil
	}

	return s.outcome(flagID, inRollout(tenantID, f.RolloutPercentage)), nil
}

// outcome records the evaluation counter and passes the decision through.
func (s *Service) outcome(flagID string, enabled bool) bool {
	if s.metrics != nil {
		label := "disabled"
		if enabled {
			label = "enabled"
		}
		s.metrics.FlagEvaluations.WithLabelValues(flagID, label).Inc()
	}
	return enabled
}

// inRollout buckets the tenant deterministically: the same tenant id always
// lands in the same bucket, so rollout decisions are stable across calls
// and restarts.
func inRollout(tenantID domain.TenantID, percentage int) bool {
	if percentage >= 100 {
		return true
	}
	if percentage <= 0 {
		return false
	}
	h := fnv.New32a()
	h.Write([]byte(tenantID))
	return int(h.Sum32()%100) < percentage
}

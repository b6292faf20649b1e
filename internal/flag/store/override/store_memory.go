// Package override holds the per-tenant flag override stores. Overrides are
// a sparse (tenant, flag) -> bool mapping with the highest resolution
// precedence; the in-memory store is the default, the Redis store lets
// multi-replica deployments share override state.
package override

import (
	"context"
	"sync"

	"tasklane/pkg/domain"
)

type overrideKey struct {
	tenantID domain.TenantID
	flagID   string
}

// InMemoryStore keeps overrides in a process-local map.
type InMemoryStore struct {
	mu        sync.RWMutex
	overrides map[overrideKey]bool
}

// NewInMemoryStore constructs an empty in-memory override store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		overrides: make(map[overrideKey]bool),
	}
}

// Get returns the override for (tenant, flag), or nil when none is set.
func (s *InMemoryStore) Get(_ context.Context, tenantID domain.TenantID, flagID string) (*bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.overrides[overrideKey{tenantID: tenantID, flagID: flagID}]; ok {
		return &v, nil
	}
	return nil, nil
}

// Set records an override.
func (s *InMemoryStore) Set(_ context.Context, tenantID domain.TenantID, flagID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[overrideKey{tenantID: tenantID, flagID: flagID}] = enabled
	return nil
}

// Delete removes an override if present.
func (s *InMemoryStore) Delete(_ context.Context, tenantID domain.TenantID, flagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.overrides, overrideKey{tenantID: tenantID, flagID: flagID})
	return nil
}

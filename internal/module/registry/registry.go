package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"tasklane/internal/module/models"
	"tasklane/internal/platform/metrics"
	"tasklane/pkg/domain"
	dErrors "tasklane/pkg/domain-errors"
)

// entry tracks a registered module plus the sequence slot used to keep
// navigation ordering stable when modules share the same Order value.
type entry struct {
	module models.RegisteredModule
	seq    int
}

// Registry holds the modules registered for this process and resolves
// tier-based visibility. State is process-lifetime; tests get isolation by
// constructing fresh instances.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*entry
	nextSeq int

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for registration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics publishes the registered-module gauge.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New constructs a Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		modules: make(map[string]*entry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates the manifest, checks that every declared dependency is
// already registered, and stores the module enabled with the current load
// time. Registering an id again overwrites the prior entry but keeps its
// original slot so navigation tie ordering does not shift.
func (r *Registry) Register(m models.Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, dep := range m.Dependencies {
		if _, ok := r.modules[dep]; !ok {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"module %s: missing dependency %s", m.ID, dep)
		}
	}

	seq := r.nextSeq
	if prior, ok := r.modules[m.ID]; ok {
		seq = prior.seq
	} else {
		r.nextSeq++
	}
	r.modules[m.ID] = &entry{
		module: models.RegisteredModule{
			Manifest: m,
			Enabled:  true,
			LoadedAt: time.Now(),
		},
		seq: seq,
	}

	r.logger.Info("module registered",
		"module_id", m.ID,
		"version", m.Version,
		"tier", m.Tier,
	)
	if r.metrics != nil {
		r.metrics.ModulesRegistered.Set(float64(len(r.modules)))
	}
	return nil
}

// Unregister removes the module. It does not check whether other registered
// modules depend on it; not orphaning dependents is the caller's job.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modules[id]; !ok {
		return
	}
	delete(r.modules, id)
	r.logger.Info("module unregistered", "module_id", id)
	if r.metrics != nil {
		r.metrics.ModulesRegistered.Set(float64(len(r.modules)))
	}
}

// SetEnabled toggles a registered module without removing it.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.modules[id]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "module %s is not registered", id)
	}
	e.module.Enabled = enabled
	return nil
}

// Module returns a copy of the registered module, if present.
func (r *Registry) Module(id string) (models.RegisteredModule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.modules[id]
	if !ok {
		return models.RegisteredModule{}, false
	}
	return e.module, true
}

// Modules returns all registered modules in registration order.
func (r *Registry) Modules() []models.RegisteredModule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.snapshot()
	out := make([]models.RegisteredModule, len(entries))
	for i, e := range entries {
		out[i] = e.module
	}
	return out
}

// EnabledModules returns the manifests visible to the tenant: enabled and
// tier-gated at or below the tenant's tier, ascending by navigation order.
// Ties preserve registration order. The tenant id is accepted for future
// per-tenant overrides; the tier check does not use it yet.
func (r *Registry) EnabledModules(_ domain.TenantID, tier domain.Tier) []models.Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Manifest
	for _, e := range r.snapshot() {
		if !e.module.Enabled {
			continue
		}
		if !tier.AtLeast(e.module.Manifest.Tier) {
			continue
		}
		out = append(out, e.module.Manifest)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Navigation.Order < out[j].Navigation.Order
	})
	return out
}

// BuildNavigation composes the flat navigation list for a tenant.
func (r *Registry) BuildNavigation(tenantID domain.TenantID, tier domain.Tier) []models.NavigationItem {
	manifests := r.EnabledModules(tenantID, tier)
	items := make([]models.NavigationItem, 0, len(manifests))
	for _, m := range manifests {
		items = append(items, models.NavigationItem{
			ModuleID: m.ID,
			Icon:     m.Navigation.Icon,
			Label:    m.Navigation.Label,
			Path:     m.Navigation.Path,
			Order:    m.Navigation.Order,
			Tier:     m.Tier,
			Position: m.Navigation.Position,
			Badge:    m.Navigation.Badge,
			Children: m.Navigation.Children,
		})
	}
	return items
}

// snapshot returns entries sorted by registration sequence. Callers must
// hold at least the read lock.
func (r *Registry) snapshot() []*entry {
	entries := make([]*entry, 0, len(r.modules))
	for _, e := range r.modules {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}

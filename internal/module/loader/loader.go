package loader

import (
	"log/slog"
	"strings"

	"tasklane/internal/module/models"
	dErrors "tasklane/pkg/domain-errors"
)

// Registrar is the slice of the registry the loader needs.
type Registrar interface {
	Register(m models.Manifest) error
}

// Loader orders manifests by their declared dependency graph and feeds them
// into the registry, so bootstrap can hand over an unordered catalog.
type Loader struct {
	registry Registrar
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New constructs a Loader.
func New(registry Registrar, opts ...Option) *Loader {
	l := &Loader{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadModules registers the manifests in dependency order: a module's
// dependencies are always registered before the module itself. A dependency
// id absent from the input set is skipped during traversal and surfaces as
// the registry's missing-dependency error instead. A dependency cycle fails
// fast with an error naming the cycle.
func (l *Loader) LoadModules(manifests []models.Manifest) error {
	byID := make(map[string]models.Manifest, len(manifests))
	for _, m := range manifests {
		byID[m.ID] = m
	}

	var (
		order      []models.Manifest
		visited    = make(map[string]bool)
		inProgress = make(map[string]bool)
	)

	var visit func(m models.Manifest, path []string) error
	visit = func(m models.Manifest, path []string) error {
		if visited[m.ID] {
			return nil
		}
		if inProgress[m.ID] {
			cycle := append(path, m.ID)
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"dependency cycle detected: %s", strings.Join(cycle, " -> "))
		}
		inProgress[m.ID] = true
		for _, dep := range m.Dependencies {
			depManifest, ok := byID[dep]
			if !ok {
				// Not part of this load; the registry decides whether it
				// was registered earlier or is genuinely missing.
				continue
			}
			if err := visit(depManifest, append(path, m.ID)); err != nil {
				return err
			}
		}
		delete(inProgress, m.ID)
		visited[m.ID] = true
		order = append(order, m)
		return nil
	}

	for _, m := range manifests {
		if err := visit(m, nil); err != nil {
			return err
		}
	}

	for _, m := range order {
		if err := l.registry.Register(m); err != nil {
			return dErrors.Wrap(err, dErrors.CodeOf(err), "module load failed")
		}
		l.logger.Debug("module loaded", "module_id", m.ID)
	}
	return nil
}

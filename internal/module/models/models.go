package models

import (
	"time"

	"tasklane/pkg/domain"
	dErrors "tasklane/pkg/domain-errors"
)

// NavigationNode describes where a module surfaces in the application shell.
type NavigationNode struct {
	Icon     string           `json:"icon"`
	Label    string           `json:"label"`
	Path     string           `json:"path"`
	Order    int              `json:"order"`
	Position string           `json:"position,omitempty"`
	Badge    string           `json:"badge,omitempty"`
	Children []NavigationNode `json:"children,omitempty"`
}

// EventContract declares the event types a module publishes and subscribes
// to. It is advisory documentation for operators; the bus does not enforce it.
type EventContract struct {
	Publishes  []string `json:"publishes,omitempty"`
	Subscribes []string `json:"subscribes,omitempty"`
}

// Manifest is the declarative description of an optional feature module:
// identity, tier gate, dependencies, navigation placement, and the event
// types it produces and consumes.
type Manifest struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Tier         domain.Tier    `json:"tier"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Navigation   NavigationNode `json:"navigation"`
	Migrations   []string       `json:"migrations,omitempty"`
	Permissions  []string       `json:"permissions,omitempty"`
	Events       EventContract  `json:"events"`
}

// Validate checks the manifest's required fields. Errors name the offending
// field so misconfiguration fails loudly at startup.
func (m Manifest) Validate() error {
	if m.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "manifest field id is required")
	}
	if m.Name == "" {
		return dErrors.Newf(dErrors.CodeValidation, "manifest %s: field name is required", m.ID)
	}
	if m.Version == "" {
		return dErrors.Newf(dErrors.CodeValidation, "manifest %s: field version is required", m.ID)
	}
	if m.Navigation.Path == "" {
		return dErrors.Newf(dErrors.CodeValidation, "manifest %s: field navigation.path is required", m.ID)
	}
	if !m.Tier.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "manifest %s: field tier is invalid: %q", m.ID, string(m.Tier))
	}
	return nil
}

// RegisteredModule wraps a manifest with registry state. It is created only
// on successful registration, never partially constructed.
type RegisteredModule struct {
	Manifest Manifest  `json:"manifest"`
	Enabled  bool      `json:"enabled"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NavigationItem is one flat entry of the composed tenant navigation.
type NavigationItem struct {
	ModuleID string           `json:"module_id"`
	Icon     string           `json:"icon"`
	Label    string           `json:"label"`
	Path     string           `json:"path"`
	Order    int              `json:"order"`
	Tier     domain.Tier      `json:"tier"`
	Position string           `json:"position,omitempty"`
	Badge    string           `json:"badge,omitempty"`
	Children []NavigationNode `json:"children,omitempty"`
}

// Package http is the ops/introspection surface of the platform core. It
// exposes composed navigation, flag evaluation, override management, and
// the debug event log; business CRUD lives elsewhere and never routes
// through here.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tasklane/internal/event"
	flagModel "tasklane/internal/flag/models"
	moduleModel "tasklane/internal/module/models"
	"tasklane/internal/transport/http/shared"
	"tasklane/pkg/domain"
	dErrors "tasklane/pkg/domain-errors"
)

// ModuleRegistry is the slice of the registry the ops surface needs.
type ModuleRegistry interface {
	Modules() []moduleModel.RegisteredModule
	BuildNavigation(tenantID domain.TenantID, tier domain.Tier) []moduleModel.NavigationItem
}

// FlagService is the slice of the flag service the ops surface needs.
type FlagService interface {
	Flags() []flagModel.FeatureFlag
	IsEnabled(ctx context.Context, flagID string, tenantID domain.TenantID, tier domain.Tier) (bool, error)
	SetOrgOverride(ctx context.Context, tenantID domain.TenantID, flagID string, enabled bool) error
	ClearOrgOverride(ctx context.Context, tenantID domain.TenantID, flagID string) error
}

// EventLog is the slice of the bus the ops surface needs.
type EventLog interface {
	EventLog() []event.Event
	ClearEventLog()
}

// Handler is the thin HTTP layer over the platform services.
type Handler struct {
	logger  *slog.Logger
	modules ModuleRegistry
	flags   FlagService
	bus     EventLog
}

// NewHandler creates the ops handler.
func NewHandler(modules ModuleRegistry, flags FlagService, bus EventLog, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		modules: modules,
		flags:   flags,
		bus:     bus,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListModules(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.modules.Modules())
}

// handleNavigation composes the navigation for ?tenant_id=...&tier=...
func (h *Handler) handleNavigation(w http.ResponseWriter, r *http.Request) {
	tenantID, tier, err := tenantParams(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.modules.BuildNavigation(tenantID, tier))
}

func (h *Handler) handleListFlags(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.flags.Flags())
}

// handleEvaluateFlag resolves one flag for ?tenant_id=...&tier=...
func (h *Handler) handleEvaluateFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, tier, err := tenantParams(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	flagID := chi.URLParam(r, "flagID")

	enabled, err := h.flags.IsEnabled(ctx, flagID, tenantID, tier)
	if err != nil {
		h.logger.ErrorContext(ctx, "flag evaluation failed",
			"flag_id", flagID,
			"tenant_id", tenantID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"flag_id":   flagID,
		"tenant_id": tenantID,
		"enabled":   enabled,
	})
}

type overrideRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	flagID := chi.URLParam(r, "flagID")
	tenantID := domain.TenantID(chi.URLParam(r, "tenantID"))

	if err := h.flags.SetOrgOverride(r.Context(), tenantID, flagID, req.Enabled); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"flag_id":   flagID,
		"tenant_id": tenantID,
		"enabled":   req.Enabled,
	})
}

func (h *Handler) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	flagID := chi.URLParam(r, "flagID")
	tenantID := domain.TenantID(chi.URLParam(r, "tenantID"))

	if err := h.flags.ClearOrgOverride(r.Context(), tenantID, flagID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEventLog(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.bus.EventLog())
}

func (h *Handler) handleClearEventLog(w http.ResponseWriter, _ *http.Request) {
	h.bus.ClearEventLog()
	w.WriteHeader(http.StatusNoContent)
}

// tenantParams extracts and validates the tenant_id and tier query params.
func tenantParams(r *http.Request) (domain.TenantID, domain.Tier, error) {
	tenantID := domain.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID.IsNil() {
		return "", "", dErrors.New(dErrors.CodeBadRequest, "tenant_id query parameter is required")
	}
	tier, err := domain.ParseTier(r.URL.Query().Get("tier"))
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid tier query parameter")
	}
	return tenantID, tier, nil
}

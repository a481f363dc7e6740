package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attesta/internal/identity/models"
	"attesta/internal/identity/service"
	"attesta/internal/platform/middleware"
	"attesta/internal/transport/http/shared"
	respond "attesta/internal/transport/http/json"
	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
)

// Service defines the interface for identity operations.
type Service interface {
	Get(ctx context.Context, holderID id.HolderID) (*models.Identity, error)
	Capture(ctx context.Context, holderID id.HolderID, in service.CaptureInput) (*models.Identity, error)
	Attest(ctx context.Context, holderID id.HolderID) (*models.Identity, error)
}

// Handler handles identity capture and attestation endpoints.
type Handler struct {
	logger   *slog.Logger
	identity Service
}

// New creates a new identity Handler.
func New(identity Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		identity: identity,
	}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/identity", h.handleGetIdentity)
	r.Post("/identity", h.handleCaptureIdentity)
	r.Post("/digilocker/verify", h.handleAttest)
}

func (h *Handler) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holderID, ok := h.holderFromContext(ctx, w)
	if !ok {
		return
	}

	identity, err := h.identity.Get(ctx, holderID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load identity",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toIdentityResponse(identity))
}

func (h *Handler) handleCaptureIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holderID, ok := h.holderFromContext(ctx, w)
	if !ok {
		return
	}

	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode capture request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	in, err := req.ToInput()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	identity, err := h.identity.Capture(ctx, holderID, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to capture identity",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toIdentityResponse(identity))
}

func (h *Handler) handleAttest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holderID, ok := h.holderFromContext(ctx, w)
	if !ok {
		return
	}

	identity, err := h.identity.Attest(ctx, holderID)
	if err != nil {
		h.logger.WarnContext(ctx, "attestation failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toIdentityResponse(identity))
}

func (h *Handler) holderFromContext(ctx context.Context, w http.ResponseWriter) (id.HolderID, bool) {
	raw := middleware.GetHolderID(ctx)
	if raw == "" {
		h.logger.ErrorContext(ctx, "holderID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.HolderID{}, false
	}
	holderID, err := id.ParseHolderID(raw)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.HolderID{}, false
	}
	return holderID, true
}

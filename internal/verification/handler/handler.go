package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	identitymodels "attesta/internal/identity/models"
	"attesta/internal/platform/metrics"
	"attesta/internal/platform/middleware"
	"attesta/internal/purpose"
	"attesta/internal/transport/http/shared"
	respond "attesta/internal/transport/http/json"
	"attesta/internal/verification/models"
	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
)

// Service defines the interface for verification request operations.
type Service interface {
	Issue(ctx context.Context, holderID id.HolderID, purposeKey purpose.Key) (*models.Request, error)
	Redeem(ctx context.Context, rawRequestID string, verifierUA string) (*models.DisclosureResult, error)
	List(ctx context.Context, holderID id.HolderID) ([]*models.Request, error)
}

// IdentityReader supplies the holder display name for the access log page.
type IdentityReader interface {
	Get(ctx context.Context, holderID id.HolderID) (*identitymodels.Identity, error)
}

// Handler handles issuance, redemption, and access log endpoints.
type Handler struct {
	logger       *slog.Logger
	verification Service
	identities   IdentityReader
	metrics      *metrics.Metrics
}

// New creates a new verification Handler.
func New(verification Service, identities IdentityReader, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:       logger,
		verification: verification,
		identities:   identities,
		metrics:      m,
	}
}

// RegisterHolder registers the session-guarded holder routes.
func (h *Handler) RegisterHolder(r chi.Router) {
	r.Post("/verify/generate", h.handleGenerate)
	r.Get("/logs", h.handleLogs)
}

// RegisterVerifier registers the public verifier routes. Redemption needs no
// session: possession of the token is the credential, and the response
// discloses only the purpose-filtered attribute set.
func (h *Handler) RegisterVerifier(r chi.Router) {
	r.Get("/verify/{id}", h.handleRedeem)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() {
		if h.metrics != nil {
			h.metrics.IssuanceLatency.Observe(time.Since(start).Seconds())
		}
	}()

	requestID := middleware.GetRequestID(ctx)
	holderID, ok := h.holderFromContext(ctx, w)
	if !ok {
		return
	}

	var generateReq GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&generateReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode generate request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	p, err := generateReq.Validate()
	if err != nil {
		h.logger.WarnContext(ctx, "invalid generate request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	request, err := h.verification.Issue(ctx, holderID, p.Key)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to issue verification request",
			"request_id", requestID,
			"purpose", p.Key,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, toRequestResponse(request))
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() {
		if h.metrics != nil {
			h.metrics.RedemptionLatency.Observe(time.Since(start).Seconds())
		}
	}()

	rawID := chi.URLParam(r, "id")
	result, err := h.verification.Redeem(ctx, rawID, r.UserAgent())
	if err != nil {
		h.logger.ErrorContext(ctx, "redemption failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toDisclosureResponse(result))
}

// handleLogs serves the access log page: identity and history are fetched
// concurrently since neither depends on the other.
func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holderID, ok := h.holderFromContext(ctx, w)
	if !ok {
		return
	}

	var (
		identity *identitymodels.Identity
		requests []*models.Request
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		identity, err = h.identities.Get(gctx, holderID)
		return err
	})
	g.Go(func() error {
		var err error
		requests, err = h.verification.List(gctx, holderID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.ErrorContext(ctx, "failed to load access logs",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	logs := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		logs = append(logs, toRequestResponse(request))
	}
	respond.WriteJSON(w, http.StatusOK, LogsResponse{
		Holder: identity.FullName,
		Logs:   logs,
	})
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

package card

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"attesta/internal/platform/middleware"
	"attesta/internal/token"
	"attesta/internal/transport/http/shared"
	"attesta/internal/verification/models"
	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
)

// RequestGetter loads one of the holder's verification requests.
type RequestGetter interface {
	Get(ctx context.Context, holderID id.HolderID, requestID id.RequestID) (*models.Request, error)
}

// Handler serves token and card downloads for the holder's own requests.
type Handler struct {
	requests RequestGetter
	codec    *token.Codec
	renderer *Renderer
	logger   *slog.Logger
}

// NewHandler creates a card Handler.
func NewHandler(requests RequestGetter, codec *token.Codec, renderer *Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		requests: requests,
		codec:    codec,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterHolder registers the session-guarded export routes.
func (h *Handler) RegisterHolder(r chi.Router) {
	r.Get("/verify/{id}/qr", h.handleToken)
	r.Get("/verify/{id}/card", h.handleCard)
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	request, ok := h.loadRequest(w, r)
	if !ok {
		return
	}
	data, err := h.codec.Encode(request.ID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	writePNG(w, data, "")
}

func (h *Handler) handleCard(w http.ResponseWriter, r *http.Request) {
	request, ok := h.loadRequest(w, r)
	if !ok {
		return
	}
	data, err := h.renderer.Render(request)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	writePNG(w, data, Filename(request.ID))
}

func (h *Handler) loadRequest(w http.ResponseWriter, r *http.Request) (*models.Request, bool) {
	ctx := r.Context()
	holderID, err := id.ParseHolderID(middleware.GetHolderID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return nil, false
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "verification request not found"))
		return nil, false
	}
	request, err := h.requests.Get(ctx, holderID, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "export request lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return nil, false
	}
	return request, true
}

func writePNG(w http.ResponseWriter, data []byte, downloadName string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if downloadName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

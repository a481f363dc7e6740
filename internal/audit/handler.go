package audit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"attesta/internal/platform/middleware"
	respond "attesta/internal/transport/http/json"
	"attesta/internal/transport/http/shared"
	dErrors "attesta/pkg/domain-errors"
)

// Handler serves the holder's own audit trail: every issuance, redemption,
// and attestation decision recorded against them, in the order it happened.
type Handler struct {
	publisher *Publisher
	logger    *slog.Logger
}

// NewHandler creates an audit Handler reading through publisher.
func NewHandler(publisher *Publisher, logger *slog.Logger) *Handler {
	return &Handler{publisher: publisher, logger: logger}
}

// RegisterHolder registers the session-guarded audit route.
func (h *Handler) RegisterHolder(r chi.Router) {
	r.Get("/audit", h.handleList)
}

// EventResponse is the wire shape of one recorded decision.
type EventResponse struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
	Action    string `json:"action"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
	Device    string `json:"device,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holderID := middleware.GetHolderID(ctx)
	if holderID == "" {
		h.logger.ErrorContext(ctx, "holderID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	events, err := h.publisher.List(ctx, holderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, EventResponse{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			RequestID: event.RequestID,
			Purpose:   event.Purpose,
			Action:    event.Action,
			Decision:  event.Decision,
			Reason:    event.Reason,
			Device:    event.Device,
		})
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}

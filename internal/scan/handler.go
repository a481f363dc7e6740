package scan

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"attesta/internal/disclosure"
	"attesta/internal/platform/metrics"
	"attesta/internal/platform/middleware"
	"attesta/internal/scan/tracer"
	respond "attesta/internal/transport/http/json"
	"attesta/internal/transport/http/shared"
	vmodels "attesta/internal/verification/models"
	dErrors "attesta/pkg/domain-errors"
)

// maxUploadBytes bounds scan uploads; a phone photo fits comfortably.
const maxUploadBytes = 8 << 20

// TokenRedeemer is the verification service surface the terminal needs.
type TokenRedeemer interface {
	Redeem(ctx context.Context, rawRequestID string, verifierUA string) (*vmodels.DisclosureResult, error)
}

// Handler is the in-process verifier terminal: it accepts an uploaded image,
// runs it through a fresh scan session, and returns the rendered verdict.
type Handler struct {
	redeemer TokenRedeemer
	tracer   tracer.Tracer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type HandlerOption func(*Handler)

// WithHandlerTracer replaces the default no-op tracer.
func WithHandlerTracer(t tracer.Tracer) HandlerOption {
	return func(h *Handler) {
		if t != nil {
			h.tracer = t
		}
	}
}

// WithHandlerMetrics sets the metrics instance for the handler's scanners.
func WithHandlerMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates a scan Handler redeeming through redeemer.
func NewHandler(redeemer TokenRedeemer, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		redeemer: redeemer,
		tracer:   tracer.NewNoop(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the public terminal route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/scan", h.handleScan)
}

// OutcomeResponse is the terminal verdict payload.
type OutcomeResponse struct {
	State     string          `json:"state"`
	Reason    string          `json:"reason,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Display   DisplayResponse `json:"display"`
}

// DisplayResponse is the rendered disclosure for the terminal screen.
type DisplayResponse struct {
	Valid  bool            `json:"valid"`
	Title  string          `json:"title,omitempty"`
	Fields []FieldResponse `json:"fields"`
}

// FieldResponse is one rendered attribute.
type FieldResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	image, err := uploadedImage(r)
	if err != nil {
		h.logger.WarnContext(ctx, "bad scan upload",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	defer image.Close()

	// Each upload is its own scan session; the FSM still guards the phases
	// within it.
	scanner := NewScanner(
		&serviceRedeemer{redeemer: h.redeemer, userAgent: r.UserAgent()},
		h.logger,
		WithTracer(h.tracer),
		WithMetrics(h.metrics),
	)
	outcome, err := scanner.Submit(ctx, image)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

func toOutcomeResponse(outcome *Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		State:     string(outcome.State),
		Reason:    outcome.Reason,
		RequestID: outcome.RequestID,
		Display:   DisplayResponse{Fields: []FieldResponse{}},
	}
	if outcome.Disclosure == nil {
		return resp
	}
	model := disclosure.Render(*outcome.Disclosure)
	resp.Display.Valid = model.Valid
	resp.Display.Title = model.Title
	for _, field := range model.Fields {
		resp.Display.Fields = append(resp.Display.Fields, FieldResponse{
			Label: field.Label,
			Value: field.Value,
		})
	}
	return resp
}

// uploadedImage returns the submitted raster: the "image" part of a
// multipart form, or the raw body for direct uploads.
func uploadedImage(r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, `multipart upload requires an "image" part`)
		}
		return file, nil
	}
	return r.Body, nil
}

// serviceRedeemer adapts the verification service to the scanner's Redeemer
// interface, carrying the terminal's user agent through to the record.
type serviceRedeemer struct {
	redeemer  TokenRedeemer
	userAgent string
}

func (a *serviceRedeemer) Redeem(ctx context.Context, requestID string) (*Disclosure, error) {
	result, err := a.redeemer.Redeem(ctx, requestID, a.userAgent)
	if err != nil {
		return nil, err
	}
	return &Disclosure{
		Valid:      result.Valid,
		Purpose:    string(result.Purpose),
		Attributes: result.Attributes,
	}, nil
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"claimsight/internal/activity"
	"claimsight/internal/claims/models"
	"claimsight/internal/claims/service"
	"claimsight/internal/documents"
	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/platform/httputil"
	"claimsight/pkg/requestcontext"
)

// Service is the claims workflow exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, form models.ClaimForm) (*models.Claim, error)
	List(ctx context.Context, filter service.ListFilter) ([]*models.Claim, error)
	Get(ctx context.Context, id string) (*models.Claim, error)
	SetStatus(ctx context.Context, id string, status models.Status) (*models.Claim, error)
	AddComment(ctx context.Context, id, text string) (*models.Claim, error)
	Explain(ctx context.Context, id string) (*service.ExplanationResult, error)
	Activity(ctx context.Context, id string) ([]activity.Event, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

// Handler serves the claims API.
type Handler struct {
	claims Service
	logger *slog.Logger
	reader documents.Reader
	linker documents.Linker

	submitLimit  func(http.Handler) http.Handler
	explainLimit func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithDocumentReader serves stored attachment bytes directly.
func WithDocumentReader(reader documents.Reader) Option {
	return func(h *Handler) {
		h.reader = reader
	}
}

// WithDocumentLinker redirects attachment downloads to signed links.
// It takes precedence over a reader.
func WithDocumentLinker(linker documents.Linker) Option {
	return func(h *Handler) {
		h.linker = linker
	}
}

// WithModelRateLimits wraps the two routes that call the hosted model.
func WithModelRateLimits(submit, explain func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.submitLimit = submit
		h.explainLimit = explain
	}
}

func New(claims Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{claims: claims, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the claims routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/claims", func(r chi.Router) {
		r.With(passThrough(h.submitLimit)).Post("/", h.handleSubmit)
		r.Get("/", h.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/status", h.handleSetStatus)
			r.Post("/comments", h.handleAddComment)
			r.With(passThrough(h.explainLimit)).Get("/explanation", h.handleExplanation)
			r.Get("/activity", h.handleActivity)
			r.Get("/documents/{index}", h.handleDocument)
		})
	})
	r.Get("/dashboard/stats", h.handleStats)
}

func passThrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

type submitResponse struct {
	ID    string        `json:"id"`
	Claim *models.Claim `json:"claim"`
}

type listResponse struct {
	Claims []*models.Claim `json:"claims"`
	Total  int             `json:"total"`
}

type activityResponse struct {
	ClaimID string           `json:"claimId"`
	Events  []activity.Event `json:"events"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (r *statusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.Validation("invalid status", map[string]string{"status": "is required"})
	}
	return nil
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	form, ok := h.decodeSubmission(w, r, requestID)
	if !ok {
		return
	}

	claim, err := h.claims.Submit(ctx, *form)
	if err != nil {
		h.logFailure(ctx, "claim submission rejected", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, submitResponse{ID: claim.ID, Claim: claim})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var filter service.ListFilter
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(q.Get("risk")); raw != "" {
		label, err := models.ParseRiskLabel(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.RiskLabel = label
	}

	claims, err := h.claims.List(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "failed to list claims", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Claims: claims, Total: len(claims)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	claim, err := h.claims.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[statusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.claims.SetStatus(ctx, chi.URLParam(r, "id"), status)
	if err != nil {
		h.logFailure(ctx, "failed to set claim status", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[commentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	claim, err := h.claims.AddComment(ctx, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.logFailure(ctx, "failed to add claim comment", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) handleExplanation(w http.ResponseWriter, r *http.Request) {
	res, err := h.claims.Explain(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	events, err := h.claims.Activity(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []activity.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, activityResponse{ClaimID: id, Events: events})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.claims.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "document index must be a non-negative integer"))
		return
	}
	claim, err := h.claims.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if index >= len(claim.Documents) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "document not found"))
		return
	}

	switch {
	case h.linker != nil:
		url, err := h.linker.SignedURL(ctx, id, index)
		if err != nil {
			h.writeDocumentError(ctx, w, id, index, err)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	case h.reader != nil:
		obj, err := h.reader.Get(ctx, id, index)
		if err != nil {
			h.writeDocumentError(ctx, w, id, index, err)
			return
		}
		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Content-Disposition", "inline; filename=\""+obj.Name+"\"")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(obj.Content)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "document content is not retained"))
	}
}

func (h *Handler) writeDocumentError(ctx context.Context, w http.ResponseWriter, claimID string, index int, err error) {
	if dErrors.Is(err, documents.ErrNotFound) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "document not found"))
		return
	}
	h.logger.ErrorContext(ctx, "failed to load claim document",
		"claim_id", claimID,
		"index", index,
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document"))
}

// logFailure logs server-side failures; client errors are only answered.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	code := dErrors.CodeOf(err)
	if httputil.StatusFor(code) < http.StatusInternalServerError {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestID,
		"code", code,
		"error", err,
	)
}

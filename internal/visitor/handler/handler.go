package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/platform/httputil"
	"visitorreg/pkg/requestcontext"
)

// Service defines the visitor register operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, req *models.CreateVisitorRequest) (*models.VisitorView, error)
	Checkout(ctx context.Context, visitorID id.VisitorID, checkoutAt *time.Time) (*models.VisitorView, error)
	Void(ctx context.Context, visitorID id.VisitorID) (*models.VisitorView, error)
	Search(ctx context.Context, filter models.SearchFilter, pageIndex int) (paging.Page[*models.VisitorView], error)
	GetDetail(ctx context.Context, visitorID id.VisitorID) (*models.VisitorView, bool, error)
	GetByRegisterNo(ctx context.Context, registerNo string) (*models.VisitorView, bool, error)
}

// Handler wires visitor endpoints to the visitor service.
type Handler struct {
	service  Service
	logger   *slog.Logger
	location *time.Location
}

// New constructs a visitor handler. loc interprets date-only search bounds; nil
// means time.Local.
func New(service Service, logger *slog.Logger, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		service:  service,
		logger:   logger,
		location: loc,
	}
}

// Register mounts visitor endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/visitors", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/by-register-no/{registerNo}", h.HandleGetByRegisterNo)
		r.Get("/{id}", h.HandleGetDetail)
		r.Post("/{id}/checkout", h.HandleCheckout)
		r.Post("/{id}/void", h.HandleVoid)
	})
}

// HandleCreate handles POST /visitors.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.CreateVisitorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Create(ctx, req)
	if err != nil {
		h.logFailure(ctx, "visitor check-in failed", err)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/visitors/"+view.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleSearch handles GET /visitors.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := parseSearchQuery(r.URL.Query(), h.location)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.Search(ctx, query.Filter, query.Page)
	if err != nil {
		h.logFailure(ctx, "visitor search failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// HandleGetDetail handles GET /visitors/{id}.
func (h *Handler) HandleGetDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, found, err := h.service.GetDetail(ctx, visitorID)
	h.writeLookup(ctx, w, view, found, err)
}

// HandleGetByRegisterNo handles GET /visitors/by-register-no/{registerNo}.
func (h *Handler) HandleGetByRegisterNo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, found, err := h.service.GetByRegisterNo(ctx, chi.URLParam(r, "registerNo"))
	h.writeLookup(ctx, w, view, found, err)
}

// HandleCheckout handles POST /visitors/{id}/checkout. The body is optional; an
// omitted checkout_at means "now".
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeOptionalJSON[CheckoutRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Checkout(ctx, visitorID, req.CheckoutAt)
	if err != nil {
		h.logFailure(ctx, "visitor checkout failed", err, "visitor_id", visitorID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleVoid handles POST /visitors/{id}/void.
func (h *Handler) HandleVoid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Void(ctx, visitorID)
	if err != nil {
		h.logFailure(ctx, "visitor void failed", err, "visitor_id", visitorID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) writeLookup(ctx context.Context, w http.ResponseWriter, view *models.VisitorView, found bool, err error) {
	if err != nil {
		h.logFailure(ctx, "visitor lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "visitor not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// logFailure logs caller mistakes at WARN and everything else at ERROR.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	switch {
	case dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeBadRequest),
		dErrors.HasCode(err, dErrors.CodeNotFound),
		dErrors.HasCode(err, dErrors.CodeInvariantViolation),
		dErrors.HasCode(err, dErrors.CodeConflict):
		h.logger.WarnContext(ctx, msg, attrs...)
	default:
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
}

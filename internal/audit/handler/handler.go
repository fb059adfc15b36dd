package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"visitorreg/internal/audit"
	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/platform/httputil"
	pstrings "visitorreg/pkg/platform/strings"
	"visitorreg/pkg/requestcontext"
)

// Searcher is the read side of the audit recorder.
type Searcher interface {
	Search(ctx context.Context, filter audit.Filter, pageIndex int) (paging.Page[*audit.Entry], error)
}

type Handler struct {
	searcher Searcher
	logger   *slog.Logger
}

func New(searcher Searcher, logger *slog.Logger) *Handler {
	return &Handler{searcher: searcher, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-entries", h.HandleSearch)
}

// HandleSearch handles GET /audit-entries?from&to&actor&action&result&page.
// action may repeat or be comma separated.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, page, err := parseQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.searcher.Search(ctx, filter, page)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "audit search failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func parseQuery(q url.Values) (audit.Filter, int, error) {
	var filter audit.Filter
	var page int
	var problems []string

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := strings.TrimSpace(q.Get(bound.name))
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			problems = append(problems, bound.name+" must be an RFC 3339 timestamp")
			continue
		}
		*bound.dst = &t
	}

	filter.Actor = q.Get("actor")

	for _, part := range pstrings.SplitUpper(q["action"]) {
		action := audit.Action(part)
		switch action {
		case audit.ActionCreate, audit.ActionCheckout, audit.ActionVoid:
			filter.Actions = append(filter.Actions, action)
		default:
			problems = append(problems, "action must be one of CREATE, CHECKOUT, VOID")
		}
	}

	if raw := strings.ToUpper(strings.TrimSpace(q.Get("result"))); raw != "" {
		switch audit.Result(raw) {
		case audit.ResultSuccess, audit.ResultFail:
			filter.Result = audit.Result(raw)
		default:
			problems = append(problems, "result must be SUCCESS or FAIL")
		}
	}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil || n < 0:
			problems = append(problems, "page must be a non-negative integer")
		case n > paging.MaxIndex:
			problems = append(problems, "page must be at most "+strconv.Itoa(paging.MaxIndex))
		default:
			page = n
		}
	}

	if len(problems) > 0 {
		return audit.Filter{}, 0, dErrors.New(dErrors.CodeValidation, strings.Join(problems, "; "))
	}
	return filter, page, nil
}

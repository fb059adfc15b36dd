// Package operator reads the acting staff account from the X-Operator header set
// by the upstream identity proxy. Authentication itself happens upstream.
package operator

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/platform/httputil"
	"visitorreg/pkg/requestcontext"
)

const (
	Header    = "X-Operator"
	MaxLength = 80
)

// Middleware attaches the operator to the context. A missing header leaves the
// context untouched so mutations are attributed to requestcontext.SystemOperator.
// A malformed header is rejected so it can never reach the audit trail.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := strings.TrimSpace(r.Header.Get(Header))
			if op == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !valid(op) {
				ctx := r.Context()
				logger.WarnContext(ctx, "rejected malformed operator header",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "X-Operator header is malformed"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithOperator(r.Context(), op)))
		})
	}
}

func valid(op string) bool {
	if utf8.RuneCountInString(op) > MaxLength {
		return false
	}
	for _, r := range op {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

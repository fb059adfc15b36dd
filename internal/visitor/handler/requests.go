package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"visitorreg/internal/visitor/models"
	dErrors "visitorreg/pkg/domain-errors"
	"visitorreg/pkg/paging"
)

const dateLayout = "2006-01-02"

// CheckoutRequest is the optional body of POST /visitors/{id}/checkout.
type CheckoutRequest struct {
	CheckoutAt *time.Time `json:"checkout_at,omitempty"`
}

type searchQuery struct {
	Filter models.SearchFilter
	Page   int
}

// parseSearchQuery reads from, to, name, company, host, status and page.
// from/to accept RFC 3339 timestamps or plain dates; a plain "to" date covers
// the whole day.
func parseSearchQuery(q url.Values, loc *time.Location) (searchQuery, error) {
	var out searchQuery
	var problems []string

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		from, err := parseBound(raw, loc, false)
		if err != nil {
			problems = append(problems, "from must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		} else {
			out.Filter.From = &from
		}
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		to, err := parseBound(raw, loc, true)
		if err != nil {
			problems = append(problems, "to must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		} else {
			out.Filter.To = &to
		}
	}

	out.Filter.Name = q.Get("name")
	out.Filter.Company = q.Get("company")
	out.Filter.HostName = q.Get("host")

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			problems = append(problems, "status must be one of in_site, checked_out, voided")
		} else {
			out.Filter.Status = &status
		}
	}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		switch {
		case err != nil || page < 0:
			problems = append(problems, "page must be a non-negative integer")
		case page > paging.MaxIndex:
			problems = append(problems, "page must be at most "+strconv.Itoa(paging.MaxIndex))
		default:
			out.Page = page
		}
	}

	if len(problems) > 0 {
		return searchQuery{}, dErrors.New(dErrors.CodeValidation, strings.Join(problems, "; "))
	}
	return out, nil
}

func parseBound(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

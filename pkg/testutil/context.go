package testutil

import (
	"net/http"
)

// AsOperator sets the X-Operator header the upstream identity proxy would add.
func AsOperator(req *http.Request, operator string) *http.Request {
	req.Header.Set("X-Operator", operator)
	return req
}

// FromClient sets the forwarded client address and User-Agent of a request.
func FromClient(req *http.Request, ip, userAgent string) *http.Request {
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return req
}

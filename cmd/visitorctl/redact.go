package main

import "net/url"

// redactURL hides the password of a connection URL. Unparseable values are
// replaced entirely.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<redacted>"
	}
	return u.Redacted()
}

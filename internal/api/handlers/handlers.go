// Package handlers is the HTTP boundary. Handlers validate caller input,
// delegate to the pipeline, aggregation engine or store, and translate
// outcomes into JSON responses.
package handlers

import (
	"net/http"
	"strconv"
	"time"
)

// userID pulls the mandatory user scope from the query string.
func userID(r *http.Request) string {
	return r.URL.Query().Get("user_id")
}

// intQuery parses an integer query parameter, returning fallback when absent
// or malformed.
func intQuery(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// monthYear resolves the optional month/year parameters against now.
func monthYear(r *http.Request, now time.Time) (int, int) {
	return intQuery(r, "month", int(now.Month())), intQuery(r, "year", now.Year())
}

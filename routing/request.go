package routing

import (
	"net/http"
	"net/url"
)

// Request is the read-only snapshot of one inbound request. It is
// constructed once, never mutated, and discarded after the decision is
// applied; all derived values (canonical path, locale, class) are
// computed into fresh values by the pipeline.
type Request struct {
	Path      string
	RawQuery  string
	Query     url.Values
	Cookies   []*http.Cookie
	Host      string
	UserAgent string
	Method    string
}

// Snapshot captures the routing-relevant parts of an http.Request.
// It fails on an unparseable query string; the caller answers those
// with a 400 instead of routing them.
func Snapshot(r *http.Request) (Request, error) {
	q, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Path:      r.URL.Path,
		RawQuery:  r.URL.RawQuery,
		Query:     q,
		Cookies:   r.Cookies(),
		Host:      r.Host,
		UserAgent: r.UserAgent(),
		Method:    r.Method,
	}, nil
}

// target is the original path and query, used for the login next
// parameter.
func (r Request) target() string {
	if r.RawQuery == "" {
		return r.Path
	}

	return r.Path + "?" + r.RawQuery
}

/*
Package serve adapts the routing engine to net/http. The handler
snapshots each inbound request, asks the router for a decision and
renders it: redirects get a Location header and an empty body, blocks
get a bare status, rewrites are served by the inner handler under the
rewritten path, and allowed requests pass through with the engine's
response headers and cookies attached.
*/
package serve

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/edgegate/edgegate/routing"
)

// Handler applies routing decisions in front of the page-serving
// layer.
type Handler struct {
	router *routing.Router
	next   http.Handler
}

// New creates the handler. next serves allowed and rewritten
// requests.
func New(router *routing.Router, next http.Handler) *Handler {
	return &Handler{router: router, next: next}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := routing.Snapshot(r)
	if err != nil {
		log.Errorf("invalid query: %s", r.URL.RawQuery)
		http.Error(w, "Invalid query", http.StatusBadRequest)
		return
	}

	res := h.router.Route(r.Context(), req)
	h.apply(w, r, res)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, res routing.Result) {
	// annotations first: they belong on the response whichever
	// variant won, and cookies queued by earlier stages must survive
	// gate redirects
	for name, values := range res.Header {
		w.Header()[http.CanonicalHeaderKey(name)] = values
	}

	for _, c := range res.Cookies {
		http.SetCookie(w, c)
	}

	switch res.Kind {
	case routing.Redirect:
		w.Header().Set("Location", res.Location)
		w.WriteHeader(res.Status)
	case routing.Block:
		w.WriteHeader(res.Status)
	case routing.Rewrite:
		rr := r.Clone(r.Context())
		rr.URL.Path = res.Path
		rr.URL.RawPath = ""
		h.next.ServeHTTP(w, rr)
	default:
		h.next.ServeHTTP(w, r)
	}
}

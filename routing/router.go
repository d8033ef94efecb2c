/*
Package routing implements the edge routing engine: an ordered
pipeline of stages that inspects one request snapshot and produces
exactly one terminal decision (allow, redirect, rewrite or block)
plus response headers and cookies to attach.

Each stage either returns a terminal decision or nil; the pipeline
stops at the first terminal decision, which keeps the ordering
invariants of the stages testable in isolation. The engine is
stateless per request and read-only against the shared tables, so
requests evaluate concurrently without synchronization. The session
gate is the only stage that blocks on I/O.
*/
package routing

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/edgegate/edgegate/classify"
	"github.com/edgegate/edgegate/locale"
	"github.com/edgegate/edgegate/pathname"
	"github.com/edgegate/edgegate/queryfilter"
	"github.com/edgegate/edgegate/redirect"
	"github.com/edgegate/edgegate/session"
)

// Metrics is the observability hook of the router. Implementations
// must be safe for concurrent use; a nil Metrics disables collection.
type Metrics interface {
	IncDecision(kind string)
	IncRedirect(reason string)
	MeasureRoute(start time.Time)
}

// Options wires the collaborators of a Router. Locales, Negotiator,
// Redirects, Query and Classes are required; Gate may be nil when no
// route is protected.
type Options struct {
	Locales    *locale.Table
	Negotiator *locale.Negotiator
	Redirects  *redirect.Resolver
	Query      *queryfilter.Filter
	Classes    *classify.Classifier
	Gate       *session.Gate

	// Placeholders are reserved template tokens; paths containing
	// one rewrite to NotFoundPath.
	Placeholders []string

	// NotFoundPath is the internal not-found route, by default
	// "/404".
	NotFoundPath string

	// LangParam is the legacy query parameter naming a locale, by
	// default "lang".
	LangParam string

	// LocaleCookie is the sticky locale preference cookie written on
	// locale redirects and explicit locale navigation.
	LocaleCookie string

	// LocaleCookieMaxAge is the sticky cookie lifetime in seconds,
	// by default one year.
	LocaleCookieMaxAge int

	Metrics Metrics
}

// Router evaluates requests against the loaded tables. Create it once
// and share it; it holds no per-request state.
type Router struct {
	locales      *locale.Table
	negotiator   *locale.Negotiator
	redirects    *redirect.Resolver
	query        *queryfilter.Filter
	classes      *classify.Classifier
	gate         *session.Gate
	placeholders []string
	notFound     string
	langParam    string
	localeCookie string
	cookieMaxAge int
	metrics      Metrics
	stages       []stage
}

type stage struct {
	name string
	run  func(context.Context, *state) *Decision
}

// state is the per-request working set of the pipeline. The request
// snapshot itself stays untouched; everything derived lives here.
type state struct {
	req       Request
	canonical string        // canonical path, locale prefix included
	loc       locale.Locale // explicit path locale or negotiated preference
	explicit  bool
	stripped  string // canonical path without the locale prefix
	eng       string // stripped, localized segments mapped back to canonical
	class     classify.Class
	extras    Extras
	reason    string
}

// New creates a Router from the options.
func New(o Options) *Router {
	rt := &Router{
		locales:      o.Locales,
		negotiator:   o.Negotiator,
		redirects:    o.Redirects,
		query:        o.Query,
		classes:      o.Classes,
		gate:         o.Gate,
		placeholders: o.Placeholders,
		notFound:     o.NotFoundPath,
		langParam:    o.LangParam,
		localeCookie: o.LocaleCookie,
		cookieMaxAge: o.LocaleCookieMaxAge,
		metrics:      o.Metrics,
	}

	if rt.notFound == "" {
		rt.notFound = "/404"
	}

	if rt.langParam == "" {
		rt.langParam = "lang"
	}

	if rt.cookieMaxAge <= 0 {
		rt.cookieMaxAge = 365 * 24 * 60 * 60
	}

	rt.stages = []stage{
		{"placeholder", rt.placeholderStage},
		{"canonical", rt.canonicalStage},
		{"derive", rt.deriveStage},
		{"lang", rt.langStage},
		{"redirect", rt.redirectStage},
		{"query", rt.queryStage},
		{"classify", rt.classifyStage},
		{"negotiate", rt.negotiateStage},
		{"gate", rt.gateStage},
	}

	return rt
}

// Route produces the decision for one request snapshot. It is safe
// for concurrent use.
func (rt *Router) Route(ctx context.Context, req Request) Result {
	if rt.metrics != nil {
		defer rt.metrics.MeasureRoute(time.Now())
	}

	st := &state{req: req}
	for _, sg := range rt.stages {
		d := sg.run(ctx, st)
		if d == nil {
			continue
		}

		log.Debugf("route %s: %s by %s (%s)", req.Path, d.Kind, sg.name, st.reason)
		rt.count(d, st)
		return Result{Decision: *d, Extras: st.extras}
	}

	log.Debugf("route %s: allow", req.Path)
	if rt.metrics != nil {
		rt.metrics.IncDecision(Allow.String())
	}

	return Result{Decision: Decision{Kind: Allow}, Extras: st.extras}
}

func (rt *Router) count(d *Decision, st *state) {
	if rt.metrics == nil {
		return
	}

	rt.metrics.IncDecision(d.Kind.String())
	if d.Kind == Redirect {
		rt.metrics.IncRedirect(st.reason)
	}
}

// placeholderStage rewrites paths containing unresolved template
// tokens to the not-found route. These are link-generation bugs, not
// visitor input, so they must neither be served nor redirected.
func (rt *Router) placeholderStage(_ context.Context, st *state) *Decision {
	if !pathname.HasPlaceholder(st.req.Path, rt.placeholders) {
		return nil
	}

	st.reason = "placeholder"
	return &Decision{Kind: Rewrite, Path: rt.notFound}
}

// canonicalStage redirects to the canonical form of the path when the
// raw path differs from it. The client must see the canonical URL;
// silently rewriting would leak duplicate-content URLs to crawlers.
// The query string rides along untouched. A URL that also needs query
// filtering takes one more hop; each redirect fixes one concern, and
// the chain shrinks toward the canonical URL on every hop.
func (rt *Router) canonicalStage(_ context.Context, st *state) *Decision {
	c := pathname.Canonical(st.req.Path, rt.locales)
	if c == st.req.Path {
		st.canonical = c
		return nil
	}

	st.reason = "canonical"
	return &Decision{
		Kind:     Redirect,
		Status:   http.StatusMovedPermanently,
		Location: withRawQuery(c, st.req.RawQuery),
	}
}

// deriveStage computes the locale view of the canonical path: the
// explicit path locale or the negotiated preference, the
// prefix-stripped path, and its canonical-English segment form. It
// never terminates the pipeline.
func (rt *Router) deriveStage(_ context.Context, st *state) *Decision {
	loc, rest, ok := rt.locales.SplitPrefix(st.canonical)
	if ok {
		st.loc, st.stripped, st.explicit = loc, rest, true
	} else {
		st.loc = rt.negotiator.Preferred(st.req.Cookies)
		st.stripped = st.canonical
	}

	st.eng = rt.locales.CanonicalPath(st.loc, st.stripped)
	return nil
}

// langStage converts a legacy lang query parameter naming a supported
// locale into the canonical localized path. Unknown lang values are
// left for the query filter to strip, and non-localized surfaces
// never grow a locale prefix.
func (rt *Router) langStage(_ context.Context, st *state) *Decision {
	v := st.req.Query.Get(rt.langParam)
	if v == "" {
		return nil
	}

	code := locale.Locale(strings.ToLower(v))
	if !rt.locales.Contains(code) {
		return nil
	}

	if !rt.classes.Classify(st.eng).Marketing {
		return nil
	}

	q := cloneValues(st.req.Query)
	q.Del(rt.langParam)
	st.extras.addCookie(rt.stickyCookie(code))
	st.reason = "lang"
	return &Decision{
		Kind:     Redirect,
		Status:   http.StatusMovedPermanently,
		Location: withValues(rt.locales.LocalizePath(code, st.eng), q),
	}
}

// redirectStage consults the gone, exact, locale-exact and fuzzy
// tables.
func (rt *Router) redirectStage(_ context.Context, st *state) *Decision {
	m := rt.redirects.Resolve(st.stripped, st.loc)
	if m == nil {
		return nil
	}

	st.reason = m.Reason
	if m.Status == http.StatusGone {
		return &Decision{Kind: Block, Status: http.StatusGone}
	}

	return &Decision{
		Kind:     Redirect,
		Status:   m.Status,
		Location: withRawQuery(m.Location, st.req.RawQuery),
	}
}

// queryStage strips disallowed query parameters and flags tracking
// parameters for noindex.
func (rt *Router) queryStage(_ context.Context, st *state) *Decision {
	cleaned, changed, tracking := rt.query.Clean(st.eng, st.req.Query)
	if tracking {
		st.extras.setHeader("X-Robots-Tag", "noindex, follow")
	}

	if !changed {
		return nil
	}

	st.reason = "query"
	return &Decision{
		Kind:     Redirect,
		Status:   http.StatusMovedPermanently,
		Location: withValues(st.canonical, cleaned),
	}
}

// classifyStage computes the route class and attaches the header
// discipline it implies. Admin routes always carry the strict
// no-store set, indexable or not.
func (rt *Router) classifyStage(_ context.Context, st *state) *Decision {
	st.class = rt.classes.Classify(st.eng)
	if st.class.Admin {
		st.extras.setHeader("Cache-Control", "no-store, no-cache, must-revalidate")
		st.extras.setHeader("Pragma", "no-cache")
		st.extras.setHeader("Vary", "Cookie")
		st.extras.setHeader("X-Robots-Tag", "noindex, nofollow")
	} else if st.class.AppNoindex {
		st.extras.setHeader("X-Robots-Tag", "noindex, follow")
	}

	return nil
}

// negotiateStage sends marketing requests without an explicit locale
// to the visitor's preferred locale. The redirect is temporary: the
// same URL may resolve differently once the visitor changes their
// preference. Explicit locale navigation refreshes the sticky cookie
// instead.
func (rt *Router) negotiateStage(_ context.Context, st *state) *Decision {
	if !st.class.Marketing {
		return nil
	}

	if st.explicit {
		if cookieValue(st.req.Cookies, rt.localeCookie) != string(st.loc) {
			st.extras.addCookie(rt.stickyCookie(st.loc))
		}

		return nil
	}

	// without an explicit prefix, deriveStage stored the negotiated
	// preference in st.loc
	pref := st.loc
	if pref == rt.locales.Default() {
		return nil
	}

	st.extras.addCookie(rt.stickyCookie(pref))
	st.reason = "locale"
	return &Decision{
		Kind:     Redirect,
		Status:   http.StatusTemporaryRedirect,
		Location: withRawQuery(rt.locales.LocalizePath(pref, st.eng), st.req.RawQuery),
	}
}

// gateStage runs last and only for protected routes. It may override
// the pass-through with a redirect to login or home, or a bare 401
// for admin surfaces. Cookies queued by earlier stages stay on the
// response; the gate only adds to the jar.
func (rt *Router) gateStage(ctx context.Context, st *state) *Decision {
	if rt.gate == nil || !st.class.Protected {
		return nil
	}

	chk := rt.gate.Check(ctx, st.req.Cookies, st.class.Admin, st.req.target())
	for _, c := range chk.SetCookies {
		st.extras.addCookie(c)
	}

	switch chk.Outcome {
	case session.Deny:
		st.reason = "unauthorized"
		return &Decision{Kind: Block, Status: http.StatusUnauthorized}
	case session.RedirectHome:
		st.reason = "logout"
		return &Decision{Kind: Redirect, Status: http.StatusTemporaryRedirect, Location: chk.Location}
	case session.RedirectLogin:
		st.reason = "login"
		return &Decision{Kind: Redirect, Status: http.StatusTemporaryRedirect, Location: chk.Location}
	default:
		return nil
	}
}

func (rt *Router) stickyCookie(loc locale.Locale) *http.Cookie {
	return &http.Cookie{
		Name:   rt.localeCookie,
		Value:  string(loc),
		Path:   "/",
		MaxAge: rt.cookieMaxAge,
	}
}

func withRawQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}

	return path + "?" + rawQuery
}

func withValues(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}

	return path + "?" + q.Encode()
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}

	return out
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}

	return ""
}

package edgegate

import (
	"fmt"
	"net/http"

	"github.com/edgegate/edgegate/classify"
	"github.com/edgegate/edgegate/config"
	"github.com/edgegate/edgegate/locale"
	"github.com/edgegate/edgegate/logging"
	"github.com/edgegate/edgegate/metrics"
	"github.com/edgegate/edgegate/queryfilter"
	"github.com/edgegate/edgegate/redirect"
	"github.com/edgegate/edgegate/routing"
	"github.com/edgegate/edgegate/serve"
	"github.com/edgegate/edgegate/session"
)

// Options to create an Engine.
type Options struct {

	// ConfigFile is the path of the YAML routing configuration.
	// Ignored when Config is set.
	ConfigFile string

	// Config is the parsed routing configuration.
	Config *config.Config

	// Probe looks up sessions for protected routes. When nil, every
	// protected request is treated as anonymous.
	Probe session.Probe

	// Next serves allowed and rewritten requests; typically the
	// hosting framework's page handler.
	Next http.Handler

	// Logging initialization options.
	Logging logging.Options

	// EnablePrometheusMetrics turns on metrics collection.
	EnablePrometheusMetrics bool

	// MetricsOptions for the Prometheus backend.
	MetricsOptions metrics.Options
}

// Engine is the assembled routing engine: an http.Handler in front of
// the page-serving layer. Build it once at startup; all tables are
// immutable afterwards and the engine is safe for concurrent use.
type Engine struct {
	handler *serve.Handler
	router  *routing.Router
	metrics *metrics.Metrics
}

// New loads the configuration, builds all routing tables and wires
// the engine. Every configuration problem surfaces here; a
// successfully constructed Engine does not fail at request time.
func New(o Options) (*Engine, error) {
	if o.Next == nil {
		return nil, fmt.Errorf("edgegate: no next handler defined")
	}

	if err := logging.Init(o.Logging); err != nil {
		return nil, err
	}

	c := o.Config
	if c == nil {
		var err error
		if c, err = config.Load(o.ConfigFile); err != nil {
			return nil, err
		}
	}

	defs := make([]locale.Def, 0, len(c.Locales))
	for _, l := range c.Locales {
		defs = append(defs, locale.Def{Code: locale.Locale(l.Code), Prefix: l.Prefix})
	}

	slugs := make([]locale.SlugEntry, 0, len(c.Slugs))
	for _, s := range c.Slugs {
		localized := make(map[locale.Locale]string, len(s.Localized))
		for code, seg := range s.Localized {
			localized[locale.Locale(code)] = seg
		}

		slugs = append(slugs, locale.SlugEntry{Canonical: s.Canonical, Localized: localized})
	}

	table, err := locale.NewTable(defs, locale.Locale(c.DefaultLocale), slugs)
	if err != nil {
		return nil, err
	}

	negotiator := locale.NewNegotiator(table, c.Cookies.Locale, c.Cookies.LegacyLocale)

	resolver, err := redirect.New(table, redirect.Tables{
		Gone:        c.Redirects.Gone,
		Exact:       c.Redirects.Exact,
		LocaleExact: c.Redirects.LocaleExact,
		Sections:    c.Sections,
		Fuzzy:       c.Redirects.FuzzyTargets,
	})
	if err != nil {
		return nil, err
	}

	rules := make([]queryfilter.Rule, 0, len(c.Query.Rules))
	for _, r := range c.Query.Rules {
		rules = append(rules, queryfilter.Rule{Prefix: r.Prefix, Params: r.Params})
	}

	filter, err := queryfilter.New(rules, c.Query.Tracking)
	if err != nil {
		return nil, err
	}

	classifier, err := classify.New(classify.Prefixes{
		NonLocalized: c.Routes.NonLocalized,
		Protected:    c.Routes.Protected,
		Admin:        c.Routes.Admin,
		AppNoindex:   c.Routes.AppNoindex,
	})
	if err != nil {
		return nil, err
	}

	gate := session.NewGate(session.Options{
		Probe:        o.Probe,
		ProbeTimeout: c.Session.ProbeTimeout.Std(),
		LoginPath:    c.Session.LoginPath,
		NextParam:    c.Session.NextParam,
		LogoutCookie: c.Cookies.Logout,
	})

	e := &Engine{}
	var m routing.Metrics
	if o.EnablePrometheusMetrics {
		e.metrics = metrics.New(o.MetricsOptions)
		m = e.metrics
	}

	e.router = routing.New(routing.Options{
		Locales:            table,
		Negotiator:         negotiator,
		Redirects:          resolver,
		Query:              filter,
		Classes:            classifier,
		Gate:               gate,
		Placeholders:       c.Placeholders,
		NotFoundPath:       c.NotFoundPath,
		LangParam:          c.LangParam,
		LocaleCookie:       c.Cookies.Locale,
		LocaleCookieMaxAge: c.Cookies.LocaleMaxAge,
		Metrics:            m,
	})

	e.handler = serve.New(e.router, o.Next)
	return e, nil
}

// ServeHTTP routes the request and applies the decision.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.handler.ServeHTTP(w, r)
}

// Router exposes the decision engine for hosts that render decisions
// themselves.
func (e *Engine) Router() *routing.Router { return e.router }

// MetricsHandler returns the Prometheus scrape handler, or nil when
// metrics are disabled.
func (e *Engine) MetricsHandler() http.Handler {
	if e.metrics == nil {
		return nil
	}

	return e.metrics.Handler()
}

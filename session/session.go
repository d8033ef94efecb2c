/*
Package session gates protected routes on the presence of a valid
session, consulting an external probe.

The probe is the only blocking operation in the whole routing
pipeline. It gets a single bounded attempt per request; a failure or
timeout counts as "no session", so protected routes fail closed
instead of surfacing collaborator errors to the client.
*/
package session

import (
	"context"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// Session is the probe's answer for an authenticated visitor. The
// probe may attach refreshed credential cookies that must reach the
// outgoing response.
type Session struct {
	UserID     string
	SetCookies []*http.Cookie
}

// Probe looks up the session bound to the request cookies. It may
// perform network or credential-store I/O and is expected to honor
// context cancellation.
type Probe interface {
	Lookup(ctx context.Context, cookies []*http.Cookie) (*Session, error)
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(ctx context.Context, cookies []*http.Cookie) (*Session, error)

func (f ProbeFunc) Lookup(ctx context.Context, cookies []*http.Cookie) (*Session, error) {
	return f(ctx, cookies)
}

// Outcome of a gate check.
type Outcome int

const (
	// Authenticated lets the upstream decision stand.
	Authenticated Outcome = iota

	// Deny answers with a bare 401; admin surfaces never leak a
	// login redirect to anonymous clients.
	Deny

	// RedirectHome sends a freshly logged-out visitor to the site
	// root instead of bouncing them straight back to login.
	RedirectHome

	// RedirectLogin sends the visitor to the login page with the
	// original target preserved.
	RedirectLogin
)

// Check is the gate's verdict, including any cookies that must be
// attached to the response regardless of the outcome.
type Check struct {
	Outcome    Outcome
	Location   string
	SetCookies []*http.Cookie
}

// Options configures a Gate.
type Options struct {
	Probe        Probe
	ProbeTimeout time.Duration
	LoginPath    string
	NextParam    string

	// LogoutCookie is the flag cookie the auth layer sets right
	// before a logout navigation.
	LogoutCookie string
}

// Gate checks protected routes against the session probe.
type Gate struct {
	probe        Probe
	timeout      time.Duration
	loginPath    string
	nextParam    string
	logoutCookie string
}

// NewGate creates a gate. Missing options fall back to /login, "next"
// and a one second probe timeout.
func NewGate(o Options) *Gate {
	if o.LoginPath == "" {
		o.LoginPath = "/login"
	}

	if o.NextParam == "" {
		o.NextParam = "next"
	}

	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = time.Second
	}

	return &Gate{
		probe:        o.Probe,
		timeout:      o.ProbeTimeout,
		loginPath:    o.LoginPath,
		nextParam:    o.NextParam,
		logoutCookie: o.LogoutCookie,
	}
}

// Check runs the probe once and decides what happens to a protected
// request. target is the originally requested path and query, used to
// bring the visitor back after login. admin suppresses all redirects
// in favor of a bare 401.
func (g *Gate) Check(ctx context.Context, cookies []*http.Cookie, admin bool, target string) Check {
	if s := g.lookup(ctx, cookies); s != nil {
		return Check{Outcome: Authenticated, SetCookies: s.SetCookies}
	}

	if admin {
		return Check{Outcome: Deny}
	}

	if c := findCookie(cookies, g.logoutCookie); c != nil {
		// clear the signal so the next anonymous request redirects
		// to login again
		expired := &http.Cookie{
			Name:    g.logoutCookie,
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		}

		return Check{Outcome: RedirectHome, Location: "/", SetCookies: []*http.Cookie{expired}}
	}

	q := url.Values{g.nextParam: []string{target}}
	return Check{
		Outcome:  RedirectLogin,
		Location: g.loginPath + "?" + q.Encode(),
	}
}

func (g *Gate) lookup(ctx context.Context, cookies []*http.Cookie) *Session {
	if g.probe == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	s, err := g.probe.Lookup(ctx, cookies)
	if err != nil {
		log.Errorf("session probe failed, treating as no session: %v", err)
		return nil
	}

	if s == nil || s.UserID == "" {
		return nil
	}

	return s
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	if name == "" {
		return nil
	}

	for _, c := range cookies {
		if c.Name == name && c.Value != "" {
			return c
		}
	}

	return nil
}

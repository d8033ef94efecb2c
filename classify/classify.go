/*
Package classify decides which routing regime a canonical path belongs
to: locale-bearing marketing pages, non-localized app/auth/API
surfaces, admin routes, and authenticated surfaces that must never be
indexed.
*/
package classify

import (
	"fmt"
	"path"
	"strings"
)

// Prefixes configures the classifier. All entries are canonical,
// prefix-stripped paths.
type Prefixes struct {
	// NonLocalized are app, auth, API, static asset and similar
	// surfaces that never carry a locale prefix.
	NonLocalized []string

	// Protected are authenticated-app surfaces gated on a session.
	Protected []string

	// Admin is the admin root; the root itself and everything under
	// it is an admin route.
	Admin string

	// AppNoindex are logged-in app surfaces whose pages, including
	// per-render detail pages beneath them, must carry a noindex
	// directive even though they are technically reachable.
	AppNoindex []string
}

// Class is the classification of one canonical path.
type Class struct {
	Marketing  bool
	Protected  bool
	Admin      bool
	AppNoindex bool
}

// Classifier answers path classification against the configured
// prefix sets. Immutable after construction.
type Classifier struct {
	nonLocalized []string
	protected    []string
	admin        string
	appNoindex   []string
}

// New validates the prefix configuration.
func New(p Prefixes) (*Classifier, error) {
	check := func(name string, ps []string) error {
		for _, s := range ps {
			if !strings.HasPrefix(s, "/") {
				return fmt.Errorf("classify: %s prefix %q must start with a slash", name, s)
			}
		}

		return nil
	}

	if err := check("non-localized", p.NonLocalized); err != nil {
		return nil, err
	}

	if err := check("protected", p.Protected); err != nil {
		return nil, err
	}

	if err := check("app-noindex", p.AppNoindex); err != nil {
		return nil, err
	}

	if p.Admin != "" && !strings.HasPrefix(p.Admin, "/") {
		return nil, fmt.Errorf("classify: admin prefix %q must start with a slash", p.Admin)
	}

	return &Classifier{
		nonLocalized: lower(p.NonLocalized),
		protected:    lower(p.Protected),
		admin:        strings.ToLower(p.Admin),
		appNoindex:   lower(p.AppNoindex),
	}, nil
}

// Classify computes the routing regime of a canonical, prefix-stripped
// path.
func (c *Classifier) Classify(p string) Class {
	cl := Class{
		Protected:  hasAnyPrefix(p, c.protected),
		Admin:      c.admin != "" && underPrefix(p, c.admin),
		AppNoindex: hasAnyPrefix(p, c.appNoindex),
	}

	// admin surfaces are session gated whether or not they are
	// listed among the protected prefixes
	cl.Protected = cl.Protected || cl.Admin

	cl.Marketing = !cl.Admin &&
		!hasAnyPrefix(p, c.nonLocalized) &&
		!isAsset(p)

	return cl
}

// isAsset treats any path whose last segment carries a file extension
// as a static asset, with an exception for well-known URIs, which are
// dotfile-prefixed but routable.
func isAsset(p string) bool {
	if strings.HasPrefix(p, "/.well-known/") {
		return false
	}

	return path.Ext(p) != ""
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, pre := range prefixes {
		if underPrefix(p, pre) {
			return true
		}
	}

	return false
}

func underPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func lower(ps []string) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = strings.ToLower(p)
	}

	return out
}

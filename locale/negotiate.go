package locale

import "net/http"

// Negotiator resolves the preferred locale of a visitor from stored
// cookie preference only. It never inspects Accept-Language or any
// network-derived signal, so the outcome is fully reproducible from
// the request alone.
type Negotiator struct {
	table  *Table
	cookie string
	legacy string
}

// NewNegotiator creates a negotiator reading the primary sticky-locale
// cookie and, as a fallback, a legacy cookie name kept for visitors
// with preferences stored by an earlier version of the site.
func NewNegotiator(t *Table, cookie, legacy string) *Negotiator {
	return &Negotiator{table: t, cookie: cookie, legacy: legacy}
}

// Preferred returns the visitor's preferred locale: the sticky cookie
// if it names a supported locale, then the legacy cookie, then the
// configured default.
func (n *Negotiator) Preferred(cookies []*http.Cookie) Locale {
	if loc, ok := n.fromCookie(cookies, n.cookie); ok {
		return loc
	}

	if loc, ok := n.fromCookie(cookies, n.legacy); ok {
		return loc
	}

	return n.table.Default()
}

func (n *Negotiator) fromCookie(cookies []*http.Cookie, name string) (Locale, bool) {
	if name == "" {
		return "", false
	}

	for _, c := range cookies {
		if c.Name != name {
			continue
		}

		loc := Locale(c.Value)
		if n.table.Contains(loc) {
			return loc, true
		}
	}

	return "", false
}

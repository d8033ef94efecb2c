package routing

import "net/http"

// Kind is the variant tag of a Decision.
type Kind int

const (
	// Allow passes the request through to the page-serving layer
	// untouched.
	Allow Kind = iota

	// Redirect answers with a Location header and a redirect status.
	Redirect

	// Rewrite serves the request under a different internal path
	// without telling the client.
	Rewrite

	// Block answers with a bare status code, no body and no
	// Location, for gone resources and unauthorized admin access.
	Block
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Rewrite:
		return "rewrite"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// Decision is the single terminal output of the engine for one
// request. Exactly one variant is active; Status and Location are
// meaningful for Redirect and Block, Path for Rewrite.
type Decision struct {
	Kind     Kind
	Status   int
	Location string
	Path     string
}

// Extras are non-terminal response annotations accumulated while the
// pipeline runs: headers and cookies that must be attached to the
// outgoing response whichever variant wins.
type Extras struct {
	Header  http.Header
	Cookies []*http.Cookie
}

func (e *Extras) setHeader(name, value string) {
	if e.Header == nil {
		e.Header = make(http.Header)
	}

	e.Header.Set(name, value)
}

func (e *Extras) addCookie(c *http.Cookie) {
	e.Cookies = append(e.Cookies, c)
}

// Result pairs the terminal decision with the accumulated response
// annotations.
type Result struct {
	Decision
	Extras
}

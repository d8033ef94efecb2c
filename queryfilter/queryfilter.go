/*
Package queryfilter strips query parameters that are not allowlisted
for a route, keeping campaign tracking parameters intact while
flagging them for a noindex response header.
*/
package queryfilter

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Rule allows a set of query parameter names under one path prefix.
type Rule struct {
	Prefix string
	Params []string
}

type rule struct {
	prefix string
	params map[string]bool
}

// Filter holds the per-prefix allowlists and the global set of
// tracking parameter names. Immutable after construction.
type Filter struct {
	rules    []rule
	tracking map[string]bool
}

// New validates and compiles the allowlist rules. Rules are matched
// longest prefix first, so "/models/detail" can carry a narrower
// allowlist than "/models".
func New(rules []Rule, tracking []string) (*Filter, error) {
	f := &Filter{tracking: make(map[string]bool)}
	for _, t := range tracking {
		f.tracking[strings.ToLower(t)] = true
	}

	for _, r := range rules {
		if !strings.HasPrefix(r.Prefix, "/") {
			return nil, fmt.Errorf("queryfilter: prefix %q must start with a slash", r.Prefix)
		}

		params := make(map[string]bool, len(r.Params))
		for _, p := range r.Params {
			params[strings.ToLower(p)] = true
		}

		f.rules = append(f.rules, rule{prefix: strings.ToLower(r.Prefix), params: params})
	}

	sort.SliceStable(f.rules, func(i, j int) bool {
		return len(f.rules[i].prefix) > len(f.rules[j].prefix)
	})

	return f, nil
}

// Clean filters the query parameters of a canonical, prefix-stripped
// path. Paths outside every configured prefix pass through untouched.
// For matching paths, parameters outside the allowlist are dropped
// unless they are tracking parameters, which survive verbatim; the
// tracking return tells the caller to mark the response noindex.
// Cleaning an already clean query reports changed=false, so the
// resulting redirect chain always terminates after one hop.
func (f *Filter) Clean(path string, values url.Values) (cleaned url.Values, changed, tracking bool) {
	r, ok := f.match(path)
	if !ok {
		return values, false, false
	}

	cleaned = make(url.Values, len(values))
	for name, vs := range values {
		key := strings.ToLower(name)
		switch {
		case f.tracking[key]:
			cleaned[name] = vs
			tracking = true
		case r.params[key]:
			cleaned[name] = vs
		default:
			changed = true
		}
	}

	if !changed {
		return values, false, tracking
	}

	return cleaned, true, tracking
}

func (f *Filter) match(path string) (rule, bool) {
	for _, r := range f.rules {
		if path == r.prefix || strings.HasPrefix(path, r.prefix+"/") {
			return r, true
		}
	}

	return rule{}, false
}

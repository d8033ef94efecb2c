/*
Package edgegate implements the edge routing and redirect-resolution
engine for a multi-locale public web property.

The engine inspects one request at a time, looking at its path,
query string and cookies, and decides whether to redirect it to its
canonical URL,
rewrite it internally, answer with a terminal status, or pass it
through to the page-serving layer. The decision combines path
canonicalization, legacy and fuzzy redirect resolution, query
parameter filtering, route classification, locale negotiation and
session gating, evaluated in that fixed order with the first terminal
decision winning.

The engine is deterministic: the decision is a pure function of the
request snapshot and the immutable configuration tables, so identical
requests always produce identical decisions and every redirect
converges to a canonical URL in finitely many hops.

Embedding is a single handler in front of the page layer:

	engine, err := edgegate.New(edgegate.Options{
		ConfigFile: "routing.yaml",
		Probe:      sessionStore,
		Next:       pages,
	})
	if err != nil {
		log.Fatal(err)
	}

	http.ListenAndServe(":9090", engine)
*/
package edgegate

// Package probe performs single bounded-time checks of TCP ports and HTTP
// endpoints and classifies every possible outcome into a Result. A check
// never returns an error: all failures are folded into the Result status
// taxonomy.
package probe

import "context"

// Checker performs a single check.
type Checker interface {
	Check(ctx context.Context) Result
}

// New returns the appropriate Checker for the request, with defaults
// applied. The request must validate.
func New(req Request) (Checker, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.withDefaults()
	switch req.Kind {
	case KindPort:
		return newPortChecker(req), nil
	case KindHTTP:
		return newHTTPChecker(req), nil
	}
	// Unreachable after Validate.
	panic("probe: unhandled request kind " + string(req.Kind))
}

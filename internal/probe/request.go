package probe

import (
	"fmt"
	"net/http"
	"time"
)

// Kind discriminates the supported check types.
type Kind string

const (
	KindPort Kind = "port"
	KindHTTP Kind = "http"
)

// DefaultTimeout bounds a single check when no timeout is supplied.
const DefaultTimeout = 5 * time.Second

// Request describes one check to perform. Kind selects which fields are
// required: Host/Port for port checks, URL for HTTP checks.
type Request struct {
	Kind           Kind
	Name           string
	Host           string
	Port           int
	URL            string
	Timeout        time.Duration
	ExpectedStatus int
	Method         string
}

// Validate reports why the request cannot be executed, or nil.
func (r Request) Validate() error {
	switch r.Kind {
	case KindPort:
		if r.Port < 1 || r.Port > 65535 {
			return fmt.Errorf("port check requires a port in 1..65535, got %d", r.Port)
		}
	case KindHTTP:
		if r.URL == "" {
			return fmt.Errorf("http check requires a url")
		}
	default:
		return fmt.Errorf("unknown check type %q", r.Kind)
	}
	return nil
}

// DisplayName returns the caller-supplied name, or a derived one.
func (r Request) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	switch r.Kind {
	case KindPort:
		return fmt.Sprintf("Port %d Service Check", r.Port)
	case KindHTTP:
		return fmt.Sprintf("HTTP Service: %s", r.URL)
	}
	return "Unknown Service Check"
}

// withDefaults fills unset optional fields.
func (r Request) withDefaults() Request {
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	if r.Kind == KindPort && r.Host == "" {
		r.Host = "localhost"
	}
	if r.Kind == KindHTTP {
		if r.Method == "" {
			r.Method = http.MethodGet
		}
		if r.ExpectedStatus == 0 {
			r.ExpectedStatus = http.StatusOK
		}
	}
	return r
}

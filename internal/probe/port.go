package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"
)

type portChecker struct {
	req Request
}

func newPortChecker(req Request) *portChecker {
	return &portChecker{req: req}
}

func (c *portChecker) Check(ctx context.Context) Result {
	start := time.Now()
	result := Result{
		Name:      c.req.DisplayName(),
		Details:   portDescription(c.req.Port),
		CheckedAt: start,
	}

	addr := net.JoinHostPort(c.req.Host, strconv.Itoa(c.req.Port))
	dialer := &net.Dialer{Timeout: c.req.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	result.ResponseTime = time.Since(start)
	result.CheckedAt = time.Now()

	if err != nil {
		result.Status, result.Error = classifyDialError(err, addr, c.req.Timeout)
		return result
	}
	conn.Close()
	result.Status = StatusOpen
	return result
}

func classifyDialError(err error, addr string, timeout time.Duration) (Status, string) {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(),
		errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout, fmt.Sprintf("connection to %s timed out after %s", addr, timeout)
	case errors.Is(err, syscall.ECONNREFUSED):
		return StatusClosed, fmt.Sprintf("connection refused - nothing listening at %s", addr)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return StatusError, fmt.Sprintf("DNS resolution failed: %v", dnsErr)
	}
	return StatusError, fmt.Sprintf("network error: %v", err)
}

// wellKnownPorts maps common ports to a short service description.
var wellKnownPorts = map[int]string{
	22:    "SSH - Remote shell access",
	25:    "SMTP - Mail transfer",
	53:    "DNS - Name resolution",
	80:    "HTTP - Web server",
	110:   "POP3 - Mail retrieval",
	143:   "IMAP - Mail access",
	443:   "HTTPS - Secure web server",
	587:   "SMTP Submission - Authenticated mail sending",
	993:   "IMAPS - Secure mail access",
	995:   "POP3S - Secure mail retrieval",
	3000:  "Node.js/React Development Server",
	3306:  "MySQL Database Server",
	4200:  "Angular Development Server",
	5000:  "Flask Development Server",
	5432:  "PostgreSQL Database Server",
	6379:  "Redis Cache Server",
	8000:  "Django/FastAPI Development Server",
	8025:  "MailHog Web UI",
	8080:  "HTTP Alternate - Development web server",
	9200:  "Elasticsearch Search Engine",
	15672: "RabbitMQ Management Interface",
	27017: "MongoDB Database Server",
}

// portDescription derives a human-readable description of what usually
// listens on a port. Unknown ports in the common development ranges get a
// range-based hint.
func portDescription(port int) string {
	if desc, ok := wellKnownPorts[port]; ok {
		return desc
	}
	switch {
	case port >= 3000 && port <= 3999:
		return fmt.Sprintf("Port %d - Likely Development Server", port)
	case port >= 8000 && port <= 8999:
		return fmt.Sprintf("Port %d - Likely Web Server/API", port)
	}
	return fmt.Sprintf("Port %d - Custom Service", port)
}

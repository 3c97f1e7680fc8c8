package probe

import (
	"encoding/json"
	"math"
	"time"
)

// Status represents the classified outcome of a single check.
type Status string

const (
	StatusUp      Status = "up"      // HTTP service responded as expected
	StatusOpen    Status = "open"    // TCP port accepted a connection
	StatusDown    Status = "down"    // service unreachable or wrong response
	StatusClosed  Status = "closed"  // TCP connection actively refused
	StatusTimeout Status = "timeout" // no response within the configured timeout
	StatusError   Status = "error"   // resolution failure or uncategorized error
	StatusUnknown Status = "unknown"
)

// Healthy reports whether the status counts as healthy for uptime and
// aggregation purposes.
func (s Status) Healthy() bool {
	return s == StatusUp || s == StatusOpen
}

// Result is the outcome of a single check. It is immutable once recorded
// into history.
type Result struct {
	Name         string
	Status       Status
	ResponseTime time.Duration // zero means no timing was measured
	Error        string
	Details      string
	CheckedAt    time.Time
}

// resultJSON is the wire shape for a Result. All fields are present,
// nullable where the value is absent; timestamp is epoch seconds.
type resultJSON struct {
	Name         string   `json:"name"`
	Status       Status   `json:"status"`
	ResponseTime *float64 `json:"response_time"`
	ErrorMessage *string  `json:"error_message"`
	Details      *string  `json:"details"`
	Timestamp    float64  `json:"timestamp"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Name:      r.Name,
		Status:    r.Status,
		Timestamp: float64(r.CheckedAt.UnixNano()) / float64(time.Second),
	}
	if r.ResponseTime > 0 {
		ms := roundMs(float64(r.ResponseTime) / float64(time.Millisecond))
		out.ResponseTime = &ms
	}
	if r.Error != "" {
		out.ErrorMessage = &r.Error
	}
	if r.Details != "" {
		out.Details = &r.Details
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Name = in.Name
	r.Status = in.Status
	r.ResponseTime = 0
	if in.ResponseTime != nil {
		r.ResponseTime = time.Duration(*in.ResponseTime * float64(time.Millisecond))
	}
	r.Error = ""
	if in.ErrorMessage != nil {
		r.Error = *in.ErrorMessage
	}
	r.Details = ""
	if in.Details != nil {
		r.Details = *in.Details
	}
	r.CheckedAt = time.Unix(0, int64(in.Timestamp*float64(time.Second)))
	return nil
}

func roundMs(ms float64) float64 {
	return math.Round(ms*100) / 100
}

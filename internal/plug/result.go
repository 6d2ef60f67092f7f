package plug

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status classifies the outcome of one plugin invocation.
// The zero value is not a valid status.
type Status int

const (
	Success Status = iota + 1
	Warning
	Error
)

// String returns the upper-case report label (SUCCESS, WARNING, ERROR).
func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Valid reports whether s is one of Success, Warning or Error.
func (s Status) Valid() bool {
	return s >= Success && s <= Error
}

// ParseStatus parses a status label case-insensitively.
// Accepts "success", "warning"/"warn" and "error"/"err".
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "ok":
		return Success, nil
	case "warning", "warn":
		return Warning, nil
	case "error", "err":
		return Error, nil
	}
	return 0, fmt.Errorf("invalid status %q: must be \"success\", \"warning\", or \"error\"", s)
}

// MarshalText encodes the status as its label so reports stay readable.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

// Worst returns the most severe status. Invalid statuses are ignored;
// with no valid input the result is Success.
func Worst(statuses ...Status) Status {
	worst := Success
	for _, s := range statuses {
		if s.Valid() && s > worst {
			worst = s
		}
	}
	return worst
}

// Result is the outcome of one hook invocation for one unit of work.
type Result struct {
	source  string
	status  Status
	message string
}

// NewResult creates a Result.
func NewResult(source string, status Status, message string) Result {
	return Result{source: source, status: status, message: message}
}

// Succeeded is shorthand for NewResult(source, Success, message).
func Succeeded(source, message string) Result {
	return NewResult(source, Success, message)
}

// Warned is shorthand for NewResult(source, Warning, message).
func Warned(source, message string) Result {
	return NewResult(source, Warning, message)
}

// Failed is shorthand for NewResult(source, Error, message).
func Failed(source, message string) Result {
	return NewResult(source, Error, message)
}

// Source returns the name of the plugin that produced the result.
func (r Result) Source() string { return r.source }

// Status returns the outcome classification.
func (r Result) Status() Status { return r.status }

// Message returns the free-text diagnostic.
func (r Result) Message() string { return r.message }

// IsZero reports whether r was never produced by NewResult.
func (r Result) IsZero() bool {
	return r == Result{}
}

// String formats the result as a single report line.
func (r Result) String() string {
	return fmt.Sprintf("%s: %s — %s", r.source, r.status, r.message)
}

type resultJSON struct {
	Source  string `json:"source" yaml:"source"`
	Status  Status `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// MarshalJSON exposes the unexported fields for machine-readable reports.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{Source: r.source, Status: r.status, Message: r.message})
}

// MarshalYAML exposes the unexported fields for machine-readable reports.
func (r Result) MarshalYAML() (any, error) {
	return resultJSON{Source: r.source, Status: r.status, Message: r.message}, nil
}

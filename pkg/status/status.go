// Package status defines the shared vocabulary of job scheduling outcomes.
//
// Every backend translates its raw wire representation into exactly one of
// these values. Translation tables must fail loudly on raw values outside
// their domain instead of defaulting.
package status

import (
	"encoding/json"
	"fmt"
)

// Status is a scheduling outcome.
//
// NOTE: The non-negative values match the result codes emitted by the
// self-serve scheduling API and are part of the stable wire contract.
// Synthetic states that the wire format cannot express are negative.
type Status int

const (
	Pending Status = iota - 4
	Running
	Coalesced
	Unknown
	Success
	Warning
	Failure
	Skipped
	Exception
	Retry
	Cancelled
)

var names = map[Status]string{
	Pending:   "pending",
	Running:   "running",
	Coalesced: "coalesced",
	Unknown:   "unknown",
	Success:   "success",
	Warning:   "warning",
	Failure:   "failure",
	Skipped:   "skipped",
	Exception: "exception",
	Retry:     "retry",
	Cancelled: "cancelled",
}

// String returns the lower-case name of the status.
func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is a member of the closed vocabulary.
func (s Status) Valid() bool {
	_, ok := names[s]
	return ok
}

// Terminal reports whether s describes a job that will not change anymore.
// Pending, Running and Unknown jobs may still transition.
func (s Status) Terminal() bool {
	switch s {
	case Pending, Running, Unknown:
		return false
	}
	return s.Valid()
}

// Parse maps a status name (as produced by String) back to its value.
func Parse(name string) (Status, error) {
	for s, n := range names {
		if n == name {
			return s, nil
		}
	}
	return Unknown, fmt.Errorf("unknown status name %q", name)
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status from its name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := Parse(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML encodes the status by name.
func (s Status) MarshalYAML() (any, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return s.String(), nil
}

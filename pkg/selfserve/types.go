// Package selfserve implements the query backend for the self-serve style
// polling scheduling API.
//
// The polling API is fast but coarse: a job it reports as a trivial success
// may actually have been coalesced (never run under load shedding). Success
// outcomes are therefore disambiguated against the archival resolver.
package selfserve

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Job is one raw record from the self-serve job list.
//
// The status field is tri-state on the wire: absent (job still pending),
// explicit null (scheduled but unresolved), or a numeric result code. The
// raw message preserves the distinction through decoding.
type Job struct {
	BuilderName string          `json:"buildername"`
	Status      json.RawMessage `json:"status,omitempty"`
	EndTime     *int64          `json:"endtime,omitempty"`

	// RequestID is set on records that carry no nested requests.
	RequestID *int64 `json:"request_id,omitempty"`

	// Requests are the scheduling sub-records; most jobs have at least one.
	Requests []Request `json:"requests,omitempty"`
}

// Request is a nested scheduling sub-record of a Job.
type Request struct {
	RequestID  int64  `json:"request_id"`
	Revision   string `json:"revision"`
	CompleteAt int64  `json:"complete_at"`
}

var nullLiteral = []byte("null")

// HasStatus reports whether the status field was present on the wire.
func (j *Job) HasStatus() bool {
	return len(j.Status) > 0
}

// StatusIsNull reports whether the status field was an explicit null.
func (j *Job) StatusIsNull() bool {
	return j.HasStatus() && bytes.Equal(bytes.TrimSpace(j.Status), nullLiteral)
}

// StatusCode returns the numeric result code carried by the status field.
func (j *Job) StatusCode() (int, error) {
	if !j.HasStatus() || j.StatusIsNull() {
		return 0, fmt.Errorf("status field carries no code")
	}
	var code int
	if err := json.Unmarshal(j.Status, &code); err != nil {
		return 0, fmt.Errorf("status field is not a result code: %w", err)
	}
	return code, nil
}

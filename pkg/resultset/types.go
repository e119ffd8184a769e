// Package resultset implements the query backend for the hierarchical
// results-set + jobs API.
//
// Unlike the polling backend, this API reports coalescing directly on the
// job record, so no archival cross-reference is needed to classify a
// success. Its jobs do not carry the scheduler's request id; that is
// recovered from an attached artifact instead.
package resultset

// ResultSet groups all jobs triggered by one revision push.
type ResultSet struct {
	ID       int64  `json:"id"`
	Revision string `json:"revision"`
}

// Job is one raw record from the jobs API.
type Job struct {
	ID          int64  `json:"id"`
	RefDataName string `json:"ref_data_name"`
	Result      string `json:"result"`
	State       string `json:"state"`

	// CoalescedTo is non-nil when the job slot was folded into another
	// job and never ran.
	CoalescedTo *string `json:"job_coalesced_to_guid"`
}

// Artifact is a named blob attached to a job.
type Artifact struct {
	Name string       `json:"name"`
	Blob ArtifactBlob `json:"blob"`
}

// ArtifactBlob carries the scheduler correlation data of an artifact.
type ArtifactBlob struct {
	RequestID int64 `json:"request_id"`
}

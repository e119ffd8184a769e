package selfserve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_StatusTriState(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		present  bool
		isNull   bool
		code     int
		codeOK   bool
	}{
		{"absent", `{"buildername":"b"}`, false, false, 0, false},
		{"explicit null", `{"buildername":"b","status":null}`, true, true, 0, false},
		{"zero code", `{"buildername":"b","status":0}`, true, false, 0, true},
		{"nonzero code", `{"buildername":"b","status":5}`, true, false, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var job Job
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &job))

			assert.Equal(t, tt.present, job.HasStatus())
			assert.Equal(t, tt.isNull, job.StatusIsNull())

			code, err := job.StatusCode()
			if tt.codeOK {
				require.NoError(t, err)
				assert.Equal(t, tt.code, code)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestJob_DecodeRequests(t *testing.T) {
	raw := `{
		"buildername": "Linux x64 opt",
		"status": 0,
		"endtime": 1718450000,
		"requests": [
			{"request_id": 101, "revision": "abc123def456789", "complete_at": 1718449000}
		]
	}`

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))

	assert.Equal(t, "Linux x64 opt", job.BuilderName)
	require.NotNil(t, job.EndTime)
	assert.Equal(t, int64(1718450000), *job.EndTime)
	require.Len(t, job.Requests, 1)
	assert.Equal(t, int64(101), job.Requests[0].RequestID)
	assert.Equal(t, "abc123def456789", job.Requests[0].Revision)
	assert.Equal(t, int64(1718449000), job.Requests[0].CompleteAt)
}

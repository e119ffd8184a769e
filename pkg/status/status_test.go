package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var all = []Status{
	Pending, Running, Coalesced, Unknown,
	Success, Warning, Failure, Skipped, Exception, Retry, Cancelled,
}

func TestWireCodes(t *testing.T) {
	// Non-negative values are the scheduling API's result codes and must
	// never shift.
	assert.Equal(t, 0, int(Success))
	assert.Equal(t, 1, int(Warning))
	assert.Equal(t, 2, int(Failure))
	assert.Equal(t, 3, int(Skipped))
	assert.Equal(t, 4, int(Exception))
	assert.Equal(t, 5, int(Retry))
	assert.Equal(t, 6, int(Cancelled))

	for _, s := range []Status{Pending, Running, Coalesced, Unknown} {
		assert.Negative(t, int(s), s.String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range all {
		got, err := Parse(s.String())
		require.NoError(t, err, s.String())
		assert.Equal(t, s, got)
	}

	_, err := Parse("busted")
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	for _, s := range all {
		assert.True(t, s.Valid(), s.String())
	}
	assert.False(t, Status(42).Valid())
	assert.False(t, Status(-5).Valid())
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{Pending, Running, Unknown} {
		assert.False(t, s.Terminal(), s.String())
	}
	for _, s := range []Status{Coalesced, Success, Warning, Failure, Skipped, Exception, Retry, Cancelled} {
		assert.True(t, s.Terminal(), s.String())
	}
	assert.False(t, Status(42).Terminal())
}

func TestStringFallback(t *testing.T) {
	assert.Equal(t, "status(42)", Status(42).String())
}

func TestJSONRoundTrip(t *testing.T) {
	for _, s := range all {
		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Equal(t, `"`+s.String()+`"`, string(data))

		var back Status
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, s, back)
	}
}

func TestJSONRejectsBadValues(t *testing.T) {
	_, err := json.Marshal(Status(42))
	require.Error(t, err)

	var s Status
	require.Error(t, json.Unmarshal([]byte(`"busted"`), &s))
	require.Error(t, json.Unmarshal([]byte(`7`), &s))
}

func TestMarshalYAML(t *testing.T) {
	v, err := Failure.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "failure", v)

	_, err = Status(42).MarshalYAML()
	require.Error(t, err)
}

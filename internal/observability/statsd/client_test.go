package statsd

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  prreview.api  ": "prreview.api",
		"..foo..":          "foo",
		".":                "",
		"":                 "",
	}
	for input, want := range tests {
		assert.Equal(t, want, sanitizePrefix(input), "input %q", input)
	}
}

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" pipeline/file ": "pipeline_file",
		"job..duration":   "job.duration",
		"multi  space":    "multi__space",
		".leading.":       "leading",
	}
	for input, want := range tests {
		assert.Equal(t, want, normalizeMetricName(input), "input %q", input)
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{"env": "prod", " service ": " prreview "}
	local := map[string]string{"result": " success ", "": "ignored", "env": "stage"}

	assert.Equal(t, "|#env:stage,result:success,service:prreview", formatTags(global, local))
	assert.Empty(t, formatTags(nil, nil))
}

func TestCloneTagsReturnsCopy(t *testing.T) {
	t.Parallel()

	original := map[string]string{"env": "prod", "": "ignored"}
	cp := cloneTags(original)
	cp["env"] = "changed"

	assert.Equal(t, "prod", original["env"])
	assert.NotContains(t, cp, "")
}

func TestLine(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Prefix: "prreview.", GlobalTags: map[string]string{"env": "test"}})
	require.NoError(t, err)

	assert.Equal(t, "prreview.job.transition:1|c|#env:test,result:success",
		c.Line("job.transition", "1", "c", map[string]string{"result": "success"}))
	assert.Empty(t, c.Line("  ", "1", "c", nil))
}

func TestClientDisabledWithoutAddress(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: true})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	// Dropped silently.
	c.Count("x", 1, nil)
	require.NoError(t, c.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	nilClient.Timing("x", time.Second, nil)
	assert.NoError(t, nilClient.Close())
}

func TestClientWritesToConn(t *testing.T) {
	t.Parallel()

	server, client := net.Pipe()
	t.Cleanup(func() { _ = server.Close() })

	c := &Client{prefix: "prreview", globalTags: map[string]string{}, conn: client}
	require.True(t, c.Enabled())

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := server.Read(buf)
		got <- string(buf[:n])
	}()

	c.Timing("job.duration", 1500*time.Microsecond, map[string]string{"result": "success"})

	select {
	case line := <-got:
		assert.Equal(t, "prreview.job.duration:1.5|ms|#result:success", line)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for metric")
	}

	require.NoError(t, c.Close())
	assert.False(t, c.Enabled())
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "not-a-valid-address"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "statsd dial"))
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Count("a", 2, map[string]string{"k": "v"})
	r.Gauge("b", 1.25, nil)
	r.Timing("a", 3*time.Millisecond, nil)

	assert.Len(t, r.Samples(), 3)
	named := r.Named("a")
	require.Len(t, named, 2)
	assert.Equal(t, "c", named[0].Kind)
	assert.Equal(t, float64(2), named[0].Value)
	assert.Equal(t, "v", named[0].Tags["k"])
	assert.Equal(t, float64(3), named[1].Value)
}

package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/block/eventship-go/config"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventship.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[len(lines)-1]
}

func TestMetric_dry_run(t *testing.T) {
	out, _, err := run(t, "metric", "--dry-run",
		"--name", "latency", "--value", "12.5", "--unit", "milliseconds",
		"--dimension", "host=web-1", "--count", "3",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	for _, l := range lines[:3] {
		assert.Contains(t, l, `"path":"metrics"`)
		assert.Contains(t, l, `"unit":"Milliseconds"`)
		assert.Contains(t, l, `"value":12.5`)
		assert.Contains(t, l, `{"name":"host","value":"web-1"}`)
	}
	assert.Equal(t, "admitted=3 rejected=0 submitted=3 sent=3 failed=0 timed_out=0 dropped=0", lines[3])
}

func TestMetric_invalid_flags(t *testing.T) {
	testCases := []struct {
		name      string
		args      []string
		expectErr string
	}{
		{name: "unknown unit", args: []string{"--name", "x", "--unit", "parsecs"}, expectErr: "unknown unit"},
		{name: "bad dimension", args: []string{"--name", "x", "--dimension", "nope"}, expectErr: "not name=value"},
		{name: "missing name", args: []string{}, expectErr: `"name" not set`},
		{name: "zero count", args: []string{"--name", "x", "--count", "0"}, expectErr: "--count"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"metric", "--dry-run"}, tt.args...)...)
			assert.ErrorContains(t, err, tt.expectErr)
		})
	}
}

func TestLog_requires_endpoint(t *testing.T) {
	_, _, err := run(t, "log", "--config", writeConfig(t, "api_key: k\n"), "--message", "hi")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLog_http(t *testing.T) {
	var mu sync.Mutex
	var paths, keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		keys = append(keys, r.Header.Get("Api-Key"))
		mu.Unlock()
	}))
	defer srv.Close()

	path := writeConfig(t, "endpoint: "+srv.URL+"\napi_key: secret\nmax_requests_per_second: 2\n")
	out, _, err := run(t, "log", "--config", path, "--message", "order shipped", "--count", "5")
	require.NoError(t, err)

	assert.Equal(t, "admitted=2 rejected=3 submitted=2 sent=2 failed=0 timed_out=0 dropped=0", lastLine(out))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/logs", "/logs"}, paths)
	assert.Equal(t, []string{"secret", "secret"}, keys)
}

func TestLog_http_failure_is_counted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := writeConfig(t, "endpoint: "+srv.URL+"\n")
	out, stderr, err := run(t, "log", "--config", path, "--message", "boom")
	require.NoError(t, err)

	assert.Equal(t, "admitted=1 rejected=0 submitted=1 sent=0 failed=1 timed_out=0 dropped=0", lastLine(out))
	assert.Contains(t, stderr, `"level":"error"`)
	assert.Contains(t, stderr, "not-ok-http-status")
}

func TestLog_zero_drain_timeout_waits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	path := writeConfig(t, "endpoint: "+srv.URL+"\ndrain_timeout: 0s\n")
	out, _, err := run(t, "log", "--config", path, "--message", "slow", "--count", "2")
	require.NoError(t, err)

	assert.Equal(t, "admitted=2 rejected=0 submitted=2 sent=2 failed=0 timed_out=0 dropped=0", lastLine(out))
}

func TestMetric_batched(t *testing.T) {
	path := writeConfig(t, "batch:\n  enabled: true\n  flush_size: 1000\n")
	out, _, err := run(t, "metric", "--dry-run", "--config", path, "--name", "hits", "--count", "30")
	require.NoError(t, err)

	// 30 datums are merged into requests of at most 20
	assert.Equal(t, "admitted=30 rejected=0 submitted=2 sent=2 failed=0 timed_out=0 dropped=0", lastLine(out))
}

func TestVerbose_logs_debug(t *testing.T) {
	_, stderr, err := run(t, "log", "--dry-run", "-v", "--message", "hello")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"level":"debug"`)
	assert.Contains(t, stderr, "events appended")
}

func Test_newZapLogger(t *testing.T) {
	_, err := newZapLogger("loud", io.Discard)
	assert.Error(t, err)

	l, err := newZapLogger("WARN", io.Discard)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
}

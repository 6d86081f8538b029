package dispatch

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/block/eventship-go/logger"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const waitFor = 2 * time.Second

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

var _ logger.Logger = &recordingLogger{}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{}
}

func (l *recordingLogger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, "["+level+"] "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...any) { l.add("DEBUG", format, args...) }
func (l *recordingLogger) Infof(format string, args ...any)  { l.add("INFO", format, args...) }
func (l *recordingLogger) Warnf(format string, args ...any)  { l.add("WARN", format, args...) }
func (l *recordingLogger) Errorf(format string, args ...any) { l.add("ERROR", format, args...) }

// count returns the number of entries at level containing substr.
func (l *recordingLogger) count(level, substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if strings.HasPrefix(e, "["+level+"]") && strings.Contains(e, substr) {
			n++
		}
	}
	return n
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatalf("nothing received within %s", waitFor)
	}
	var zero T
	return zero
}

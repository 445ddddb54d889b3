// Package monitoring reports failures of the decision loop to an error
// tracker.
package monitoring

import (
	"strconv"
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// Recover must be deferred directly. It reports a panic and re-panics.
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// Tags labels a report with the broker and timeslot it concerns.
func Tags(broker string, timeslot int) map[string]string {
	return map[string]string{"broker": broker, "timeslot": strconv.Itoa(timeslot)}
}

// Captured is one error kept by a MemoryMonitor.
type Captured struct {
	Err  error
	Tags map[string]string
}

// MemoryMonitor keeps captured errors in memory.
type MemoryMonitor struct {
	mu       sync.Mutex
	captured []Captured
}

func (m *MemoryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captured = append(m.captured, Captured{Err: err, Tags: tags})
}

func (m *MemoryMonitor) Recover() {
	if r := recover(); r != nil {
		panic(r)
	}
}

func (m *MemoryMonitor) Flush(time.Duration) {}

// Captured returns a copy of the captured errors.
func (m *MemoryMonitor) Captured() []Captured {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Captured(nil), m.captured...)
}

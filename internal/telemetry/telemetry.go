// Package telemetry writes opt-in JSONL events about a run. Events carry sizes
// and text features, never raw prompt or tool payloads.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// DefaultDir is the artifacts directory used when none is configured.
const DefaultDir = ".agent"

// EventsFile is the JSONL file name inside the artifacts directory.
const EventsFile = "events.jsonl"

// Sink appends events to <dir>/events.jsonl. A nil or disabled Sink drops them.
type Sink struct {
	dir     string
	enabled bool
	mu      sync.Mutex
}

func NewSink(dir string, enabled bool) *Sink {
	if dir == "" {
		dir = DefaultDir
	}
	return &Sink{dir: dir, enabled: enabled}
}

func (s *Sink) Enabled() bool { return s != nil && s.enabled }

// Path returns the events file location.
func (s *Sink) Path() string {
	if s == nil {
		return ""
	}
	return filepath.Join(s.dir, EventsFile)
}

// Emit writes one JSON line with the given fields plus "event" and an
// RFC3339Nano "time". Failures are reported as warnings and never returned.
func (s *Sink) Emit(name string, fields map[string]any) {
	if !s.Enabled() {
		return
	}

	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: marshal: %v\n", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: mkdir %s: %v\n", s.dir, err))
		return
	}
	path := s.Path()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: open %s: %v\n", path, err))
		return
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: write %s: %v\n", path, err))
	}
}

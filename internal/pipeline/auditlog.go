package pipeline

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Audit statuses, one per task outcome plus the dedup-drop signal.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusDuplicate = "duplicate"
)

// Entry is one audit record. Entries are append-only: written once per task
// outcome and never rewritten.
type Entry struct {
	URL          string
	Host         string
	TimeSec      float64
	Status       string
	Reason       string
	InfoType     string
	DetectedDate string
}

// Sink writes audit entries as line-delimited JSON. Safe for concurrent use;
// each entry is a single write.
type Sink struct {
	log    zerolog.Logger
	closer io.Closer
}

// NewSink opens (appending) the audit log file at path.
func NewSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	s := NewSinkWriter(f)
	s.closer = f
	return s, nil
}

// NewSinkWriter wraps an arbitrary writer, mainly for tests.
func NewSinkWriter(w io.Writer) *Sink {
	return &Sink{log: zerolog.New(zerolog.SyncWriter(w))}
}

func (s *Sink) Write(e Entry) {
	ev := s.log.Log().
		Str("url", e.URL).
		Str("host", e.Host).
		Float64("time_sec", e.TimeSec).
		Str("status", e.Status)
	if e.Reason != "" {
		ev = ev.Str("reason", e.Reason)
	}
	if e.InfoType != "" {
		ev = ev.Str("info_type", e.InfoType)
	}
	if e.DetectedDate != "" {
		ev = ev.Str("detected_date", e.DetectedDate)
	}
	ev.Msg("")
}

func (s *Sink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

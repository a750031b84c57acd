package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"jewelbots.ai/internal/sim/world"
)

// DefaultSegmentTicks is the number of ticks stored per log file.
const DefaultSegmentTicks = 1000

type LoggerOptions struct {
	// SegmentTicks overrides DefaultSegmentTicks when > 0.
	SegmentTicks uint64
	// OnClose is called with the path of every finished segment file.
	OnClose func(path string)
}

// JSONLZstdWriter appends JSON lines to zstd-compressed files, one file per tick range.
// Segment names depend only on the tick, so reruns of a seed produce the same layout.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	span    uint64
	onClose func(path string)

	mu     sync.Mutex
	curSeg uint64
	open   bool
	path   string
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return NewJSONLZstdWriterWithOptions(baseDir, prefix, LoggerOptions{})
}

func NewJSONLZstdWriterWithOptions(baseDir, prefix string, opts LoggerOptions) *JSONLZstdWriter {
	span := opts.SegmentTicks
	if span == 0 {
		span = DefaultSegmentTicks
	}
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		span:    span,
		onClose: opts.OnClose,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Write appends v to the segment holding tick.
func (w *JSONLZstdWriter) Write(tick uint64, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	seg := tick / w.span
	if !w.open || seg != w.curSeg {
		if err := w.rotateLocked(seg); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(seg uint64) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForSegment(seg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curSeg = seg
	w.path = path
	w.open = true
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	if !w.open {
		return nil
	}
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.open = false
	if w.onClose != nil && err1 == nil {
		w.onClose(w.path)
	}
	return err1
}

func (w *JSONLZstdWriter) pathForSegment(seg uint64) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%06d.jsonl.zst", w.prefix, seg))
}

// TickLogger writes one JSONL entry per tick (compressed).
type TickLogger struct{ w *JSONLZstdWriter }

func NewTickLogger(runDir string) *TickLogger {
	return NewTickLoggerWithOptions(runDir, LoggerOptions{})
}

func NewTickLoggerWithOptions(runDir string, opts LoggerOptions) *TickLogger {
	return &TickLogger{w: NewJSONLZstdWriterWithOptions(filepath.Join(runDir, "ticks"), "ticks", opts)}
}

func (l *TickLogger) WriteTick(v world.TickLogEntry) error { return l.w.Write(v.Tick, v) }
func (l *TickLogger) Close() error                         { return l.w.Close() }

// AuditLogger writes audit JSONL entries (compressed).
type AuditLogger struct{ w *JSONLZstdWriter }

func NewAuditLogger(runDir string) *AuditLogger {
	return NewAuditLoggerWithOptions(runDir, LoggerOptions{})
}

func NewAuditLoggerWithOptions(runDir string, opts LoggerOptions) *AuditLogger {
	return &AuditLogger{w: NewJSONLZstdWriterWithOptions(filepath.Join(runDir, "audit"), "audit", opts)}
}

func (l *AuditLogger) WriteAudit(v world.AuditEntry) error { return l.w.Write(v.Tick, v) }
func (l *AuditLogger) Close() error                        { return l.w.Close() }

package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"jewelbots.ai/internal/sim/world"
)

// ReadTickLog decodes every tick segment under runDir in tick order.
func ReadTickLog(runDir string) ([]world.TickLogEntry, error) {
	var out []world.TickLogEntry
	err := readSegments(filepath.Join(runDir, "ticks"), "ticks", func(line []byte) error {
		var e world.TickLogEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

// ReadAuditLog decodes every audit segment under runDir in tick order.
func ReadAuditLog(runDir string) ([]world.AuditEntry, error) {
	var out []world.AuditEntry
	err := readSegments(filepath.Join(runDir, "audit"), "audit", func(line []byte) error {
		var e world.AuditEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func readSegments(dir, prefix string, fn func(line []byte) error) error {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return err
	}
	// Zero-padded segment numbers sort lexically.
	sort.Strings(paths)
	for _, p := range paths {
		if err := readSegment(p, fn); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

func readSegment(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(sc.Bytes()); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

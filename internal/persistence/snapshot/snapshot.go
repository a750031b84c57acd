package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const FrameVersion = 1

type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Tick    uint64 `json:"tick"`
}

// FrameV1 is a presentation copy of the grid at one tick boundary. Frames are exported
// for renderers and offline inspection; a run is never resumed from one.
type FrameV1 struct {
	Header Header `json:"header"`

	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`

	Cells  []CellV1  `json:"cells"`
	Robots []RobotV1 `json:"robots"`
	Jewels []JewelV1 `json:"jewels"`

	Complete   bool   `json:"complete"`
	TotalMoves int    `json:"total_moves"`
	Digest     string `json:"digest"`
}

// Colors are stored as their wire codes: 0 none, 1 red, 2 green, 3 blue.
type CellV1 struct {
	X        int   `json:"x"`
	Y        int   `json:"y"`
	State    uint8 `json:"state"`
	Target   uint8 `json:"target"`
	Occupant uint8 `json:"occupant"`
	Carrying uint8 `json:"carrying,omitempty"`
	Correct  bool  `json:"correct"`
}

type RobotV1 struct {
	Color    uint8  `json:"color"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Carrying uint8  `json:"carrying,omitempty"`
	Goal     string `json:"goal"`
	Moves    int    `json:"moves"`
}

type JewelV1 struct {
	ID      int   `json:"id"`
	Color   uint8 `json:"color"`
	X       int   `json:"x"`
	Y       int   `json:"y"`
	Carried bool  `json:"carried"`
}

func FramePath(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d.frame.zst", tick))
}

func WriteFrame(path string, fr FrameV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(fr.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&fr); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func ReadFrame(path string) (FrameV1, error) {
	var fr FrameV1
	f, err := os.Open(path)
	if err != nil {
		return fr, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fr, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is for quick inspection; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return fr, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&fr); err != nil {
		return fr, fmt.Errorf("gob decode: %w", err)
	}
	if fr.Header.Version != FrameVersion {
		return fr, fmt.Errorf("unsupported frame version %d", fr.Header.Version)
	}
	return fr, nil
}

// ReadHeader decodes only the JSON header line of a frame file.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

// ListFrames returns the frame files in dir ordered by tick.
func ListFrames(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type entry struct {
		tick uint64
		path string
	}
	var out []entry
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".frame.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(e.Name(), ".frame.zst"), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, entry{tick: tick, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tick < out[j].tick })
	paths := make([]string, 0, len(out))
	for _, e := range out {
		paths = append(paths, e.path)
	}
	return paths, nil
}

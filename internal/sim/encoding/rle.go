package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE encodes a sequence of packed cell codes into base64(varint pairs).
// The pairs are (code, run_len) repeated.
func EncodeRLE(codes []uint8) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(codes) {
		c := codes[i]
		run := 1
		for j := i + 1; j < len(codes) && codes[j] == c; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(c))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE reverses EncodeRLE. want bounds the decoded length (0 disables the check)
// so a corrupt frame cannot allocate without limit.
func DecodeRLE(b64 string, want int) ([]uint8, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint8
	if want > 0 {
		out = make([]uint8, 0, want)
	}
	for i := 0; i < len(raw); {
		c, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if c > 0xFF {
			return nil, fmt.Errorf("cell code too large: %d", c)
		}
		if run == 0 {
			return nil, fmt.Errorf("zero-length run at %d", i)
		}
		if want > 0 && uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("decoded length exceeds %d cells", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint8(c))
		}
	}
	if want > 0 && len(out) != want {
		return nil, fmt.Errorf("decoded %d cells, want %d", len(out), want)
	}
	return out, nil
}

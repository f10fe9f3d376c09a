// Package wire defines the ASCII frame grammar carried inside the visual
// codes: symbol frames (S:), metadata frames (M:) and sync frames (Y:).
// Rendering the frames as images and capturing them back is someone else's
// problem; this package only speaks the text.
package wire

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidFrame = errors.New("invalid frame")

// Kind discriminates the frame variants.
type Kind int

const (
	KindSymbol Kind = iota
	KindMeta
	KindSync
)

const (
	prefixSymbol = "S:"
	prefixMeta   = "M:"
	prefixSync   = "Y:"
)

// Metadata announces the transfer parameters a receiver needs before it can
// act on symbol frames.
type Metadata struct {
	BlockSize      int  `json:"block_size"`
	K              int  `json:"k"`
	OrigLen        int  `json:"orig_len"`
	IntegrityCheck bool `json:"integrity_check"`
}

// Validate reports the first out-of-range parameter.
func (m Metadata) Validate() error {
	if m.BlockSize < 1 {
		return fmt.Errorf("%w: block_size %d", ErrInvalidFrame, m.BlockSize)
	}
	if m.K < 1 {
		return fmt.Errorf("%w: k %d", ErrInvalidFrame, m.K)
	}
	if m.OrigLen < 0 {
		return fmt.Errorf("%w: orig_len %d", ErrInvalidFrame, m.OrigLen)
	}
	return nil
}

// Sync frames repeat the metadata throughout the stream so a receiver
// joining mid-broadcast can lock on without having seen the M frame.
type Sync struct {
	Sequence             int  `json:"sequence"`
	Ordinal              int  `json:"ordinal"`
	Total                int  `json:"total"`
	BlockSize            int  `json:"block_size"`
	K                    int  `json:"k"`
	OrigLen              int  `json:"orig_len"`
	IntegrityCheck       bool `json:"integrity_check"`
	ConfirmationRequired int  `json:"confirmation_required"`
}

// Metadata extracts the transfer parameters embedded in the sync frame.
func (y Sync) Metadata() Metadata {
	return Metadata{
		BlockSize:      y.BlockSize,
		K:              y.K,
		OrigLen:        y.OrigLen,
		IntegrityCheck: y.IntegrityCheck,
	}
}

// Frame is one unit on the channel. Sequence is meaningful for symbol and
// sync frames; Indices/Payload only for symbols; Meta/Sync only for their
// kinds.
type Frame struct {
	Kind     Kind
	Sequence int
	Indices  []int
	Payload  []byte
	Meta     Metadata
	Sync     Sync
}

func SymbolFrame(sequence int, indices []int, payload []byte) Frame {
	return Frame{Kind: KindSymbol, Sequence: sequence, Indices: indices, Payload: payload}
}

func MetaFrame(sequence int, m Metadata) Frame {
	return Frame{Kind: KindMeta, Sequence: sequence, Meta: m}
}

func SyncFrame(y Sync) Frame {
	return Frame{Kind: KindSync, Sequence: y.Sequence, Sync: y}
}

// Encode renders the frame as channel text.
func (f Frame) Encode() string {
	switch f.Kind {
	case KindSymbol:
		parts := make([]string, len(f.Indices))
		for i, idx := range f.Indices {
			parts[i] = strconv.Itoa(idx)
		}
		return fmt.Sprintf("%s%d|%s|%s", prefixSymbol, f.Sequence, strings.Join(parts, ","), hex.EncodeToString(f.Payload))
	case KindMeta:
		b, _ := json.Marshal(f.Meta)
		return prefixMeta + string(b)
	case KindSync:
		b, _ := json.Marshal(f.Sync)
		return prefixSync + string(b)
	}
	return ""
}

// Parse decodes one line of channel text into a frame.
func Parse(line string) (Frame, error) {
	switch {
	case strings.HasPrefix(line, prefixSymbol):
		return parseSymbol(line[len(prefixSymbol):])
	case strings.HasPrefix(line, prefixMeta):
		var m Metadata
		if err := json.Unmarshal([]byte(line[len(prefixMeta):]), &m); err != nil {
			return Frame{}, fmt.Errorf("%w: metadata json: %v", ErrInvalidFrame, err)
		}
		if err := m.Validate(); err != nil {
			return Frame{}, err
		}
		return MetaFrame(0, m), nil
	case strings.HasPrefix(line, prefixSync):
		var y Sync
		if err := json.Unmarshal([]byte(line[len(prefixSync):]), &y); err != nil {
			return Frame{}, fmt.Errorf("%w: sync json: %v", ErrInvalidFrame, err)
		}
		return SyncFrame(y), nil
	}
	return Frame{}, fmt.Errorf("%w: unknown prefix %q", ErrInvalidFrame, truncate(line, 8))
}

func parseSymbol(body string) (Frame, error) {
	parts := strings.SplitN(body, "|", 3)
	if len(parts) != 3 {
		return Frame{}, fmt.Errorf("%w: symbol frame needs 3 fields", ErrInvalidFrame)
	}

	sequence, err := strconv.Atoi(parts[0])
	if err != nil || sequence < 0 {
		return Frame{}, fmt.Errorf("%w: sequence %q", ErrInvalidFrame, parts[0])
	}

	var indices []int
	if parts[1] != "" {
		fields := strings.Split(parts[1], ",")
		indices = make([]int, len(fields))
		for i, field := range fields {
			idx, err := strconv.Atoi(field)
			if err != nil || idx < 0 {
				return Frame{}, fmt.Errorf("%w: index %q", ErrInvalidFrame, field)
			}
			indices[i] = idx
		}
	}

	payload, err := hex.DecodeString(parts[2])
	if err != nil {
		return Frame{}, fmt.Errorf("%w: payload hex: %v", ErrInvalidFrame, err)
	}

	return SymbolFrame(sequence, indices, payload), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

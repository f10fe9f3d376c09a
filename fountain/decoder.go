package fountain

import (
	"fmt"
	"time"
)

// Decoder collects LT symbols and reconstructs the original payload once
// enough linearly independent combinations have arrived. Accepted symbols
// are append-only; Decode never mutates them, so a failed attempt leaves
// the decoder exactly as it was and more symbols can be added at any time.
// Not safe for concurrent use.
type Decoder struct {
	blockSize int
	k         int
	origLen   int
	integrity bool
	symbols   []Symbol
	collector *Collector
}

// NewDecoder validates parameters and returns an empty decoder. collector
// may be nil.
func NewDecoder(blockSize, k, origLen int, integrityCheck bool, collector *Collector) (*Decoder, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrBadParameter, blockSize)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k %d", ErrBadParameter, k)
	}
	if origLen < 0 {
		return nil, fmt.Errorf("%w: orig len %d", ErrBadParameter, origLen)
	}
	return &Decoder{
		blockSize: blockSize,
		k:         k,
		origLen:   origLen,
		integrity: integrityCheck,
		collector: collector,
	}, nil
}

// K returns the number of source blocks the decoder expects.
func (d *Decoder) K() int {
	return d.k
}

// SymbolCount returns how many symbols have been accepted.
func (d *Decoder) SymbolCount() int {
	return len(d.symbols)
}

// AddSymbol verifies the integrity tag when enabled (dropping failures
// before any state change) and appends the symbol. No deduplication and no
// independence pre-check: accepting is cheap, and independence is
// established during Decode. Degenerate empty-index symbols are accepted
// and later ignored by row selection.
func (d *Decoder) AddSymbol(indices []int, payload []byte) {
	if d.integrity {
		body, reason := verifyTag(payload)
		if reason != RejectNone {
			d.collector.RecordSymbolRejected(reason)
			return
		}
		payload = body
	}

	d.symbols = append(d.symbols, Symbol{
		Indices: append([]int(nil), indices...),
		Payload: append([]byte(nil), payload...),
	})
}

// Decode attempts to reconstruct the payload. The second return is false
// while the accepted symbols are insufficient (fewer than k, or coefficient
// rank below k); callers add more symbols and retry. Decode is idempotent:
// a successful decode returns the same bytes on re-invocation for the same
// accepted set.
func (d *Decoder) Decode() ([]byte, bool) {
	if len(d.symbols) < d.k {
		return nil, false
	}

	start := time.Now()

	if blocks, ok := d.systematicCover(); ok {
		d.collector.RecordDecode(time.Since(start), true, d.k, len(d.symbols))
		return CombineBlocks(blocks, d.origLen), true
	}

	rows := make([]bitRow, len(d.symbols))
	for i, s := range d.symbols {
		row := newBitRow(d.k)
		for _, j := range s.Indices {
			if j >= 0 && j < d.k {
				row.set(j)
			}
		}
		rows[i] = row
	}

	selection, pivots := selectIndependentRows(rows, d.k)
	if selection == nil {
		d.collector.RecordDecode(time.Since(start), false, pivots, len(d.symbols))
		return nil, false
	}

	payloadBits := d.blockSize * 8
	matrix := make([]bitRow, d.k)
	rhs := make([]bitRow, d.k)
	for i, s := range selection {
		matrix[i] = rows[s]
		rhs[i] = packBE(d.symbols[s].Payload, payloadBits)
	}

	solution := solveGF2(matrix, rhs, d.k)
	success := solution != nil

	used := pivots
	if success {
		used = len(selection)
	}
	d.collector.RecordDecode(time.Since(start), success, used, len(d.symbols))

	if !success {
		return nil, false
	}

	blocks := make([][]byte, d.k)
	for i, row := range solution {
		blocks[i] = unpackBE(row, d.blockSize)
	}
	return CombineBlocks(blocks, d.origLen), true
}

// systematicCover recognizes a complete set of degree-1 symbols covering
// [0, k) and returns the blocks directly, bypassing elimination. The result
// is identical to the general path; this only skips work.
func (d *Decoder) systematicCover() ([][]byte, bool) {
	blocks := make([][]byte, d.k)
	found := 0
	for _, s := range d.symbols {
		if len(s.Indices) != 1 {
			continue
		}
		i := s.Indices[0]
		if i < 0 || i >= d.k || blocks[i] != nil || len(s.Payload) != d.blockSize {
			continue
		}
		blocks[i] = s.Payload
		found++
	}
	if found < d.k {
		return nil, false
	}
	return blocks, true
}

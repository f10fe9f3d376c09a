package fountain

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrBadParameter signals an invalid codec configuration. It is fatal at
// construction; everything recoverable is reported through return values,
// not errors.
var ErrBadParameter = errors.New("bad parameter")

// Symbol is one transmitted unit: the distinct source block indices and the
// XOR of the referenced blocks, optionally carrying a CRC-32 suffix.
// Indices are serialized in ascending order but are semantically a set;
// receivers must not rely on ordering.
type Symbol struct {
	Indices []int
	Payload []byte
}

// Degree is the number of source blocks XORed into the symbol.
func (s Symbol) Degree() int {
	return len(s.Indices)
}

// Config holds the encoder knobs. Zero values for C and Delta select the
// usual robust soliton defaults.
type Config struct {
	BlockSize      int
	C              float64
	Delta          float64
	Systematic     bool
	IntegrityCheck bool
	Seed           int64
}

// DefaultConfig returns the configuration used by the sender CLI: robust
// soliton defaults with a systematic prefix.
func DefaultConfig(blockSize int) Config {
	return Config{
		BlockSize:  blockSize,
		C:          DefaultC,
		Delta:      DefaultDelta,
		Systematic: true,
	}
}

// Encoder produces an unbounded stream of LT symbols over a fixed payload.
// It exclusively owns its block array, degree CDF, and PRNG; a single
// instance is not safe for concurrent use.
type Encoder struct {
	cfg       Config
	origLen   int
	blocks    [][]byte
	k         int
	cdf       []float64
	rng       *rand.Rand
	generated int
	collector *Collector
}

// NewEncoder splits data into blocks and precomputes the degree CDF.
// collector may be nil.
func NewEncoder(data []byte, cfg Config, collector *Collector) (*Encoder, error) {
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrBadParameter, cfg.BlockSize)
	}
	if cfg.C == 0 {
		cfg.C = DefaultC
	}
	if cfg.Delta == 0 {
		cfg.Delta = DefaultDelta
	}

	blocks := SplitBlocks(data, cfg.BlockSize)
	return &Encoder{
		cfg:       cfg,
		origLen:   len(data),
		blocks:    blocks,
		k:         len(blocks),
		cdf:       buildRobustSolitonCDF(len(blocks), cfg.C, cfg.Delta),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		collector: collector,
	}, nil
}

// K returns the number of source blocks.
func (e *Encoder) K() int {
	return e.k
}

// OrigLen returns the original payload length in bytes.
func (e *Encoder) OrigLen() int {
	return e.origLen
}

// EmitSystematic produces exactly k degree-1 symbols in source block order.
// It does not advance the NextSymbol counter.
func (e *Encoder) EmitSystematic() []Symbol {
	out := make([]Symbol, e.k)
	for i, block := range e.blocks {
		e.collector.RecordDegree(1)
		out[i] = Symbol{Indices: []int{i}, Payload: e.finish(block)}
	}
	return out
}

// NextSymbol emits one symbol. While the systematic prefix is unfinished
// (and Systematic is set) it returns the next source block verbatim;
// afterwards it samples a degree from the robust soliton distribution and
// XORs that many distinct blocks.
func (e *Encoder) NextSymbol() Symbol {
	if e.cfg.Systematic && e.generated < e.k {
		i := e.generated
		e.generated++
		e.collector.RecordDegree(1)
		return Symbol{Indices: []int{i}, Payload: e.finish(e.blocks[i])}
	}

	d := sampleDegree(e.cdf, e.k, e.rng)
	indices := e.rng.Perm(e.k)[:d]
	sort.Ints(indices)

	payload := make([]byte, e.cfg.BlockSize)
	for _, i := range indices {
		xorInto(payload, e.blocks[i])
	}

	e.collector.RecordDegree(d)
	return Symbol{Indices: indices, Payload: e.tag(payload)}
}

// Encode emits n symbols via NextSymbol.
func (e *Encoder) Encode(n int) []Symbol {
	out := make([]Symbol, n)
	for i := range out {
		out[i] = e.NextSymbol()
	}
	return out
}

// finish copies a source block and tags it when integrity is on.
func (e *Encoder) finish(block []byte) []byte {
	if e.cfg.IntegrityCheck {
		return attachTag(block)
	}
	out := make([]byte, len(block))
	copy(out, block)
	return out
}

// tag appends the CRC suffix to an already-owned payload buffer.
func (e *Encoder) tag(payload []byte) []byte {
	if e.cfg.IntegrityCheck {
		return attachTag(payload)
	}
	return payload
}

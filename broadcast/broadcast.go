// Package broadcast builds the sender-side frame schedule: a sync preamble,
// the metadata frame, then symbol frames with sync frames reinserted at a
// fixed interval so late-joining receivers can lock on.
package broadcast

import (
	"github.com/google/uuid"
	"github.com/rootnegativeone/tightbeam/fountain"
	"github.com/rootnegativeone/tightbeam/wire"
)

const (
	DefaultBlockSize  = 48
	DefaultRedundancy = 4
	DefaultSeed       = 1337

	// SyncPreambleCount sync frames open the broadcast; another is
	// reinserted every SyncInterval symbol frames. Receivers treat
	// SyncConfirmations identical sync frames as a lock condition.
	SyncPreambleCount = 4
	SyncInterval      = 8
	SyncConfirmations = 3
)

// Options configure a broadcast. Zero values select the defaults above.
type Options struct {
	BlockSize      int
	Redundancy     int
	IntegrityCheck bool
	Seed           int64
	C              float64
	Delta          float64
}

// Broadcast is a fully scheduled transmission ready to be rendered frame by
// frame.
type Broadcast struct {
	ID              string
	Metadata        wire.Metadata
	Frames          []wire.Frame
	SystematicCount int
	RedundantCount  int
	Collector       *fountain.Collector
}

// SymbolFrames returns only the symbol frames, in schedule order.
func (b *Broadcast) SymbolFrames() []wire.Frame {
	out := make([]wire.Frame, 0, b.SystematicCount+b.RedundantCount)
	for _, f := range b.Frames {
		if f.Kind == wire.KindSymbol {
			out = append(out, f)
		}
	}
	return out
}

// Prepare encodes payload and lays out the frame schedule. The symbol
// stream is the full systematic prefix followed by k+Redundancy generator
// outputs, which repeat the prefix once more before the random
// combinations; the duplication buys burst resistance for free on a
// channel that loops the animation anyway.
func Prepare(payload []byte, opts Options) (*Broadcast, error) {
	if opts.BlockSize == 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.Redundancy == 0 {
		opts.Redundancy = DefaultRedundancy
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}

	collector := fountain.NewCollector()
	cfg := fountain.DefaultConfig(opts.BlockSize)
	cfg.IntegrityCheck = opts.IntegrityCheck
	cfg.Seed = opts.Seed
	if opts.C != 0 {
		cfg.C = opts.C
	}
	if opts.Delta != 0 {
		cfg.Delta = opts.Delta
	}

	enc, err := fountain.NewEncoder(payload, cfg, collector)
	if err != nil {
		return nil, err
	}

	systematic := enc.EmitSystematic()
	redundant := enc.Encode(enc.K() + opts.Redundancy)
	symbols := append(systematic, redundant...)

	metadata := wire.Metadata{
		BlockSize:      opts.BlockSize,
		K:              enc.K(),
		OrigLen:        enc.OrigLen(),
		IntegrityCheck: opts.IntegrityCheck,
	}

	var frames []wire.Frame
	sequence := 0
	syncCount := 0

	appendSync := func() {
		frames = append(frames, wire.SyncFrame(wire.Sync{
			Sequence:             sequence,
			Ordinal:              (syncCount % SyncPreambleCount) + 1,
			Total:                SyncPreambleCount,
			BlockSize:            metadata.BlockSize,
			K:                    metadata.K,
			OrigLen:              metadata.OrigLen,
			IntegrityCheck:       metadata.IntegrityCheck,
			ConfirmationRequired: SyncConfirmations,
		}))
		sequence++
		syncCount++
	}

	for i := 0; i < SyncPreambleCount; i++ {
		appendSync()
	}

	frames = append(frames, wire.MetaFrame(sequence, metadata))
	sequence++

	sinceSync := 0
	for _, s := range symbols {
		frames = append(frames, wire.SymbolFrame(sequence, s.Indices, s.Payload))
		sequence++
		sinceSync++

		if sinceSync >= SyncInterval {
			appendSync()
			sinceSync = 0
		}
	}

	return &Broadcast{
		ID:              uuid.NewString(),
		Metadata:        metadata,
		Frames:          frames,
		SystematicCount: len(systematic),
		RedundantCount:  len(redundant),
		Collector:       collector,
	}, nil
}

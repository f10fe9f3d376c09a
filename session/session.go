// Package session is the receiver-side façade over the fountain decoder:
// it deduplicates captured frames by sequence number, tracks coverage, and
// caches the first successful decode. A session created without metadata
// locks on after enough identical sync frames have been observed.
package session

import (
	"encoding/hex"
	"fmt"

	"github.com/rootnegativeone/tightbeam/fountain"
	"github.com/rootnegativeone/tightbeam/wire"
)

// Status is the observable session state returned after every frame.
type Status struct {
	Redundant       bool
	NewlyAdded      bool
	Locked          bool
	SymbolsObserved int
	UniqueSymbols   int
	Coverage        float64
	DecodeComplete  bool
	Recovered       []byte
	Metrics         fountain.Summary
}

// Session wraps a decoder with capture bookkeeping. Not safe for concurrent
// use.
type Session struct {
	meta      wire.Metadata
	locked    bool
	syncSeen  map[wire.Metadata]int
	decoder   *fountain.Decoder
	collector *fountain.Collector
	seen      map[int]struct{}
	unique    map[int]struct{}
	recovered []byte
	complete  bool
}

// New creates a session pre-configured with transfer metadata.
func New(meta wire.Metadata) (*Session, error) {
	s := NewPending()
	if err := s.lockOn(meta); err != nil {
		return nil, err
	}
	return s, nil
}

// NewPending creates a session that waits for sync or metadata frames
// before accepting symbols.
func NewPending() *Session {
	return &Session{
		syncSeen:  map[wire.Metadata]int{},
		collector: fountain.NewCollector(),
		seen:      map[int]struct{}{},
		unique:    map[int]struct{}{},
	}
}

func (s *Session) lockOn(meta wire.Metadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	dec, err := fountain.NewDecoder(meta.BlockSize, meta.K, meta.OrigLen, meta.IntegrityCheck, s.collector)
	if err != nil {
		return err
	}
	s.meta = meta
	s.decoder = dec
	s.locked = true
	return nil
}

// HandleFrame routes a parsed frame. Sync frames never fail; a metadata
// frame fails only when it carries invalid parameters for a session that is
// not yet locked; symbol frames fail only when the session has no
// parameters yet or the payload hex is malformed.
func (s *Session) HandleFrame(f wire.Frame) (Status, error) {
	switch f.Kind {
	case wire.KindMeta:
		if !s.locked {
			if err := s.lockOn(f.Meta); err != nil {
				return s.status(false, false), err
			}
		}
		return s.status(false, false), nil
	case wire.KindSync:
		s.observeSync(f.Sync)
		return s.status(false, false), nil
	default:
		return s.AddSymbol(f.Sequence, f.Indices, hex.EncodeToString(f.Payload))
	}
}

// observeSync counts identical sync announcements; once the advertised
// confirmation threshold is met an unlocked session adopts the parameters.
func (s *Session) observeSync(y wire.Sync) {
	if s.locked {
		return
	}

	meta := y.Metadata()
	s.syncSeen[meta]++

	required := y.ConfirmationRequired
	if required < 1 {
		required = 1
	}
	if s.syncSeen[meta] >= required {
		// Invalid parameters keep the session pending; a later sync or
		// metadata frame may still carry usable ones.
		_ = s.lockOn(meta)
	}
}

// AddSymbol ingests one captured symbol frame. Repeated sequence numbers
// are reported as redundant without touching the decoder.
func (s *Session) AddSymbol(sequence int, indices []int, payloadHex string) (Status, error) {
	if !s.locked {
		return s.status(false, false), fmt.Errorf("session has no transfer parameters yet")
	}

	if _, dup := s.seen[sequence]; dup {
		return s.status(true, false), nil
	}

	payload, err := hex.DecodeString(payloadHex)
	if err != nil {
		return s.status(false, false), fmt.Errorf("payload hex: %w", err)
	}

	s.decoder.AddSymbol(indices, payload)
	s.seen[sequence] = struct{}{}
	for _, idx := range indices {
		s.unique[idx] = struct{}{}
	}

	if !s.complete {
		if recovered, ok := s.decoder.Decode(); ok {
			s.recovered = recovered
			s.complete = true
		}
	}

	return s.status(false, true), nil
}

// Status reports the current session state.
func (s *Session) Status() Status {
	return s.status(false, false)
}

// RecoveredText returns the decoded payload as a string, empty until the
// decode completes.
func (s *Session) RecoveredText() string {
	return string(s.recovered)
}

func (s *Session) status(redundant, newlyAdded bool) Status {
	coverage := 0.0
	if s.meta.K > 0 {
		coverage = float64(len(s.unique)) / float64(s.meta.K)
	}
	return Status{
		Redundant:       redundant,
		NewlyAdded:      newlyAdded,
		Locked:          s.locked,
		SymbolsObserved: len(s.seen),
		UniqueSymbols:   len(s.unique),
		Coverage:        coverage,
		DecodeComplete:  s.complete,
		Recovered:       s.recovered,
		Metrics:         s.collector.Summary(),
	}
}

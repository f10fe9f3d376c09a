package broadcast

import (
	"testing"

	"github.com/rootnegativeone/tightbeam/wire"
)

func TestPrepareScheduleShape(t *testing.T) {
	payload := []byte("0123456789abcdef0123456789abcdef") // 32 bytes
	b, err := Prepare(payload, Options{BlockSize: 4, Redundancy: 4, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}

	k := 8
	if b.Metadata.K != k {
		t.Fatalf("k = %d, want %d", b.Metadata.K, k)
	}
	if b.SystematicCount != k {
		t.Errorf("systematic count = %d, want %d", b.SystematicCount, k)
	}
	if b.RedundantCount != k+4 {
		t.Errorf("redundant count = %d, want %d", b.RedundantCount, k+4)
	}

	// Preamble of 4 sync frames, then the metadata frame.
	for i := 0; i < SyncPreambleCount; i++ {
		if b.Frames[i].Kind != wire.KindSync {
			t.Fatalf("frame %d kind = %v, want sync", i, b.Frames[i].Kind)
		}
		if b.Frames[i].Sync.Ordinal != i+1 {
			t.Errorf("preamble ordinal = %d, want %d", b.Frames[i].Sync.Ordinal, i+1)
		}
		if b.Frames[i].Sync.ConfirmationRequired != SyncConfirmations {
			t.Errorf("confirmation_required = %d", b.Frames[i].Sync.ConfirmationRequired)
		}
	}
	if b.Frames[SyncPreambleCount].Kind != wire.KindMeta {
		t.Fatal("metadata frame does not follow the preamble")
	}

	// A sync frame every SyncInterval symbol frames.
	sinceSync := 0
	for _, f := range b.Frames[SyncPreambleCount+1:] {
		switch f.Kind {
		case wire.KindSymbol:
			sinceSync++
			if sinceSync > SyncInterval {
				t.Fatal("symbol run exceeds sync interval")
			}
		case wire.KindSync:
			sinceSync = 0
		default:
			t.Fatalf("unexpected %v frame mid-stream", f.Kind)
		}
	}

	if got := len(b.SymbolFrames()); got != b.SystematicCount+b.RedundantCount {
		t.Errorf("symbol frames = %d, want %d", got, b.SystematicCount+b.RedundantCount)
	}
	if b.ID == "" {
		t.Error("broadcast ID is empty")
	}
}

func TestPrepareSequencesMonotonic(t *testing.T) {
	b, err := Prepare([]byte("sequence check payload"), Options{BlockSize: 4})
	if err != nil {
		t.Fatal(err)
	}

	next := 0
	for _, f := range b.Frames {
		if f.Kind == wire.KindMeta {
			next++ // metadata consumes a sequence number it does not carry
			continue
		}
		if f.Sequence != next {
			t.Fatalf("sequence %d, want %d (kind %v)", f.Sequence, next, f.Kind)
		}
		next++
	}
}

func TestPrepareDefaults(t *testing.T) {
	b, err := Prepare([]byte("x"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if b.Metadata.BlockSize != DefaultBlockSize {
		t.Errorf("block size = %d, want %d", b.Metadata.BlockSize, DefaultBlockSize)
	}
	if b.Metadata.K != 1 {
		t.Errorf("k = %d, want 1", b.Metadata.K)
	}
}

func TestPrepareIntegrityTagged(t *testing.T) {
	b, err := Prepare([]byte("integrity on"), Options{BlockSize: 4, IntegrityCheck: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range b.SymbolFrames() {
		if len(f.Payload) != 4+4 {
			t.Fatalf("payload length %d, want block+tag", len(f.Payload))
		}
	}
}

func TestPrepareBadBlockSize(t *testing.T) {
	if _, err := Prepare([]byte("x"), Options{BlockSize: -1}); err == nil {
		t.Error("expected error for negative block size")
	}
}

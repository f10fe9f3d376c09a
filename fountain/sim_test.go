package fountain

import (
	"math/rand"
	"testing"
)

func makeSymbols(n int) []Symbol {
	out := make([]Symbol, n)
	for i := range out {
		out[i] = Symbol{Indices: []int{i}, Payload: []byte{byte(i)}}
	}
	return out
}

func TestBurstEraserLossless(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	symbols := makeSymbols(20)
	kept := BurstEraser(symbols, 0, 5, rng)
	if len(kept) != len(symbols) {
		t.Fatalf("kept %d of %d with zero loss", len(kept), len(symbols))
	}
}

func TestBurstEraserTotalLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	kept := BurstEraser(makeSymbols(20), 1, 1, rng)
	if len(kept) != 0 {
		t.Fatalf("kept %d with full loss", len(kept))
	}
}

func TestBurstEraserPreservesOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	kept := BurstEraser(makeSymbols(200), 0.3, 4, rng)
	if len(kept) == 0 || len(kept) == 200 {
		t.Fatalf("implausible survivor count %d", len(kept))
	}
	prev := -1
	for _, s := range kept {
		if s.Indices[0] <= prev {
			t.Fatal("survivors out of order")
		}
		prev = s.Indices[0]
	}
}

func TestGilbertElliottExtremes(t *testing.T) {
	tests := []struct {
		name     string
		goodLoss float64
		badLoss  float64
		p, r     float64
		start    ChannelState
		wantAll  bool
		wantNone bool
	}{
		{"perfect good channel", 0, 0, 0, 0, StateGood, true, false},
		{"stuck bad total loss", 0, 1, 0, 0, StateBad, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(5))
			kept := GilbertElliottEraser(makeSymbols(50), tt.p, tt.r, tt.goodLoss, tt.badLoss, tt.start, rng)
			if tt.wantAll && len(kept) != 50 {
				t.Errorf("kept %d, want all", len(kept))
			}
			if tt.wantNone && len(kept) != 0 {
				t.Errorf("kept %d, want none", len(kept))
			}
		})
	}
}

func TestGilbertElliottBadStateLossier(t *testing.T) {
	symbols := makeSymbols(2000)
	good := GilbertElliottEraser(symbols, 0, 1, 0.02, 0.8, StateGood, rand.New(rand.NewSource(7)))
	bad := GilbertElliottEraser(symbols, 1, 0, 0.02, 0.8, StateBad, rand.New(rand.NewSource(7)))
	if len(bad) >= len(good) {
		t.Errorf("bad channel kept %d, good kept %d", len(bad), len(good))
	}
}

func TestGilbertElliottSurvivalEndToEnd(t *testing.T) {
	// Systematic prefix plus redundancy through a bursty channel; whenever
	// enough symbols survive the decode must reproduce the payload.
	payload := []byte("pos-terminal log burst survival check payload")
	cfg := DefaultConfig(8)
	cfg.Seed = 21
	enc, err := NewEncoder(payload, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	k := enc.K()
	symbols := enc.Encode(2*k + 4)

	rng := rand.New(rand.NewSource(13))
	delivered := GilbertElliottEraser(symbols, 0.05, 0.25, 0, 0.8, StateGood, rng)

	dec, err := NewDecoder(8, k, len(payload), false, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range delivered {
		dec.AddSymbol(s.Indices, s.Payload)
	}

	got, ok := dec.Decode()
	if !ok {
		t.Skipf("channel too lossy this seed: %d of %d delivered", len(delivered), len(symbols))
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

package fountain

import (
	"bytes"
	"testing"
)

func rowFromBits(bits ...int) bitRow {
	max := 0
	for _, b := range bits {
		if b >= max {
			max = b + 1
		}
	}
	if max == 0 {
		max = 1
	}
	r := newBitRow(max)
	for _, b := range bits {
		r.set(b)
	}
	return r
}

// singleBit wraps a 0/1 value as a one-word right-hand side entry.
func singleBit(v uint64) bitRow {
	return bitRow{v}
}

func TestSolveGF2Identity(t *testing.T) {
	matrix := []bitRow{rowFromBits(0), rowFromBits(1), rowFromBits(2)}
	rhs := []bitRow{singleBit(1), singleBit(0), singleBit(1)}

	x := solveGF2(matrix, rhs, 3)
	if x == nil {
		t.Fatal("no solution for identity system")
	}
	want := []uint64{1, 0, 1}
	for i := range want {
		if x[i][0] != want[i] {
			t.Errorf("x[%d] = %d, want %d", i, x[i][0], want[i])
		}
	}
}

func TestSolveGF2RequiresRowSwap(t *testing.T) {
	// First row has no bit in column 0; the pivot must be swapped up.
	matrix := []bitRow{rowFromBits(1), rowFromBits(0, 1)}
	rhs := []bitRow{singleBit(1), singleBit(1)}

	x := solveGF2(matrix, rhs, 2)
	if x == nil {
		t.Fatal("no solution")
	}
	// x1 = 1, x0 ^ x1 = 1 => x0 = 0
	if x[0][0] != 0 || x[1][0] != 1 {
		t.Errorf("got x = [%d %d], want [0 1]", x[0][0], x[1][0])
	}
}

func TestSolveGF2Underdetermined(t *testing.T) {
	matrix := []bitRow{rowFromBits(0, 1), rowFromBits(0, 1)}
	rhs := []bitRow{singleBit(1), singleBit(1)}

	if x := solveGF2(matrix, rhs, 2); x != nil {
		t.Error("expected no solution for rank-deficient system")
	}
}

func TestSolveGF2Inconsistent(t *testing.T) {
	// Same left-hand side, different right-hand sides.
	matrix := []bitRow{rowFromBits(0), rowFromBits(0), rowFromBits(1)}
	rhs := []bitRow{singleBit(1), singleBit(0), singleBit(1)}

	if x := solveGF2(matrix, rhs, 2); x != nil {
		t.Error("expected no solution for inconsistent system")
	}
}

func TestSolveGF2WidePlanes(t *testing.T) {
	// Solving with byte-wide right-hand sides must match the per-plane
	// answer: x0 = a, x1 = b for rows {0,1} (rhs a ^ b) and {1} (rhs b).
	a := []byte{0xA5, 0x0F}
	b := []byte{0x3C, 0xF0}
	ab := []byte{a[0] ^ b[0], a[1] ^ b[1]}

	matrix := []bitRow{rowFromBits(0, 1), rowFromBits(1)}
	rhs := []bitRow{packBE(ab, 16), packBE(b, 16)}

	x := solveGF2(matrix, rhs, 2)
	if x == nil {
		t.Fatal("no solution")
	}
	if got := unpackBE(x[0], 2); !bytes.Equal(got, a) {
		t.Errorf("x0 = %v, want %v", got, a)
	}
	if got := unpackBE(x[1], 2); !bytes.Equal(got, b) {
		t.Errorf("x1 = %v, want %v", got, b)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		{0x01},
		{0xFF, 0x00, 0xAB},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	}
	for _, p := range tests {
		r := packBE(p, len(p)*8)
		if got := unpackBE(r, len(p)); !bytes.Equal(got, p) {
			t.Errorf("round trip %v -> %v", p, got)
		}
	}
}

func TestSelectIndependentRows(t *testing.T) {
	tests := []struct {
		name       string
		rows       []bitRow
		k          int
		wantRank   int
		wantSelect bool
	}{
		{
			"full rank triangular",
			[]bitRow{rowFromBits(0), rowFromBits(0, 1), rowFromBits(1, 2)},
			3, 3, true,
		},
		{
			"redundant rows skipped",
			[]bitRow{rowFromBits(0), rowFromBits(0), rowFromBits(1), rowFromBits(0, 1), rowFromBits(2)},
			3, 3, true,
		},
		{
			"rank deficient",
			[]bitRow{rowFromBits(0, 1), rowFromBits(0, 1), rowFromBits(0, 1)},
			3, 1, false,
		},
		{
			"zero rows ignored",
			[]bitRow{newBitRow(2), rowFromBits(0), rowFromBits(1)},
			2, 2, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, rank := selectIndependentRows(tt.rows, tt.k)
			if rank != tt.wantRank {
				t.Errorf("rank = %d, want %d", rank, tt.wantRank)
			}
			if (sel != nil) != tt.wantSelect {
				t.Fatalf("selection = %v, want selected=%v", sel, tt.wantSelect)
			}
			if sel != nil && len(sel) != tt.k {
				t.Errorf("selected %d rows, want %d", len(sel), tt.k)
			}
		})
	}
}

func TestSelectIndependentRowsLeavesInputIntact(t *testing.T) {
	rows := []bitRow{rowFromBits(0, 1), rowFromBits(1)}
	before := []bitRow{rows[0].clone(), rows[1].clone()}

	selectIndependentRows(rows, 2)

	for i := range rows {
		for w := range rows[i] {
			if rows[i][w] != before[i][w] {
				t.Fatalf("row %d mutated", i)
			}
		}
	}
}

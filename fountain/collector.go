package fountain

import "time"

// Collector tracks statistics for encode/decode runs. It has no role in
// correctness; the receiver façade and the bench command read it. All
// methods are nil-safe so instrumentation stays optional.
type Collector struct {
	DegreeHist       map[int]int64
	DecodeDurations  []time.Duration
	DecodeAttempts   int64
	DecodeSuccesses  int64
	DecodeFailures   int64
	SymbolsUsed      []int
	SymbolsAvailable []int
	RejectedSymbols  map[string]int64
}

func NewCollector() *Collector {
	return &Collector{
		DegreeHist:      make(map[int]int64),
		RejectedSymbols: make(map[string]int64),
	}
}

// RecordDegree notes the degree of an emitted symbol. Degrees below 1 are
// ignored.
func (c *Collector) RecordDegree(degree int) {
	if c == nil || degree < 1 {
		return
	}
	c.DegreeHist[degree]++
}

// RecordDecode notes one decode attempt with its duration and outcome.
func (c *Collector) RecordDecode(duration time.Duration, success bool, symbolsUsed, totalAvailable int) {
	if c == nil {
		return
	}
	c.DecodeAttempts++
	c.DecodeDurations = append(c.DecodeDurations, duration)
	c.SymbolsUsed = append(c.SymbolsUsed, symbolsUsed)
	c.SymbolsAvailable = append(c.SymbolsAvailable, totalAvailable)
	if success {
		c.DecodeSuccesses++
	} else {
		c.DecodeFailures++
	}
}

// RecordSymbolRejected notes a symbol dropped before any decoder state
// change (e.g. CRC mismatch).
func (c *Collector) RecordSymbolRejected(reason RejectReason) {
	if c == nil {
		return
	}
	c.RejectedSymbols[string(reason)]++
}

// Merge adds other's counters and series into c element-wise.
func (c *Collector) Merge(other *Collector) {
	if c == nil || other == nil {
		return
	}
	for d, n := range other.DegreeHist {
		c.DegreeHist[d] += n
	}
	c.DecodeDurations = append(c.DecodeDurations, other.DecodeDurations...)
	c.DecodeAttempts += other.DecodeAttempts
	c.DecodeSuccesses += other.DecodeSuccesses
	c.DecodeFailures += other.DecodeFailures
	c.SymbolsUsed = append(c.SymbolsUsed, other.SymbolsUsed...)
	c.SymbolsAvailable = append(c.SymbolsAvailable, other.SymbolsAvailable...)
	for r, n := range other.RejectedSymbols {
		c.RejectedSymbols[r] += n
	}
}

// Summary aggregates the collected counters. Rates and means are zero when
// nothing was recorded.
type Summary struct {
	TotalSymbols          int64
	DegreeHist            map[int]int64
	AverageDegree         float64
	DecodeAttempts        int64
	DecodeSuccesses       int64
	DecodeFailures        int64
	DecodeSuccessRate     float64
	AverageDecodeDuration time.Duration
	AverageSymbolsUsed    float64
	RejectedSymbols       map[string]int64
}

func (c *Collector) Summary() Summary {
	if c == nil {
		return Summary{DegreeHist: map[int]int64{}, RejectedSymbols: map[string]int64{}}
	}

	var total, weighted int64
	hist := make(map[int]int64, len(c.DegreeHist))
	for d, n := range c.DegreeHist {
		hist[d] = n
		total += n
		weighted += int64(d) * n
	}

	s := Summary{
		TotalSymbols:    total,
		DegreeHist:      hist,
		DecodeAttempts:  c.DecodeAttempts,
		DecodeSuccesses: c.DecodeSuccesses,
		DecodeFailures:  c.DecodeFailures,
		RejectedSymbols: make(map[string]int64, len(c.RejectedSymbols)),
	}
	for r, n := range c.RejectedSymbols {
		s.RejectedSymbols[r] = n
	}

	if total > 0 {
		s.AverageDegree = float64(weighted) / float64(total)
	}
	if c.DecodeAttempts > 0 {
		s.DecodeSuccessRate = float64(c.DecodeSuccesses) / float64(c.DecodeAttempts)
	}
	if len(c.DecodeDurations) > 0 {
		var sum time.Duration
		for _, d := range c.DecodeDurations {
			sum += d
		}
		s.AverageDecodeDuration = sum / time.Duration(len(c.DecodeDurations))
	}
	if len(c.SymbolsUsed) > 0 {
		var sum int
		for _, n := range c.SymbolsUsed {
			sum += n
		}
		s.AverageSymbolsUsed = float64(sum) / float64(len(c.SymbolsUsed))
	}
	return s
}

// Package payload holds the canonical demo payload generator used by the
// send and simulate commands. The bench command fills its trial payloads
// from its PRNG instead.
package payload

import (
	"fmt"
	"strings"
)

// Field is one key=value pair of a log entry. Entries keep their fields
// ordered so the rendered payload is byte-for-byte deterministic.
type Field struct {
	Key   string
	Value string
}

// Entry is one pipe-delimited log line.
type Entry []Field

func (e Entry) render() string {
	parts := make([]string, len(e))
	for i, f := range e {
		parts[i] = f.Key + "=" + f.Value
	}
	return strings.Join(parts, "|")
}

var defaultEntries = []Entry{
	{
		{"terminal", "TB-POS-01"}, {"event", "sale_approved"}, {"amount", "23.75"},
		{"currency", "USD"}, {"method", "tap"}, {"latency_ms", "412"},
	},
	{
		{"terminal", "TB-POS-01"}, {"event", "inventory_sync"}, {"status", "ok"},
		{"duration_ms", "128"},
	},
	{
		{"gateway", "tightbeam-edge"}, {"event", "burst_monitor"}, {"window", "60s"},
		{"drops_detected", "0"},
	},
	{
		{"terminal", "TB-POS-02"}, {"event", "sale_declined"}, {"amount", "109.99"},
		{"currency", "USD"}, {"method", "chip"}, {"reason", "issuer_declined"},
	},
	{
		{"gateway", "tightbeam-edge"}, {"event", "latency_sample"}, {"p95_ms", "537"},
		{"p99_ms", "804"},
	},
	{
		{"terminal", "TB-POS-03"}, {"event", "firmware_status"}, {"version", "2.4.7"},
		{"uptime_hours", "132"}, {"battery_percent", "88"},
	},
}

// POSTerminalLogs returns the synthetic POS/IoT log fixture: a header line
// followed by six default entries plus any extras.
func POSTerminalLogs(extra ...Entry) []byte {
	entries := make([]Entry, 0, len(defaultEntries)+len(extra))
	entries = append(entries, defaultEntries...)
	entries = append(entries, extra...)

	header := Entry{
		{"log_format", "json_lines"},
		{"source", "tightbeam-demo"},
		{"total_entries", fmt.Sprintf("%d", len(entries))},
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, header.render())
	for _, e := range entries {
		lines = append(lines, e.render())
	}
	return []byte(strings.Join(lines, "\n"))
}

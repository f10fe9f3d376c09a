package payload

import (
	"bytes"
	"strings"
	"testing"
)

func TestPOSTerminalLogsDeterministic(t *testing.T) {
	a := POSTerminalLogs()
	b := POSTerminalLogs()
	if !bytes.Equal(a, b) {
		t.Fatal("generator is not deterministic")
	}
}

func TestPOSTerminalLogsShape(t *testing.T) {
	lines := strings.Split(string(POSTerminalLogs()), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want header plus 6 entries", len(lines))
	}
	if !strings.HasPrefix(lines[0], "log_format=json_lines|") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[0], "total_entries=6") {
		t.Errorf("header = %q", lines[0])
	}
	for i, line := range lines[1:] {
		for _, pair := range strings.Split(line, "|") {
			if !strings.Contains(pair, "=") {
				t.Errorf("entry %d has malformed pair %q", i, pair)
			}
		}
	}
}

func TestPOSTerminalLogsExtraEntries(t *testing.T) {
	extra := Entry{{"terminal", "TB-POS-09"}, {"event", "heartbeat"}}
	out := string(POSTerminalLogs(extra))
	if !strings.Contains(out, "terminal=TB-POS-09|event=heartbeat") {
		t.Error("extra entry missing")
	}
	if !strings.Contains(out, "total_entries=7") {
		t.Error("header count does not include extra entry")
	}
}

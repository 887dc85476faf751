package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	var out []map[string]any
	for _, e := range entries {
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		dec, err := zstd.NewReader(f)
		if err != nil {
			t.Fatalf("zstd: %v", err)
		}
		sc := bufio.NewScanner(dec)
		for sc.Scan() {
			var m map[string]any
			if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
				t.Fatalf("bad jsonl line: %v", err)
			}
			out = append(out, m)
		}
		dec.Close()
		f.Close()
	}
	return out
}

func TestEventLoggerRoundTrip(t *testing.T) {
	worldDir := t.TempDir()
	l := NewEventLogger(worldDir)

	events := []map[string]any{
		{"type": "set_block", "block": float64(5)},
		{"type": "save", "chunks": float64(2)},
	}
	for _, ev := range events {
		if err := l.Write(ev); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := readEvents(t, filepath.Join(worldDir, "events"))
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0]["type"] != "set_block" || got[1]["type"] != "save" {
		t.Fatalf("event order lost: %v", got)
	}
}

func TestWriterAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	w := NewJSONLZstdWriter(dir, "events")
	if err := w.Write(map[string]any{"n": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w = NewJSONLZstdWriter(dir, "events")
	if err := w.Write(map[string]any{"n": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := readEvents(t, dir)
	if len(got) != 2 {
		t.Fatalf("got %d events after reopen, want 2", len(got))
	}
}

package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTranscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscriptSource(t *testing.T) {
	path := writeTranscript(t,
		"You swing at the orc.\n"+
			"<stream id=\"combat\">You hit!\n"+
			"The orc falls.\n")

	src, err := NewTranscriptSource(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	if got := src.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}

	line, err := src.GetLine(1)
	if err != nil {
		t.Fatal(err)
	}
	if string(line.Raw) != `<stream id="combat">You hit!` {
		t.Errorf("line 1 = %q", line.Raw)
	}
	if line.OriginalIndex != 1 {
		t.Errorf("OriginalIndex = %d", line.OriginalIndex)
	}

	// Out of range is nil, not an error.
	if line, err := src.GetLine(99); err != nil || line != nil {
		t.Errorf("GetLine(99) = %v, %v", line, err)
	}

	lines, err := src.GetLines(1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Errorf("GetLines(1,10) returned %d lines", len(lines))
	}
}

func appendTranscript(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func TestTranscriptRefresh(t *testing.T) {
	path := writeTranscript(t, "line one\nline two\n")

	src, err := NewTranscriptSource(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.LineCount() != 2 {
		t.Fatalf("initial count = %d", src.LineCount())
	}

	// Unchanged file is a no-op.
	added, err := src.Refresh()
	if err != nil || added != 0 {
		t.Fatalf("Refresh on unchanged file = %d, %v", added, err)
	}

	appendTranscript(t, path, "line three\nline four\n")

	added, err = src.Refresh()
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 {
		t.Fatalf("Refresh added = %d, want 2", added)
	}
	if src.LineCount() != 4 {
		t.Fatalf("count after refresh = %d, want 4", src.LineCount())
	}

	line, err := src.GetLine(2)
	if err != nil {
		t.Fatal(err)
	}
	if string(line.Raw) != "line three" {
		t.Errorf("line 2 = %q", line.Raw)
	}

	// A partial last line completed by a later append still indexes.
	appendTranscript(t, path, "partial")
	if _, err := src.Refresh(); err != nil {
		t.Fatal(err)
	}
	appendTranscript(t, path, " done\nnext\n")
	added, err = src.Refresh()
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Fatalf("completing append added = %d, want 1", added)
	}
	line, _ = src.GetLine(4)
	if string(line.Raw) != "partial done" {
		t.Errorf("completed line = %q", line.Raw)
	}
}

func TestFilteredProvider(t *testing.T) {
	path := writeTranscript(t,
		"main one\n"+
			"<stream id=\"combat\">hit one\n"+
			"main two\n"+
			"<stream id=\"combat\">hit two\n")

	src, err := NewTranscriptSource(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	f := NewFilteredProvider(src)

	// No filters: transparent pass-through.
	if f.LineCount() != 4 {
		t.Fatalf("unfiltered count = %d", f.LineCount())
	}

	f.SetPredicate(func(raw []byte) bool {
		return bytes.HasPrefix(raw, []byte("<stream"))
	})
	if f.LineCount() != 2 {
		t.Fatalf("filtered count = %d, want 2", f.LineCount())
	}

	line, err := f.GetLine(1)
	if err != nil {
		t.Fatal(err)
	}
	if line.OriginalIndex != 3 {
		t.Errorf("filtered line 1 original index = %d, want 3", line.OriginalIndex)
	}

	f.SetTextFilter("two")
	if f.LineCount() != 1 {
		t.Errorf("combined filter count = %d, want 1", f.LineCount())
	}

	f.SetPredicate(nil)
	f.SetTextFilter("")
	if f.LineCount() != 4 {
		t.Errorf("cleared filter count = %d", f.LineCount())
	}
}

package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf)
	p.Start(4)
	p.Done("a.json", true)
	p.Done("b.json", false)
	p.Done("c.json", true)
	p.Done("d.json", true)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "4/4 documents, 1 invalid") {
		t.Errorf("output missing final state: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish() should end the line")
	}
}

func TestProgressReporter_SingleDocumentSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf)
	p.Start(1)
	p.Done("a.json", true)
	p.Finish()
	if buf.Len() != 0 {
		t.Errorf("single document should draw nothing, got %q", buf.String())
	}
}

func TestProgressReporter_Nil(t *testing.T) {
	p := NewProgressReporter(nil)
	p.Start(10)
	p.Done("x", false)
	p.Finish()
}

func TestTruncate(t *testing.T) {
	if got := truncate("abc", 5); got != "abc  " {
		t.Errorf("truncate pad = %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "...hij" {
		t.Errorf("truncate cut = %q", got)
	}
}

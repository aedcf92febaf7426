package printer

import (
	"strings"
	"testing"
)

func TestKeyValueAlignment(t *testing.T) {
	d := NewTextDocument(Width58mm)
	d.KeyValue("Subtotal", "100.00")

	line := strings.TrimSuffix(d.String(), "\n")
	if len(line) != Width58mm {
		t.Errorf("line width = %d, want %d", len(line), Width58mm)
	}
	if !strings.HasPrefix(line, "Subtotal") || !strings.HasSuffix(line, "100.00") {
		t.Errorf("line = %q, want key left and value right", line)
	}
}

func TestItemLineTruncatesLongNames(t *testing.T) {
	d := NewTextDocument(Width58mm)
	d.ItemLine(2, strings.Repeat("Extremely Long Product Name ", 3), "20.00")

	line := strings.TrimSuffix(d.String(), "\n")
	if len(line) != Width58mm {
		t.Errorf("line width = %d, want %d", len(line), Width58mm)
	}
	if !strings.HasSuffix(line, "20.00") {
		t.Errorf("line = %q, total must stay right-aligned", line)
	}
	if !strings.HasPrefix(line, "2x ") {
		t.Errorf("line = %q, quantity prefix lost", line)
	}
}

func TestPlainModeCenterAlignment(t *testing.T) {
	d := NewTextDocument(10)
	d.SetAlign(AlignCenter)
	d.Text("ab")

	line := strings.TrimSuffix(d.String(), "\n")
	if line != "    ab" {
		t.Errorf("line = %q, want %q", line, "    ab")
	}
}

func TestPlainModeSuppressesControlCodes(t *testing.T) {
	d := NewTextDocument(Width58mm)
	d.SetBold(true).SetFontSize(FontDouble)
	d.Text("hello")
	d.Cut()

	out := d.Bytes()
	for _, b := range out {
		if b == ESC || b == GS {
			t.Fatalf("plain document contains control byte %#x", b)
		}
	}
}

func TestEscposModeEmitsInitAndCut(t *testing.T) {
	d := NewDocument(Width58mm)
	d.Text("hello")
	d.Cut()

	out := d.Bytes()
	if out[0] != ESC || out[1] != '@' {
		t.Error("document should start with ESC @")
	}
	if !strings.Contains(string(out), string([]byte{GS, 'V', 0x00})) {
		t.Error("document should contain the cut command")
	}
}

func TestSeparatorFillsWidth(t *testing.T) {
	d := NewTextDocument(20)
	d.Separator('-')

	line := strings.TrimSuffix(d.String(), "\n")
	if line != strings.Repeat("-", 20) {
		t.Errorf("separator = %q, want 20 dashes", line)
	}
}

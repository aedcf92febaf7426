package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// Common print widths in characters
const (
	Width58mm  = 32 // 58mm thermal paper
	Width80mm  = 48 // 80mm thermal paper
	WidthA4Col = 48 // monospace column width used for full-page documents
)

// Document builds a receipt byte stream. In ESC/POS mode it emits printer
// control codes for a thermal device; in plain mode the styling commands are
// ignored and the output is page-ready monospace text.
type Document struct {
	buf   bytes.Buffer
	width int
	plain bool
	align int
}

// NewDocument creates an ESC/POS document with the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	d.init()
	return d
}

// NewTextDocument creates a plain-text document with the given character
// width. Styling commands become no-ops except alignment, which is applied
// with padding.
func NewTextDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = WidthA4Col
	}
	return &Document{width: charWidth, plain: true}
}

// init sends the ESC @ (initialize printer) command.
func (d *Document) init() *Document {
	if !d.plain {
		d.buf.Write([]byte{ESC, '@'})
	}
	return d
}

// Width returns the configured character width.
func (d *Document) Width() int {
	return d.width
}

// LineFeed writes a single empty line.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// FeedLines writes n empty lines.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	d.align = align
	if !d.plain {
		d.buf.Write([]byte{ESC, 'a', byte(align)})
	}
	return d
}

// SetBold enables or disables bold text. No-op in plain mode.
func (d *Document) SetBold(on bool) *Document {
	if d.plain {
		return d
	}
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// SetFontSize sets the character size. No-op in plain mode.
func (d *Document) SetFontSize(size byte) *Document {
	if !d.plain {
		d.buf.Write([]byte{GS, '!', size})
	}
	return d
}

// Text writes a line of text followed by a line feed. In plain mode the
// current alignment is applied with spaces.
func (d *Document) Text(s string) *Document {
	if d.plain && d.align != AlignLeft && len(s) < d.width {
		pad := d.width - len(s)
		if d.align == AlignCenter {
			pad /= 2
		}
		s = strings.Repeat(" ", pad) + s
	}
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width separator line.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints a left-aligned key and right-aligned value on one line.
// Example: "Subtotal                  100.00"
func (d *Document) KeyValue(key, value string) *Document {
	spaces := d.width - len(key) - len(value)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(key)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(value)
	d.buf.WriteByte(LF)
	return d
}

// ItemLine prints a receipt item line: qty x name, then right-aligned total.
// Example: "2x Widget                  20.00"
func (d *Document) ItemLine(qty int, name, total string) *Document {
	prefix := fmt.Sprintf("%dx %s", qty, name)
	if max := d.width - len(total) - 1; len(prefix) > max && max > 0 {
		prefix = prefix[:max]
	}
	spaces := d.width - len(prefix) - len(total)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(prefix)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(total)
	d.buf.WriteByte(LF)
	return d
}

// Cut sends the paper cut command (full cut). No-op in plain mode.
func (d *Document) Cut() *Document {
	if !d.plain {
		d.buf.Write([]byte{GS, 'V', 0x00})
	}
	return d
}

// PartialCut sends the partial cut command. No-op in plain mode.
func (d *Document) PartialCut() *Document {
	if !d.plain {
		d.buf.Write([]byte{GS, 'V', 0x01})
	}
	return d
}

// Bytes returns the accumulated byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// String returns the accumulated stream as a string. Mostly useful for
// plain-text documents and tests.
func (d *Document) String() string {
	return d.buf.String()
}

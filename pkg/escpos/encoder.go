package escpos

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Control bytes.
const (
	esc = 0x1b
	gs  = 0x1d
	lf  = 0x0a
)

// DefaultColumns is the character width of a 58mm printer in font A.
const DefaultColumns = 32

// Alignment is the horizontal justification of subsequent lines.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unknown"
	}
}

type codepage struct {
	table *charmap.Charmap
	id    byte // ESC t n
}

var codepages = map[string]codepage{
	"cp437":       {charmap.CodePage437, 0},
	"cp850":       {charmap.CodePage850, 2},
	"cp860":       {charmap.CodePage860, 3},
	"cp863":       {charmap.CodePage863, 4},
	"cp865":       {charmap.CodePage865, 5},
	"windows1252": {charmap.Windows1252, 16},
	"cp866":       {charmap.CodePage866, 17},
	"cp852":       {charmap.CodePage852, 18},
	"cp858":       {charmap.CodePage858, 19},
}

// Encoder accumulates printer directives. It is not safe for concurrent use.
// The first failing directive is remembered and returned by Encode.
type Encoder struct {
	columns int
	cp      codepage
	width   int
	height  int
	buf     bytes.Buffer
	err     error
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithColumns sets the printable width in characters at normal scale.
func WithColumns(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.columns = n
		}
	}
}

// New creates an Encoder. Until Codepage is called text is encoded as cp437,
// the printer's power-on table.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		columns: DefaultColumns,
		cp:      codepages["cp437"],
		width:   1,
		height:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize resets the printer to its power-on state (ESC @).
func (e *Encoder) Initialize() *Encoder {
	e.buf.Write([]byte{esc, '@'})
	e.width, e.height = 1, 1
	return e
}

// Codepage selects the character table (ESC t n) used for subsequent text.
func (e *Encoder) Codepage(name string) *Encoder {
	cp, ok := codepages[strings.ToLower(name)]
	if !ok {
		e.fail(fmt.Errorf("escpos: unsupported codepage %q", name))
		return e
	}
	e.cp = cp
	e.buf.Write([]byte{esc, 't', cp.id})
	return e
}

// Align sets the justification of subsequent lines (ESC a n).
func (e *Encoder) Align(a Alignment) *Encoder {
	if a > AlignRight {
		e.fail(fmt.Errorf("escpos: invalid alignment %d", a))
		return e
	}
	e.buf.Write([]byte{esc, 'a', byte(a)})
	return e
}

// Width sets the horizontal character scale, 1 through 8.
func (e *Encoder) Width(n int) *Encoder {
	if n < 1 || n > 8 {
		e.fail(fmt.Errorf("escpos: width %d out of range 1-8", n))
		return e
	}
	e.width = n
	e.writeSize()
	return e
}

// Height sets the vertical character scale, 1 through 8.
func (e *Encoder) Height(n int) *Encoder {
	if n < 1 || n > 8 {
		e.fail(fmt.Errorf("escpos: height %d out of range 1-8", n))
		return e
	}
	e.height = n
	e.writeSize()
	return e
}

// GS ! n: high nibble is width-1, low nibble is height-1.
func (e *Encoder) writeSize() {
	e.buf.Write([]byte{gs, '!', byte((e.width-1)<<4 | (e.height - 1))})
}

// Line prints text followed by a line feed. Text wider than the printable
// width at the current scale breaks at the last space that fits; a single
// word longer than the width is split.
func (e *Encoder) Line(text string) *Encoder {
	perLine := e.columns / e.width
	if perLine < 1 {
		perLine = 1
	}
	runes := []rune(text)
	for len(runes) > perLine {
		cut, next := perLine, perLine
		for i := perLine; i > 0; i-- {
			if runes[i] == ' ' {
				cut, next = i, i+1
				break
			}
		}
		for cut > 0 && runes[cut-1] == ' ' {
			cut--
		}
		if cut == 0 {
			cut, next = perLine, perLine
		}
		e.text(runes[:cut])
		e.buf.WriteByte(lf)
		runes = runes[next:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	e.text(runes)
	e.buf.WriteByte(lf)
	return e
}

// Newline feeds one empty line.
func (e *Encoder) Newline() *Encoder {
	e.buf.WriteByte(lf)
	return e
}

// Cut performs a full paper cut (GS V 0).
func (e *Encoder) Cut() *Encoder {
	e.buf.Write([]byte{gs, 'V', 0x00})
	return e
}

// Encode returns the accumulated stream and resets the encoder for reuse.
func (e *Encoder) Encode() ([]byte, error) {
	if e.err != nil {
		err := e.err
		e.reset()
		return nil, err
	}
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	e.reset()
	return out, nil
}

func (e *Encoder) text(runes []rune) {
	for _, r := range runes {
		b, ok := e.cp.table.EncodeRune(r)
		if !ok {
			b = '?'
		}
		e.buf.WriteByte(b)
	}
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) reset() {
	e.buf.Reset()
	e.err = nil
	e.width, e.height = 1, 1
	e.cp = codepages["cp437"]
}

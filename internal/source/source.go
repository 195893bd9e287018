// Package source implements the character-stream abstraction (component A)
// that the scanner reads from. It tracks line/column/offset position across
// one or more named inputs and presents them as a single logical stream.
package source

import (
	"unicode/utf8"

	"github.com/funvibe/funxy/internal/token"
)

// NUL is the sentinel rune returned at the end of the current source.
const NUL = rune(0)

// Input is one named text source (a file, a REPL line, a string literal
// passed on the command line).
type Input struct {
	Name string
	Text string
}

// cursor is the mutable read position within a single Input.
type cursor struct {
	offset int
	line   int
	column int
}

// Reader advances over a sequence of Inputs, presenting them as one stream.
// It is not safe for concurrent use; each compilation owns its own Reader
// (see the concurrency model in the specification).
type Reader struct {
	inputs []Input
	index  int
	cur    cursor
	ch     rune
	width  int // width in bytes of ch, for advance()

	saved    *savedState
}

type savedState struct {
	index int
	cur   cursor
	ch    rune
	width int
}

// New creates a Reader over the given named sources, read in order.
func New(inputs ...Input) *Reader {
	r := &Reader{inputs: inputs, cur: cursor{line: 1, column: 1}}
	r.loadChar()
	return r
}

// NewFromString is a convenience constructor for a single anonymous source.
func NewFromString(name, text string) *Reader {
	return New(Input{Name: name, Text: text})
}

func (r *Reader) currentInput() (Input, bool) {
	if r.index >= len(r.inputs) {
		return Input{}, false
	}
	return r.inputs[r.index], true
}

// loadChar decodes the rune at cur.offset into ch, or NUL if the current
// input is exhausted.
func (r *Reader) loadChar() {
	in, ok := r.currentInput()
	if !ok {
		r.ch = NUL
		r.width = 0
		return
	}
	if r.cur.offset >= len(in.Text) {
		r.ch = NUL
		r.width = 0
		return
	}
	ru, w := utf8.DecodeRuneInString(in.Text[r.cur.offset:])
	if ru == utf8.RuneError && w <= 1 {
		ru = rune(in.Text[r.cur.offset])
		w = 1
	}
	r.ch = ru
	r.width = w
}

// Current returns the rune under the cursor, or NUL at end of the current
// source (AdvanceSource must be called to continue into the next one).
func (r *Reader) Current() rune { return r.ch }

// AtEnd reports whether every source has been exhausted.
func (r *Reader) AtEnd() bool {
	return r.ch == NUL && r.index >= len(r.inputs)
}

// SourceName returns the name of the input currently being read.
func (r *Reader) SourceName() string {
	if in, ok := r.currentInput(); ok {
		return in.Name
	}
	if len(r.inputs) > 0 {
		return r.inputs[len(r.inputs)-1].Name
	}
	return ""
}

// Position returns the current {line, column, offset} within the active
// source.
func (r *Reader) Position() token.Position {
	return token.Position{Source: r.SourceName(), Line: r.cur.line, Column: r.cur.column, Offset: r.cur.offset}
}

// isLineTerminator reports whether ch is treated as ending a line, per the
// extended set the scanner must recognize in addition to '\n'.
func isLineTerminator(ch rune) bool {
	return ch == '\n' || ch == '\x85' || ch == ' '
}

// Advance consumes the current rune and moves the cursor forward, updating
// line/column bookkeeping. It does not cross a source boundary; once Current
// returns NUL at the end of a source, call AdvanceSource.
func (r *Reader) Advance() {
	if r.ch == NUL {
		return
	}
	if isLineTerminator(r.ch) {
		r.cur.line++
		r.cur.column = 1
	} else {
		r.cur.column++
	}
	r.cur.offset += r.width
	r.loadChar()
}

// AdvanceSource moves to the first character of the next named source. It
// is a no-op (idempotent) once all sources are exhausted.
func (r *Reader) AdvanceSource() bool {
	if r.index >= len(r.inputs) {
		return false
	}
	r.index++
	r.cur = cursor{line: 1, column: 1}
	r.loadChar()
	return r.index < len(r.inputs)
}

// SkipWhitespace advances past space, tab, and line-terminator runes.
func (r *Reader) SkipWhitespace() {
	for r.ch == ' ' || r.ch == '\t' || r.ch == '\r' || isLineTerminator(r.ch) {
		r.Advance()
	}
}

// Peek returns the rune one position ahead of Current without consuming
// anything, or NUL if that would read past the end of the current source.
func (r *Reader) Peek() rune {
	in, ok := r.currentInput()
	if !ok {
		return NUL
	}
	next := r.cur.offset + r.width
	if next >= len(in.Text) {
		return NUL
	}
	ru, w := utf8.DecodeRuneInString(in.Text[next:])
	if ru == utf8.RuneError && w <= 1 {
		return rune(in.Text[next])
	}
	return ru
}

// Save snapshots the cursor so the caller can backtrack with Restore. The
// contract (see the resource model) is that at most one Save may be
// outstanding at a time.
func (r *Reader) Save() {
	s := savedState{index: r.index, cur: r.cur, ch: r.ch, width: r.width}
	r.saved = &s
}

// Restore rewinds to the last Save. It panics if no save is outstanding,
// since that indicates a scanner bug rather than a recoverable condition.
func (r *Reader) Restore() {
	if r.saved == nil {
		panic("source: Restore called with no outstanding Save")
	}
	r.index = r.saved.index
	r.cur = r.saved.cur
	r.ch = r.saved.ch
	r.width = r.saved.width
	r.saved = nil
}

// Discard drops the outstanding save without restoring to it.
func (r *Reader) Discard() {
	r.saved = nil
}

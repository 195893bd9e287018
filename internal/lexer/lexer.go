// Package lexer implements the scanner (component B): it produces a lazy
// sequence of tokens from a source.Reader and owns the numeric sublanguage
// described in the specification (section 4.B).
package lexer

import (
	"strings"

	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/numeric"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/token"
)

var charNames = map[string]rune{
	"space": ' ', "lf": '\n', "linefeed": '\n', "newline": '\n',
	"cr": '\r', "return": '\r', "tab": '\t', "bs": '\b', "backspace": '\b',
	"esc": 0x1B, "del": 0x7F, "delete": 0x7F, "nul": 0,
	"alarm": 0x07, "vtab": 0x0B, "ff": 0x0C, "page": 0x0C,
}

// Lexer produces tokens from a source.Reader, recording diagnostics for
// lexical errors into a shared Sink rather than aborting.
type Lexer struct {
	r    *source.Reader
	sink *diagnostics.Sink
}

// New creates a Lexer reading from r, reporting into sink.
func New(r *source.Reader, sink *diagnostics.Sink) *Lexer {
	return &Lexer{r: r, sink: sink}
}

func isDelimiter(ch rune) bool {
	switch ch {
	case source.NUL, ' ', '\t', '\n', '\r', '\x85',
		'(', ')', '[', ']', '{', '}', '"', '`', '\'', ',':
		return true
	}
	return false
}

func isDigitChar(ch rune) bool { return ch >= '0' && ch <= '9' }

func (l *Lexer) pos() token.Position { return l.r.Position() }

// NextToken returns the next token, or an EOF token once every source is
// exhausted.
func (l *Lexer) NextToken() token.Token {
	for {
		l.r.SkipWhitespace()

		if l.r.Current() == ';' {
			for l.r.Current() != '\n' && l.r.Current() != source.NUL {
				l.r.Advance()
			}
			continue
		}

		if l.r.Current() == source.NUL {
			if !l.r.AdvanceSource() {
				return token.Token{Kind: token.EOF, Start: l.pos(), End: l.pos()}
			}
			continue
		}

		break
	}

	start := l.pos()
	ch := l.r.Current()

	switch {
	case ch == '#':
		return l.scanHash(start)
	case ch == '"':
		return l.scanString(start)
	case ch == '(':
		l.r.Advance()
		return l.finish(token.LPAREN, "(", start)
	case ch == ')':
		l.r.Advance()
		return l.finish(token.RPAREN, ")", start)
	case ch == '[':
		l.r.Advance()
		return l.finish(token.LBRACKET, "[", start)
	case ch == ']':
		l.r.Advance()
		return l.finish(token.RBRACKET, "]", start)
	case ch == '{':
		l.r.Advance()
		return l.finish(token.LCURLY, "{", start)
	case ch == '}':
		l.r.Advance()
		return l.finish(token.RCURLY, "}", start)
	case ch == '\'':
		l.r.Advance()
		return l.finish(token.QUOTE, "'", start)
	case ch == '`':
		l.r.Advance()
		return l.finish(token.BACKQUOTE, "`", start)
	case ch == ',':
		l.r.Advance()
		if l.r.Current() == '@' {
			l.r.Advance()
			return l.finish(token.SPLICE, ",@", start)
		}
		return l.finish(token.COMMA, ",", start)
	case isDigitChar(ch) || ch == '.' || ch == '-' || ch == '+':
		if tok, ok := l.tryScanNumber(start, 10, 0); ok {
			return tok
		}
		return l.scanSymbolOrPeriod(start)
	default:
		return l.scanSymbol(start, false)
	}
}

func (l *Lexer) finish(kind token.Kind, text string, start token.Position) token.Token {
	return token.Token{Kind: kind, Text: text, Start: start, End: l.pos()}
}

// readRun consumes and returns a run of non-delimiter characters.
func (l *Lexer) readRun() string {
	var b strings.Builder
	for !isDelimiter(l.r.Current()) {
		b.WriteRune(l.r.Current())
		l.r.Advance()
	}
	return b.String()
}

// scanSymbolOrPeriod handles lexemes beginning with '.', '-', or '+' that
// turned out not to be numbers: a bare '.' is the period token, everything
// else (including a bare '-' or '+') is a symbol.
func (l *Lexer) scanSymbolOrPeriod(start token.Position) token.Token {
	if l.r.Current() == '.' {
		l.r.Save()
		l.r.Advance()
		if isDelimiter(l.r.Current()) {
			l.r.Discard()
			return l.finish(token.PERIOD, ".", start)
		}
		l.r.Restore()
	}
	return l.scanSymbol(start, false)
}

func (l *Lexer) scanSymbol(start token.Position, hashPrefixed bool) token.Token {
	run := l.readRun()
	if !hashPrefixed && run == "nil" {
		return token.Token{Kind: token.LITERAL, Value: nil, Text: run, Start: start, End: l.pos()}
	}
	if run == "" {
		ch := l.r.Current()
		l.r.Advance()
		return token.Token{Kind: token.ILLEGAL, Text: string(ch), Start: start, End: l.pos()}
	}
	return token.Token{Kind: token.SYMBOL, Value: run, Text: run, Start: start, End: l.pos()}
}

func (l *Lexer) scanHash(start token.Position) token.Token {
	l.r.Advance() // consume '#'
	switch l.r.Current() {
	case 't', 'T':
		return l.scanHashWord(start, true)
	case 'f', 'F':
		return l.scanHashWord(start, false)
	case '\\':
		l.r.Advance()
		return l.scanCharLiteral(start)
	case '%':
		l.r.Advance()
		name := l.readRun()
		return token.Token{Kind: token.SYMBOL, Value: "#%" + name, Text: "#%" + name, Start: start, End: l.pos()}
	case '"', '\'':
		quote := l.r.Current()
		l.r.Advance()
		return l.scanHashDelimitedString(start, quote)
	case '(':
		l.r.Advance()
		return l.finish(token.VECTOR_OPEN, "#(", start)
	case '|':
		l.r.Advance()
		l.skipBlockComment(start)
		return l.NextToken()
	case ';':
		l.r.Advance()
		return l.finish(token.DATUM_COMMENT, "#;", start)
	case '<':
		return l.scanUnreadable(start)
	case 'b', 'B', 'o', 'O', 'd', 'D', 'x', 'X', 'i', 'I', 'e', 'E':
		return l.scanFlaggedNumber(start)
	default:
		d := diagnostics.New(diagnostics.ErrUnknownNotation, token.Token{Start: start, End: l.pos()}, "unknown notation '#%c'", l.r.Current())
		l.sink.Add(d)
		l.r.Advance()
		return l.NextToken()
	}
}

func (l *Lexer) scanHashWord(start token.Position, value bool) token.Token {
	l.r.Advance() // consume t/T or f/F
	return token.Token{Kind: token.LITERAL, Value: value, Text: boolText(value), Start: start, End: l.pos()}
}

func boolText(v bool) string {
	if v {
		return "#t"
	}
	return "#f"
}

func (l *Lexer) scanUnreadable(start token.Position) token.Token {
	for l.r.Current() != '>' && l.r.Current() != source.NUL {
		l.r.Advance()
	}
	if l.r.Current() == '>' {
		l.r.Advance()
	}
	d := diagnostics.New(diagnostics.ErrUnreadable, token.Token{Start: start, End: l.pos()}, "unreadable object notation '#<...>'")
	l.sink.Add(d)
	return l.NextToken()
}

func (l *Lexer) skipBlockComment(start token.Position) {
	depth := 1
	for depth > 0 {
		if l.r.Current() == source.NUL {
			d := diagnostics.New(diagnostics.ErrUnterminatedComment, token.Token{Start: start, End: l.pos()}, "unterminated block comment")
			l.sink.Add(d)
			return
		}
		if l.r.Current() == '#' && l.r.Peek() == '|' {
			l.r.Advance()
			l.r.Advance()
			depth++
			continue
		}
		if l.r.Current() == '|' && l.r.Peek() == '#' {
			l.r.Advance()
			l.r.Advance()
			depth--
			continue
		}
		l.r.Advance()
	}
}

func (l *Lexer) scanCharLiteral(start token.Position) token.Token {
	if isDelimiter(l.r.Current()) {
		ch := l.r.Current()
		l.r.Advance()
		return token.Token{Kind: token.LITERAL, Value: ch, Text: "#\\" + string(ch), Start: start, End: l.pos()}
	}
	if l.r.Current() == 'x' || l.r.Current() == 'X' {
		l.r.Save()
		l.r.Advance()
		if isHexDigit(l.r.Current()) {
			l.r.Discard()
			hex := l.readRun()
			cp, ok := parseHexCodepoint(hex)
			if !ok {
				d := diagnostics.New(diagnostics.ErrInvalidHexChar, token.Token{Start: start, End: l.pos()}, "invalid hex character literal #\\x%s", hex)
				l.sink.Add(d)
				return token.Token{Kind: token.LITERAL, Value: rune(0xFFFD), Text: "#\\x" + hex, Start: start, End: l.pos()}
			}
			return token.Token{Kind: token.LITERAL, Value: rune(cp), Text: "#\\x" + hex, Start: start, End: l.pos()}
		}
		l.r.Restore()
	}
	name := l.readRun()
	if len([]rune(name)) == 1 {
		r := []rune(name)[0]
		return token.Token{Kind: token.LITERAL, Value: r, Text: "#\\" + name, Start: start, End: l.pos()}
	}
	if r, ok := charNames[strings.ToLower(name)]; ok {
		return token.Token{Kind: token.LITERAL, Value: r, Text: "#\\" + name, Start: start, End: l.pos()}
	}
	d := diagnostics.New(diagnostics.ErrUnknownCharName, token.Token{Start: start, End: l.pos()}, "unknown character name %q", name)
	l.sink.Add(d)
	return token.Token{Kind: token.LITERAL, Value: rune(0xFFFD), Text: "#\\" + name, Start: start, End: l.pos()}
}

func parseHexCodepoint(hex string) (rune, bool) {
	var v int64
	if hex == "" {
		return 0, false
	}
	for _, c := range hex {
		d, ok := hexDigitValue(c)
		if !ok {
			return 0, false
		}
		v = v*16 + int64(d)
		if v > 0x10FFFF {
			return 0, false
		}
	}
	if v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
		return 0, false
	}
	return rune(v), true
}

func hexDigitValue(c rune) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func isHexDigit(ch rune) bool {
	_, ok := hexDigitValue(ch)
	return ok
}

// scanHashDelimitedString reads a #" or #' literal string, whose only
// escape is the doubled delimiter.
func (l *Lexer) scanHashDelimitedString(start token.Position, quote rune) token.Token {
	var b strings.Builder
	for {
		if l.r.Current() == source.NUL {
			d := diagnostics.New(diagnostics.ErrUnterminatedString, token.Token{Start: start, End: l.pos()}, "unterminated string literal")
			l.sink.Add(d)
			break
		}
		if l.r.Current() == quote {
			if l.r.Peek() == quote {
				b.WriteRune(quote)
				l.r.Advance()
				l.r.Advance()
				continue
			}
			l.r.Advance()
			break
		}
		b.WriteRune(l.r.Current())
		l.r.Advance()
	}
	return token.Token{Kind: token.LITERAL, Value: b.String(), Text: b.String(), Start: start, End: l.pos()}
}

func (l *Lexer) scanString(start token.Position) token.Token {
	l.r.Advance() // opening quote
	var b strings.Builder
	for {
		switch l.r.Current() {
		case source.NUL:
			d := diagnostics.New(diagnostics.ErrUnterminatedString, token.Token{Start: start, End: l.pos()}, "unterminated string literal")
			l.sink.Add(d)
			return token.Token{Kind: token.LITERAL, Value: b.String(), Text: b.String(), Start: start, End: l.pos()}
		case '"':
			l.r.Advance()
			return token.Token{Kind: token.LITERAL, Value: b.String(), Text: b.String(), Start: start, End: l.pos()}
		case '\\':
			l.r.Advance()
			l.scanEscape(&b, start)
		default:
			b.WriteRune(l.r.Current())
			l.r.Advance()
		}
	}
}

func (l *Lexer) scanEscape(b *strings.Builder, stringStart token.Position) {
	ch := l.r.Current()
	switch ch {
	case 'n':
		b.WriteRune('\n')
		l.r.Advance()
	case 't':
		b.WriteRune('\t')
		l.r.Advance()
	case 'r':
		b.WriteRune('\r')
		l.r.Advance()
	case 'b':
		b.WriteRune('\b')
		l.r.Advance()
	case 'a':
		b.WriteRune(0x07)
		l.r.Advance()
	case 'f':
		b.WriteRune(0x0C)
		l.r.Advance()
	case 'v':
		b.WriteRune(0x0B)
		l.r.Advance()
	case '\\':
		b.WriteRune('\\')
		l.r.Advance()
	case '"':
		b.WriteRune('"')
		l.r.Advance()
	case 'e':
		b.WriteRune(0x1B)
		l.r.Advance()
	case 'x':
		l.r.Advance()
		var hex strings.Builder
		for isHexDigit(l.r.Current()) {
			hex.WriteRune(l.r.Current())
			l.r.Advance()
		}
		if l.r.Current() != ';' {
			d := diagnostics.New(diagnostics.ErrInvalidHexEscape, token.Token{Start: stringStart, End: l.pos()}, "hex escape must be terminated with ';'")
			l.sink.Add(d)
			b.WriteRune('?')
			return
		}
		l.r.Advance() // ;
		cp, ok := parseHexCodepoint(hex.String())
		if !ok {
			d := diagnostics.New(diagnostics.ErrInvalidHexEscape, token.Token{Start: stringStart, End: l.pos()}, "invalid hex escape \\x%s;", hex.String())
			l.sink.Add(d)
			b.WriteRune('?')
			return
		}
		b.WriteRune(rune(cp))
	case '\n', '\x85':
		l.r.Advance() // line-continuation: bare newline
	case ' ', '\t':
		l.r.Save()
		for l.r.Current() == ' ' || l.r.Current() == '\t' {
			l.r.Advance()
		}
		if l.r.Current() == '\n' || l.r.Current() == '\x85' {
			l.r.Discard()
			l.r.Advance()
			return
		}
		l.r.Restore()
		d := diagnostics.New(diagnostics.ErrUnknownEscapeCharacter, token.Token{Start: stringStart, End: l.pos()}, "unknown escape character %q", ch)
		l.sink.Add(d)
		b.WriteRune('?')
		l.r.Advance()
	default:
		d := diagnostics.New(diagnostics.ErrUnknownEscapeCharacter, token.Token{Start: stringStart, End: l.pos()}, "unknown escape character %q", ch)
		l.sink.Add(d)
		b.WriteRune('?')
		l.r.Advance()
	}
}

// numericValue is an alias for numeric.Number, the payload type of a
// number token.
type numericValue = numeric.Number

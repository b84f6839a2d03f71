// Package lexer converts pgs source text into a stream of tokens.
//
// A Lexer is created by calling New() with the source text as input. Tokens
// are then read one at a time using Next(), until an EOF token is returned.
// Whitespace and comments are discarded. The lexer fails on the first invalid
// construct: an unterminated string, a malformed number, or an illegal
// character.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/delbato/pragmatic-script/errz"
	"github.com/delbato/pragmatic-script/token"
)

// Lexer is used to tokenize pgs source code.
type Lexer struct {
	// The input source code
	input string

	// Current position in input (points to current char)
	position int

	// Current reading position in input (after current char)
	readPosition int

	// Current char under examination
	ch rune

	// Byte width of the current char
	chWidth int

	// 0-indexed line number of the current char
	line int

	// Byte offset at which the current line started
	lineStart int

	// The filename of the input, used in positions for diagnostics
	filename string
}

// New returns a Lexer for the given input source code.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// SetFilename sets the filename associated with the input.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the filename associated with the input.
func (l *Lexer) Filename() string {
	return l.filename
}

// Next returns the next token from the input, advancing the lexer. Once the
// input is exhausted, tokens with type token.EOF are returned indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()

	var tok token.Token
	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			tok = l.newTwoCharToken(token.EQ)
		} else {
			tok = l.newToken(token.ASSIGN)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.newTwoCharToken(token.NOT_EQ)
		} else {
			tok = l.newToken(token.BANG)
		}
	case '<':
		if l.peekChar() == '=' {
			tok = l.newTwoCharToken(token.LT_EQUALS)
		} else {
			tok = l.newToken(token.LT)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.newTwoCharToken(token.GT_EQUALS)
		} else {
			tok = l.newToken(token.GT)
		}
	case ':':
		if l.peekChar() == ':' {
			tok = l.newTwoCharToken(token.DOUBLECOLON)
		} else {
			tok = l.newToken(token.COLON)
		}
	case '+':
		tok = l.newToken(token.PLUS)
	case '-':
		tok = l.newToken(token.MINUS)
	case '*':
		tok = l.newToken(token.ASTERISK)
	case '/':
		tok = l.newToken(token.SLASH)
	case '~':
		tok = l.newToken(token.TILDE)
	case '.':
		tok = l.newToken(token.PERIOD)
	case ',':
		tok = l.newToken(token.COMMA)
	case ';':
		tok = l.newToken(token.SEMICOLON)
	case '(':
		tok = l.newToken(token.LPAREN)
	case ')':
		tok = l.newToken(token.RPAREN)
	case '{':
		tok = l.newToken(token.LBRACE)
	case '}':
		tok = l.newToken(token.RBRACE)
	case '"':
		return l.readString()
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
		tok.StartPosition = l.currentPosition()
		tok.EndPosition = tok.StartPosition
		return tok, nil
	default:
		if isLetter(l.ch) {
			return l.readIdentifier(), nil
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = l.newToken(token.ILLEGAL)
		return tok, l.syntaxError(tok.StartPosition, "illegal character %q", l.ch)
	}
	l.readChar()
	return tok, nil
}

// GetLineText returns the full line of source text on which the given token
// appears. Used for inclusion in error messages.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	end := strings.IndexRune(l.input[start:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : start+end]
}

func (l *Lexer) newToken(typ token.Type) token.Token {
	start := l.currentPosition()
	return token.Token{
		Type:          typ,
		Literal:       string(l.ch),
		StartPosition: start,
		EndPosition:   start,
	}
}

func (l *Lexer) newTwoCharToken(typ token.Type) token.Token {
	start := l.currentPosition()
	ch := l.ch
	l.readChar()
	return token.Token{
		Type:          typ,
		Literal:       string(ch) + string(l.ch),
		StartPosition: start,
		EndPosition:   start.Advance(1),
	}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.currentPosition()
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[position:l.position]
	return token.Token{
		Type:          token.LookupIdentifier(literal),
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(len(literal) - 1),
	}
}

// readNumber reads an integer or float literal. A float contains exactly one
// decimal point with digits on both sides.
func (l *Lexer) readNumber() (token.Token, error) {
	start := l.currentPosition()
	position := l.position
	typ := token.INT
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.FLOAT
		l.readChar() // consume "."
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	literal := l.input[position:l.position]
	// A trailing period or a second period makes the literal malformed,
	// e.g. "1." or "1.2.3"
	if l.ch == '.' {
		return token.Token{}, l.syntaxError(start, "malformed number literal %q",
			literal+".")
	}
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(len(literal) - 1),
	}, nil
}

// readString reads a double-quoted string literal, processing the escape
// sequences \n, \t, \\, and \". The returned token's literal holds the
// unescaped text without the surrounding quotes.
func (l *Lexer) readString() (token.Token, error) {
	start := l.currentPosition()
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case '"':
			l.readChar() // consume the closing quote
			return token.Token{
				Type:          token.STRING,
				Literal:       sb.String(),
				StartPosition: start,
				EndPosition:   l.currentPosition(),
			}, nil
		case 0, '\n':
			return token.Token{}, l.syntaxError(start, "unterminated string literal")
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			case 0:
				return token.Token{}, l.syntaxError(start, "unterminated string literal")
			default:
				return token.Token{}, l.syntaxError(l.currentPosition(),
					"invalid escape sequence \"\\%c\"", l.ch)
			}
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipLineComment()
		case l.ch == '#':
			l.skipLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	l.readChar() // consume "/"
	l.readChar() // consume "*"
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.readPosition
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chWidth = 0
		l.position = l.readPosition
		return
	}
	r, width := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.chWidth = width
	l.position = l.readPosition
	l.readPosition += width
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) currentPosition() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.filename,
	}
}

func (l *Lexer) syntaxError(pos token.Position, format string, args ...any) error {
	return errz.New(errz.ErrLex, fmt.Sprintf(format, args...), errz.SourceLocation{
		Filename: pos.File,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
		Source:   l.GetLineText(token.Token{StartPosition: pos}),
	})
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

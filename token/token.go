// Package token defines language keywords and tokens used when lexing source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// Note: this assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	ASSIGN      Type = "="
	ASTERISK    Type = "*"
	BANG        Type = "!"
	BREAK       Type = "BREAK"
	COLON       Type = ":"
	COMMA       Type = ","
	CONTAINER   Type = "CONT"
	CONTINUE    Type = "CONTINUE"
	DOUBLECOLON Type = "::"
	ELSE        Type = "ELSE"
	EOF         Type = "EOF"
	EQ          Type = "=="
	FALSE       Type = "FALSE"
	FLOAT       Type = "FLOAT"
	FOR         Type = "FOR"
	FUNCTION    Type = "FN"
	GT          Type = ">"
	GT_EQUALS   Type = ">="
	IDENT       Type = "IDENT"
	IF          Type = "IF"
	ILLEGAL     Type = "ILLEGAL"
	IMPL        Type = "IMPL"
	IMPORT      Type = "IMPORT"
	IN          Type = "IN"
	INT         Type = "INT"
	LBRACE      Type = "{"
	LOOP        Type = "LOOP"
	LPAREN      Type = "("
	LT          Type = "<"
	LT_EQUALS   Type = "<="
	MINUS       Type = "-"
	MODULE      Type = "MOD"
	NOT_EQ      Type = "!="
	PERIOD      Type = "."
	PLUS        Type = "+"
	RBRACE      Type = "}"
	RETURN      Type = "RETURN"
	RPAREN      Type = ")"
	SEMICOLON   Type = ";"
	SLASH       Type = "/"
	STRING      Type = "STRING"
	TILDE       Type = "~"
	TRUE        Type = "TRUE"
	VAR         Type = "VAR"
	WHILE       Type = "WHILE"
)

// Reserved keywords
var keywords = map[string]Type{
	"break":    BREAK,
	"cont":     CONTAINER,
	"continue": CONTINUE,
	"else":     ELSE,
	"false":    FALSE,
	"fn":       FUNCTION,
	"for":      FOR,
	"if":       IF,
	"impl":     IMPL,
	"import":   IMPORT,
	"in":       IN,
	"loop":     LOOP,
	"mod":      MODULE,
	"return":   RETURN,
	"true":     TRUE,
	"var":      VAR,
	"while":    WHILE,
}

// LookupIdentifier determines whether an identifier is a keyword or not.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

package parser

import "github.com/delbato/pragmatic-script/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	EQUALS      // == or !=
	LESSGREATER // < <= > >=
	SUM         // + or -
	PRODUCT     // * or /
	PREFIX      // -x or !x
	CALL        // f(x)
	FIELD       // x.y
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.ASSIGN:    ASSIGN,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.LT_EQUALS: LESSGREATER,
	token.GT:        LESSGREATER,
	token.GT_EQUALS: LESSGREATER,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.SLASH:     PRODUCT,
	token.ASTERISK:  PRODUCT,
	token.LPAREN:    CALL,
	token.PERIOD:    FIELD,
}

package parser

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename attaches a filename to the parser's lexer, so that
// error locations name the source file.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.l.SetFilename(filename)
	}
}

// WithMaxDepth overrides the maximum expression nesting depth.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

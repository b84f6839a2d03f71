package dis

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/delbato/pragmatic-script/compiler"
	"github.com/delbato/pragmatic-script/parser"
	"github.com/delbato/pragmatic-script/resolver"
)

func TestDisassembleChunk(t *testing.T) {
	parsed, err := parser.Parse(context.Background(),
		`fn: main() ~ int { return 2 + 3; }`)
	assert.Nil(t, err)
	resolved, err := resolver.Resolve(parsed)
	assert.Nil(t, err)
	program, err := compiler.Compile(resolved)
	assert.Nil(t, err)

	var buf bytes.Buffer
	assert.Nil(t, Program(&buf, program, Options{}))
	out := buf.String()

	assert.True(t, strings.Contains(out, "root::main"))
	assert.True(t, strings.Contains(out, "LOAD_CONST"))
	assert.True(t, strings.Contains(out, "(2)"))
	assert.True(t, strings.Contains(out, "BINARY_OP"))
	assert.True(t, strings.Contains(out, "RETURN_VALUE"))
}

package debloat_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/typeinfer/internal/debloat"
)

func TestRunRenamesShadowedBlockScopedVariable(t *testing.T) {
	src := []byte(`function foo(){ let a = 1; { let a = 2; a = 3; } let a = 4; }`)

	out, err := debloat.Run(context.Background(), src, "foo.js", "foo")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.True(t, strings.HasPrefix(lines[0], "function foo(){"))
	assertLineHasRename(t, out, "a_0_0 = 1")
	assertLineHasRename(t, out, "a_1_1 = 2")
	assertLineHasRename(t, out, "a_1_1 = 3")
	assertLineHasRename(t, out, "a_0_1 = 4")
	assert.Equal(t, "}", lines[len(lines)-1])
}

func TestRunFlattensIfElseAndDropsCondition(t *testing.T) {
	src := []byte(`function foo(a){ if (a) { a = 1; } else { a = "s"; } a + 1; }`)

	out, err := debloat.Run(context.Background(), src, "foo.js", "foo")
	require.NoError(t, err)

	assert.NotContains(t, out, "if_statement")
	assert.NotContains(t, out, "if (")
	assertLineHasRename(t, out, `= 1`)
	assertLineHasRename(t, out, `= "s"`)
}

func TestRunRenamesFormalParameterCanonically(t *testing.T) {
	src := []byte(`function foo(a){ let x = a; return x; }`)

	out, err := debloat.Run(context.Background(), src, "foo.js", "foo")
	require.NoError(t, err)

	assertLineHasRename(t, out, "x_0_0 = a_1_1")
	assertLineHasRename(t, out, "return x_0_0")
}

func TestRunDoesNotRenameCalleeIdentifier(t *testing.T) {
	src := []byte(`function foo(a){ bar(a); }`)

	out, err := debloat.Run(context.Background(), src, "foo.js", "foo")
	require.NoError(t, err)

	assert.Contains(t, out, "bar(a_1_1)")
}

func TestRunEveryStatementHasLocAndParentIDAnnotation(t *testing.T) {
	src := []byte(`function foo(a){ let x = 1; return x; }`)

	out, err := debloat.Run(context.Background(), src, "foo.js", "foo")
	require.NoError(t, err)

	for _, line := range strings.Split(out, "\n") {
		if line == "}" || strings.HasPrefix(line, "function ") {
			continue
		}
		assert.Contains(t, line, "[Loc]")
		assert.Contains(t, line, "[Parent-ID]")
	}
}

func TestRunUnknownTargetFunctionErrors(t *testing.T) {
	src := []byte(`function bar(){ return 1; }`)
	_, err := debloat.Run(context.Background(), src, "foo.js", "foo")
	assert.Error(t, err)
}

func assertLineHasRename(t *testing.T, out, substr string) {
	t.Helper()
	assert.Contains(t, out, substr)
}

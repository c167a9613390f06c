package callsite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/typeinfer/internal/callsite"
	"github.com/oxhq/typeinfer/internal/kind"
	"github.com/oxhq/typeinfer/internal/tsnode"
)

func parse(t *testing.T, src string) *tsnode.Tree {
	t.Helper()
	tree, err := tsnode.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestGatherInfersLiteralArgumentKinds(t *testing.T) {
	tree := parse(t, `foo(true, null, undefined, 1, 2n, "s", Symbol("k"), {a:1});`)

	calls := callsite.Gather(tree.Root(), "foo")
	require.Len(t, calls, 1)
	assert.Equal(t, []kind.Kind{
		kind.Bool, kind.Null, kind.Undefined, kind.Number,
		kind.BigInt, kind.String, kind.Symbol, kind.Object,
	}, calls[0].Kinds)
}

func TestGatherSkipsNonLiteralArguments(t *testing.T) {
	tree := parse(t, `foo(x, 1);`)

	calls := callsite.Gather(tree.Root(), "foo")
	require.Len(t, calls, 1)
	assert.Equal(t, []kind.Kind{kind.Number}, calls[0].Kinds)
}

func TestGatherIgnoresUnrelatedCalls(t *testing.T) {
	tree := parse(t, `bar(1); foo(2);`)

	calls := callsite.Gather(tree.Root(), "foo")
	require.Len(t, calls, 1)
	assert.Equal(t, []kind.Kind{kind.Number}, calls[0].Kinds)
}

func TestGatherFindsMultipleCallsites(t *testing.T) {
	tree := parse(t, `foo(1); foo("s");`)

	calls := callsite.Gather(tree.Root(), "foo")
	require.Len(t, calls, 2)
	assert.Equal(t, []kind.Kind{kind.Number}, calls[0].Kinds)
	assert.Equal(t, []kind.Kind{kind.String}, calls[1].Kinds)
}

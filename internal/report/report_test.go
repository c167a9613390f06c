package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/typeinfer/internal/report"
)

type fakeStringer string

func (f fakeStringer) String() string { return string(f) }

func TestConsoleReporterAccumulatesAndWrites(t *testing.T) {
	var buf bytes.Buffer
	r := report.NewConsoleReporter(&buf)

	v := report.Violation{
		KindLeft:   fakeStringer("Number"),
		Op:         fakeStringer("-"),
		KindRight:  fakeStringer("Bool"),
		Loc:        "foo.js:3:5",
		SourceLine: "x - a;",
		Severity:   report.SeverityArith,
	}
	r.Report(v)

	assert.Contains(t, buf.String(), "arith-violation")
	assert.Contains(t, buf.String(), "Number - Bool")
	assert.Contains(t, buf.String(), "foo.js:3:5")

	hist := r.History()
	require.Len(t, hist, 1)
	assert.Equal(t, v, hist[0])
}

func TestHistoryIsAppendOnlyAndIsolatedFromCaller(t *testing.T) {
	var buf bytes.Buffer
	r := report.NewConsoleReporter(&buf)
	r.Report(report.Violation{KindLeft: fakeStringer("a"), Op: fakeStringer("+"), KindRight: fakeStringer("b")})

	hist := r.History()
	hist[0].Loc = "mutated"

	assert.NotEqual(t, "mutated", r.History()[0].Loc)
}

func TestSourceLineReturnsRequestedRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.js")
	require.NoError(t, os.WriteFile(path, []byte("let x = 1;\nx - a;\nreturn x;\n"), 0o644))

	line, err := report.SourceLine(path, 2)
	require.NoError(t, err)
	assert.Equal(t, "x - a;", line)
}

func TestSourceLineOutOfRangeIsEmptyNotError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.js")
	require.NoError(t, os.WriteFile(path, []byte("let x = 1;\n"), 0o644))

	line, err := report.SourceLine(path, 50)
	require.NoError(t, err)
	assert.Equal(t, "", line)
}

func TestParseLocRow(t *testing.T) {
	file, row, err := report.ParseLocRow("foo.js:12:5")
	require.NoError(t, err)
	assert.Equal(t, "foo.js", file)
	assert.Equal(t, 12, row)
}

func TestParseLocRowMalformed(t *testing.T) {
	_, _, err := report.ParseLocRow("not-a-loc")
	assert.Error(t, err)
}

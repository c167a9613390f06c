package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/typeinfer/internal/kind"
	"github.com/oxhq/typeinfer/internal/report"
	"github.com/oxhq/typeinfer/internal/store"
)

func openTestDB(t *testing.T) *store.DBConn {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.db")
	conn, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStartAndFinishRunPersists(t *testing.T) {
	conn := openTestDB(t)

	runID, err := store.StartRun(conn.DB, "foo.js", "foo", "foo.debloated.js", 1000)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	require.NoError(t, store.FinishRun(conn.DB, runID, "ok", 2000))

	var status string
	require.NoError(t, conn.DB.QueryRow(`SELECT status FROM runs WHERE id = ?`, runID).Scan(&status))
	assert.Equal(t, "ok", status)
}

func TestSaveViolationsPersistsEveryField(t *testing.T) {
	conn := openTestDB(t)
	runID, err := store.StartRun(conn.DB, "foo.js", "foo", "", 1000)
	require.NoError(t, err)

	v := report.Violation{
		KindLeft: kind.Number, Op: kind.Sub, KindRight: kind.Bool,
		Loc: "foo.js:3:5", SourceLine: "x - a;", Severity: report.SeverityArith,
	}
	require.NoError(t, store.SaveViolations(conn.DB, runID, []report.Violation{v}))

	var count int
	require.NoError(t, conn.DB.QueryRow(`SELECT COUNT(*) FROM violations WHERE run_id = ?`, runID).Scan(&count))
	assert.Equal(t, 1, count)

	var kindLeft, op string
	require.NoError(t, conn.DB.QueryRow(`SELECT kind_left, op FROM violations WHERE run_id = ?`, runID).Scan(&kindLeft, &op))
	assert.Equal(t, "number", kindLeft)
	assert.Equal(t, "-", op)
}

func TestSaveDiagnosticsSplitsCodeAndMessage(t *testing.T) {
	conn := openTestDB(t)
	runID, err := store.StartRun(conn.DB, "foo.js", "foo", "", 1000)
	require.NoError(t, err)

	require.NoError(t, store.SaveDiagnostics(conn.DB, runID, []string{
		"[ERR_UNKNOWN_VARIABLE] read of undeclared variable \"z\" at 2:3",
	}, 1500))

	var code, message string
	require.NoError(t, conn.DB.QueryRow(`SELECT code, message FROM diagnostics WHERE run_id = ?`, runID).Scan(&code, &message))
	assert.Equal(t, report.ErrUnknownVariable, code)
	assert.Contains(t, message, `read of undeclared variable "z"`)
}

func TestQuickCheckOnFreshDatabase(t *testing.T) {
	conn := openTestDB(t)
	assert.NoError(t, store.QuickCheck(conn.DB))
}

package report_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/typeinfer/internal/report"
)

func TestCLIError_JSON(t *testing.T) {
	err := report.Wrap(report.ErrParse, "bad", os.ErrInvalid)
	ce, ok := err.(report.CLIError)
	require.True(t, ok, "Wrap did not return a CLIError")

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(ce.JSON()), &decoded))
	assert.Equal(t, report.ErrParse, decoded["code"])
	assert.Equal(t, "invalid argument", decoded["detail"])
}

func TestCLIError_ErrorStringOmitsDetailWhenAbsent(t *testing.T) {
	err := report.Wrap(report.ErrAnnotationMissing, "statement has no reachable annotation", nil)
	assert.Equal(t, "statement has no reachable annotation", err.Error())
}

func TestCLIError_ErrorStringIncludesDetailWhenPresent(t *testing.T) {
	err := report.Wrap(report.ErrIO, "cannot open file", os.ErrNotExist)
	assert.Contains(t, err.Error(), "cannot open file")
	assert.Contains(t, err.Error(), "file does not exist")
}

// Package config resolves the target function, input path, and output
// locations from CLI flags, falling back to environment variables (and an
// optional .env file) when a flag is left unset.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/oxhq/typeinfer/internal/report"
)

func init() {
	// Best-effort: a missing .env is normal outside development, never
	// fatal.
	_ = godotenv.Load()
}

// Config is one analysis invocation's resolved settings.
type Config struct {
	// InputPath is the SL source file to analyze.
	InputPath string
	// TargetFunc is the function to debloat and interpret.
	TargetFunc string
	// DebloatedOutputPath is where the debloated source is written.
	// Defaults to InputPath with its extension replaced by ".debloated.js".
	DebloatedOutputPath string
	// DumpPath, if set, receives a textual dump of the pre-order node
	// sequence for the target function — debugging aid only.
	DumpPath string
	// DBPath is where the SQLite violation-history store lives. Empty
	// disables persistence.
	DBPath string
	// ShowDiff prints a unified diff between the original and debloated
	// source.
	ShowDiff bool
	// JSONOutput renders violations and diagnostics as JSON instead of the
	// reporter's console form.
	JSONOutput bool
}

// Parse builds a Config from args (normally os.Args[1:]), falling back to
// TYPEINFER_FUNC, TYPEINFER_OUT, TYPEINFER_DUMP and TYPEINFER_DB for the
// matching flags left unset; --diff and --json have no environment fallback.
func Parse(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("typeinfer", pflag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	targetFunc := fs.StringP("func", "f", envDefault("TYPEINFER_FUNC", ""),
		"Target function name to analyze. (Required)")
	debloatedOut := fs.StringP("out", "o", envDefault("TYPEINFER_OUT", ""),
		"Path to write the debloated source to. Defaults to <input>.debloated.js.")
	dump := fs.String("dump", envDefault("TYPEINFER_DUMP", ""),
		"Path to write a pre-order node dump to, for debugging.")
	dbPath := fs.String("db", envDefault("TYPEINFER_DB", ""),
		"SQLite path for the persisted violation history. Empty disables persistence.")
	showDiff := fs.BoolP("diff", "d", false, "Show a unified diff between the original and debloated source.")
	jsonOutput := fs.BoolP("json", "j", false, "Output violations and diagnostics as JSON.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, report.Wrap(report.ErrUnsupported, "expected exactly one input file argument", nil)
	}
	if *targetFunc == "" {
		return nil, report.Wrap(report.ErrUnsupported, "--func is required", nil)
	}

	input := fs.Arg(0)
	out := *debloatedOut
	if out == "" {
		out = defaultDebloatedPath(input)
	}

	return &Config{
		InputPath:           input,
		TargetFunc:          *targetFunc,
		DebloatedOutputPath: out,
		DumpPath:            *dump,
		DBPath:              *dbPath,
		ShowDiff:            *showDiff,
		JSONOutput:          *jsonOutput,
	}, nil
}

func envDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func defaultDebloatedPath(input string) string {
	const suffix = ".debloated.js"
	for i := len(input) - 1; i >= 0; i-- {
		if input[i] == '.' {
			return input[:i] + suffix
		}
		if input[i] == '/' {
			break
		}
	}
	return input + suffix
}

func printUsage(fs *pflag.FlagSet) {
	os.Stderr.WriteString("\nUsage: typeinfer [flags] <input.js>\n")
	os.Stderr.WriteString("\nFlags:\n")
	fs.PrintDefaults()
}

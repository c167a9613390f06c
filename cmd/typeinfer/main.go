// Command typeinfer detects dynamic-type violations in SL (JavaScript)
// source by debloating a target function into a straight-line, annotated
// statement stream and abstractly interpreting it under a closed type-kind
// lattice.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/typeinfer/internal/cli"
	"github.com/oxhq/typeinfer/internal/config"
	"github.com/oxhq/typeinfer/internal/report"
	"github.com/oxhq/typeinfer/internal/store"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var db *store.DBConn
	if cfg.DBPath != "" {
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			exitWithError(err, cfg.JSONOutput)
		}
		defer db.Close()
	}

	runner := cli.NewRunner(cfg)
	res, err := runner.Run(context.Background(), db)
	if err != nil {
		exitWithError(err, cfg.JSONOutput)
	}

	if cfg.ShowDiff {
		printDiff(cfg.InputPath, res.DebloatedSource)
	}

	if cfg.JSONOutput {
		printJSON(res)
	} else {
		printHuman(res)
	}
}

func exitWithError(err error, asJSON bool) {
	cliErr, ok := err.(report.CLIError)
	if !ok {
		cliErr = report.CLIError{Code: report.ErrIO, Message: err.Error()}
	}
	if asJSON {
		fmt.Fprintln(os.Stderr, cliErr.JSON())
	} else {
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", cliErr.Code, cliErr.Error())
	}
	os.Exit(1)
}

func printDiff(originalPath, debloated string) {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot read %s for diff: %v\n", originalPath, err)
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(debloated),
		FromFile: originalPath,
		ToFile:   originalPath + ".debloated",
		Context:  3,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot render diff: %v\n", err)
		return
	}
	fmt.Print(diff)
}

func printHuman(res *cli.Result) {
	if len(res.Violations) == 0 {
		fmt.Printf("✓ %s — no type violations found (%d call site(s) analyzed)\n", res.SourceFile, res.CallSites)
	}
	for _, v := range res.Violations {
		fmt.Println(report.Format(v))
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, d)
	}
	if res.RunID != "" {
		fmt.Fprintf(os.Stderr, "run %s persisted\n", res.RunID)
	}
}

func printJSON(res *cli.Result) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		exitWithError(report.Wrap(report.ErrIO, "failed to encode result", err), false)
	}
	fmt.Println(string(b))
}

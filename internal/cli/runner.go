// Package cli wires the pipeline together: scan the target, harvest
// call-site argument kinds, debloat the target function, interpret it once
// per harvested call site, and route the results to a Reporter and (when
// configured) a persisted run in internal/store.
package cli

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/oxhq/typeinfer/internal/callsite"
	"github.com/oxhq/typeinfer/internal/config"
	"github.com/oxhq/typeinfer/internal/debloat"
	"github.com/oxhq/typeinfer/internal/interp"
	"github.com/oxhq/typeinfer/internal/kind"
	"github.com/oxhq/typeinfer/internal/report"
	"github.com/oxhq/typeinfer/internal/scan"
	"github.com/oxhq/typeinfer/internal/store"
	"github.com/oxhq/typeinfer/internal/tsnode"
)

// Result is one analysis's complete output, ready for the CLI to render or
// the JSON encoder to marshal.
type Result struct {
	RunID           string             `json:"run_id,omitempty"`
	SourceFile      string             `json:"source_file"`
	DebloatedSource string             `json:"-"`
	CallSites       int                `json:"call_sites"`
	Violations      []report.Violation `json:"violations"`
	Diagnostics     []string           `json:"diagnostics"`
}

// Runner owns the configuration a single invocation was built from.
type Runner struct {
	cfg *config.Config
}

// NewRunner builds a Runner from a resolved Config.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run executes the full pipeline against cfg.InputPath and returns its
// Result. db may be nil, in which case nothing is persisted.
func (r *Runner) Run(ctx context.Context, db *store.DBConn) (*Result, error) {
	files, err := scan.Resolve(r.cfg.InputPath, "")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, report.Wrap(report.ErrIO, "no source files found at "+r.cfg.InputPath, nil)
	}
	// A directory target analyzes whichever file defines the target
	// function first; a single-file target is used as-is.
	file := files[0]
	if len(files) > 1 {
		if found, ok := findDefiningFile(ctx, files, r.cfg.TargetFunc); ok {
			file = found
		}
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return nil, report.Wrap(report.ErrIO, "cannot read input file", err)
	}

	tree, err := tsnode.Parse(ctx, src)
	if err != nil {
		return nil, report.Wrap(report.ErrParse, "cannot parse input file", err)
	}
	calls := callsite.Gather(tree.Root(), r.cfg.TargetFunc)

	if r.cfg.DumpPath != "" {
		fn := findFunctionDecl(tree.Root(), r.cfg.TargetFunc)
		if fn == nil {
			tree.Close()
			return nil, report.Wrap(report.ErrUnsupported, "cannot dump: target function not found: "+r.cfg.TargetFunc, nil)
		}
		if err := os.WriteFile(r.cfg.DumpPath, []byte(tsnode.Dump(fn)), 0o644); err != nil {
			tree.Close()
			return nil, report.Wrap(report.ErrIO, "cannot write node dump", err)
		}
	}
	tree.Close()

	debloated, err := debloat.Run(ctx, src, file, r.cfg.TargetFunc)
	if err != nil {
		return nil, err
	}
	if r.cfg.DebloatedOutputPath != "" {
		if err := os.WriteFile(r.cfg.DebloatedOutputPath, []byte(debloated), 0o644); err != nil {
			return nil, report.Wrap(report.ErrIO, "cannot write debloated source", err)
		}
	}

	reporter := report.NewConsoleReporter(&bytes.Buffer{})
	diag := interp.NewStreamDiagnostics(&bytes.Buffer{})

	debloatedTree, err := tsnode.Parse(ctx, []byte(debloated))
	if err != nil {
		return nil, report.Wrap(report.ErrParse, "cannot parse debloated source", err)
	}
	defer debloatedTree.Close()
	fn := findFunctionDecl(debloatedTree.Root(), r.cfg.TargetFunc)
	if fn == nil {
		return nil, report.Wrap(report.ErrUnsupported, "debloated output has no target function: "+r.cfg.TargetFunc, nil)
	}

	paramSets := callArgumentKindSets(calls)
	for _, params := range paramSets {
		ip := interp.New(reporter, diag, file)
		if err := ip.RunFunc(fn, params); err != nil {
			return nil, err
		}
	}

	res := &Result{
		SourceFile:      file,
		DebloatedSource: debloated,
		CallSites:       len(calls),
		Violations:      reporter.History(),
		Diagnostics:     diag.Seen(),
	}

	if db != nil {
		runID, err := store.StartRun(db.DB, file, r.cfg.TargetFunc, r.cfg.DebloatedOutputPath, nowUnix())
		if err != nil {
			return nil, err
		}
		res.RunID = runID
		if err := store.SaveViolations(db.DB, runID, res.Violations); err != nil {
			return nil, err
		}
		if err := store.SaveDiagnostics(db.DB, runID, res.Diagnostics, nowUnix()); err != nil {
			return nil, err
		}
		status := "ok"
		if len(res.Violations) > 0 {
			status = "violations"
		}
		if err := store.FinishRun(db.DB, runID, status, nowUnix()); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// callArgumentKindSets returns one parameter-kind slice per harvested call
// site, or a single nil slice (every parameter defaults to Undefined) when
// the target function is never called — the interpreter still needs to run
// once so structural violations inside the body surface regardless.
func callArgumentKindSets(calls []callsite.Call) [][]kind.Kind {
	if len(calls) == 0 {
		return [][]kind.Kind{nil}
	}
	sets := make([][]kind.Kind, len(calls))
	for i, c := range calls {
		sets[i] = c.Kinds
	}
	return sets
}

func findFunctionDecl(root *tsnode.Node, name string) *tsnode.Node {
	if root.Kind() == "function_declaration" {
		if n := root.ChildByFieldName("name"); n != nil && n.Text() == name {
			return root
		}
	}
	for _, c := range root.ChildrenPreOrder() {
		if c.Kind() != "function_declaration" {
			continue
		}
		if n := c.ChildByFieldName("name"); n != nil && n.Text() == name {
			return c
		}
	}
	return nil
}

func nowUnix() int64 {
	return time.Now().Unix()
}

func findDefiningFile(ctx context.Context, files []string, targetFunc string) (string, bool) {
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		tree, err := tsnode.Parse(ctx, src)
		if err != nil {
			continue
		}
		found := findFunctionDecl(tree.Root(), targetFunc) != nil
		tree.Close()
		if found {
			return f, true
		}
	}
	return "", false
}

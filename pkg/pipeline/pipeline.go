// Package pipeline orchestrates a full analysis run: graph construction,
// cycle detection, installation ordering, and DOT export, in that order.
// Each run gets a unique ID and reports stage boundaries through
// pkg/observability.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"depviz/pkg/errors"
	"depviz/pkg/graph"
	"depviz/pkg/observability"
	"depviz/pkg/provider"
	"depviz/pkg/render"
)

// Stage names the point at which a run stops. Stages are cumulative:
// each one includes everything before it.
type Stage string

const (
	StageBuild  Stage = "build"  // graph construction only
	StageCycles Stage = "cycles" // + cycle detection
	StageOrder  Stage = "order"  // + installation order
	StageExport Stage = "export" // + DOT export (the default)
)

// ParseStage validates a stage name from user input.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageBuild, StageCycles, StageOrder, StageExport:
		return Stage(s), nil
	case "":
		return StageExport, nil
	}
	return "", errors.New(errors.ErrCodeInvalidStage,
		"unknown stage %q: want build, cycles, order, or export", s)
}

// Includes reports whether running to stage s covers stage other.
func (s Stage) Includes(other Stage) bool {
	rank := map[Stage]int{StageBuild: 0, StageCycles: 1, StageOrder: 2, StageExport: 3}
	return rank[s] >= rank[other]
}

// Options configures one analysis run.
type Options struct {
	Package  string
	MaxDepth int
	Filter   string
	Stage    Stage // zero value runs everything

	// Logf receives traversal diagnostics. Nil discards them.
	Logf func(format string, args ...any)
}

// Result is the outcome of one run. Fields past the requested stage stay
// at their zero values.
type Result struct {
	RunID    string
	Graph    *graph.Graph
	Cycles   []graph.Cycle
	Order    []string
	Excluded []string
	DOT      string
	Elapsed  time.Duration
}

// Runner executes analysis runs against a dependency provider.
type Runner struct {
	provider graph.Provider
}

// NewRunner creates a Runner using p for dependency lookup.
func NewRunner(p graph.Provider) *Runner {
	return &Runner{provider: p}
}

// Run executes the pipeline up to opts.Stage. The context is honored
// between stages and inside graph construction; a cancelled run returns
// the context error with no result.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	stage := opts.Stage
	if stage == "" {
		stage = StageExport
	}
	if err := errors.ValidatePackageName(opts.Package); err != nil {
		return nil, err
	}
	// Providers return normalized dependency names; the root must match
	// that spelling or it becomes a second node for the same package.
	pkg := provider.Normalize(opts.Package)

	res := &Result{RunID: uuid.NewString()}
	start := time.Now()
	events := observability.AnalysisEvents()

	events.OnStageStart(ctx, res.RunID, string(StageBuild))
	g, err := graph.Build(ctx, pkg, graph.BuildOptions{
		MaxDepth: opts.MaxDepth,
		Filter:   opts.Filter,
		Logger:   opts.Logf,
	}, r.provider)
	if err != nil {
		events.OnStageComplete(ctx, res.RunID, string(StageBuild), time.Since(start), err)
		return nil, err
	}
	res.Graph = g
	events.OnGraphBuilt(ctx, res.RunID, g.NodeCount(), g.EdgeCount())
	events.OnStageComplete(ctx, res.RunID, string(StageBuild), time.Since(start), nil)

	if stage.Includes(StageCycles) {
		if err := r.runStage(ctx, res, StageCycles, func() {
			res.Cycles = graph.FindCycles(g)
		}); err != nil {
			return nil, err
		}
	}

	if stage.Includes(StageOrder) {
		if err := r.runStage(ctx, res, StageOrder, func() {
			res.Order, res.Excluded = graph.TopoSort(g)
		}); err != nil {
			return nil, err
		}
	}

	if stage.Includes(StageExport) {
		if err := r.runStage(ctx, res, StageExport, func() {
			res.DOT = render.ToDOT(g, render.Options{
				Title:  pkg,
				Cycles: res.Cycles,
			})
		}); err != nil {
			return nil, err
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// runStage checks for cancellation, runs fn, and reports the stage
// boundary events.
func (r *Runner) runStage(ctx context.Context, res *Result, stage Stage, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	events := observability.AnalysisEvents()
	start := time.Now()
	events.OnStageStart(ctx, res.RunID, string(stage))
	fn()
	events.OnStageComplete(ctx, res.RunID, string(stage), time.Since(start), nil)
	return nil
}

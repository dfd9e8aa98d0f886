// Package analysis orchestrates a full cost analysis: run every registered
// framework detector over a file set, pick the strongest detection, and
// optimize the detected workflow.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signalbox/signalbox/detector"
	"github.com/signalbox/signalbox/optimizer"
)

// ErrNoFrameworkDetected is returned when no detector scores above the
// minimum evidence threshold.
var ErrNoFrameworkDetected = errors.New("no supported framework detected")

// minConfidenceScore is the evidence floor below which a detection does not
// count as finding a framework.
const minConfidenceScore = 10

// Run is one completed analysis: the winning detection and its optimized
// workflow, stamped with an identifier and timing.
type Run struct {
	ID          string
	Source      string // repository URL or local path
	StartedAt   time.Time
	CompletedAt time.Time

	Detection detector.DetectionResult
	Workflow  optimizer.OptimizedWorkflow
}

// Analyzer ties the detector registry to the optimization engine.
type Analyzer struct {
	registry *detector.Registry
	engine   *optimizer.Engine
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRegistry uses a specific detector registry instead of the default.
func WithRegistry(r *detector.Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// WithLogger sets the analyzer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithDefaultModel prices components that declare no model at the given
// model instead of the compiled-in fallback.
func WithDefaultModel(model string) Option {
	return func(a *Analyzer) {
		a.engine = optimizer.New(optimizer.WithDefaultModel(model))
	}
}

// New creates an analyzer over the default detector registry.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		registry: detector.DefaultRegistry,
		engine:   optimizer.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs every registered detector over the file set, keeps the
// highest-scoring detection, and optimizes its workflow. Source labels where
// the files came from and is carried through to the run record.
func (a *Analyzer) Analyze(ctx context.Context, source string, filePaths []string, fileContents map[string]string) (*Run, error) {
	run := &Run{
		ID:        fmt.Sprintf("run_%s", uuid.NewString()[:8]),
		Source:    source,
		StartedAt: time.Now(),
	}

	var best detector.DetectionResult
	for _, d := range a.registry.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := d.Detect(ctx, filePaths, fileContents)
		a.logger.Debug("detector finished",
			slog.String("framework", d.Framework()),
			slog.Float64("score", result.ConfidenceScore),
			slog.Int("components", len(result.Components)))

		if result.ConfidenceScore > best.ConfidenceScore {
			best = result
		}
	}

	if best.ConfidenceScore < minConfidenceScore {
		return nil, fmt.Errorf("%w: best score %.0f from %d files",
			ErrNoFrameworkDetected, best.ConfidenceScore, len(filePaths))
	}

	a.logger.Info("framework detected",
		slog.String("framework", best.Framework),
		slog.String("confidence", string(best.Confidence)),
		slog.Float64("score", best.ConfidenceScore))

	run.Detection = best
	run.Workflow = a.engine.OptimizeWorkflow(best)
	run.CompletedAt = time.Now()

	a.logger.Info("analysis complete",
		slog.String("run_id", run.ID),
		slog.Float64("original_cost", run.Workflow.TotalOriginalCost),
		slog.Float64("optimized_cost", run.Workflow.TotalOptimizedCost),
		slog.Float64("savings_percent", run.Workflow.SavingsPercent))

	return run, nil
}

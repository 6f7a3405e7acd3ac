// Package engine is the process-level facade used by the CLI: it owns the
// current dataset and the latest tournament outcome and serves predictions
// from the winner.
package engine

import (
	"sync"

	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/model_selection"
	"github.com/YuminosukeSato/tourney/pkg/config"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/pkg/log"
	"github.com/YuminosukeSato/tourney/prediction"
	"github.com/YuminosukeSato/tourney/tournament"
)

// Engine guards one dataset and one tournament state. Both are replaced
// wholesale, never mutated in place.
type Engine struct {
	mu     sync.RWMutex
	data   *dataset.Dataset
	state  *tournament.State
	runner *tournament.Runner
	logger log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner replaces the tournament runner.
func WithRunner(r *tournament.Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithLogger replaces the engine's logger.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine with no dataset loaded.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLoggerWithName("engine")
	}
	if e.runner == nil {
		e.runner = tournament.NewRunner(tournament.WithLogger(e.logger))
	}
	return e
}

// NewFromConfig creates an engine whose runner follows cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) *Engine {
	e := New(opts...)
	e.runner = tournament.NewRunner(
		tournament.WithRegistry(tournament.RegistryFromConfig(cfg)),
		tournament.WithParallelism(cfg.Parallelism),
		tournament.WithLogger(e.logger),
		tournament.WithEvaluatorOptions(
			model_selection.WithFolds(cfg.Folds),
			model_selection.WithSeed(cfg.Seed),
			model_selection.WithFoldWorkers(cfg.FoldWorkers),
		),
	)
	return e
}

// Load parses the file at path and, only if that succeeds, makes it the
// current dataset and discards any previous tournament outcome.
func (e *Engine) Load(path string) (int, string, error) {
	d, err := dataset.Load(path)
	if err != nil {
		e.logger.Error("Dataset load failed", err, log.SourceKey, path)
		return 0, "", err
	}

	e.mu.Lock()
	e.data = d
	e.state = nil
	e.mu.Unlock()

	e.logger.Info("Dataset loaded",
		log.SourceKey, path,
		log.RelationKey, d.Relation,
		log.SamplesKey, d.InstanceCount(),
		log.AttributesKey, d.NumAttributes(),
		log.ClassesKey, d.NumClasses(),
	)
	return d.InstanceCount(), d.ClassAttribute().Name, nil
}

// Attributes returns the non-class attributes, or an empty slice before a
// dataset is loaded.
func (e *Engine) Attributes() []dataset.Attribute {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.AttributesExcludingClass()
}

// InstanceCount returns the number of loaded rows.
func (e *Engine) InstanceCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.InstanceCount()
}

// ClassAttributeName returns the class attribute name, "?" before load.
func (e *Engine) ClassAttributeName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.data == nil {
		return "?"
	}
	return e.data.ClassAttribute().Name
}

// RunTournament evaluates every candidate on the current dataset. The run
// happens outside the lock; its state is kept only if the dataset was not
// replaced in the meantime.
func (e *Engine) RunTournament() ([]tournament.EvaluationResult, error) {
	e.mu.RLock()
	snapshot := e.data
	e.mu.RUnlock()
	if snapshot == nil {
		return nil, errors.NewNoDataError("RunTournament")
	}

	state, err := e.runner.Run(snapshot)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	stale := e.data != snapshot
	if !stale {
		e.state = state
	}
	e.mu.Unlock()

	if stale {
		e.logger.Warn("Dataset replaced during tournament, results discarded",
			log.RunIDKey, state.RunID.String())
	}
	return state.Results, nil
}

// BestResult returns the winner of the latest tournament.
func (e *Engine) BestResult() (tournament.EvaluationResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil || e.state.Best == nil {
		return tournament.EvaluationResult{}, false
	}
	return *e.state.Best, true
}

// State returns the latest tournament's state. The state is replaced, never
// mutated, by later runs, so callers may read it without holding the lock.
func (e *Engine) State() (*tournament.State, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.state != nil
}

// PredictLabel classifies raw with the winning unit. raw holds one value per
// non-class attribute, in schema order.
func (e *Engine) PredictLabel(raw []string) (string, error) {
	e.mu.RLock()
	d, state := e.data, e.state
	e.mu.RUnlock()

	if state == nil || state.Best == nil || state.Best.Unit == nil {
		return "", errors.NewNoModelError()
	}
	return prediction.Predict(state.Best.Unit, d, raw)
}

// Predict is PredictLabel for display: it never fails, reporting problems
// in the returned text instead.
func (e *Engine) Predict(raw []string) string {
	label, err := e.PredictLabel(raw)
	if err != nil {
		var nm *errors.NoModelError
		if errors.As(err, &nm) {
			return nm.Error()
		}
		return "Prediction Error: " + err.Error()
	}
	return label
}

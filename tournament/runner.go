// Package tournament cross-validates a fixed registry of candidate
// configurations on one dataset and selects the winner.
package tournament

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/model_selection"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/pkg/log"
)

// Runner evaluates every registered candidate and picks the best one.
type Runner struct {
	registry    []CandidateConfig
	parallelism int
	evalOpts    []model_selection.Option
	logger      log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithRegistry replaces the default candidates.
func WithRegistry(reg []CandidateConfig) Option {
	return func(r *Runner) {
		r.registry = reg
	}
}

// WithParallelism bounds how many candidates are evaluated at once.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		r.parallelism = n
	}
}

// WithEvaluatorOptions passes options to the per-candidate Evaluator.
func WithEvaluatorOptions(opts ...model_selection.Option) Option {
	return func(r *Runner) {
		r.evalOpts = append(r.evalOpts, opts...)
	}
}

// WithLogger replaces the runner's logger.
func WithLogger(l log.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a sequential runner over DefaultRegistry.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		registry:    DefaultRegistry(),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.GetLoggerWithName("tournament")
	}
	return r
}

// Registry returns the candidates in tournament order.
func (r *Runner) Registry() []CandidateConfig {
	return r.registry
}

// Run evaluates all candidates on d. A failing candidate never aborts the
// run; it is recorded with the " (Error)" suffix and zero scores. Results
// are in registry order regardless of parallelism.
func (r *Runner) Run(d *dataset.Dataset) (*State, error) {
	if d == nil || d.InstanceCount() == 0 {
		return nil, errors.NewNoDataError("RunTournament")
	}

	state := &State{
		RunID:     uuid.New(),
		Results:   make([]EvaluationResult, len(r.registry)),
		StartedAt: time.Now(),
	}
	logger := r.logger.With(log.RunIDKey, state.RunID.String())
	logger.Info("Tournament started",
		log.RelationKey, d.Relation,
		log.SamplesKey, d.InstanceCount(),
		log.AttributesKey, d.NumAttributes(),
		log.ParallelismKey, r.parallelism,
	)

	var g errgroup.Group
	g.SetLimit(max(r.parallelism, 1))
	for i, cand := range r.registry {
		g.Go(func() error {
			state.Results[i] = r.evaluate(cand, d, logger.With(log.CandidateKey, cand.Name))
			return nil
		})
	}
	_ = g.Wait()

	if best, ok := SelectBest(state.Results); ok {
		state.Best = &state.Results[best]
		logger.Info("Tournament finished",
			log.PhaseKey, log.PhaseSelection,
			log.CandidateKey, state.Best.Name,
			log.CorrectKey, state.Best.CorrectCount,
			log.AccuracyKey, state.Best.AccuracyPercent,
		)
	} else {
		logger.Warn("Tournament finished without a successful candidate")
	}
	state.Duration = time.Since(state.StartedAt)
	return state, nil
}

func (r *Runner) evaluate(cand CandidateConfig, d *dataset.Dataset, logger log.Logger) EvaluationResult {
	start := time.Now()
	evaluator := model_selection.NewEvaluator(append([]model_selection.Option{model_selection.WithLogger(logger)}, r.evalOpts...)...)

	var ev *model_selection.Evaluation
	err := errors.SafeExecute(cand.Name, func() error {
		var err error
		ev, err = evaluator.Evaluate(cand.Factory(), d)
		return err
	})
	if err != nil {
		failure := errors.NewCandidateFailure(cand.Name, err)
		logger.Warn("Candidate failed", log.ErrorTypeKey, errorType(err), "error", err.Error())
		errors.Warn(failure)
		return EvaluationResult{
			Name:     cand.Name + " (Error)",
			Err:      failure,
			Duration: time.Since(start),
		}
	}

	logger.Info("Candidate evaluated",
		log.CorrectKey, ev.Correct,
		log.AccuracyKey, ev.AccuracyPercent,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return EvaluationResult{
		Name:            cand.Name,
		AccuracyPercent: ev.AccuracyPercent,
		CorrectCount:    float64(ev.Correct),
		Unit:            ev.Unit,
		FoldAccuracies:  ev.FoldAccuracies,
		MeanAccuracy:    ev.MeanAccuracy,
		StdAccuracy:     ev.StdAccuracy,
		Confusion:       ev.Confusion,
		Duration:        time.Since(start),
	}
}

// errorType names the most specific typed error in err's chain.
func errorType(err error) string {
	var (
		capErr   *errors.CapabilityError
		panicErr *errors.PanicError
		numErr   *errors.NumericalInstabilityError
		valErr   *errors.ValidationError
	)
	switch {
	case errors.As(err, &capErr):
		return "CapabilityError"
	case errors.As(err, &panicErr):
		return "PanicError"
	case errors.As(err, &numErr):
		return "NumericalInstabilityError"
	case errors.As(err, &valErr):
		return "ValidationError"
	default:
		return "error"
	}
}

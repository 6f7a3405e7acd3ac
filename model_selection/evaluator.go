package model_selection

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/core/parallel"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/metrics"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/pkg/log"
)

// DefaultFolds and DefaultSeed are the cross-validation settings used when
// no option overrides them.
const (
	DefaultFolds       = 10
	DefaultSeed  int64 = 1
)

// Evaluation is the outcome of cross-validating one classifier factory.
type Evaluation struct {
	Folds           int
	Correct         int
	Total           int
	AccuracyPercent float64
	FoldAccuracies  []float64 // percent, one per fold
	MeanAccuracy    float64
	StdAccuracy     float64
	Confusion       *metrics.ConfusionMatrix

	// Unit is a fresh classifier trained on the whole dataset.
	Unit     model.Classifier
	Duration time.Duration
}

// Evaluator runs stratified k-fold cross-validation followed by a final
// retrain on all rows.
type Evaluator struct {
	folds       int
	seed        int64
	foldWorkers int
	logger      log.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithFolds sets the number of folds.
func WithFolds(k int) Option {
	return func(e *Evaluator) {
		e.folds = k
	}
}

// WithSeed sets the seed of the fold assignment.
func WithSeed(seed int64) Option {
	return func(e *Evaluator) {
		e.seed = seed
	}
}

// WithFoldWorkers sets how many folds are trained concurrently.
func WithFoldWorkers(n int) Option {
	return func(e *Evaluator) {
		e.foldWorkers = n
	}
}

// WithLogger replaces the evaluator's logger.
func WithLogger(l log.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// NewEvaluator creates a 10-fold, seed 1, sequential evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		folds:       DefaultFolds,
		seed:        DefaultSeed,
		foldWorkers: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLoggerWithName("Evaluator")
	}
	return e
}

type foldResult struct {
	correct   int
	total     int
	accuracy  float64 // fraction, meaningful only when total > 0
	confusion *metrics.ConfusionMatrix
}

// Evaluate cross-validates classifiers built by factory on d. With fewer
// rows than folds the fold count drops to the row count; fewer than two
// rows is an error. Panics raised by a classifier are returned as errors.
func (e *Evaluator) Evaluate(factory model.Factory, d *dataset.Dataset) (*Evaluation, error) {
	start := time.Now()
	if d == nil || d.InstanceCount() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Evaluator.Evaluate")
	}
	if factory == nil {
		return nil, errors.NewValueError("Evaluator.Evaluate", "nil classifier factory")
	}
	if e.folds < 2 {
		return nil, errors.NewValidationError("folds", "must be at least 2", e.folds)
	}
	n := d.InstanceCount()
	if n < 2 {
		return nil, errors.NewValueError("Evaluator.Evaluate",
			fmt.Sprintf("cross-validation needs at least 2 rows, got %d", n))
	}
	if !d.ClassAttribute().IsNominal() {
		return nil, errors.NewCapabilityError("Evaluator", "numeric class attribute")
	}

	k := min(e.folds, n)
	folds := NewStratifiedKFold(k, e.seed).Split(d)
	labels := d.ClassAttribute().Domain

	results := make([]foldResult, k)
	err := parallel.ForEach(k, e.foldWorkers, func(i int) error {
		return errors.SafeExecute(fmt.Sprintf("fold %d", i+1), func() error {
			r, err := runFold(factory, d, folds[i], labels)
			if err != nil {
				return errors.Wrapf(err, "fold %d", i+1)
			}
			results[i] = r
			e.logger.Debug("Fold evaluated",
				log.FoldKey, i+1,
				log.FoldsKey, k,
				log.CorrectKey, r.correct,
				log.SamplesKey, r.total,
			)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		Folds:          k,
		Confusion:      metrics.NewConfusionMatrix(labels),
		FoldAccuracies: make([]float64, 0, k),
	}
	for _, r := range results {
		ev.Correct += r.correct
		ev.Total += r.total
		if err := ev.Confusion.Merge(r.confusion); err != nil {
			return nil, err
		}
		if r.total > 0 {
			ev.FoldAccuracies = append(ev.FoldAccuracies, 100*r.accuracy)
		}
	}
	ev.AccuracyPercent = 100 * float64(ev.Correct) / float64(ev.Total)
	ev.MeanAccuracy, ev.StdAccuracy = stat.MeanStdDev(ev.FoldAccuracies, nil)
	if len(ev.FoldAccuracies) < 2 {
		ev.StdAccuracy = 0
	}

	err = errors.SafeExecute("final retrain", func() error {
		unit := factory()
		if unit == nil {
			return errors.NewValueError("Evaluator.Evaluate", "factory returned nil")
		}
		if err := unit.Fit(d); err != nil {
			return errors.Wrap(err, "final retrain")
		}
		ev.Unit = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev.Duration = time.Since(start)
	e.logger.Debug("Cross-validation finished",
		log.PhaseKey, log.PhaseEvaluation,
		log.FoldsKey, k,
		log.CorrectKey, ev.Correct,
		log.AccuracyKey, ev.AccuracyPercent,
		log.DurationMsKey, ev.Duration.Milliseconds(),
	)
	return ev, nil
}

// runFold trains a fresh unit on the training rows and classifies every
// held-out row with its class slot blanked.
func runFold(factory model.Factory, d *dataset.Dataset, fold Fold, labels []string) (foldResult, error) {
	unit := factory()
	if unit == nil {
		return foldResult{}, errors.NewValueError("Evaluator.Evaluate", "factory returned nil")
	}
	if err := unit.Fit(d.Subset(fold.TrainIndices)); err != nil {
		return foldResult{}, err
	}

	r := foldResult{confusion: metrics.NewConfusionMatrix(labels)}
	classIdx := d.ClassIndex()
	yTrue := make([]float64, 0, len(fold.TestIndices))
	yPred := make([]float64, 0, len(fold.TestIndices))
	for _, i := range fold.TestIndices {
		inst := d.Rows[i].Clone()
		actual := d.Class(i)
		inst[classIdx] = dataset.Missing

		predicted, err := unit.Classify(inst)
		if err != nil {
			return foldResult{}, errors.Wrapf(err, "classify row %d", i)
		}
		if err := r.confusion.Add(actual, predicted); err != nil {
			return foldResult{}, err
		}
		if predicted == actual {
			r.correct++
		}
		r.total++
		yTrue = append(yTrue, float64(actual))
		yPred = append(yPred, float64(predicted))
	}
	if r.total > 0 {
		acc, err := metrics.Accuracy(mat.NewVecDense(r.total, yTrue), mat.NewVecDense(r.total, yPred))
		if err != nil {
			return foldResult{}, err
		}
		r.accuracy = acc
	}
	return r, nil
}

package linear_model

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// LogisticRegression implements multinomial logistic regression with a ridge
// penalty. The last class is the reference category, so K classes are
// modelled by K-1 coefficient vectors. Coefficients are found with L-BFGS.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	ridge   float64 // L2 penalty on the non-intercept coefficients
	maxIter int     // Maximum L-BFGS iterations, <= 0 for no limit
	tol     float64 // Gradient norm threshold for convergence

	// Model parameters
	coef_      [][]float64 // (n_classes-1) x n_features
	intercept_ []float64   // n_classes-1
	classes_   []int       // Unique class labels, ascending
	nFeatures_ int
	nIter_     int
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:   model.NewStateManager(),
		ridge:   1e-8,
		maxIter: 200,
		tol:     1e-6,
	}

	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRRidge sets the ridge penalty
func WithLRRidge(ridge float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.ridge = ridge
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	lr.state.Reset()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}
	if nSamples == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if lr.ridge < 0 {
		return errors.NewValidationError("ridge", "must be non-negative", lr.ridge)
	}

	lr.extractClasses(y)
	lr.nFeatures_ = nFeatures
	k := len(lr.classes_)

	lr.coef_ = make([][]float64, k-1)
	lr.intercept_ = make([]float64, k-1)
	lr.nIter_ = 0
	if k > 1 {
		if err := lr.fitMultinomial(X, y); err != nil {
			return err
		}
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// extractClasses identifies unique class labels
func (lr *LogisticRegression) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	lr.classes_ = make([]int, 0, len(classMap))
	for class := range classMap {
		lr.classes_ = append(lr.classes_, class)
	}
	sort.Ints(lr.classes_)
}

// fitMultinomial minimises the penalised negative log-likelihood.
func (lr *LogisticRegression) fitMultinomial(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	k := len(lr.classes_)
	width := nFeatures + 1 // intercept first

	classPos := make(map[int]int, k)
	for i, c := range lr.classes_ {
		classPos[c] = i
	}
	rows := make([][]float64, nSamples)
	target := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		rows[i] = mat.Row(nil, i, X)
		target[i] = classPos[int(y.At(i, 0))]
	}

	scores := make([]float64, k)
	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			nll := 0.0
			for i, row := range rows {
				lr.linearScores(w, width, row, scores)
				nll -= scores[target[i]] - errors.LogSumExp(scores)
			}
			return nll + lr.ridge*penaltyNorm(w, width)
		},
		Grad: func(grad, w []float64) {
			for i := range grad {
				grad[i] = 0
			}
			for i, row := range rows {
				lr.linearScores(w, width, row, scores)
				norm := errors.LogSumExp(scores)
				for c := 0; c < k-1; c++ {
					diff := math.Exp(scores[c] - norm)
					if target[i] == c {
						diff -= 1
					}
					block := grad[c*width : (c+1)*width]
					block[0] += diff
					floats.AddScaled(block[1:], diff, row)
				}
			}
			for c := 0; c < k-1; c++ {
				for j := 1; j < width; j++ {
					grad[c*width+j] += 2 * lr.ridge * w[c*width+j]
				}
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   lr.maxIter,
		GradientThreshold: lr.tol,
	}
	x0 := make([]float64, (k-1)*width)
	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if result == nil {
		return errors.NewModelError("LogisticRegression.Fit", "optimization failed", err)
	}
	if err := errors.CheckNumericalStability("LogisticRegression.Fit", result.X, result.Stats.MajorIterations); err != nil {
		return err
	}
	if err != nil || result.Status == optimize.IterationLimit {
		msg := result.Status.String()
		if err != nil {
			msg = err.Error()
		}
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", result.Stats.MajorIterations, msg))
	}

	for c := 0; c < k-1; c++ {
		block := result.X[c*width : (c+1)*width]
		lr.intercept_[c] = block[0]
		lr.coef_[c] = append([]float64(nil), block[1:]...)
	}
	lr.nIter_ = result.Stats.MajorIterations
	return nil
}

// linearScores fills dst with the linear predictor of each class; the
// reference class is fixed at 0.
func (lr *LogisticRegression) linearScores(w []float64, width int, row, dst []float64) {
	last := len(dst) - 1
	for c := 0; c < last; c++ {
		block := w[c*width : (c+1)*width]
		dst[c] = block[0] + floats.Dot(block[1:], row)
	}
	dst[last] = 0
}

func penaltyNorm(w []float64, width int) float64 {
	sum := 0.0
	for i, v := range w {
		if i%width != 0 {
			sum += v * v
		}
	}
	return sum
}

func (lr *LogisticRegression) scoreRow(row []float64) []float64 {
	k := len(lr.classes_)
	scores := make([]float64, k)
	for c := 0; c < k-1; c++ {
		scores[c] = lr.intercept_[c] + floats.Dot(lr.coef_[c], row)
	}
	return scores
}

func (lr *LogisticRegression) checkInput(op string, X mat.Matrix) (int, error) {
	if err := lr.state.RequireFitted("LogisticRegression", op); err != nil {
		return 0, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures_ {
		return 0, errors.NewDimensionError("LogisticRegression."+op, lr.nFeatures_, nFeatures, 1)
	}
	return nSamples, nil
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := lr.checkInput("Predict", X)
	if err != nil {
		return nil, err
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		scores := lr.scoreRow(mat.Row(nil, i, X))
		predictions.Set(i, 0, float64(lr.classes_[floats.MaxIdx(scores)]))
	}
	return predictions, nil
}

// PredictProba returns probability estimates for each class seen in Fit
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := lr.checkInput("PredictProba", X)
	if err != nil {
		return nil, err
	}

	probas := mat.NewDense(nSamples, len(lr.classes_), nil)
	for i := 0; i < nSamples; i++ {
		scores := lr.scoreRow(mat.Row(nil, i, X))
		norm := errors.LogSumExp(scores)
		for c, s := range scores {
			probas.Set(i, c, math.Exp(s-norm))
		}
	}
	return probas, nil
}

// Classes returns the class labels seen during Fit.
func (lr *LogisticRegression) Classes() []int {
	return lr.classes_
}

// NIter returns the number of optimizer iterations used by the last Fit.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter_
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"ridge":    lr.ridge,
		"max_iter": lr.maxIter,
		"tol":      lr.tol,
	}
}

// SetParams sets the model hyperparameters
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var ok bool
		switch key {
		case "ridge":
			lr.ridge, ok = value.(float64)
		case "max_iter":
			lr.maxIter, ok = value.(int)
		case "tol":
			lr.tol, ok = value.(float64)
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
		if !ok {
			return errors.NewValidationError(key, fmt.Sprintf("unexpected type %T", value), value)
		}
	}
	return nil
}

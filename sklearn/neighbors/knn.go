// Package neighbors provides instance-based classifiers.
package neighbors

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/core/parallel"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// parallelThreshold is the number of query rows above which Predict fans out.
const parallelThreshold = 256

// KNeighborsClassifier classifies a point by majority vote among its k
// nearest training points under Euclidean distance. Equidistant neighbours
// are ordered by training position, and vote ties go to the lowest class.
type KNeighborsClassifier struct {
	state *model.StateManager

	k int

	xTrain     [][]float64
	yTrain     []int
	nClasses_  int
	nFeatures_ int
}

// Option configures a KNeighborsClassifier.
type Option func(*KNeighborsClassifier)

// WithK sets the number of neighbours.
func WithK(k int) Option {
	return func(c *KNeighborsClassifier) {
		c.k = k
	}
}

// NewKNeighborsClassifier returns a 1-nearest-neighbour classifier unless
// configured otherwise.
func NewKNeighborsClassifier(opts ...Option) *KNeighborsClassifier {
	c := &KNeighborsClassifier{state: model.NewStateManager(), k: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fit memorises the training data.
func (c *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	c.state.Reset()
	if c.k < 1 {
		return errors.NewValidationError("k", "must be at least 1", c.k)
	}

	rows, cols := X.Dims()
	yRows, _ := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("KNeighborsClassifier.Fit", rows, yRows, 0)
	}
	if rows == 0 {
		return errors.NewModelError("KNeighborsClassifier.Fit", "empty data", errors.ErrEmptyData)
	}

	c.xTrain = make([][]float64, rows)
	c.yTrain = make([]int, rows)
	c.nClasses_ = 0
	for i := 0; i < rows; i++ {
		c.xTrain[i] = mat.Row(nil, i, X)
		c.yTrain[i] = int(y.At(i, 0))
		if c.yTrain[i] < 0 {
			return errors.NewValueError("KNeighborsClassifier.Fit", fmt.Sprintf("negative class label %d", c.yTrain[i]))
		}
		if c.yTrain[i]+1 > c.nClasses_ {
			c.nClasses_ = c.yTrain[i] + 1
		}
	}
	c.nFeatures_ = cols

	c.state.SetDimensions(cols, rows)
	c.state.SetFitted()
	return nil
}

// Predict returns the voted class of every row of X.
func (c *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := c.state.RequireFitted("KNeighborsClassifier", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != c.nFeatures_ {
		return nil, errors.NewDimensionError("KNeighborsClassifier.Predict", c.nFeatures_, cols, 1)
	}

	out := make([]float64, rows)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = float64(c.predictRow(mat.Row(nil, i, X)))
		}
	})
	return mat.NewDense(rows, 1, out), nil
}

type neighbor struct {
	dist  float64
	index int
}

// Neighbors returns the training positions of the k nearest points to x,
// closest first.
func (c *KNeighborsClassifier) Neighbors(x []float64) ([]int, error) {
	if err := c.state.RequireFitted("KNeighborsClassifier", "Neighbors"); err != nil {
		return nil, err
	}
	if len(x) != c.nFeatures_ {
		return nil, errors.NewDimensionError("KNeighborsClassifier.Neighbors", c.nFeatures_, len(x), 0)
	}
	nbrs := c.nearest(x)
	out := make([]int, len(nbrs))
	for i, n := range nbrs {
		out[i] = n.index
	}
	return out, nil
}

func (c *KNeighborsClassifier) nearest(x []float64) []neighbor {
	all := make([]neighbor, len(c.xTrain))
	for j, xj := range c.xTrain {
		all[j] = neighbor{dist: floats.Distance(x, xj, 2), index: j}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].dist < all[b].dist })
	return all[:min(c.k, len(all))]
}

func (c *KNeighborsClassifier) predictRow(x []float64) int {
	votes := make([]int, c.nClasses_)
	for _, n := range c.nearest(x) {
		votes[c.yTrain[n.index]]++
	}
	best := 0
	for cls, v := range votes {
		if v > votes[best] {
			best = cls
		}
	}
	return best
}

// GetParams returns the model hyperparameters.
func (c *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{"k": c.k}
}

func (c *KNeighborsClassifier) String() string {
	return fmt.Sprintf("KNeighborsClassifier(k=%d)", c.k)
}

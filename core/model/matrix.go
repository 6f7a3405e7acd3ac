package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// ValidateTrainingData checks the preconditions every classifier shares: a
// non-empty dataset with a nominal class attribute.
func ValidateTrainingData(estimator string, d *dataset.Dataset) error {
	if d == nil || d.InstanceCount() == 0 {
		return errors.Wrapf(errors.ErrEmptyData, "%s.Fit", estimator)
	}
	if !d.ClassAttribute().IsNominal() {
		return errors.NewCapabilityError(estimator, "numeric class attribute")
	}
	return nil
}

// DesignMatrix converts d into an n×p feature matrix and an n×1 column of
// class indices. Every non-class attribute must be numeric.
func DesignMatrix(estimator string, d *dataset.Dataset) (*mat.Dense, *mat.Dense, error) {
	p := d.ClassIndex()
	for _, a := range d.Schema[:p] {
		if a.IsNominal() {
			return nil, nil, errors.NewCapabilityError(estimator,
				fmt.Sprintf("nominal attribute '%s'", a.Name))
		}
	}

	n := d.InstanceCount()
	X := mat.NewDense(n, max(p, 1), nil)
	y := mat.NewDense(n, 1, nil)
	for i, row := range d.Rows {
		for j := 0; j < p; j++ {
			X.Set(i, j, row[j])
		}
		y.Set(i, 0, row[p])
	}
	return X, y, nil
}

// MatrixClassifier adapts a MatrixEstimator to the Classifier capability.
// It owns the conversion between dataset rows and gonum matrices.
type MatrixClassifier struct {
	name      string
	estimator MatrixEstimator
	state     *StateManager
	nFeatures int
}

// NewMatrixClassifier wraps est under the given algorithm name.
func NewMatrixClassifier(name string, est MatrixEstimator) *MatrixClassifier {
	return &MatrixClassifier{name: name, estimator: est, state: NewStateManager()}
}

// Name returns the algorithm name.
func (c *MatrixClassifier) Name() string { return c.name }

// Estimator returns the wrapped estimator.
func (c *MatrixClassifier) Estimator() MatrixEstimator { return c.estimator }

// Fit trains the wrapped estimator on the numeric design matrix of d.
func (c *MatrixClassifier) Fit(d *dataset.Dataset) error {
	c.state.Reset()
	if err := ValidateTrainingData(c.name, d); err != nil {
		return err
	}
	X, y, err := DesignMatrix(c.name, d)
	if err != nil {
		return err
	}
	if err := c.estimator.Fit(X, y); err != nil {
		return errors.Wrapf(err, "%s.Fit", c.name)
	}
	c.nFeatures = d.ClassIndex()
	c.state.SetDimensions(c.nFeatures, d.InstanceCount())
	c.state.SetFitted()
	return nil
}

// Classify predicts the class index of inst. Only the first nFeatures values
// are read; the class slot is ignored.
func (c *MatrixClassifier) Classify(inst dataset.Instance) (int, error) {
	if err := c.state.RequireFitted(c.name, "Classify"); err != nil {
		return 0, err
	}
	if len(inst) < c.nFeatures {
		return 0, errors.NewDimensionError(c.name+".Classify", c.nFeatures, len(inst), 1)
	}
	row := make([]float64, max(c.nFeatures, 1))
	copy(row, inst[:c.nFeatures])
	pred, err := c.estimator.Predict(mat.NewDense(1, len(row), row))
	if err != nil {
		return 0, err
	}
	return int(pred.At(0, 0)), nil
}

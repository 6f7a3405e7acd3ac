// Package model defines the capability contract shared by every classifier in
// the tournament and the helpers estimators use to honour it.
package model

import (
	"github.com/YuminosukeSato/tourney/dataset"
)

// Classifier is the uniform capability of a trainable unit: fit on a dataset,
// then classify single instances into a class index. The class slot of the
// instance passed to Classify is ignored and may hold dataset.Missing.
type Classifier interface {
	Fit(d *dataset.Dataset) error
	Classify(inst dataset.Instance) (int, error)
}

// Factory produces a fresh, untrained Classifier. Cross-validation calls it
// once per fold and once more for the final retrain, so no state leaks
// between folds.
type Factory func() Classifier

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// Named is implemented by classifiers that report a short algorithm name.
type Named interface {
	Name() string
}

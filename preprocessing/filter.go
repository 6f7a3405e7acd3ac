// Package preprocessing provides the attribute filters that can precede a
// base classifier: Normalize, Discretize and NominalToBinary, plus Chain to
// run several of them in sequence.
//
// Every filter learns its parameters in Fit from a training fold only and
// re-applies them unchanged afterwards. Filters never modify the class
// attribute, and a Missing class slot passes through untouched.
package preprocessing

import (
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// Filter is a fitted attribute transformation.
type Filter interface {
	// Fit learns the filter parameters from d.
	Fit(d *dataset.Dataset) error
	// OutputSchema is the schema of transformed instances. Valid after Fit.
	OutputSchema() dataset.Schema
	// Apply transforms one instance laid out in the input schema.
	Apply(inst dataset.Instance) (dataset.Instance, error)
	// ApplyDataset transforms every row of d into a new dataset.
	ApplyDataset(d *dataset.Dataset) (*dataset.Dataset, error)
}

// applyDataset is the shared ApplyDataset implementation.
func applyDataset(f Filter, d *dataset.Dataset) (*dataset.Dataset, error) {
	rows := make([]dataset.Instance, len(d.Rows))
	for i, row := range d.Rows {
		out, err := f.Apply(row)
		if err != nil {
			return nil, err
		}
		rows[i] = out
	}
	return &dataset.Dataset{Relation: d.Relation, Schema: f.OutputSchema(), Rows: rows}, nil
}

// checkFitInput rejects datasets no filter can learn from.
func checkFitInput(op string, d *dataset.Dataset) error {
	if d == nil || d.InstanceCount() == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	return nil
}

// checkWidth verifies an instance matches the schema the filter was fitted on.
func checkWidth(op string, schema dataset.Schema, inst dataset.Instance) error {
	if len(inst) != len(schema) {
		return errors.NewDimensionError(op, len(schema), len(inst), 1)
	}
	return nil
}

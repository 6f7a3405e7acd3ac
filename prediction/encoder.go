// Package prediction turns raw user input into model-ready instances and
// model output back into class labels.
package prediction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// RawValue is one user-supplied field bound to the kind of its attribute.
// The only implementations are NominalRaw and NumericRaw.
type RawValue interface {
	Text() string
	isRawValue()
}

// NominalRaw is the textual label of a nominal attribute value.
type NominalRaw string

// NumericRaw is the unparsed text of a numeric attribute value.
type NumericRaw string

func (v NominalRaw) Text() string { return string(v) }
func (v NumericRaw) Text() string { return string(v) }

func (NominalRaw) isRawValue() {}
func (NumericRaw) isRawValue() {}

// Resolve binds raw[i] to the kind of the i-th non-class attribute.
func Resolve(schema dataset.Schema, raw []string) ([]RawValue, error) {
	attrs := schema[:max(schema.ClassIndex(), 0)]
	if len(raw) != len(attrs) {
		return nil, errors.NewValueError("prediction.Resolve",
			fmt.Sprintf("expected %d values, got %d", len(attrs), len(raw)))
	}
	return lo.Map(raw, func(s string, i int) RawValue {
		if attrs[i].IsNominal() {
			return NominalRaw(s)
		}
		return NumericRaw(s)
	}), nil
}

// Encode builds a full-width instance from raw, one value per non-class
// attribute. The class slot is dataset.Missing.
func Encode(d *dataset.Dataset, raw []string) (dataset.Instance, error) {
	if d == nil || len(d.Schema) == 0 {
		return nil, errors.NewNoDataError("prediction.Encode")
	}
	values, err := Resolve(d.Schema, raw)
	if err != nil {
		return nil, err
	}

	inst := make(dataset.Instance, len(d.Schema))
	for i, v := range values {
		attr := d.Schema[i]
		switch v := v.(type) {
		case NominalRaw:
			idx := lo.IndexOf(attr.Domain, string(v))
			if idx < 0 {
				return nil, errors.NewUnknownCategoryError(attr.Name, string(v), attr.Domain)
			}
			inst[i] = float64(idx)
		case NumericRaw:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
			if err != nil {
				return nil, errors.NewInvalidNumberError(attr.Name, string(v))
			}
			inst[i] = f
		}
	}
	inst[d.ClassIndex()] = dataset.Missing
	return inst, nil
}

// Decode maps a class index produced by a classifier to its label.
func Decode(d *dataset.Dataset, classIndex int) (string, error) {
	if d == nil || len(d.Schema) == 0 {
		return "", errors.NewNoDataError("prediction.Decode")
	}
	return d.ClassLabel(classIndex)
}

// Predict encodes raw, classifies it with unit and decodes the result.
// Panics raised by the unit are returned as errors.
func Predict(unit model.Classifier, d *dataset.Dataset, raw []string) (string, error) {
	if unit == nil {
		return "", errors.NewNoModelError()
	}
	inst, err := Encode(d, raw)
	if err != nil {
		return "", err
	}

	var idx int
	err = errors.SafeExecute("prediction.Predict", func() error {
		var err error
		idx, err = unit.Classify(inst)
		return err
	})
	if err != nil {
		return "", err
	}
	return Decode(d, idx)
}

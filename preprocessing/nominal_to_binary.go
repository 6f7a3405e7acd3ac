package preprocessing

import (
	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
)

// NominalToBinary replaces each nominal non-class attribute by numeric
// indicator attributes. An attribute with k > 2 values becomes k indicators
// named "attr=value"; an attribute with one or two values becomes a single
// numeric attribute of the same name holding 1 for the second value.
// Numeric attributes and the class pass through unchanged.
type NominalToBinary struct {
	state *model.StateManager

	inSchema  dataset.Schema
	outSchema dataset.Schema
	// offsets[j] is the first output position of input attribute j.
	offsets []int
}

// NewNominalToBinary creates a NominalToBinary filter.
func NewNominalToBinary() *NominalToBinary {
	return &NominalToBinary{state: model.NewStateManager()}
}

func (f *NominalToBinary) Fit(d *dataset.Dataset) error {
	f.state.Reset()
	if d == nil || len(d.Schema) == 0 {
		return checkFitInput("NominalToBinary.Fit", d)
	}

	f.inSchema = d.Schema
	f.offsets = make([]int, len(d.Schema))
	f.outSchema = make(dataset.Schema, 0, len(d.Schema))

	for j, attr := range d.Schema {
		f.offsets[j] = len(f.outSchema)
		switch {
		case j == d.ClassIndex() || !attr.IsNominal():
			f.outSchema = append(f.outSchema, attr)
		case len(attr.Domain) <= 2:
			f.outSchema = append(f.outSchema, dataset.NewNumeric(attr.Name))
		default:
			for _, v := range attr.Domain {
				f.outSchema = append(f.outSchema, dataset.NewNumeric(attr.Name+"="+v))
			}
		}
	}

	f.state.SetDimensions(len(d.Schema), d.InstanceCount())
	f.state.SetFitted()
	return nil
}

func (f *NominalToBinary) OutputSchema() dataset.Schema {
	return f.outSchema
}

func (f *NominalToBinary) Apply(inst dataset.Instance) (dataset.Instance, error) {
	if err := f.state.RequireFitted("NominalToBinary", "Apply"); err != nil {
		return nil, err
	}
	if err := checkWidth("NominalToBinary.Apply", f.inSchema, inst); err != nil {
		return nil, err
	}

	out := make(dataset.Instance, len(f.outSchema))
	for j, attr := range f.inSchema {
		pos := f.offsets[j]
		v := inst[j]
		switch {
		case j == f.inSchema.ClassIndex() || !attr.IsNominal():
			out[pos] = v
		case dataset.IsMissing(v):
			width := 1
			if len(attr.Domain) > 2 {
				width = len(attr.Domain)
			}
			for k := 0; k < width; k++ {
				out[pos+k] = dataset.Missing
			}
		case len(attr.Domain) <= 2:
			out[pos] = v
		default:
			out[pos+int(v)] = 1
		}
	}
	return out, nil
}

func (f *NominalToBinary) ApplyDataset(d *dataset.Dataset) (*dataset.Dataset, error) {
	if err := f.state.RequireFitted("NominalToBinary", "ApplyDataset"); err != nil {
		return nil, err
	}
	return applyDataset(f, d)
}

func (f *NominalToBinary) String() string {
	return "NominalToBinary()"
}

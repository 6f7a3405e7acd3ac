package preprocessing

import (
	"fmt"
	"math"
	"strconv"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// DefaultBins is the number of equal-width bins Discretize uses by default.
const DefaultBins = 10

// Discretize replaces every numeric non-class attribute with a nominal one by
// unsupervised equal-width binning. Cut points are learned from the training
// data; a value v falls into the first bin whose upper cut point c satisfies
// v <= c. Bin labels follow the interval notation
//
//	(-inf-c1]  (c1-c2]  ...  (c9-inf)
//
// An attribute that takes a single value in the training data becomes a
// one-value nominal attribute labelled "All".
type Discretize struct {
	state *model.StateManager

	// Bins is the number of intervals per attribute.
	Bins int

	inSchema  dataset.Schema
	outSchema dataset.Schema
	cutPoints [][]float64 // nil for nominal, class and single-valued attributes
}

// NewDiscretize creates a Discretize filter with the given number of bins.
func NewDiscretize(bins int) *Discretize {
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Discretize{state: model.NewStateManager(), Bins: bins}
}

func (f *Discretize) Fit(d *dataset.Dataset) error {
	f.state.Reset()
	if err := checkFitInput("Discretize.Fit", d); err != nil {
		return err
	}

	f.inSchema = d.Schema
	f.outSchema = make(dataset.Schema, len(d.Schema))
	f.cutPoints = make([][]float64, len(d.Schema))

	for j, attr := range d.Schema {
		if attr.IsNominal() || j == d.ClassIndex() {
			f.outSchema[j] = attr
			continue
		}
		min, max := math.Inf(1), math.Inf(-1)
		for _, row := range d.Rows {
			min = math.Min(min, row[j])
			max = math.Max(max, row[j])
		}
		f.cutPoints[j] = equalWidthCutPoints(min, max, f.Bins)
		f.outSchema[j] = dataset.NewNominal(attr.Name, binLabels(f.cutPoints[j]))
	}

	f.state.SetDimensions(len(d.Schema), d.InstanceCount())
	f.state.SetFitted()
	return nil
}

func equalWidthCutPoints(min, max float64, bins int) []float64 {
	width := (max - min) / float64(bins)
	if bins <= 1 || width <= 0 {
		return nil
	}
	cuts := make([]float64, bins-1)
	for i := 1; i < bins; i++ {
		cuts[i-1] = min + width*float64(i)
	}
	return cuts
}

func binLabels(cuts []float64) []string {
	if len(cuts) == 0 {
		return []string{"All"}
	}
	labels := make([]string, len(cuts)+1)
	for i := range labels {
		switch i {
		case 0:
			labels[i] = "(-inf-" + formatCut(cuts[0]) + "]"
		case len(cuts):
			labels[i] = "(" + formatCut(cuts[i-1]) + "-inf)"
		default:
			labels[i] = "(" + formatCut(cuts[i-1]) + "-" + formatCut(cuts[i]) + "]"
		}
	}
	return labels
}

// formatCut renders a cut point rounded to six decimal places.
func formatCut(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func (f *Discretize) OutputSchema() dataset.Schema {
	return f.outSchema
}

func (f *Discretize) Apply(inst dataset.Instance) (dataset.Instance, error) {
	if err := f.state.RequireFitted("Discretize", "Apply"); err != nil {
		return nil, err
	}
	if err := checkWidth("Discretize.Apply", f.inSchema, inst); err != nil {
		return nil, err
	}

	out := inst.Clone()
	for j, attr := range f.inSchema {
		if attr.IsNominal() || j == f.inSchema.ClassIndex() || dataset.IsMissing(out[j]) {
			continue
		}
		out[j] = float64(binIndex(f.cutPoints[j], out[j]))
	}
	return out, nil
}

func binIndex(cuts []float64, v float64) int {
	for i, c := range cuts {
		if v <= c {
			return i
		}
	}
	return len(cuts)
}

func (f *Discretize) ApplyDataset(d *dataset.Dataset) (*dataset.Dataset, error) {
	if err := f.state.RequireFitted("Discretize", "ApplyDataset"); err != nil {
		return nil, err
	}
	return applyDataset(f, d)
}

// CutPoints returns the learned cut points of attribute j, nil when the
// attribute was not binned or collapsed to "All".
func (f *Discretize) CutPoints(j int) ([]float64, error) {
	if err := f.state.RequireFitted("Discretize", "CutPoints"); err != nil {
		return nil, err
	}
	if j < 0 || j >= len(f.cutPoints) {
		return nil, errors.NewValueError("Discretize.CutPoints", fmt.Sprintf("attribute index %d out of range", j))
	}
	return f.cutPoints[j], nil
}

func (f *Discretize) GetParams() map[string]interface{} {
	return map[string]interface{}{"bins": f.Bins}
}

func (f *Discretize) String() string {
	return fmt.Sprintf("Discretize(bins=%d)", f.Bins)
}

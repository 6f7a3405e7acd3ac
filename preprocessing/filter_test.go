package preprocessing

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// mixedDataset: numeric x, constant numeric k, 3-valued colour, 2-valued flag, class.
func mixedDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	schema := dataset.Schema{
		dataset.NewNumeric("x"),
		dataset.NewNumeric("k"),
		dataset.NewNominal("colour", []string{"red", "green", "blue"}),
		dataset.NewNominal("flag", []string{"no", "yes"}),
		dataset.NewNominal("class", []string{"a", "b"}),
	}
	rows := []dataset.Instance{
		{0, 5, 0, 0, 0},
		{5, 5, 1, 1, 1},
		{10, 5, 2, 1, 0},
	}
	d, err := dataset.New("mixed", schema, rows)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNormalize(t *testing.T) {
	d := mixedDataset(t)
	n := NewNormalize()
	if err := n.Fit(d); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	out, err := n.ApplyDataset(d)
	if err != nil {
		t.Fatalf("ApplyDataset failed: %v", err)
	}
	want := []dataset.Instance{
		{0, 0, 0, 0, 0},
		{0.5, 0, 1, 1, 1},
		{1, 0, 2, 1, 0},
	}
	if diff := cmp.Diff(want, out.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	// 学習範囲外の値はクリップされない
	got, err := n.Apply(dataset.Instance{20, 7, 1, 0, dataset.Missing})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got[0] != 2 || got[1] != 0 {
		t.Errorf("Apply = %v, want x=2 and constant=0", got)
	}
	if !dataset.IsMissing(got[4]) {
		t.Error("missing class slot should pass through")
	}

	// 入力データは変更されない
	if d.Rows[1][0] != 5 {
		t.Error("ApplyDataset modified its input")
	}
}

func TestNormalizeRangeOption(t *testing.T) {
	d := mixedDataset(t)
	n := NewNormalize(WithNormalizeRange(2, -1))
	if err := n.Fit(d); err != nil {
		t.Fatal(err)
	}
	got, err := n.Apply(d.Rows[2])
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 {
		t.Errorf("x = %v, want 1", got[0])
	}
	lo, hi, err := n.Range(0)
	if err != nil || lo != 0 || hi != 10 {
		t.Errorf("Range = %v, %v, %v", lo, hi, err)
	}
}

func TestFiltersRequireFit(t *testing.T) {
	filters := map[string]Filter{
		"normalize":         NewNormalize(),
		"discretize":        NewDiscretize(DefaultBins),
		"nominal_to_binary": NewNominalToBinary(),
		"chain":             NewChain(NewNormalize()),
	}
	for name, f := range filters {
		t.Run(name, func(t *testing.T) {
			_, err := f.Apply(dataset.Instance{1, 2, 0, 0, 0})
			var nf *errors.NotFittedError
			if !errors.As(err, &nf) {
				t.Errorf("expected NotFittedError, got %v", err)
			}
		})
	}
}

func TestFilterDimensionCheck(t *testing.T) {
	n := NewNormalize()
	if err := n.Fit(mixedDataset(t)); err != nil {
		t.Fatal(err)
	}
	_, err := n.Apply(dataset.Instance{1, 2})
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}

func TestDiscretize(t *testing.T) {
	d := mixedDataset(t)
	f := NewDiscretize(DefaultBins)
	if err := f.Fit(d); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	schema := f.OutputSchema()
	if !schema[0].IsNominal() || len(schema[0].Domain) != 10 {
		t.Fatalf("x should become a 10-valued nominal, got %+v", schema[0])
	}
	if schema[0].Domain[0] != "(-inf-1]" || schema[0].Domain[1] != "(1-2]" || schema[0].Domain[9] != "(9-inf)" {
		t.Errorf("unexpected labels %v", schema[0].Domain)
	}
	if diff := cmp.Diff([]string{"All"}, schema[1].Domain); diff != "" {
		t.Errorf("constant attribute labels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(d.Schema[2], schema[2]); diff != "" {
		t.Errorf("nominal attribute should be unchanged (-want +got):\n%s", diff)
	}

	out, err := f.ApplyDataset(d)
	if err != nil {
		t.Fatalf("ApplyDataset failed: %v", err)
	}
	// 0 -> bin 0, 5 -> bin 4 (5 <= 5), 10 -> bin 9
	want := []dataset.Instance{
		{0, 0, 0, 0, 0},
		{4, 0, 1, 1, 1},
		{9, 0, 2, 1, 0},
	}
	if diff := cmp.Diff(want, out.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	got, err := f.Apply(dataset.Instance{-100, 42, 0, 0, dataset.Missing})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("out of range values = %v", got[:2])
	}
}

func TestDiscretizeLabelsRounded(t *testing.T) {
	cuts := equalWidthCutPoints(0, 1, 3)
	labels := binLabels(cuts)
	want := []string{"(-inf-0.333333]", "(0.333333-0.666667]", "(0.666667-inf)"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if equalWidthCutPoints(0, 1, 1) != nil {
		t.Error("a single bin has no cut points")
	}
}

func TestNominalToBinary(t *testing.T) {
	d := mixedDataset(t)
	f := NewNominalToBinary()
	if err := f.Fit(d); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	var names []string
	for _, a := range f.OutputSchema() {
		names = append(names, a.Name)
	}
	wantNames := []string{"x", "k", "colour=red", "colour=green", "colour=blue", "flag", "class"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("output attributes (-want +got):\n%s", diff)
	}
	if f.OutputSchema()[2].IsNominal() || !f.OutputSchema()[6].IsNominal() {
		t.Error("indicators must be numeric and the class must stay nominal")
	}

	out, err := f.ApplyDataset(d)
	if err != nil {
		t.Fatalf("ApplyDataset failed: %v", err)
	}
	want := []dataset.Instance{
		{0, 5, 1, 0, 0, 0, 0},
		{5, 5, 0, 1, 0, 1, 1},
		{10, 5, 0, 0, 1, 1, 0},
	}
	if diff := cmp.Diff(want, out.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestChainOrder(t *testing.T) {
	d := mixedDataset(t)
	c := NewChain(NewNominalToBinary(), NewNormalize())
	out, err := c.FitApply(d)
	if err != nil {
		t.Fatalf("FitApply failed: %v", err)
	}
	if len(c.OutputSchema()) != 7 {
		t.Fatalf("output width = %d, want 7", len(c.OutputSchema()))
	}
	// x normalised, indicators stay in [0,1], constant k -> 0
	want := dataset.Instance{0.5, 0, 0, 1, 0, 1, 1}
	if diff := cmp.Diff(want, out.Rows[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}

	inst, err := c.Apply(dataset.Instance{2.5, 5, 2, 0, dataset.Missing})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(inst[0]-0.25) > 1e-12 || inst[4] != 1 || !dataset.IsMissing(inst[6]) {
		t.Errorf("Apply = %v", inst)
	}
}

func TestEmptyChainIsIdentity(t *testing.T) {
	d := mixedDataset(t)
	c := NewChain()
	out, err := c.FitApply(d)
	if err != nil {
		t.Fatal(err)
	}
	if out != d {
		t.Error("empty chain should return its input")
	}
	if diff := cmp.Diff(d.Schema, c.OutputSchema()); diff != "" {
		t.Errorf("schema (-want +got):\n%s", diff)
	}
}

func TestFitEmptyData(t *testing.T) {
	d := mixedDataset(t).WithRows(nil)
	if err := NewNormalize().Fit(d); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Normalize: got %v", err)
	}
	if err := NewDiscretize(3).Fit(d); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Discretize: got %v", err)
	}
}

package naive_bayes

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

func toyDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	schema := dataset.Schema{
		dataset.NewNominal("sky", []string{"sunny", "rainy"}),
		dataset.NewNumeric("temp"),
		dataset.NewNominal("play", []string{"yes", "no"}),
	}
	rows := []dataset.Instance{
		{0, 25, 0},
		{0, 27, 0},
		{0, 24, 0},
		{1, 10, 1},
		{1, 12, 1},
		{1, 11, 1},
	}
	d, err := dataset.New("toy", schema, rows)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNaiveBayesFitClassify(t *testing.T) {
	d := toyDataset(t)
	nb := New()
	if err := nb.Fit(d); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for i, row := range d.Rows {
		got, err := nb.Classify(row)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if got != d.Class(i) {
			t.Errorf("row %d: got class %d, want %d", i, got, d.Class(i))
		}
	}

	if _, err := nb.Classify(dataset.Instance{1, 26, dataset.Missing}); err != nil {
		t.Fatalf("Classify with mixed evidence failed: %v", err)
	}

	proba, err := nb.PredictProba(dataset.Instance{0, 25, dataset.Missing})
	if err != nil {
		t.Fatal(err)
	}
	sum := proba[0] + proba[1]
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %v", sum)
	}
	if proba[0] <= 0.9 {
		t.Errorf("P(yes | sunny, 25) = %v, want > 0.9", proba[0])
	}
}

func TestNaiveBayesLaplaceSmoothing(t *testing.T) {
	d := toyDataset(t)
	nb := New(WithAlpha(1))
	if err := nb.Fit(d); err != nil {
		t.Fatal(err)
	}
	// P(sky=rainy | yes) = (0+1)/(3+2)
	want := math.Log(1.0 / 5.0)
	if got := nb.logLikeNom[0][0][1]; math.Abs(got-want) > 1e-12 {
		t.Errorf("log P(rainy|yes) = %v, want %v", got, want)
	}
	if params := nb.GetParams(); params["alpha"] != 1.0 {
		t.Errorf("GetParams = %v", params)
	}
}

func TestNaiveBayesConstantAttribute(t *testing.T) {
	schema := dataset.Schema{
		dataset.NewNumeric("k"),
		dataset.NewNominal("c", []string{"a", "b"}),
	}
	d, err := dataset.New("const", schema, []dataset.Instance{{1, 0}, {1, 0}, {1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	nb := New()
	if err := nb.Fit(d); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	got, err := nb.Classify(dataset.Instance{1, dataset.Missing})
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("got %d, want majority class 0", got)
	}
}

func TestNaiveBayesErrors(t *testing.T) {
	nb := New()
	if _, err := nb.Classify(dataset.Instance{0, 1, 0}); err == nil {
		t.Error("expected NotFittedError")
	}

	schema := dataset.Schema{dataset.NewNumeric("x"), dataset.NewNumeric("y")}
	d, err := dataset.New("reg", schema, []dataset.Instance{{1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	var ce *errors.CapabilityError
	if !errors.As(nb.Fit(d), &ce) {
		t.Error("expected CapabilityError for numeric class")
	}

	if err := New(WithAlpha(-1)).Fit(toyDataset(t)); err == nil {
		t.Error("expected ValidationError for negative alpha")
	}
}

package model_selection

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/sklearn/tree"
)

func loadIris(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Load("../dataset/testdata/iris.arff")
	if err != nil {
		t.Fatalf("Failed to load iris: %v", err)
	}
	return d
}

// majority predicts the most frequent training class and insists the class
// slot of classified instances is blank.
type majority struct {
	class   int
	classIx int
}

func (m *majority) Fit(d *dataset.Dataset) error {
	counts := d.ClassCounts()
	m.class = 0
	for c, n := range counts {
		if n > counts[m.class] {
			m.class = c
		}
	}
	m.classIx = d.ClassIndex()
	return nil
}

func (m *majority) Classify(inst dataset.Instance) (int, error) {
	if !dataset.IsMissing(inst[m.classIx]) {
		return 0, errors.New("class slot leaked into Classify")
	}
	return m.class, nil
}

type panicky struct{}

func (panicky) Fit(*dataset.Dataset) error             { panic("boom") }
func (panicky) Classify(dataset.Instance) (int, error) { return 0, nil }

func TestStratifiedKFold_Split(t *testing.T) {
	d := loadIris(t)
	folds := NewStratifiedKFold(10, 1).Split(d)
	if len(folds) != 10 {
		t.Fatalf("expected 10 folds, got %d", len(folds))
	}

	seen := make(map[int]int)
	for k, f := range folds {
		if len(f.TestIndices)+len(f.TrainIndices) != d.InstanceCount() {
			t.Errorf("fold %d does not cover every row", k)
		}
		counts := make([]int, d.NumClasses())
		for _, i := range f.TestIndices {
			seen[i]++
			counts[d.Class(i)]++
		}
		for c, n := range counts {
			if n != 5 {
				t.Errorf("fold %d holds %d rows of class %d, want 5", k, n, c)
			}
		}
	}
	for i := 0; i < d.InstanceCount(); i++ {
		if seen[i] != 1 {
			t.Errorf("row %d tested %d times", i, seen[i])
		}
	}

	again := NewStratifiedKFold(10, 1).Split(d)
	if diff := cmp.Diff(folds, again); diff != "" {
		t.Errorf("split not deterministic (-first +second):\n%s", diff)
	}
	other := NewStratifiedKFold(10, 2).Split(d)
	if cmp.Equal(folds, other) {
		t.Error("a different seed should give a different assignment")
	}
}

func TestStratifiedKFold_MinimumSplits(t *testing.T) {
	if got := NewStratifiedKFold(1, 1).GetNSplits(); got != 2 {
		t.Errorf("GetNSplits() = %d, want 2", got)
	}
}

func TestEvaluator_Iris(t *testing.T) {
	d := loadIris(t)
	var calls atomic.Int32
	factory := func() model.Classifier {
		calls.Add(1)
		return tree.NewC45Tree()
	}

	ev, err := NewEvaluator().Evaluate(factory, d)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if ev.Folds != 10 || len(ev.FoldAccuracies) != 10 {
		t.Errorf("expected 10 folds, got %d (%d accuracies)", ev.Folds, len(ev.FoldAccuracies))
	}
	if ev.Total != 150 || ev.Confusion.Total() != 150 {
		t.Errorf("every row should be tested once: total %d, confusion %d", ev.Total, ev.Confusion.Total())
	}
	if ev.Correct != ev.Confusion.Correct() {
		t.Errorf("Correct %d disagrees with confusion matrix %d", ev.Correct, ev.Confusion.Correct())
	}
	if ev.AccuracyPercent < 85 || ev.AccuracyPercent > 100 {
		t.Errorf("AccuracyPercent = %.2f, expected J48 to do well on iris", ev.AccuracyPercent)
	}
	if math.Abs(ev.MeanAccuracy-ev.AccuracyPercent) > 1e-9 {
		// Equal-sized folds make the fold mean equal to the pooled accuracy.
		t.Errorf("MeanAccuracy %.4f != AccuracyPercent %.4f", ev.MeanAccuracy, ev.AccuracyPercent)
	}
	for k, acc := range ev.FoldAccuracies {
		// 15 held-out rows per fold.
		if hits := acc * 15 / 100; math.Abs(hits-math.Round(hits)) > 1e-9 {
			t.Errorf("fold %d accuracy %.4f is not a whole number of 15 rows", k+1, acc)
		}
	}
	if ev.Unit == nil {
		t.Fatal("expected a retrained unit")
	}
	if got := calls.Load(); got != 11 {
		t.Errorf("factory called %d times, want 11", got)
	}
}

func TestEvaluator_Deterministic(t *testing.T) {
	d := loadIris(t)
	factory := func() model.Classifier { return tree.NewRandomTree() }

	seq, err := NewEvaluator().Evaluate(factory, d)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	par, err := NewEvaluator(WithFoldWorkers(4)).Evaluate(factory, d)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if seq.Correct != par.Correct {
		t.Errorf("parallel folds changed the result: %d vs %d", seq.Correct, par.Correct)
	}
	if diff := cmp.Diff(seq.FoldAccuracies, par.FoldAccuracies); diff != "" {
		t.Errorf("fold accuracies differ (-seq +par):\n%s", diff)
	}
}

func TestEvaluator_SmallData(t *testing.T) {
	schema := dataset.Schema{
		dataset.NewNumeric("x"),
		dataset.NewNominal("class", []string{"a", "b"}),
	}
	d, err := dataset.New("tiny", schema, []dataset.Instance{{1, 0}, {2, 1}, {3, 1}})
	if err != nil {
		t.Fatalf("dataset.New failed: %v", err)
	}

	ev, err := NewEvaluator().Evaluate(func() model.Classifier { return &majority{} }, d)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if ev.Folds != 3 {
		t.Errorf("Folds = %d, want 3", ev.Folds)
	}
	if ev.Correct < 0 || ev.Correct > 3 {
		t.Errorf("Correct = %d out of range", ev.Correct)
	}

	one := d.WithRows(d.Rows[:1])
	var ve *errors.ValueError
	if _, err := NewEvaluator().Evaluate(func() model.Classifier { return &majority{} }, one); !errors.As(err, &ve) {
		t.Errorf("expected ValueError for a single row, got %v", err)
	}
}

func TestEvaluator_Errors(t *testing.T) {
	d := loadIris(t)

	var pe *errors.PanicError
	_, err := NewEvaluator().Evaluate(func() model.Classifier { return panicky{} }, d)
	if !errors.As(err, &pe) {
		t.Errorf("expected PanicError, got %v", err)
	}

	if _, err := NewEvaluator().Evaluate(nil, d); err == nil {
		t.Error("expected error for a nil factory")
	}
	if _, err := NewEvaluator().Evaluate(func() model.Classifier { return &majority{} }, nil); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
	var vle *errors.ValidationError
	if _, err := NewEvaluator(WithFolds(1)).Evaluate(func() model.Classifier { return &majority{} }, d); !errors.As(err, &vle) {
		t.Errorf("expected ValidationError for one fold, got %v", err)
	}

	numeric, _ := dataset.New("num", dataset.Schema{dataset.NewNumeric("x"), dataset.NewNumeric("y")},
		[]dataset.Instance{{1, 2}, {2, 3}})
	var ce *errors.CapabilityError
	if _, err := NewEvaluator().Evaluate(func() model.Classifier { return &majority{} }, numeric); !errors.As(err, &ce) {
		t.Errorf("expected CapabilityError, got %v", err)
	}
}

func TestEvaluator_Majority(t *testing.T) {
	d := loadIris(t)
	ev, err := NewEvaluator().Evaluate(func() model.Classifier { return &majority{} }, d)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// Each training split keeps 45/45/45, so the lowest class always wins.
	if ev.Correct != 50 {
		t.Errorf("Correct = %d, want 50", ev.Correct)
	}
}

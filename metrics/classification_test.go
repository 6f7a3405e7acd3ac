package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/pkg/errors"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Perfect accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 2, 1, 0},
			want:  1.0,
		},
		{
			name:  "80% accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 1, 1, 0},
			want:  0.8,
		},
		{
			name:  "Zero accuracy",
			yTrue: []float64{0, 0, 0},
			yPred: []float64{1, 1, 1},
			want:  0.0,
		},
		{
			name:    "Length mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0},
			wantErr: true,
		},
		{
			name:    "Empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var yTrue, yPred *mat.VecDense
			if len(tt.yTrue) > 0 {
				yTrue = mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			}
			if len(tt.yPred) > 0 {
				yPred = mat.NewVecDense(len(tt.yPred), tt.yPred)
			}

			got, err := Accuracy(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newYesNo(t *testing.T) *ConfusionMatrix {
	t.Helper()
	cm := NewConfusionMatrix([]string{"yes", "no"})
	pairs := [][2]int{
		{0, 0}, {0, 0}, {0, 0}, {0, 1},
		{1, 1}, {1, 1}, {1, 0},
	}
	for _, p := range pairs {
		if err := cm.Add(p[0], p[1]); err != nil {
			t.Fatalf("Add(%d, %d) failed: %v", p[0], p[1], err)
		}
	}
	return cm
}

func TestConfusionMatrix(t *testing.T) {
	cm := newYesNo(t)

	if got := cm.Total(); got != 7 {
		t.Errorf("Total() = %d, want 7", got)
	}
	if got := cm.Correct(); got != 5 {
		t.Errorf("Correct() = %d, want 5", got)
	}
	if got := cm.Accuracy(); math.Abs(got-5.0/7.0) > 1e-12 {
		t.Errorf("Accuracy() = %v, want %v", got, 5.0/7.0)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"precision yes", cm.Precision(0), 3.0 / 4.0},
		{"recall yes", cm.Recall(0), 3.0 / 4.0},
		{"precision no", cm.Precision(1), 2.0 / 3.0},
		{"recall no", cm.Recall(1), 2.0 / 3.0},
		{"f1 no", cm.F1(1), 2.0 / 3.0},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	want := "   a   b   <-- classified as\n" +
		"   3   1 |    a = yes\n" +
		"   1   2 |    b = no\n"
	if got := cm.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestConfusionMatrix_Merge(t *testing.T) {
	a, b := newYesNo(t), newYesNo(t)
	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if a.Total() != 14 || a.Count(0, 0) != 6 {
		t.Errorf("merged counts wrong: total %d, (0,0) %d", a.Total(), a.Count(0, 0))
	}
	if err := a.Merge(NewConfusionMatrix([]string{"x"})); err == nil {
		t.Error("expected error when merging different class counts")
	}
}

func TestConfusionMatrix_Undefined(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	cm := NewConfusionMatrix([]string{"a", "b"})
	_ = cm.Add(0, 0)
	if got := cm.Precision(1); got != 0 {
		t.Errorf("Precision of a never-predicted class = %v, want 0", got)
	}
	if got := cm.Recall(1); got != 0 {
		t.Errorf("Recall of an absent class = %v, want 0", got)
	}
	if len(warned) != 2 {
		t.Errorf("expected 2 UndefinedMetricWarnings, got %d", len(warned))
	}

	if err := cm.Add(2, 0); err == nil {
		t.Error("expected error for an out-of-range class")
	}
}

func TestColumnName(t *testing.T) {
	for i, want := range map[int]string{0: "a", 25: "z", 26: "aa", 27: "ab"} {
		if got := columnName(i); got != want {
			t.Errorf("columnName(%d) = %q, want %q", i, got, want)
		}
	}
}

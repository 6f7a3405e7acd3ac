package neighbors

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/pkg/errors"
)

func clusters() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0.1, 0.1,
		0.2, 0,
		1, 1,
		0.9, 1,
		1, 0.9,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})
	return X, y
}

func TestKNeighborsClassifier_Predict(t *testing.T) {
	tests := []struct {
		name string
		k    int
		x    []float64
		want float64
	}{
		{"k=1 near class 0", 1, []float64{0.05, 0.05}, 0},
		{"k=1 near class 1", 1, []float64{0.95, 0.95}, 1},
		{"k=3 near class 1", 3, []float64{0.7, 0.7}, 1},
		{"k=5 near class 0", 5, []float64{0.1, 0.2}, 0},
	}

	X, y := clusters()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			knn := NewKNeighborsClassifier(WithK(tt.k))
			if err := knn.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			pred, err := knn.Predict(mat.NewDense(1, 2, tt.x))
			if err != nil {
				t.Fatalf("Predict failed: %v", err)
			}
			if got := pred.At(0, 0); got != tt.want {
				t.Errorf("Predict(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestKNeighborsClassifier_TrainingRowsK1(t *testing.T) {
	X, y := clusters()
	knn := NewKNeighborsClassifier()
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pred, err := knn.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !mat.Equal(pred, y) {
		t.Errorf("1-NN should reproduce training labels, got %v", mat.Formatted(pred))
	}
}

func TestKNeighborsClassifier_Ties(t *testing.T) {
	// Query is equidistant from every point; the earlier training rows win
	// the neighbour slots, and a 1-1 vote goes to the lower class.
	X := mat.NewDense(4, 1, []float64{1, -1, 1, -1})
	y := mat.NewDense(4, 1, []float64{1, 0, 1, 0})

	knn := NewKNeighborsClassifier(WithK(2))
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	nbrs, err := knn.Neighbors([]float64{0})
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1}, nbrs); diff != "" {
		t.Errorf("Neighbors mismatch (-want +got):\n%s", diff)
	}
	pred, err := knn.Predict(mat.NewDense(1, 1, []float64{0}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.At(0, 0) != 0 {
		t.Errorf("tied vote should go to class 0, got %v", pred.At(0, 0))
	}
}

func TestKNeighborsClassifier_KLargerThanData(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 1, 2})
	y := mat.NewDense(3, 1, []float64{1, 1, 0})
	knn := NewKNeighborsClassifier(WithK(5))
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pred, err := knn.Predict(mat.NewDense(1, 1, []float64{2}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.At(0, 0) != 1 {
		t.Errorf("majority over all rows should be 1, got %v", pred.At(0, 0))
	}
}

func TestKNeighborsClassifier_Errors(t *testing.T) {
	knn := NewKNeighborsClassifier()
	_, err := knn.Predict(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %v", err)
	}

	bad := NewKNeighborsClassifier(WithK(0))
	X, y := clusters()
	var ve *errors.ValidationError
	if err := bad.Fit(X, y); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for k=0, got %v", err)
	}

	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	var de *errors.DimensionError
	if _, err := knn.Predict(mat.NewDense(1, 3, nil)); !errors.As(err, &de) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}

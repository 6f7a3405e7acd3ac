package neural_network

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/pkg/errors"
)

func TestMLPClassifier_FitPredict_Binary(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 0.2,
		0.2, 0,
		0.1, 0.1,
		1, 1,
		0.8, 1,
		1, 0.8,
		0.9, 0.9,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	mlp := NewMLPClassifier(WithEpochs(2000))
	if err := mlp.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pred, err := mlp.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < 8; i++ {
		if got, want := pred.At(i, 0), y.At(i, 0); got != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, got)
		}
	}
	if mlp.Loss() > 0.1 {
		t.Errorf("final loss %v too high", mlp.Loss())
	}
}

func TestMLPClassifier_Multiclass(t *testing.T) {
	X := mat.NewDense(9, 2, []float64{
		0, 0,
		0.1, 0.1,
		0, 0.1,
		1, 0,
		0.9, 0.1,
		1, 0.1,
		0, 1,
		0.1, 0.9,
		0.1, 1,
	})
	y := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})

	mlp := NewMLPClassifier(WithEpochs(3000), WithHiddenUnits(4))
	if err := mlp.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pred, err := mlp.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < 9; i++ {
		if got, want := pred.At(i, 0), y.At(i, 0); got != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, got)
		}
	}

	probas, err := mlp.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	for i := 0; i < 9; i++ {
		sum := 0.0
		for c := 0; c < 3; c++ {
			sum += probas.At(i, c)
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("Sample %d: probabilities sum to %v", i, sum)
		}
	}
}

func TestMLPClassifier_Deterministic(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 0.3, 0.6, 1})
	y := mat.NewDense(4, 1, []float64{0, 1, 0, 1})

	a, b := NewMLPClassifier(WithEpochs(50)), NewMLPClassifier(WithEpochs(50))
	if err := a.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !mat.Equal(a.hidden_, b.hidden_) || !mat.Equal(a.output_, b.output_) {
		t.Error("identical seeds produced different weights")
	}
}

func TestMLPClassifier_NoFeatures(t *testing.T) {
	// A dataset without attributes still trains on the bias inputs alone.
	X := mat.NewDense(3, 1, nil)
	y := mat.NewDense(3, 1, []float64{1, 1, 0})

	mlp := NewMLPClassifier()
	if err := mlp.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pred, err := mlp.Predict(mat.NewDense(1, 1, nil))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.At(0, 0) != 1 {
		t.Errorf("expected majority class 1, got %v", pred.At(0, 0))
	}
}

func TestMLPClassifier_Errors(t *testing.T) {
	mlp := NewMLPClassifier()
	var nf *errors.NotFittedError
	if _, err := mlp.Predict(mat.NewDense(1, 1, nil)); !errors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %v", err)
	}

	tests := []struct {
		name string
		opt  Option
	}{
		{"learning rate", WithLearningRate(0)},
		{"momentum", WithMomentum(1)},
		{"epochs", WithEpochs(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve *errors.ValidationError
			err := NewMLPClassifier(tt.opt).Fit(mat.NewDense(1, 1, nil), mat.NewDense(1, 1, nil))
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

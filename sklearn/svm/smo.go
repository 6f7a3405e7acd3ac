// Package svm provides a support vector classifier trained by sequential
// minimal optimization.
package svm

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// SVC is a soft-margin support vector classifier with a polynomial kernel
// (x·z)^exponent, linear by default. Multi-class problems are decomposed
// into one binary machine per pair of classes, and the class with the most
// pairwise votes wins; ties go to the lower class.
type SVC struct {
	state *model.StateManager

	c        float64
	exponent float64
	tol      float64
	maxPass  int
	maxIter  int
	seed     int64

	classes_   []int
	machines_  []*binaryMachine
	nFeatures_ int
}

// Option configures an SVC.
type Option func(*SVC)

// WithC sets the complexity constant.
func WithC(c float64) Option {
	return func(s *SVC) {
		s.c = c
	}
}

// WithExponent sets the polynomial kernel exponent.
func WithExponent(p float64) Option {
	return func(s *SVC) {
		s.exponent = p
	}
}

// WithTol sets the KKT tolerance.
func WithTol(tol float64) Option {
	return func(s *SVC) {
		s.tol = tol
	}
}

// WithMaxIter caps the number of sweeps over the data per binary machine.
func WithMaxIter(n int) Option {
	return func(s *SVC) {
		s.maxIter = n
	}
}

// WithSeed seeds the choice of the second multiplier.
func WithSeed(seed int64) Option {
	return func(s *SVC) {
		s.seed = seed
	}
}

// NewSVC creates a linear SVC with C=1.
func NewSVC(opts ...Option) *SVC {
	s := &SVC{
		state:    model.NewStateManager(),
		c:        1.0,
		exponent: 1.0,
		tol:      1e-3,
		maxPass:  10,
		maxIter:  10000,
		seed:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// binaryMachine separates negative from positive (class indices into
// classes_). Only rows with non-zero multipliers are kept.
type binaryMachine struct {
	negative, positive int
	support            [][]float64
	coef               []float64 // alpha_k * y_k
	bias               float64
}

func (m *binaryMachine) decision(x []float64, kernel func(a, b []float64) float64) float64 {
	f := m.bias
	for k, sv := range m.support {
		f += m.coef[k] * kernel(sv, x)
	}
	return f
}

func (s *SVC) kernel(a, b []float64) float64 {
	dot := floats.Dot(a, b)
	if s.exponent == 1 {
		return dot
	}
	return math.Pow(dot, s.exponent)
}

// Fit trains one binary machine per pair of classes present in y.
func (s *SVC) Fit(X, y mat.Matrix) error {
	s.state.Reset()
	if s.c <= 0 {
		return errors.NewValidationError("C", "must be positive", s.c)
	}
	rows, cols := X.Dims()
	yRows, _ := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("SVC.Fit", rows, yRows, 0)
	}
	if rows == 0 {
		return errors.NewModelError("SVC.Fit", "empty data", errors.ErrEmptyData)
	}

	xs := make([][]float64, rows)
	byClass := make(map[int][]int)
	for i := 0; i < rows; i++ {
		xs[i] = mat.Row(nil, i, X)
		c := int(y.At(i, 0))
		byClass[c] = append(byClass[c], i)
	}
	s.classes_ = s.classes_[:0]
	for c := range byClass {
		s.classes_ = append(s.classes_, c)
	}
	sort.Ints(s.classes_)

	rng := rand.New(rand.NewPCG(uint64(s.seed), uint64(s.seed)))
	s.machines_ = nil
	for a := 0; a < len(s.classes_); a++ {
		for b := a + 1; b < len(s.classes_); b++ {
			idx := append(append([]int(nil), byClass[s.classes_[a]]...), byClass[s.classes_[b]]...)
			sort.Ints(idx)
			labels := make([]float64, len(idx))
			for k, i := range idx {
				labels[k] = -1
				if int(y.At(i, 0)) == s.classes_[b] {
					labels[k] = 1
				}
			}
			m, err := s.trainBinary(xs, idx, labels, rng)
			if err != nil {
				return err
			}
			m.negative, m.positive = a, b
			s.machines_ = append(s.machines_, m)
		}
	}

	s.nFeatures_ = cols
	s.state.SetDimensions(cols, rows)
	s.state.SetFitted()
	return nil
}

// trainBinary runs SMO over the rows idx with labels in {-1, +1}.
func (s *SVC) trainBinary(xs [][]float64, idx []int, labels []float64, rng *rand.Rand) (*binaryMachine, error) {
	n := len(idx)
	alpha := make([]float64, n)
	// fcache[k] holds sum_j alpha_j y_j K(x_j, x_k), without the bias.
	fcache := make([]float64, n)
	diag := make([]float64, n)
	for k, i := range idx {
		diag[k] = s.kernel(xs[i], xs[i])
	}
	b := 0.0

	passes, iter := 0, 0
	for passes < s.maxPass && iter < s.maxIter {
		changed := 0
		for i := 0; i < n; i++ {
			ei := fcache[i] + b - labels[i]
			r := labels[i] * ei
			if !((r < -s.tol && alpha[i] < s.c) || (r > s.tol && alpha[i] > 0)) {
				continue
			}
			j := rng.IntN(n - 1)
			if j >= i {
				j++
			}
			ej := fcache[j] + b - labels[j]

			ai, aj := alpha[i], alpha[j]
			var lo, hi float64
			if labels[i] != labels[j] {
				lo, hi = math.Max(0, aj-ai), math.Min(s.c, s.c+aj-ai)
			} else {
				lo, hi = math.Max(0, ai+aj-s.c), math.Min(s.c, ai+aj)
			}
			if lo == hi {
				continue
			}
			kij := s.kernel(xs[idx[i]], xs[idx[j]])
			eta := 2*kij - diag[i] - diag[j]
			if eta >= 0 {
				continue
			}

			newAj := aj - labels[j]*(ei-ej)/eta
			newAj = math.Min(hi, math.Max(lo, newAj))
			if math.Abs(newAj-aj) < 1e-5 {
				continue
			}
			newAi := ai + labels[i]*labels[j]*(aj-newAj)
			dai, daj := newAi-ai, newAj-aj

			b1 := b - ei - labels[i]*dai*diag[i] - labels[j]*daj*kij
			b2 := b - ej - labels[i]*dai*kij - labels[j]*daj*diag[j]
			switch {
			case newAi > 0 && newAi < s.c:
				b = b1
			case newAj > 0 && newAj < s.c:
				b = b2
			default:
				b = (b1 + b2) / 2
			}

			alpha[i], alpha[j] = newAi, newAj
			for k := 0; k < n; k++ {
				x := xs[idx[k]]
				fcache[k] += labels[i]*dai*s.kernel(xs[idx[i]], x) + labels[j]*daj*s.kernel(xs[idx[j]], x)
			}
			changed++
		}
		iter++
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}
	if passes < s.maxPass {
		errors.Warn(errors.NewConvergenceWarning("SVC", iter, "SMO did not reach the KKT tolerance"))
	}
	if err := errors.CheckNumericalStability("SVC.Fit", alpha, iter); err != nil {
		return nil, err
	}

	m := &binaryMachine{bias: b}
	for k, a := range alpha {
		if a > 0 {
			m.support = append(m.support, xs[idx[k]])
			m.coef = append(m.coef, a*labels[k])
		}
	}
	return m, nil
}

// Predict returns the voted class of every row of X.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("SVC", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != s.nFeatures_ {
		return nil, errors.NewDimensionError("SVC.Predict", s.nFeatures_, cols, 1)
	}

	out := mat.NewDense(rows, 1, nil)
	votes := make([]int, len(s.classes_))
	for i := 0; i < rows; i++ {
		x := mat.Row(nil, i, X)
		for k := range votes {
			votes[k] = 0
		}
		for _, m := range s.machines_ {
			if m.decision(x, s.kernel) > 0 {
				votes[m.positive]++
			} else {
				votes[m.negative]++
			}
		}
		best := 0
		for k, v := range votes {
			if v > votes[best] {
				best = k
			}
		}
		out.Set(i, 0, float64(s.classes_[best]))
	}
	return out, nil
}

// DecisionFunction returns the signed distance of x from the machine
// separating classes a and b; positive values favour b.
func (s *SVC) DecisionFunction(x []float64, a, b int) (float64, error) {
	if err := s.state.RequireFitted("SVC", "DecisionFunction"); err != nil {
		return 0, err
	}
	for _, m := range s.machines_ {
		if s.classes_[m.negative] == a && s.classes_[m.positive] == b {
			return m.decision(x, s.kernel), nil
		}
	}
	return 0, errors.NewValueError("SVC.DecisionFunction", fmt.Sprintf("no machine for classes %d and %d", a, b))
}

// NumSupportVectors returns the total number of support vectors across all
// binary machines.
func (s *SVC) NumSupportVectors() int {
	n := 0
	for _, m := range s.machines_ {
		n += len(m.support)
	}
	return n
}

// GetParams returns the model hyperparameters.
func (s *SVC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":        s.c,
		"exponent": s.exponent,
		"tol":      s.tol,
		"max_iter": s.maxIter,
		"seed":     s.seed,
	}
}

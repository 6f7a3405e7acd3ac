// Package neural_network provides a feed-forward multilayer perceptron
// classifier trained by online backpropagation.
package neural_network

import (
	"context"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/pkg/log"
)

// MLPClassifier has one hidden layer of sigmoid units and one sigmoid
// output unit per class. Weights are updated after every training row with
// a fixed learning rate and momentum; rows are shuffled once before the
// first epoch.
type MLPClassifier struct {
	state *model.StateManager

	hiddenUnits  int // 0 selects (features + classes) / 2
	learningRate float64
	momentum     float64
	epochs       int
	seed         int64

	// Each weight row has the bias in column 0.
	hidden_    *mat.Dense // hidden x (features+1)
	output_    *mat.Dense // classes x (hidden+1)
	classes_   []int
	nFeatures_ int
	loss_      float64
}

// Option configures an MLPClassifier.
type Option func(*MLPClassifier)

// WithHiddenUnits sets the hidden layer width.
func WithHiddenUnits(n int) Option {
	return func(m *MLPClassifier) {
		m.hiddenUnits = n
	}
}

// WithLearningRate sets the backpropagation step size.
func WithLearningRate(lr float64) Option {
	return func(m *MLPClassifier) {
		m.learningRate = lr
	}
}

// WithMomentum sets the fraction of the previous weight change carried over.
func WithMomentum(mom float64) Option {
	return func(m *MLPClassifier) {
		m.momentum = mom
	}
}

// WithEpochs sets the number of passes over the training data.
func WithEpochs(n int) Option {
	return func(m *MLPClassifier) {
		m.epochs = n
	}
}

// WithSeed seeds weight initialisation and the row shuffle.
func WithSeed(seed int64) Option {
	return func(m *MLPClassifier) {
		m.seed = seed
	}
}

// NewMLPClassifier creates an MLP with learning rate 0.3, momentum 0.2 and
// 500 epochs.
func NewMLPClassifier(opts ...Option) *MLPClassifier {
	m := &MLPClassifier{
		state:        model.NewStateManager(),
		learningRate: 0.3,
		momentum:     0.2,
		epochs:       500,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}

// layer computes sigmoid(W·[1, in]) into out.
func layer(w *mat.Dense, in, out []float64) {
	for u := range out {
		row := w.RawRowView(u)
		out[u] = sigmoid(row[0] + floats.Dot(row[1:], in))
	}
}

// Fit trains the network on X with class indices y.
func (m *MLPClassifier) Fit(X, y mat.Matrix) error {
	m.state.Reset()
	if m.learningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", m.learningRate)
	}
	if m.momentum < 0 || m.momentum >= 1 {
		return errors.NewValidationError("momentum", "must be in [0, 1)", m.momentum)
	}
	if m.epochs < 0 {
		return errors.NewValidationError("epochs", "must be non-negative", m.epochs)
	}
	rows, cols := X.Dims()
	yRows, _ := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("MLPClassifier.Fit", rows, yRows, 0)
	}
	if rows == 0 {
		return errors.NewModelError("MLPClassifier.Fit", "empty data", errors.ErrEmptyData)
	}

	m.extractClasses(y)
	classPos := make(map[int]int, len(m.classes_))
	for i, c := range m.classes_ {
		classPos[c] = i
	}
	k := len(m.classes_)
	h := m.hiddenUnits
	if h <= 0 {
		h = max((cols+k)/2, 1)
	}

	rng := rand.New(rand.NewPCG(uint64(m.seed), uint64(m.seed)))
	m.hidden_ = randomWeights(rng, h, cols+1)
	m.output_ = randomWeights(rng, k, h+1)
	prevHidden := mat.NewDense(h, cols+1, nil)
	prevOutput := mat.NewDense(k, h+1, nil)

	xs := make([][]float64, rows)
	targets := make([]int, rows)
	for i := 0; i < rows; i++ {
		xs[i] = mat.Row(nil, i, X)
		targets[i] = classPos[int(y.At(i, 0))]
	}
	order := rng.Perm(rows)

	hid := make([]float64, h)
	out := make([]float64, k)
	deltaOut := make([]float64, k)
	deltaHid := make([]float64, h)
	logger := log.GetLoggerWithName("MLPClassifier")

	for epoch := 0; epoch < m.epochs; epoch++ {
		sse := 0.0
		for _, i := range order {
			x := xs[i]
			layer(m.hidden_, x, hid)
			layer(m.output_, hid, out)

			for c := range out {
				t := 0.0
				if c == targets[i] {
					t = 1.0
				}
				diff := t - out[c]
				sse += diff * diff
				deltaOut[c] = diff * out[c] * (1 - out[c])
			}
			for u := range hid {
				back := 0.0
				for c := range out {
					back += deltaOut[c] * m.output_.At(c, u+1)
				}
				deltaHid[u] = back * hid[u] * (1 - hid[u])
			}

			m.update(m.output_, prevOutput, deltaOut, hid)
			m.update(m.hidden_, prevHidden, deltaHid, x)
		}
		m.loss_ = sse / float64(rows)
		if logger.Enabled(context.Background(), log.LevelDebug) && (epoch+1)%100 == 0 {
			logger.Debug("epoch finished", log.EpochKey, epoch+1, log.LossKey, m.loss_)
		}
	}

	if err := errors.CheckNumericalStability("MLPClassifier.Fit", m.hidden_.RawMatrix().Data, m.epochs); err != nil {
		return err
	}
	if err := errors.CheckNumericalStability("MLPClassifier.Fit", m.output_.RawMatrix().Data, m.epochs); err != nil {
		return err
	}

	m.nFeatures_ = cols
	m.state.SetDimensions(cols, rows)
	m.state.SetFitted()
	return nil
}

// update applies w += lr*delta*[1, in] + momentum*prev and records the
// change in prev.
func (m *MLPClassifier) update(w, prev *mat.Dense, delta, in []float64) {
	for u, d := range delta {
		row := w.RawRowView(u)
		last := prev.RawRowView(u)
		for j := range row {
			input := 1.0
			if j > 0 {
				input = in[j-1]
			}
			change := m.learningRate*d*input + m.momentum*last[j]
			row[j] += change
			last[j] = change
		}
	}
}

func randomWeights(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.Float64()*0.1 - 0.05
	}
	return mat.NewDense(r, c, data)
}

func (m *MLPClassifier) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	seen := make(map[int]bool)
	m.classes_ = m.classes_[:0]
	for i := 0; i < rows; i++ {
		c := int(y.At(i, 0))
		if !seen[c] {
			seen[c] = true
			m.classes_ = append(m.classes_, c)
		}
	}
	sort.Ints(m.classes_)
}

// PredictProba returns the output activations normalised to sum to one.
func (m *MLPClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MLPClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != m.nFeatures_ {
		return nil, errors.NewDimensionError("MLPClassifier.PredictProba", m.nFeatures_, cols, 1)
	}

	hRows, _ := m.hidden_.Dims()
	hid := make([]float64, hRows)
	out := make([]float64, len(m.classes_))
	probas := mat.NewDense(rows, len(m.classes_), nil)
	for i := 0; i < rows; i++ {
		layer(m.hidden_, mat.Row(nil, i, X), hid)
		layer(m.output_, hid, out)
		sum := floats.Sum(out)
		for c, o := range out {
			probas.Set(i, c, errors.SafeDivide(o, sum))
		}
	}
	return probas, nil
}

// Predict returns the class with the highest output for every row of X.
func (m *MLPClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	rows, _ := probas.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, probas)
		out.Set(i, 0, float64(m.classes_[floats.MaxIdx(row)]))
	}
	return out, nil
}

// Loss returns the mean squared output error of the last training epoch.
func (m *MLPClassifier) Loss() float64 {
	return m.loss_
}

// GetParams returns the model hyperparameters.
func (m *MLPClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"hidden_units":  m.hiddenUnits,
		"learning_rate": m.learningRate,
		"momentum":      m.momentum,
		"epochs":        m.epochs,
		"seed":          m.seed,
	}
}

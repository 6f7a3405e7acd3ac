// Package naive_bayes implements a naive Bayes classifier over mixed
// attribute kinds: nominal attributes use Laplace-smoothed frequency tables,
// numeric attributes a per-class normal density.
package naive_bayes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// minStdDev は数値属性の標準偏差の下限（クラス内で定数の属性でも密度が発散しないように）
const minStdDev = 1e-3

// NaiveBayes は属性の条件付き独立性を仮定したベイズ分類器
type NaiveBayes struct {
	state *model.StateManager

	// Alpha はラプラス平滑化の加算値 (デフォルト: 1)
	Alpha float64

	schema     dataset.Schema
	nClasses   int
	logPrior   []float64
	logLikeNom [][][]float64 // [attribute][class][value]
	gauss      [][]distuv.Normal
}

// Option is a functional option for NaiveBayes
type Option func(*NaiveBayes)

// WithAlpha sets the additive smoothing count.
func WithAlpha(alpha float64) Option {
	return func(nb *NaiveBayes) {
		nb.Alpha = alpha
	}
}

// New creates a NaiveBayes classifier.
func New(opts ...Option) *NaiveBayes {
	nb := &NaiveBayes{
		state: model.NewStateManager(),
		Alpha: 1.0,
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// Name returns the algorithm name.
func (nb *NaiveBayes) Name() string { return "NaiveBayes" }

// Fit はクラス事前確率と各属性の条件付き分布を推定する
func (nb *NaiveBayes) Fit(d *dataset.Dataset) error {
	nb.state.Reset()
	if err := model.ValidateTrainingData(nb.Name(), d); err != nil {
		return err
	}
	if nb.Alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", nb.Alpha)
	}

	nb.schema = d.Schema
	nb.nClasses = d.NumClasses()
	classIdx := d.ClassIndex()

	// クラス事前確率
	counts := d.ClassCounts()
	total := float64(d.InstanceCount()) + nb.Alpha*float64(nb.nClasses)
	nb.logPrior = make([]float64, nb.nClasses)
	for c, n := range counts {
		nb.logPrior[c] = errors.StabilizeLog((float64(n) + nb.Alpha) / total)
	}

	nb.logLikeNom = make([][][]float64, classIdx)
	nb.gauss = make([][]distuv.Normal, classIdx)
	for j := 0; j < classIdx; j++ {
		attr := d.Schema[j]
		if attr.IsNominal() {
			nb.logLikeNom[j] = nb.fitNominal(d, j, len(attr.Domain), counts)
		} else {
			nb.gauss[j] = nb.fitGaussian(d, j)
		}
	}

	nb.state.SetDimensions(classIdx, d.InstanceCount())
	nb.state.SetFitted()
	return nil
}

func (nb *NaiveBayes) fitNominal(d *dataset.Dataset, j, k int, classCounts []int) [][]float64 {
	freq := make([][]float64, nb.nClasses)
	for c := range freq {
		freq[c] = make([]float64, k)
	}
	for i, row := range d.Rows {
		freq[d.Class(i)][int(row[j])]++
	}
	for c := range freq {
		denom := float64(classCounts[c]) + nb.Alpha*float64(k)
		for v := range freq[c] {
			freq[c][v] = errors.StabilizeLog(errors.SafeDivide(freq[c][v]+nb.Alpha, denom))
		}
	}
	return freq
}

func (nb *NaiveBayes) fitGaussian(d *dataset.Dataset, j int) []distuv.Normal {
	values := make([][]float64, nb.nClasses)
	for i, row := range d.Rows {
		c := d.Class(i)
		values[c] = append(values[c], row[j])
	}
	out := make([]distuv.Normal, nb.nClasses)
	for c, xs := range values {
		mu, sigma := 0.0, minStdDev
		switch len(xs) {
		case 0:
		case 1:
			mu = xs[0]
		default:
			mu, sigma = stat.MeanStdDev(xs, nil)
		}
		out[c] = distuv.Normal{Mu: mu, Sigma: math.Max(sigma, minStdDev)}
	}
	return out
}

// LogPosterior returns the unnormalised log posterior of every class.
func (nb *NaiveBayes) LogPosterior(inst dataset.Instance) ([]float64, error) {
	if err := nb.state.RequireFitted(nb.Name(), "LogPosterior"); err != nil {
		return nil, err
	}
	if len(inst) < nb.schema.ClassIndex() {
		return nil, errors.NewDimensionError("NaiveBayes.LogPosterior", len(nb.schema), len(inst), 1)
	}

	scores := make([]float64, nb.nClasses)
	copy(scores, nb.logPrior)
	for j := 0; j < nb.schema.ClassIndex(); j++ {
		v := inst[j]
		if dataset.IsMissing(v) {
			continue
		}
		if nb.schema[j].IsNominal() {
			idx := int(v)
			if idx < 0 || idx >= len(nb.schema[j].Domain) {
				return nil, errors.NewValueError("NaiveBayes.LogPosterior",
					fmt.Sprintf("value %v outside domain of '%s'", v, nb.schema[j].Name))
			}
			for c := range scores {
				scores[c] += nb.logLikeNom[j][c][idx]
			}
			continue
		}
		for c := range scores {
			scores[c] += nb.gauss[j][c].LogProb(v)
		}
	}
	return scores, nil
}

// PredictProba returns the normalised class distribution for inst.
func (nb *NaiveBayes) PredictProba(inst dataset.Instance) ([]float64, error) {
	scores, err := nb.LogPosterior(inst)
	if err != nil {
		return nil, err
	}
	norm := errors.LogSumExp(scores)
	for c := range scores {
		scores[c] = math.Exp(scores[c] - norm)
	}
	return scores, nil
}

// Classify returns the class with the highest posterior; ties go to the
// lower class index.
func (nb *NaiveBayes) Classify(inst dataset.Instance) (int, error) {
	scores, err := nb.LogPosterior(inst)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best, nil
}

// GetParams はモデルのパラメータを取得する
func (nb *NaiveBayes) GetParams() map[string]interface{} {
	return map[string]interface{}{"alpha": nb.Alpha}
}

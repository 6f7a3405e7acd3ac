package pipeline

import (
	"fmt"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/preprocessing"
	"github.com/YuminosukeSato/tourney/sklearn/linear_model"
	"github.com/YuminosukeSato/tourney/sklearn/naive_bayes"
	"github.com/YuminosukeSato/tourney/sklearn/neighbors"
	"github.com/YuminosukeSato/tourney/sklearn/neural_network"
	"github.com/YuminosukeSato/tourney/sklearn/svm"
	"github.com/YuminosukeSato/tourney/sklearn/tree"
)

// TransformKind names a preprocessing step.
type TransformKind int

const (
	Normalize TransformKind = iota
	Discretize
	NominalToBinary
)

func (k TransformKind) String() string {
	switch k {
	case Normalize:
		return "Normalize"
	case Discretize:
		return "Discretize"
	case NominalToBinary:
		return "NominalToBinary"
	default:
		return fmt.Sprintf("TransformKind(%d)", int(k))
	}
}

// New returns a fresh, unfitted filter of kind k. Discretize reads "bins".
func (k TransformKind) New(params map[string]any) (preprocessing.Filter, error) {
	switch k {
	case Normalize:
		return preprocessing.NewNormalize(), nil
	case Discretize:
		bins, err := intParam(params, "bins", preprocessing.DefaultBins)
		if err != nil {
			return nil, err
		}
		if bins < 1 {
			return nil, errors.NewValidationError("bins", "must be at least 1", bins)
		}
		return preprocessing.NewDiscretize(bins), nil
	case NominalToBinary:
		return preprocessing.NewNominalToBinary(), nil
	default:
		return nil, errors.NewValueError("TransformKind.New", "unknown transform "+k.String())
	}
}

// AlgorithmKind names a base learning algorithm.
type AlgorithmKind int

const (
	NaiveBayes AlgorithmKind = iota
	Logistic
	KNN
	C45Tree
	RandomTree
	REPTree
	SMO
	MLP
)

func (k AlgorithmKind) String() string {
	switch k {
	case NaiveBayes:
		return "NaiveBayes"
	case Logistic:
		return "Logistic"
	case KNN:
		return "IBk"
	case C45Tree:
		return "J48"
	case RandomTree:
		return "RandomTree"
	case REPTree:
		return "REPTree"
	case SMO:
		return "SMO"
	case MLP:
		return "MultilayerPerceptron"
	default:
		return fmt.Sprintf("AlgorithmKind(%d)", int(k))
	}
}

// New returns a fresh, untrained classifier of kind k configured from
// params. Keys a kind does not use are ignored.
func (k AlgorithmKind) New(params map[string]any) (model.Classifier, error) {
	p := paramReader{params: params}
	var c model.Classifier
	switch k {
	case NaiveBayes:
		c = naive_bayes.New(naive_bayes.WithAlpha(p.float("alpha", 1.0)))
	case Logistic:
		est := linear_model.NewLogisticRegression(
			linear_model.WithLRRidge(p.float("ridge", 1e-8)),
			linear_model.WithLRMaxIter(p.int("max_iter", 200)),
		)
		c = model.NewMatrixClassifier(k.String(), est)
	case KNN:
		est := neighbors.NewKNeighborsClassifier(neighbors.WithK(p.int("k", 1)))
		c = model.NewMatrixClassifier(k.String(), est)
	case C45Tree:
		c = tree.NewC45Tree(
			tree.WithConfidence(p.float("confidence", 0.25)),
			tree.WithMinLeaf(p.int("min_leaf", 2)),
		)
	case RandomTree:
		c = tree.NewRandomTree(
			tree.WithSeed(p.int64("seed", 1)),
			tree.WithK(p.int("k", 0)),
			tree.WithMinLeaf(p.int("min_leaf", 1)),
		)
	case REPTree:
		c = tree.NewREPTree(
			tree.WithFolds(p.int("folds", 3)),
			tree.WithSeed(p.int64("seed", 1)),
			tree.WithMinLeaf(p.int("min_leaf", 2)),
		)
	case SMO:
		est := svm.NewSVC(
			svm.WithC(p.float("C", 1.0)),
			svm.WithExponent(p.float("exponent", 1.0)),
			svm.WithSeed(p.int64("seed", 1)),
		)
		c = model.NewMatrixClassifier(k.String(), est)
	case MLP:
		est := neural_network.NewMLPClassifier(
			neural_network.WithLearningRate(p.float("learning_rate", 0.3)),
			neural_network.WithMomentum(p.float("momentum", 0.2)),
			neural_network.WithEpochs(p.int("epochs", 500)),
			neural_network.WithHiddenUnits(p.int("hidden_units", 0)),
			neural_network.WithSeed(p.int64("seed", 0)),
		)
		c = model.NewMatrixClassifier(k.String(), est)
	default:
		return nil, errors.NewValueError("AlgorithmKind.New", "unknown algorithm "+k.String())
	}
	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

// paramReader reads typed values out of a parameter map and remembers the
// first type mismatch.
type paramReader struct {
	params map[string]any
	err    error
}

func (p *paramReader) float(key string, def float64) float64 {
	v, ok := p.params[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	p.fail(key, v)
	return def
}

func (p *paramReader) int(key string, def int) int {
	v, err := intParam(p.params, key, def)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *paramReader) int64(key string, def int64) int64 {
	return int64(p.int(key, int(def)))
}

func (p *paramReader) fail(key string, v any) {
	if p.err == nil {
		p.err = errors.NewValidationError(key, fmt.Sprintf("unexpected type %T", v), v)
	}
}

func intParam(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x == float64(int(x)) {
			return int(x), nil
		}
	}
	return def, errors.NewValidationError(key, fmt.Sprintf("expected an integer, got %T", v), v)
}

package tree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// C45Tree is a C4.5 decision tree. Splits are chosen by gain ratio among
// tests whose information gain is at least average, and the grown tree is
// pruned bottom-up by comparing pessimistic error estimates at the given
// confidence level.
type C45Tree struct {
	state  *model.StateManager
	cfg    config
	root   *Node
	schema dataset.Schema
}

// NewC45Tree creates a C45Tree with confidence 0.25 and minLeaf 2.
func NewC45Tree(opts ...Option) *C45Tree {
	return &C45Tree{
		state: model.NewStateManager(),
		cfg:   newConfig(config{confidence: 0.25, minLeaf: 2}, opts),
	}
}

// Name returns the algorithm name.
func (t *C45Tree) Name() string { return "J48" }

// Fit grows and prunes the tree on d.
func (t *C45Tree) Fit(d *dataset.Dataset) error {
	t.state.Reset()
	if err := model.ValidateTrainingData(t.Name(), d); err != nil {
		return err
	}
	if t.cfg.confidence <= 0 || t.cfg.confidence > 0.5 {
		return errors.NewValidationError("confidence", "must be in (0, 0.5]", t.cfg.confidence)
	}

	g := newGrower(d, t.cfg.minLeaf, gainRatioChooser)
	g.mdl = true
	t.root = g.grow(indices(d.InstanceCount()), 0, 0)
	t.prune(t.root)
	t.schema = d.Schema

	t.state.SetDimensions(d.ClassIndex(), d.InstanceCount())
	t.state.SetFitted()
	return nil
}

// gainRatioChooser considers every attribute and picks the highest gain
// ratio among splits with at least average gain.
func gainRatioChooser(g *grower, idx []int, parentEntropy float64) (split, bool) {
	var cands []split
	sum := 0.0
	for a := 0; a < g.classIdx; a++ {
		if s, ok := g.evaluate(a, idx, parentEntropy); ok {
			cands = append(cands, s)
			sum += s.gain
		}
	}
	if len(cands) == 0 {
		return split{}, false
	}
	avg := sum / float64(len(cands))

	var best split
	found := false
	for _, s := range cands {
		if s.gain <= gainEpsilon || s.gain < avg-1e-3 {
			continue
		}
		if !found || s.ratio > best.ratio+gainEpsilon {
			best, found = s, true
		}
	}
	return best, found
}

// prune replaces a subtree by a leaf when the leaf's estimated error is no
// worse than the subtree's. It returns the estimated error of what remains.
func (t *C45Tree) prune(n *Node) float64 {
	asLeaf := estimatedErrors(n.Counts, n.Class, t.cfg.confidence)
	if n.Leaf {
		return asLeaf
	}
	subtree := 0.0
	for _, c := range n.Children {
		subtree += t.prune(c)
	}
	if asLeaf <= subtree+0.1 {
		n.collapse()
		return asLeaf
	}
	return subtree
}

// estimatedErrors is the observed error count of a leaf predicting class
// plus the upper confidence bound correction.
func estimatedErrors(counts []float64, class int, cf float64) float64 {
	n := total(counts)
	if n == 0 {
		return 0
	}
	e := n - counts[class]
	return e + addErrs(n, e, cf)
}

// addErrs computes the extra errors implied by the upper limit of the
// binomial confidence interval for e errors in n rows.
func addErrs(n, e, cf float64) float64 {
	if e < 1 {
		base := n * (1 - math.Pow(cf, 1/n))
		if e == 0 {
			return base
		}
		return base + e*(addErrs(n, 1, cf)-base)
	}
	if e+0.5 >= n {
		return math.Max(n-e, 0)
	}

	z := distuv.UnitNormal.Quantile(1 - cf)
	f := (e + 0.5) / n
	r := (f + z*z/(2*n) + z*math.Sqrt(f/n-f*f/n+z*z/(4*n*n))) / (1 + z*z/n)
	return r*n - e
}

// Classify returns the class index predicted for inst.
func (t *C45Tree) Classify(inst dataset.Instance) (int, error) {
	if err := t.state.RequireFitted(t.Name(), "Classify"); err != nil {
		return 0, err
	}
	if p := len(t.schema) - 1; len(inst) < p {
		return 0, errors.NewDimensionError(t.Name()+".Classify", p, len(inst), 1)
	}
	return t.root.classify(inst), nil
}

// Root returns the fitted tree.
func (t *C45Tree) Root() *Node { return t.root }

// GetParams returns the model hyperparameters.
func (t *C45Tree) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"confidence": t.cfg.confidence,
		"min_leaf":   t.cfg.minLeaf,
	}
}

func (t *C45Tree) String() string {
	if t.root == nil {
		return "J48: no model"
	}
	return fmt.Sprintf("J48 pruned tree\n\n%s\nNumber of Leaves: %d\n", t.root.Format(t.schema), t.root.NumLeaves())
}

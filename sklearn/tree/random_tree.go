package tree

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// RandomTree grows an unpruned tree that considers K randomly chosen
// attributes at each node. If none of them yields a useful split, further
// attributes are tried until one does or all are exhausted.
type RandomTree struct {
	state  *model.StateManager
	cfg    config
	root   *Node
	schema dataset.Schema
	k      int
}

// NewRandomTree creates a RandomTree with seed 1, minLeaf 1 and automatic K.
func NewRandomTree(opts ...Option) *RandomTree {
	return &RandomTree{
		state: model.NewStateManager(),
		cfg:   newConfig(config{seed: 1, minLeaf: 1}, opts),
	}
}

// Name returns the algorithm name.
func (t *RandomTree) Name() string { return "RandomTree" }

// Fit grows the tree on d. The same seed and data always give the same tree.
func (t *RandomTree) Fit(d *dataset.Dataset) error {
	t.state.Reset()
	if err := model.ValidateTrainingData(t.Name(), d); err != nil {
		return err
	}
	if t.cfg.k < 0 {
		return errors.NewValidationError("k", "must be non-negative", t.cfg.k)
	}

	p := d.ClassIndex()
	t.k = t.cfg.k
	if t.k == 0 && p > 0 {
		t.k = int(math.Log2(float64(p))) + 1
	}
	t.k = min(t.k, p)

	rng := rand.New(rand.NewPCG(uint64(t.cfg.seed), uint64(t.cfg.seed)))
	g := newGrower(d, t.cfg.minLeaf, func(g *grower, idx []int, parentEntropy float64) (split, bool) {
		return maxGain(rng.Perm(g.classIdx), t.k, g, idx, parentEntropy)
	})
	g.maxDepth = t.cfg.maxDepth
	t.root = g.grow(indices(d.InstanceCount()), 0, 0)
	t.schema = d.Schema

	t.state.SetDimensions(p, d.InstanceCount())
	t.state.SetFitted()
	return nil
}

// Classify returns the class index predicted for inst.
func (t *RandomTree) Classify(inst dataset.Instance) (int, error) {
	if err := t.state.RequireFitted(t.Name(), "Classify"); err != nil {
		return 0, err
	}
	if p := len(t.schema) - 1; len(inst) < p {
		return 0, errors.NewDimensionError(t.Name()+".Classify", p, len(inst), 1)
	}
	return t.root.classify(inst), nil
}

// Root returns the fitted tree.
func (t *RandomTree) Root() *Node { return t.root }

// GetParams returns the model hyperparameters.
func (t *RandomTree) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"seed":     t.cfg.seed,
		"k":        t.cfg.k,
		"min_leaf": t.cfg.minLeaf,
	}
}

func (t *RandomTree) String() string {
	if t.root == nil {
		return "RandomTree: no model"
	}
	return fmt.Sprintf("RandomTree\n==========\n\n%s\nSize of the tree : %d leaves\n", t.root.Format(t.schema), t.root.NumLeaves())
}

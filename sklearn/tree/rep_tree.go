package tree

import (
	"fmt"
	"math/rand/v2"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// REPTree grows an information-gain tree on part of the training data and
// prunes it with reduced-error pruning against the held-out part.
type REPTree struct {
	state  *model.StateManager
	cfg    config
	root   *Node
	schema dataset.Schema
}

// NewREPTree creates a REPTree with 3 folds, seed 1, minLeaf 2 and no depth
// limit.
func NewREPTree(opts ...Option) *REPTree {
	return &REPTree{
		state: model.NewStateManager(),
		cfg:   newConfig(config{folds: 3, seed: 1, minLeaf: 2, maxDepth: -1}, opts),
	}
}

// Name returns the algorithm name.
func (t *REPTree) Name() string { return "REPTree" }

// Fit holds out one of the folds, grows on the rest and prunes on the
// held-out rows. With fewer rows than folds the whole set is used for
// growing and the tree is left unpruned.
func (t *REPTree) Fit(d *dataset.Dataset) error {
	t.state.Reset()
	if err := model.ValidateTrainingData(t.Name(), d); err != nil {
		return err
	}
	if t.cfg.folds < 2 {
		return errors.NewValidationError("folds", "must be at least 2", t.cfg.folds)
	}

	grow, prune := holdOut(d, t.cfg.folds, t.cfg.seed)
	g := newGrower(d, t.cfg.minLeaf, func(g *grower, idx []int, parentEntropy float64) (split, bool) {
		return maxGain(indices(g.classIdx), g.classIdx, g, idx, parentEntropy)
	})
	g.maxDepth = t.cfg.maxDepth
	t.root = g.grow(grow, 0, majority(g.counts(indices(d.InstanceCount())), 0))
	if len(prune) > 0 {
		reducedErrorPrune(t.root, d, prune)
	}
	t.schema = d.Schema

	t.state.SetDimensions(d.ClassIndex(), d.InstanceCount())
	t.state.SetFitted()
	return nil
}

// holdOut deals each class's shuffled rows round-robin over folds and
// returns the rows outside the first fold (grow) and inside it (prune).
func holdOut(d *dataset.Dataset, folds int, seed int64) (grow, prune []int) {
	n := d.InstanceCount()
	if n < folds {
		return indices(n), nil
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	byClass := make([][]int, d.NumClasses())
	for i := 0; i < n; i++ {
		c := d.Class(i)
		byClass[c] = append(byClass[c], i)
	}
	slot := 0
	for _, rows := range byClass {
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		for _, i := range rows {
			if slot%folds == 0 {
				prune = append(prune, i)
			} else {
				grow = append(grow, i)
			}
			slot++
		}
	}
	return grow, prune
}

// reducedErrorPrune returns the number of held-out rows misclassified by n
// after pruning, collapsing any subtree that does no better than a leaf.
func reducedErrorPrune(n *Node, d *dataset.Dataset, idx []int) int {
	asLeaf := 0
	for _, i := range idx {
		if d.Class(i) != n.Class {
			asLeaf++
		}
	}
	if n.Leaf {
		return asLeaf
	}

	parts := make([][]int, len(n.Children))
	subtree := 0
	for _, i := range idx {
		b := n.branch(d.Rows[i])
		if b < 0 {
			if d.Class(i) != n.Class {
				subtree++
			}
			continue
		}
		parts[b] = append(parts[b], i)
	}
	for b, child := range n.Children {
		subtree += reducedErrorPrune(child, d, parts[b])
	}
	if asLeaf <= subtree {
		n.collapse()
		return asLeaf
	}
	return subtree
}

// Classify returns the class index predicted for inst.
func (t *REPTree) Classify(inst dataset.Instance) (int, error) {
	if err := t.state.RequireFitted(t.Name(), "Classify"); err != nil {
		return 0, err
	}
	if p := len(t.schema) - 1; len(inst) < p {
		return 0, errors.NewDimensionError(t.Name()+".Classify", p, len(inst), 1)
	}
	return t.root.classify(inst), nil
}

// Root returns the fitted tree.
func (t *REPTree) Root() *Node { return t.root }

// GetParams returns the model hyperparameters.
func (t *REPTree) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"folds":     t.cfg.folds,
		"seed":      t.cfg.seed,
		"min_leaf":  t.cfg.minLeaf,
		"max_depth": t.cfg.maxDepth,
	}
}

func (t *REPTree) String() string {
	if t.root == nil {
		return "REPTree: no model"
	}
	return fmt.Sprintf("REPTree\n============\n\n%s\nSize of the tree : %d leaves\n", t.root.Format(t.schema), t.root.NumLeaves())
}

package tree

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/tourney/dataset"
)

const gainEpsilon = 1e-10

// split is a candidate test on one attribute together with the row
// partition it induces.
type split struct {
	attr      int
	numeric   bool
	threshold float64
	gain      float64
	ratio     float64
	parts     [][]int
}

// chooser picks the split for a node, or reports that the node stays a leaf.
type chooser func(g *grower, idx []int, parentEntropy float64) (split, bool)

// grower builds a tree top-down over row indices of a dataset.
type grower struct {
	rows     []dataset.Instance
	schema   dataset.Schema
	classIdx int
	nClasses int
	minLeaf  int
	maxDepth int  // <= 0 for unlimited
	mdl      bool // penalise numeric gains by log2(#cuts)/n
	choose   chooser
}

func newGrower(d *dataset.Dataset, minLeaf int, choose chooser) *grower {
	return &grower{
		rows:     d.Rows,
		schema:   d.Schema,
		classIdx: d.ClassIndex(),
		nClasses: d.NumClasses(),
		minLeaf:  max(minLeaf, 1),
		choose:   choose,
	}
}

func (g *grower) class(i int) int {
	return int(g.rows[i][g.classIdx])
}

func (g *grower) counts(idx []int) []float64 {
	counts := make([]float64, g.nClasses)
	for _, i := range idx {
		counts[g.class(i)]++
	}
	return counts
}

func (g *grower) grow(idx []int, depth int, fallback int) *Node {
	counts := g.counts(idx)
	node := newLeaf(counts, fallback)
	if len(idx) < 2*g.minLeaf || counts[node.Class] == float64(len(idx)) {
		return node
	}
	if g.maxDepth > 0 && depth >= g.maxDepth {
		return node
	}

	s, ok := g.choose(g, idx, entropy(counts))
	if !ok {
		return node
	}

	node.Leaf = false
	node.Attribute = s.attr
	node.Numeric = s.numeric
	node.Threshold = s.threshold
	node.Children = make([]*Node, len(s.parts))
	for b, part := range s.parts {
		if len(part) == 0 {
			node.Children[b] = newLeaf(make([]float64, g.nClasses), node.Class)
			continue
		}
		node.Children[b] = g.grow(part, depth+1, node.Class)
	}
	return node
}

func (g *grower) evaluate(attr int, idx []int, parentEntropy float64) (split, bool) {
	if g.schema[attr].IsNominal() {
		return g.nominalSplit(attr, idx, parentEntropy)
	}
	return g.numericSplit(attr, idx, parentEntropy)
}

// nominalSplit branches on every domain value. At least two branches must
// hold minLeaf rows.
func (g *grower) nominalSplit(attr int, idx []int, parentEntropy float64) (split, bool) {
	k := len(g.schema[attr].Domain)
	parts := make([][]int, k)
	dists := make([][]float64, k)
	for v := range dists {
		dists[v] = make([]float64, g.nClasses)
	}
	for _, i := range idx {
		v := int(g.rows[i][attr])
		parts[v] = append(parts[v], i)
		dists[v][g.class(i)]++
	}

	n := float64(len(idx))
	large := 0
	childEntropy, splitInfo := 0.0, 0.0
	for v, part := range parts {
		if len(part) >= g.minLeaf {
			large++
		}
		if len(part) == 0 {
			continue
		}
		w := float64(len(part)) / n
		childEntropy += w * entropy(dists[v])
		splitInfo -= w * math.Log2(w)
	}
	if large < 2 {
		return split{}, false
	}

	gain := parentEntropy - childEntropy
	return split{attr: attr, gain: gain, ratio: gainRatio(gain, splitInfo), parts: parts}, true
}

// numericSplit finds the binary threshold with the highest information gain.
// The threshold is the midpoint between adjacent distinct values.
func (g *grower) numericSplit(attr int, idx []int, parentEntropy float64) (split, bool) {
	sorted := append([]int(nil), idx...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return g.rows[sorted[a]][attr] < g.rows[sorted[b]][attr]
	})

	left := make([]float64, g.nClasses)
	right := g.counts(sorted)
	n := float64(len(sorted))
	bestPos, bestGain := -1, math.Inf(-1)
	distinct := 1
	for i := 0; i < len(sorted)-1; i++ {
		c := g.class(sorted[i])
		left[c]++
		right[c]--
		if g.rows[sorted[i]][attr] == g.rows[sorted[i+1]][attr] {
			continue
		}
		distinct++
		nl := i + 1
		if nl < g.minLeaf || len(sorted)-nl < g.minLeaf {
			continue
		}
		w := float64(nl) / n
		gain := parentEntropy - (w*entropy(left) + (1-w)*entropy(right))
		if gain > bestGain+gainEpsilon {
			bestPos, bestGain = i, gain
		}
	}
	if bestPos < 0 {
		return split{}, false
	}
	if g.mdl && distinct > 1 {
		bestGain -= math.Log2(float64(distinct-1)) / n
	}

	lo, hi := g.rows[sorted[bestPos]][attr], g.rows[sorted[bestPos+1]][attr]
	w := float64(bestPos+1) / n
	splitInfo := -(w*math.Log2(w) + (1-w)*math.Log2(1-w))
	return split{
		attr:      attr,
		numeric:   true,
		threshold: (lo + hi) / 2,
		gain:      bestGain,
		ratio:     gainRatio(bestGain, splitInfo),
		parts:     [][]int{sorted[: bestPos+1 : bestPos+1], sorted[bestPos+1:]},
	}, true
}

func entropy(counts []float64) float64 {
	n := total(counts)
	if n == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / n
			h -= p * math.Log2(p)
		}
	}
	return h
}

func gainRatio(gain, splitInfo float64) float64 {
	if splitInfo <= gainEpsilon {
		return 0
	}
	return gain / splitInfo
}

// maxGain evaluates attributes in the given order and keeps the split with
// the highest positive gain. After k attributes have been tried the search
// stops as soon as one useful split is known.
func maxGain(order []int, k int, g *grower, idx []int, parentEntropy float64) (split, bool) {
	var best split
	found := false
	for i, a := range order {
		if s, ok := g.evaluate(a, idx, parentEntropy); ok && s.gain > gainEpsilon {
			if !found || s.gain > best.gain+gainEpsilon {
				best, found = s, true
			}
		}
		if found && i+1 >= k {
			break
		}
	}
	return best, found
}

func indices(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Package tree provides decision tree classifiers that split directly on
// nominal and numeric attributes: a C4.5-style pruned tree (J48), a random
// tree, and a reduced-error-pruned tree (REPTree).
package tree

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/tourney/dataset"
)

// Node is a node of a fitted tree. A numeric test has two children
// (value <= Threshold, value > Threshold); a nominal test has one child per
// domain value.
type Node struct {
	Leaf      bool
	Attribute int
	Numeric   bool
	Threshold float64
	Children  []*Node
	Counts    []float64 // class distribution of the training rows that reached the node
	Class     int
}

func newLeaf(counts []float64, fallback int) *Node {
	return &Node{Leaf: true, Counts: counts, Class: majority(counts, fallback)}
}

// majority returns the index of the largest count, the lowest index on
// ties, or fallback when every count is zero.
func majority(counts []float64, fallback int) int {
	best := -1
	for c, v := range counts {
		if v > 0 && (best < 0 || v > counts[best]) {
			best = c
		}
	}
	if best < 0 {
		return fallback
	}
	return best
}

func (n *Node) collapse() {
	n.Leaf = true
	n.Children = nil
}

// branch returns the child an instance follows, or -1 when the nominal
// value has no branch.
func (n *Node) branch(inst dataset.Instance) int {
	v := inst[n.Attribute]
	if n.Numeric {
		if v <= n.Threshold {
			return 0
		}
		return 1
	}
	b := int(v)
	if dataset.IsMissing(v) || b < 0 || b >= len(n.Children) {
		return -1
	}
	return b
}

func (n *Node) classify(inst dataset.Instance) int {
	for !n.Leaf {
		b := n.branch(inst)
		if b < 0 {
			return n.Class
		}
		n = n.Children[b]
	}
	return n.Class
}

// NumLeaves returns the number of leaves below and including n.
func (n *Node) NumLeaves() int {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += c.NumLeaves()
	}
	return total
}

// Depth returns the length of the longest root-to-leaf path.
func (n *Node) Depth() int {
	if n == nil || n.Leaf {
		return 0
	}
	deepest := 0
	for _, c := range n.Children {
		deepest = max(deepest, c.Depth())
	}
	return deepest + 1
}

func total(counts []float64) float64 {
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	return sum
}

// Format renders the tree one test per line, e.g.
//
//	outlook = sunny
//	|   humidity <= 77.5: yes (2.0)
func (n *Node) Format(schema dataset.Schema) string {
	var b strings.Builder
	n.format(&b, schema, 0)
	return b.String()
}

func (n *Node) format(b *strings.Builder, schema dataset.Schema, depth int) {
	classAttr := schema[len(schema)-1]
	if n.Leaf {
		fmt.Fprintf(b, "%s (%.1f)\n", classAttr.Domain[n.Class], total(n.Counts))
		return
	}
	attr := schema[n.Attribute]
	for i, child := range n.Children {
		b.WriteString(strings.Repeat("|   ", depth))
		switch {
		case n.Numeric && i == 0:
			fmt.Fprintf(b, "%s <= %g", attr.Name, n.Threshold)
		case n.Numeric:
			fmt.Fprintf(b, "%s > %g", attr.Name, n.Threshold)
		default:
			fmt.Fprintf(b, "%s = %s", attr.Name, attr.Domain[i])
		}
		if child.Leaf {
			b.WriteString(": ")
			child.format(b, schema, depth+1)
			continue
		}
		b.WriteString("\n")
		child.format(b, schema, depth+1)
	}
}

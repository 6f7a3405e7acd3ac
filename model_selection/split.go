// Package model_selection estimates classifier accuracy by stratified
// k-fold cross-validation.
package model_selection

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/tourney/dataset"
)

// Fold is one train/test partition of row indices.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// StratifiedKFold deals rows into folds so each fold keeps roughly the
// class proportions of the whole dataset.
type StratifiedKFold struct {
	NSplits    int
	RandomSeed int64
}

// NewStratifiedKFold creates a stratified splitter. nSplits below 2 is
// raised to 2.
func NewStratifiedKFold(nSplits int, randomSeed int64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 2
	}
	return &StratifiedKFold{NSplits: nSplits, RandomSeed: randomSeed}
}

// GetNSplits returns the number of splits
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split groups rows by class in class-index order, shuffles each group with
// the seed and deals the rows round-robin over the folds, continuing the
// rotation from one class to the next. The result depends only on the
// seed and the class column.
func (skf *StratifiedKFold) Split(d *dataset.Dataset) []Fold {
	n := d.InstanceCount()
	byClass := make([][]int, d.NumClasses())
	for i := 0; i < n; i++ {
		c := d.Class(i)
		byClass[c] = append(byClass[c], i)
	}

	r := rand.New(rand.NewPCG(uint64(skf.RandomSeed), uint64(skf.RandomSeed)))
	assign := make([]int, n)
	slot := 0
	for _, indices := range byClass {
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		for _, idx := range indices {
			assign[idx] = slot % skf.NSplits
			slot++
		}
	}

	folds := make([]Fold, skf.NSplits)
	for idx, f := range assign {
		for k := range folds {
			if k == f {
				folds[k].TestIndices = append(folds[k].TestIndices, idx)
			} else {
				folds[k].TrainIndices = append(folds[k].TrainIndices, idx)
			}
		}
	}
	return folds
}

package tournament

import (
	"maps"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pipeline"
	"github.com/YuminosukeSato/tourney/pkg/config"
)

// CandidateConfig describes one tournament entry: up to two preprocessing
// steps in front of a base algorithm.
type CandidateConfig struct {
	Name      string
	Steps     []pipeline.TransformKind
	Algorithm pipeline.AlgorithmKind
	Params    map[string]any
}

// Factory returns a constructor of fresh, untrained units for c. If the
// parameters are invalid every unit fails on Fit with the same error.
func (c CandidateConfig) Factory() model.Factory {
	return func() model.Classifier {
		base, err := c.Algorithm.New(c.Params)
		if err != nil {
			return brokenUnit{err: err}
		}
		return pipeline.Compose(c.Steps, base, pipeline.WithParams(c.Params))
	}
}

type brokenUnit struct{ err error }

func (b brokenUnit) Fit(*dataset.Dataset) error             { return b.err }
func (b brokenUnit) Classify(dataset.Instance) (int, error) { return 0, b.err }

var (
	normNom2Bin = []pipeline.TransformKind{pipeline.NominalToBinary, pipeline.Normalize}
	discretized = []pipeline.TransformKind{pipeline.Discretize}
)

// DefaultRegistry returns the ten fixed candidates in tournament order.
func DefaultRegistry() []CandidateConfig {
	return []CandidateConfig{
		{Name: "NaiveBayes (Discretized)", Steps: discretized, Algorithm: pipeline.NaiveBayes},
		{Name: "Logistic (Norm+Nom2Bin)", Steps: normNom2Bin, Algorithm: pipeline.Logistic,
			Params: map[string]any{"ridge": 1e-8}},
		{Name: "IBk (k=1, Norm+Nom2Bin)", Steps: normNom2Bin, Algorithm: pipeline.KNN,
			Params: map[string]any{"k": 1}},
		{Name: "IBk (k=3, Norm+Nom2Bin)", Steps: normNom2Bin, Algorithm: pipeline.KNN,
			Params: map[string]any{"k": 3}},
		{Name: "IBk (k=5, Norm+Nom2Bin)", Steps: normNom2Bin, Algorithm: pipeline.KNN,
			Params: map[string]any{"k": 5}},
		{Name: "J48 (Raw)", Algorithm: pipeline.C45Tree,
			Params: map[string]any{"confidence": 0.25, "min_leaf": 2}},
		{Name: "RandomTree (Raw)", Algorithm: pipeline.RandomTree,
			Params: map[string]any{"seed": 1}},
		{Name: "REPTree (Raw)", Algorithm: pipeline.REPTree,
			Params: map[string]any{"folds": 3, "seed": 1}},
		{Name: "SMO (SVM, Norm+Nom2Bin)", Steps: normNom2Bin, Algorithm: pipeline.SMO,
			Params: map[string]any{"C": 1.0}},
		{Name: "MultilayerPerceptron (Norm+Nom2Bin)", Steps: normNom2Bin, Algorithm: pipeline.MLP,
			Params: map[string]any{"learning_rate": 0.3, "momentum": 0.2, "epochs": 500}},
	}
}

// RegistryFromConfig returns the default registry with the configured
// discretization bins, MLP epochs and learner seed applied.
func RegistryFromConfig(cfg *config.Config) []CandidateConfig {
	reg := DefaultRegistry()
	for i := range reg {
		params := maps.Clone(reg[i].Params)
		if params == nil {
			params = make(map[string]any)
		}
		for _, s := range reg[i].Steps {
			if s == pipeline.Discretize {
				params["bins"] = cfg.Discretize.Bins
			}
		}
		switch reg[i].Algorithm {
		case pipeline.MLP:
			params["epochs"] = cfg.MLP.Epochs
		case pipeline.RandomTree, pipeline.REPTree:
			params["seed"] = cfg.Seed
		}
		reg[i].Params = params
	}
	return reg
}

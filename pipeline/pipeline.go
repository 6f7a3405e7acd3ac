// Package pipeline composes zero or more preprocessing filters with a base
// classifier into a single classifier. Filters are fitted on the training
// data only and re-applied, never refitted, when classifying.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/pkg/log"
	"github.com/YuminosukeSato/tourney/preprocessing"
)

// Pipeline is a filter chain followed by a base classifier.
type Pipeline struct {
	state  *model.StateManager
	logger log.Logger

	steps  []TransformKind
	params map[string]any
	base   model.Classifier

	chain *preprocessing.Chain
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParams passes filter parameters such as "bins".
func WithParams(params map[string]any) Option {
	return func(p *Pipeline) {
		p.params = params
	}
}

// Compose chains steps before base. When both NominalToBinary and Normalize
// are requested NominalToBinary runs first, so the indicator columns it
// creates are normalised too.
func Compose(steps []TransformKind, base model.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		state:  model.NewStateManager(),
		logger: log.GetLoggerWithName("Pipeline"),
		steps:  canonicalOrder(steps),
		base:   base,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// canonicalOrder moves every NominalToBinary ahead of the first Normalize
// and otherwise keeps the requested order.
func canonicalOrder(steps []TransformKind) []TransformKind {
	out := make([]TransformKind, 0, len(steps))
	firstNorm := -1
	for _, s := range steps {
		if s == NominalToBinary && firstNorm >= 0 {
			out = append(out[:firstNorm], append([]TransformKind{s}, out[firstNorm:]...)...)
			firstNorm++
			continue
		}
		if s == Normalize && firstNorm < 0 {
			firstNorm = len(out)
		}
		out = append(out, s)
	}
	return out
}

// Steps returns the filter kinds in application order.
func (p *Pipeline) Steps() []TransformKind {
	return p.steps
}

// Base returns the wrapped classifier.
func (p *Pipeline) Base() model.Classifier {
	return p.base
}

// FittedChain returns the fitted filter chain, or nil before Fit.
func (p *Pipeline) FittedChain() *preprocessing.Chain {
	return p.chain
}

// Fit builds fresh filters, fits them on d and trains the base classifier
// on the filtered data.
func (p *Pipeline) Fit(d *dataset.Dataset) error {
	p.state.Reset()
	if p.base == nil {
		return errors.NewValueError("Pipeline.Fit", "no base classifier")
	}
	if d == nil || d.InstanceCount() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Pipeline.Fit")
	}

	filters := make([]preprocessing.Filter, len(p.steps))
	for i, kind := range p.steps {
		f, err := kind.New(p.params)
		if err != nil {
			return err
		}
		filters[i] = f
	}
	chain := preprocessing.NewChain(filters...)
	filtered, err := chain.FitApply(d)
	if err != nil {
		return errors.Wrapf(err, "failed to fit filters of %s", p)
	}
	p.logger.Debug("Filters fitted",
		log.OperationKey, log.OperationFilter,
		log.AttributesKey, len(filtered.Schema)-1,
		log.SamplesKey, filtered.InstanceCount(),
	)

	if err := p.base.Fit(filtered); err != nil {
		return err
	}
	p.chain = chain
	p.state.SetDimensions(len(filtered.Schema)-1, d.InstanceCount())
	p.state.SetFitted()
	return nil
}

// Classify filters inst with the fitted chain and classifies the result.
func (p *Pipeline) Classify(inst dataset.Instance) (int, error) {
	if err := p.state.RequireFitted("Pipeline", "Classify"); err != nil {
		return 0, err
	}
	filtered, err := p.chain.Apply(inst)
	if err != nil {
		return 0, err
	}
	return p.base.Classify(filtered)
}

func (p *Pipeline) String() string {
	name := "?"
	if n, ok := p.base.(model.Named); ok {
		name = n.Name()
	}
	if len(p.steps) == 0 {
		return name
	}
	kinds := make([]string, len(p.steps))
	for i, s := range p.steps {
		kinds[i] = s.String()
	}
	return fmt.Sprintf("%s -> %s", strings.Join(kinds, " -> "), name)
}

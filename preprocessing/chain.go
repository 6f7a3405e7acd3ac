package preprocessing

import (
	"strings"

	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// Chain applies filters in order. During Fit each filter is fitted on the
// output of the previous one. An empty Chain is the identity.
type Chain struct {
	filters []Filter
	schema  dataset.Schema
	fitted  bool
}

// NewChain creates a chain over the given filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Filters returns the filters in application order.
func (c *Chain) Filters() []Filter {
	return c.filters
}

// Len returns the number of filters.
func (c *Chain) Len() int {
	return len(c.filters)
}

func (c *Chain) Fit(d *dataset.Dataset) error {
	c.fitted = false
	if d == nil {
		return errors.NewModelError("Chain.Fit", "empty data", errors.ErrEmptyData)
	}
	cur := d
	for _, f := range c.filters {
		if err := f.Fit(cur); err != nil {
			return err
		}
		next, err := f.ApplyDataset(cur)
		if err != nil {
			return err
		}
		cur = next
	}
	c.schema = cur.Schema
	c.fitted = true
	return nil
}

// FitApply fits the chain on d and returns d transformed by it.
func (c *Chain) FitApply(d *dataset.Dataset) (*dataset.Dataset, error) {
	if err := c.Fit(d); err != nil {
		return nil, err
	}
	return c.ApplyDataset(d)
}

func (c *Chain) OutputSchema() dataset.Schema {
	return c.schema
}

func (c *Chain) Apply(inst dataset.Instance) (dataset.Instance, error) {
	if !c.fitted {
		return nil, errors.NewNotFittedError("Chain", "Apply")
	}
	cur := inst
	for _, f := range c.filters {
		next, err := f.Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (c *Chain) ApplyDataset(d *dataset.Dataset) (*dataset.Dataset, error) {
	if !c.fitted {
		return nil, errors.NewNotFittedError("Chain", "ApplyDataset")
	}
	if len(c.filters) == 0 {
		return d, nil
	}
	return applyDataset(c, d)
}

func (c *Chain) String() string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		if s, ok := f.(interface{ String() string }); ok {
			names[i] = s.String()
		} else {
			names[i] = "?"
		}
	}
	return "Chain(" + strings.Join(names, " -> ") + ")"
}

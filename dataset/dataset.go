// Package dataset models a tabular classification dataset: an ordered
// attribute schema whose last attribute is the class, and a fixed set of rows.
//
// Rows are encoded as []float64. A numeric value is stored as is, a nominal
// value as the index into its attribute's domain, and Missing (NaN) marks an
// unknown value. Only the class slot of an instance built for prediction may
// be Missing; loaded rows never are.
package dataset

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// Missing is the sentinel for an unknown value.
var Missing = math.NaN()

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Instance is one row, one value per schema attribute.
type Instance []float64

// Clone returns a copy of inst.
func (inst Instance) Clone() Instance {
	out := make(Instance, len(inst))
	copy(out, inst)
	return out
}

// Dataset is an immutable table. Operations that need a subset or a
// transformed copy build a new Dataset; the receiver is never modified after
// construction.
type Dataset struct {
	Relation string
	Schema   Schema
	Rows     []Instance
}

// New validates rows against schema and returns the dataset. Every row must
// have len(schema) values, nominal values must be valid domain indices, and
// no value may be Missing.
func New(relation string, schema Schema, rows []Instance) (*Dataset, error) {
	if len(schema) == 0 {
		return nil, errors.NewValueError("dataset.New", "schema declares no attributes")
	}
	for r, row := range rows {
		if len(row) != len(schema) {
			return nil, errors.NewDimensionError("dataset.New", len(schema), len(row), 1)
		}
		for j, v := range row {
			if IsMissing(v) {
				return nil, errors.NewValueError("dataset.New",
					fmt.Sprintf("row %d: missing value for attribute '%s'", r, schema[j].Name))
			}
			if schema[j].IsNominal() {
				idx := int(v)
				if float64(idx) != v || idx < 0 || idx >= len(schema[j].Domain) {
					return nil, errors.NewValueError("dataset.New",
						fmt.Sprintf("row %d: value %v outside domain of '%s'", r, v, schema[j].Name))
				}
			}
		}
	}
	return &Dataset{Relation: relation, Schema: schema, Rows: rows}, nil
}

// WithRows returns a dataset sharing d's schema over the given rows.
func (d *Dataset) WithRows(rows []Instance) *Dataset {
	return &Dataset{Relation: d.Relation, Schema: d.Schema, Rows: rows}
}

// Subset returns the rows at the given positions, in that order.
func (d *Dataset) Subset(indices []int) *Dataset {
	rows := make([]Instance, len(indices))
	for i, idx := range indices {
		rows[i] = d.Rows[idx]
	}
	return d.WithRows(rows)
}

// InstanceCount returns the number of rows.
func (d *Dataset) InstanceCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// NumAttributes returns the schema length, class included.
func (d *Dataset) NumAttributes() int {
	return len(d.Schema)
}

// ClassIndex is always the last schema position.
func (d *Dataset) ClassIndex() int {
	return d.Schema.ClassIndex()
}

// ClassAttribute returns the class attribute.
func (d *Dataset) ClassAttribute() Attribute {
	return d.Schema[d.ClassIndex()]
}

// NumClasses returns the size of the class domain, or 0 for a numeric class.
func (d *Dataset) NumClasses() int {
	return len(d.ClassAttribute().Domain)
}

// Class returns the class index of row i.
func (d *Dataset) Class(i int) int {
	return int(d.Rows[i][d.ClassIndex()])
}

// ClassLabel maps a class index to its label.
func (d *Dataset) ClassLabel(idx int) (string, error) {
	domain := d.ClassAttribute().Domain
	if idx < 0 || idx >= len(domain) {
		return "", errors.NewValueError("dataset.ClassLabel",
			fmt.Sprintf("class index %d out of range [0, %d)", idx, len(domain)))
	}
	return domain[idx], nil
}

// ClassCounts returns how many rows carry each class.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, d.NumClasses())
	for i := range d.Rows {
		counts[d.Class(i)]++
	}
	return counts
}

// AttributesExcludingClass returns copies of every attribute except the class,
// in schema order.
func (d *Dataset) AttributesExcludingClass() []Attribute {
	if d == nil || len(d.Schema) == 0 {
		return []Attribute{}
	}
	out := make([]Attribute, 0, len(d.Schema)-1)
	for _, a := range d.Schema[:d.ClassIndex()] {
		out = append(out, a.Clone())
	}
	return out
}

// FormatValue renders the value of attribute j the way it appears in a file.
func (d *Dataset) FormatValue(j int, v float64) string {
	if IsMissing(v) {
		return "?"
	}
	a := d.Schema[j]
	if a.IsNominal() {
		idx := int(v)
		if idx >= 0 && idx < len(a.Domain) {
			return a.Domain[idx]
		}
	}
	return fmt.Sprintf("%g", v)
}

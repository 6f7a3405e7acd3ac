package dataset

import (
	"fmt"
)

// AttributeKind distinguishes numeric attributes from nominal ones.
type AttributeKind int

const (
	// Numeric attributes hold real values.
	Numeric AttributeKind = iota
	// Nominal attributes hold an index into a fixed, ordered domain.
	Nominal
)

func (k AttributeKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Nominal:
		return "nominal"
	default:
		return fmt.Sprintf("AttributeKind(%d)", int(k))
	}
}

// Attribute describes one column of a dataset.
type Attribute struct {
	Name   string
	Kind   AttributeKind
	Domain []string // empty unless Kind is Nominal
}

// NewNumeric returns a numeric attribute.
func NewNumeric(name string) Attribute {
	return Attribute{Name: name, Kind: Numeric}
}

// NewNominal returns a nominal attribute over a copy of domain.
func NewNominal(name string, domain []string) Attribute {
	d := make([]string, len(domain))
	copy(d, domain)
	return Attribute{Name: name, Kind: Nominal, Domain: d}
}

// IsNominal reports whether a takes values from a domain.
func (a Attribute) IsNominal() bool {
	return a.Kind == Nominal
}

// IndexOf returns the position of value in the domain.
func (a Attribute) IndexOf(value string) (int, bool) {
	for i, v := range a.Domain {
		if v == value {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy of a.
func (a Attribute) Clone() Attribute {
	if a.Domain == nil {
		return a
	}
	return NewNominal(a.Name, a.Domain)
}

// Schema is the ordered list of attributes. The last attribute is the class.
type Schema []Attribute

// Clone returns a deep copy of s.
func (s Schema) Clone() Schema {
	out := make(Schema, len(s))
	for i, a := range s {
		out[i] = a.Clone()
	}
	return out
}

// ClassIndex is the position of the class attribute, or -1 for an empty schema.
func (s Schema) ClassIndex() int {
	return len(s) - 1
}

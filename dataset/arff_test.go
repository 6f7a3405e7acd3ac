package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/YuminosukeSato/tourney/pkg/errors"
)

func TestLoadIris(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "iris.arff"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if d.Relation != "iris" {
		t.Errorf("Relation = %q, want iris", d.Relation)
	}
	if d.InstanceCount() != 150 {
		t.Errorf("InstanceCount() = %d, want 150", d.InstanceCount())
	}
	if d.NumAttributes() != 5 {
		t.Fatalf("NumAttributes() = %d, want 5", d.NumAttributes())
	}
	if got := d.ClassAttribute().Name; got != "class" {
		t.Errorf("class attribute = %q", got)
	}
	if diff := cmp.Diff([]int{50, 50, 50}, d.ClassCounts()); diff != "" {
		t.Errorf("class counts mismatch (-want +got):\n%s", diff)
	}

	want := Instance{5.1, 3.5, 1.4, 0.2, 0}
	if diff := cmp.Diff(want, d.Rows[0]); diff != "" {
		t.Errorf("first row mismatch (-want +got):\n%s", diff)
	}
	label, err := d.ClassLabel(d.Class(149))
	if err != nil || label != "Iris-virginica" {
		t.Errorf("last row class = %q, %v", label, err)
	}
}

func TestLoadWeatherMixedKinds(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "weather.arff"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	attrs := d.AttributesExcludingClass()
	want := []Attribute{
		{Name: "outlook", Kind: Nominal, Domain: []string{"sunny", "overcast", "rainy"}},
		{Name: "temperature", Kind: Numeric},
		{Name: "humidity", Kind: Numeric},
		{Name: "windy", Kind: Nominal, Domain: []string{"TRUE", "FALSE"}},
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	if len(attrs) != d.NumAttributes()-1 {
		t.Errorf("attributes excluding class = %d, want %d", len(attrs), d.NumAttributes()-1)
	}
}

func TestAttributesExcludingClassReturnsCopies(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "weather.arff"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	attrs := d.AttributesExcludingClass()
	attrs[0].Domain[0] = "changed"
	if d.Schema[0].Domain[0] != "sunny" {
		t.Error("mutating the returned attributes changed the dataset schema")
	}
}

func TestParseSyntax(t *testing.T) {
	src := `% comment line
@Relation 'quoted relation'

@ATTRIBUTE 'petal length' numeric
@attribute colour { 'light red', green ,"dark blue"}
@attribute cls {a,b}

@data
1.5, 'light red', a
-2e3,green,b
0,"dark blue",a,{3}
`
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Relation != "quoted relation" {
		t.Errorf("Relation = %q", d.Relation)
	}
	if d.Schema[0].Name != "petal length" {
		t.Errorf("first attribute = %q", d.Schema[0].Name)
	}
	if diff := cmp.Diff([]string{"light red", "green", "dark blue"}, d.Schema[1].Domain); diff != "" {
		t.Errorf("domain mismatch (-want +got):\n%s", diff)
	}
	want := []Instance{{1.5, 0, 0}, {-2000, 1, 1}, {0, 2, 0}}
	if diff := cmp.Diff(want, d.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormatErrors(t *testing.T) {
	header := "@relation r\n@attribute x numeric\n@attribute c {a,b}\n@data\n"
	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{"zero attributes", "@relation r\n@data\n", 2, "no attributes"},
		{"zero attributes without data", "@relation r\n", 0, "no attributes"},
		{"no data section", "@relation r\n@attribute x numeric\n", 0, "missing @data"},
		{"arity", header + "1.0\n", 5, "expected 2 values, got 1"},
		{"bad number", header + "abc,a\n", 5, `invalid number "abc"`},
		{"unknown nominal", header + "1,z\n", 5, "not in the domain"},
		{"missing value", header + "?,a\n", 5, "missing value"},
		{"string attribute", "@relation r\n@attribute s string\n@data\n", 2, "not supported"},
		{"unknown type", "@relation r\n@attribute s blob\n@data\n", 2, "unknown type"},
		{"duplicate attribute", "@attribute x numeric\n@attribute x numeric\n@data\n", 2, "duplicate attribute"},
		{"unterminated quote", header + "1,'a\n", 5, "unterminated quote"},
		{"sparse", header + "{0 1, 1 a}\n", 5, "sparse"},
		{"garbage", "hello\n", 1, "unexpected content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			var fe *errors.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if fe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d (%v)", fe.Line, tt.wantLine, err)
			}
			if !strings.Contains(fe.Reason, tt.wantMsg) {
				t.Errorf("Reason = %q, want it to contain %q", fe.Reason, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.arff"))
	var fe *errors.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestLoadEmptySchemaFixture(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "empty_schema.arff"))
	var fe *errors.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestLoadZeroRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "header.arff")
	if err := os.WriteFile(path, []byte("@relation r\n@attribute c {a,b}\n@data\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.InstanceCount() != 0 {
		t.Errorf("InstanceCount() = %d, want 0", d.InstanceCount())
	}
	if len(d.AttributesExcludingClass()) != 0 {
		t.Error("single-attribute schema should expose no input attributes")
	}
}

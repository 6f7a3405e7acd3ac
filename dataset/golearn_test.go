package dataset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sjwhitworth/golearn/base"
)

// writeCanonical writes d in the plain lower-case ARFF layout golearn's own
// datasets use. golearn only understands "real" and "{...}" attribute types;
// it rejects "numeric" and "integer", which arff.go has to accept, so the
// loader cannot be built on golearn's reader.
func writeCanonical(t *testing.T, d *Dataset) string {
	t.Helper()
	var sb strings.Builder
	fmt.Fprintf(&sb, "@relation %s\n\n", d.Relation)
	for _, a := range d.Schema {
		if a.IsNominal() {
			fmt.Fprintf(&sb, "@attribute %s {%s}\n", a.Name, strings.Join(a.Domain, ","))
			continue
		}
		fmt.Fprintf(&sb, "@attribute %s real\n", a.Name)
	}
	sb.WriteString("\n@data\n")
	for _, row := range d.Rows {
		fields := make([]string, len(row))
		for j, v := range row {
			fields[j] = d.FormatValue(j, v)
		}
		sb.WriteString(strings.Join(fields, ",") + "\n")
	}

	path := filepath.Join(t.TempDir(), d.Relation+".arff")
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadAgreesWithGolearn cross-checks the loader against golearn's ARFF
// reader on the numeric part of iris.
func TestLoadAgreesWithGolearn(t *testing.T) {
	src, err := Load(filepath.Join("testdata", "iris.arff"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	path := writeCanonical(t, src)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load of the rewritten file failed: %v", err)
	}
	if diff := cmp.Diff(src.Rows, d.Rows); diff != "" {
		t.Fatalf("rewritten file loads differently (-src +rewritten):\n%s", diff)
	}
	ref, err := base.ParseDenseARFFToInstances(path)
	if err != nil {
		t.Fatalf("golearn failed to parse %s: %v", path, err)
	}

	_, rows := ref.Size()
	if rows != d.InstanceCount() {
		t.Fatalf("row count: golearn %d, ours %d", rows, d.InstanceCount())
	}

	attrs := ref.AllAttributes()
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.GetName()
	}
	ours := make([]string, len(d.Schema))
	for i, a := range d.Schema {
		ours[i] = a.Name
	}
	if diff := cmp.Diff(names, ours); diff != "" {
		t.Fatalf("attribute names differ (-golearn +ours):\n%s", diff)
	}

	for j := 0; j < d.ClassIndex(); j++ {
		spec, err := ref.GetAttribute(attrs[j])
		if err != nil {
			t.Fatalf("GetAttribute(%s): %v", attrs[j].GetName(), err)
		}
		for i := 0; i < rows; i++ {
			want := base.UnpackBytesToFloat(ref.Get(spec, i))
			if got := d.Rows[i][j]; math.Abs(got-want) > 1e-12 {
				t.Fatalf("row %d %s: golearn %v, ours %v", i, attrs[j].GetName(), want, got)
			}
		}
	}
}

package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// Load reads an ARFF file. Any problem with the file, including an empty
// attribute list, is reported as a *errors.FormatError.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFormatError(path, 0, fmt.Sprintf("cannot open file: %v", err))
	}
	defer f.Close()
	return parse(f, path)
}

// Parse reads ARFF content from r.
func Parse(r io.Reader) (*Dataset, error) {
	return parse(r, "<reader>")
}

type arffParser struct {
	source   string
	line     int
	relation string
	schema   Schema
	names    map[string]bool
	inData   bool
	rows     []Instance
}

func parse(r io.Reader, source string) (*Dataset, error) {
	p := &arffParser{source: source, names: make(map[string]bool)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		p.line++
		text := strings.TrimSpace(sc.Text())
		if p.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		if err := p.parseLine(text); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewFormatError(source, p.line, err.Error())
	}

	if len(p.schema) == 0 {
		return nil, errors.NewFormatError(source, 0, "no attributes declared")
	}
	if !p.inData {
		return nil, errors.NewFormatError(source, 0, "missing @data section")
	}

	d, err := New(p.relation, p.schema, p.rows)
	if err != nil {
		return nil, errors.NewFormatError(source, 0, err.Error())
	}
	return d, nil
}

func (p *arffParser) errorf(format string, args ...interface{}) error {
	return errors.NewFormatError(p.source, p.line, fmt.Sprintf(format, args...))
}

func (p *arffParser) parseLine(text string) error {
	if p.inData {
		return p.parseRow(text)
	}
	if text[0] != '@' {
		return p.errorf("unexpected content %q before @data", text)
	}

	keyword, rest := text, ""
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		keyword, rest = text[:i], strings.TrimSpace(text[i+1:])
	}

	switch strings.ToLower(keyword) {
	case "@relation":
		name, _, err := readToken(rest)
		if err != nil {
			return p.errorf("@relation: %v", err)
		}
		p.relation = name
	case "@attribute":
		return p.parseAttribute(rest)
	case "@data":
		if len(p.schema) == 0 {
			return p.errorf("no attributes declared before @data")
		}
		p.inData = true
	default:
		return p.errorf("unknown declaration %s", keyword)
	}
	return nil
}

func (p *arffParser) parseAttribute(rest string) error {
	name, typ, err := readToken(rest)
	if err != nil {
		return p.errorf("@attribute: %v", err)
	}
	if name == "" {
		return p.errorf("@attribute without a name")
	}
	if p.names[name] {
		return p.errorf("duplicate attribute '%s'", name)
	}
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return p.errorf("attribute '%s' has no type", name)
	}

	if strings.HasPrefix(typ, "{") {
		if !strings.HasSuffix(typ, "}") {
			return p.errorf("attribute '%s': unterminated value list", name)
		}
		fields, err := splitFields(typ[1 : len(typ)-1])
		if err != nil {
			return p.errorf("attribute '%s': %v", name, err)
		}
		domain := make([]string, 0, len(fields))
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			if f.text == "" && !f.quoted {
				continue
			}
			if seen[f.text] {
				return p.errorf("attribute '%s': duplicate value %q", name, f.text)
			}
			seen[f.text] = true
			domain = append(domain, f.text)
		}
		if len(domain) == 0 {
			return p.errorf("attribute '%s': empty value list", name)
		}
		p.schema = append(p.schema, NewNominal(name, domain))
		p.names[name] = true
		return nil
	}

	kind := strings.ToLower(strings.Fields(typ)[0])
	switch kind {
	case "numeric", "real", "integer":
		p.schema = append(p.schema, NewNumeric(name))
		p.names[name] = true
		return nil
	case "string", "date", "relational":
		return p.errorf("attribute '%s': %s attributes are not supported", name, kind)
	default:
		return p.errorf("attribute '%s': unknown type %q", name, typ)
	}
}

func (p *arffParser) parseRow(text string) error {
	if strings.HasPrefix(text, "{") {
		return p.errorf("sparse rows are not supported")
	}
	fields, err := splitFields(text)
	if err != nil {
		return p.errorf("%v", err)
	}
	// Weka accepts an optional instance weight in braces after the values.
	if n := len(fields); n == len(p.schema)+1 && !fields[n-1].quoted && strings.HasPrefix(fields[n-1].text, "{") {
		fields = fields[:n-1]
	}
	if len(fields) != len(p.schema) {
		return p.errorf("expected %d values, got %d", len(p.schema), len(fields))
	}

	row := make(Instance, len(p.schema))
	for j, f := range fields {
		attr := p.schema[j]
		if f.text == "?" && !f.quoted {
			return p.errorf("missing value for attribute '%s' is not supported", attr.Name)
		}
		if attr.IsNominal() {
			idx, ok := attr.IndexOf(f.text)
			if !ok {
				return p.errorf("value %q is not in the domain of attribute '%s'", f.text, attr.Name)
			}
			row[j] = float64(idx)
			continue
		}
		v, err := strconv.ParseFloat(f.text, 64)
		if err != nil || IsMissing(v) {
			return p.errorf("invalid number %q for attribute '%s'", f.text, attr.Name)
		}
		row[j] = v
	}
	p.rows = append(p.rows, row)
	return nil
}

type field struct {
	text   string
	quoted bool
}

// splitFields splits a comma separated list, honouring single and double
// quotes. Unquoted fields are trimmed.
func splitFields(s string) ([]field, error) {
	var (
		fields []field
		buf    strings.Builder
		quoted bool
	)
	i := 0
	for {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		buf.Reset()
		quoted = false
		if i < len(s) && (s[i] == '\'' || s[i] == '"') {
			text, n, err := unquote(s[i:])
			if err != nil {
				return nil, err
			}
			buf.WriteString(text)
			quoted = true
			i += n
			for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
				i++
			}
			if i < len(s) && s[i] != ',' {
				return nil, fmt.Errorf("unexpected %q after quoted value", s[i])
			}
		} else {
			j := strings.IndexByte(s[i:], ',')
			if j < 0 {
				j = len(s) - i
			}
			buf.WriteString(strings.TrimSpace(s[i : i+j]))
			i += j
		}
		fields = append(fields, field{text: buf.String(), quoted: quoted})
		if i >= len(s) {
			return fields, nil
		}
		i++ // comma
	}
}

// readToken reads one name, quoted or bare, and returns the remainder.
func readToken(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", nil
	}
	if s[0] == '\'' || s[0] == '"' {
		text, n, err := unquote(s)
		if err != nil {
			return "", "", err
		}
		return text, s[n:], nil
	}
	i := strings.IndexAny(s, " \t{")
	if i < 0 {
		return s, "", nil
	}
	return s[:i], s[i:], nil
}

// unquote decodes the quoted string at the start of s and returns it together
// with the number of bytes consumed.
func unquote(s string) (string, int, error) {
	q := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
		case c == q:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated quote in %q", s)
}

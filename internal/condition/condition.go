// Package condition holds the static search-condition catalog: named numeric
// ranges per search dimension plus the categorical lists shown by the frontend.
// The catalog is loaded once at startup and is read-only afterwards.
package condition

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"isuumo/internal/validate"
)

//go:embed chair_condition.json estate_condition.json condition.schema.json
var embedded embed.FS

type Category string

const (
	Chair  Category = "chair"
	Estate Category = "estate"
)

// Unbounded marks an open side of a Range.
const Unbounded int64 = -1

var ErrRangeNotFound = errors.New("condition: range not found")

// Range is [Min, Max). Either side may be Unbounded.
type Range struct {
	ID  int64 `json:"id"`
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type dimension struct {
	Prefix string   `json:"prefix"`
	Suffix string   `json:"suffix"`
	Ranges []Range  `json:"ranges"`
	List   []string `json:"list"`
}

type Catalog struct {
	raw    map[Category][]byte
	ranges map[Category]map[string][]Range
}

func fileName(cat Category) string { return string(cat) + "_condition.json" }

// Load reads both category files. With dir empty the embedded defaults are used,
// otherwise dir must contain chair_condition.json and estate_condition.json.
func Load(dir string) (*Catalog, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		raw:    map[Category][]byte{},
		ranges: map[Category]map[string][]Range{},
	}
	for _, cat := range []Category{Chair, Estate} {
		var b []byte
		if dir == "" {
			b, err = embedded.ReadFile(fileName(cat))
		} else {
			b, err = os.ReadFile(filepath.Join(dir, fileName(cat)))
		}
		if err != nil {
			return nil, fmt.Errorf("condition: read %s: %w", cat, err)
		}
		if err := c.add(schema, cat, b); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	b, err := embedded.ReadFile("condition.schema.json")
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("condition.schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("condition: add schema: %w", err)
	}
	return compiler.Compile("condition.schema.json")
}

func (c *Catalog) add(schema *jsonschema.Schema, cat Category, b []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("condition: %s is not valid JSON: %w", cat, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("condition: %s: %w", cat, err)
	}

	var dims map[string]dimension
	if err := json.Unmarshal(b, &dims); err != nil {
		return fmt.Errorf("condition: decode %s: %w", cat, err)
	}
	ranges := map[string][]Range{}
	for name, d := range dims {
		if d.Ranges == nil {
			continue
		}
		for i, r := range d.Ranges {
			if r.ID != int64(i) {
				return fmt.Errorf("condition: %s.%s: range at index %d has id %d", cat, name, i, r.ID)
			}
		}
		ranges[name] = d.Ranges
	}
	c.raw[cat] = b
	c.ranges[cat] = ranges
	return nil
}

// Lookup resolves a range identifier. The identifier is the canonical decimal
// index into the dimension's range list; "01" and "+1" do not resolve.
func (c *Catalog) Lookup(cat Category, dim, rangeID string) (Range, error) {
	rs, ok := c.ranges[cat][dim]
	if !ok {
		return Range{}, fmt.Errorf("%w: unknown dimension %s.%s", ErrRangeNotFound, cat, dim)
	}
	idx, ok := validate.NonNegative(rangeID)
	if !ok || strconv.Itoa(idx) != rangeID || idx >= len(rs) {
		return Range{}, fmt.Errorf("%w: %s.%s[%q]", ErrRangeNotFound, cat, dim, rangeID)
	}
	return rs[idx], nil
}

// Raw returns the catalog file for cat exactly as loaded.
func (c *Catalog) Raw(cat Category) []byte { return c.raw[cat] }

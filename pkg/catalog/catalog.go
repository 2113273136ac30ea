package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/entitymap/pkg/errors"
)

//go:embed builtin/shop.toml
var builtinShop string

// Field is a named, typed attribute of a class.
type Field struct {
	Name string `toml:"name" json:"name"`
	Type string `toml:"type" json:"type"`
}

// Relation points from a class to another class.
type Relation struct {
	Name   string `toml:"name" json:"name"`
	Target string `toml:"target" json:"target"`
	Many   bool   `toml:"many" json:"many,omitempty"`
}

// Class is one entity class.
type Class struct {
	ID          string     `toml:"id" json:"id"`
	Description string     `toml:"description" json:"description,omitempty"`
	Fields      []Field    `toml:"field" json:"fields,omitempty"`
	Relations   []Relation `toml:"relation" json:"relations,omitempty"`
}

// Catalog is an indexed, validated set of classes.
type Catalog struct {
	Name    string  `toml:"name"`
	Entries []Class `toml:"class"`

	index map[string]int
}

// New builds a catalog from classes and validates it.
func New(name string, classes ...Class) (*Catalog, error) {
	c := &Catalog{Name: name, Entries: classes}
	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes and validates a TOML catalog. Unknown keys are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "unknown catalog keys: %s", strings.Join(keys, ", "))
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Builtin returns the bundled sample catalog.
func Builtin() *Catalog {
	c, err := Parse(strings.NewReader(builtinShop))
	if err != nil {
		panic(fmt.Sprintf("builtin catalog: %v", err))
	}
	return c
}

func (c *Catalog) build() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.index = make(map[string]int, len(c.Entries))
	for i, cl := range c.Entries {
		c.index[cl.ID] = i
	}
	return nil
}

// Validate rejects invalid or duplicate class IDs and relations to classes
// the catalog does not contain.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Entries))
	for _, cl := range c.Entries {
		if err := errors.ValidateEntityID(cl.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "class %q", cl.ID)
		}
		if seen[cl.ID] {
			return errors.New(errors.ErrCodeInvalidCatalog, "duplicate class %q", cl.ID)
		}
		seen[cl.ID] = true
	}
	for _, cl := range c.Entries {
		for _, rel := range cl.Relations {
			if !seen[rel.Target] {
				return errors.New(errors.ErrCodeInvalidCatalog, "class %q: relation %q targets unknown class %q", cl.ID, rel.Name, rel.Target)
			}
		}
	}
	return nil
}

// Len returns the number of classes.
func (c *Catalog) Len() int { return len(c.Entries) }

// Lookup returns the class with the given ID.
func (c *Catalog) Lookup(id string) (Class, bool) {
	i, ok := c.index[id]
	if !ok {
		return Class{}, false
	}
	return c.Entries[i], true
}

// Classes returns all classes sorted by ID.
func (c *Catalog) Classes() []Class {
	out := slices.Clone(c.Entries)
	slices.SortFunc(out, func(a, b Class) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// IDs returns all class IDs sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Entries))
	for i, cl := range c.Classes() {
		ids[i] = cl.ID
	}
	return ids
}

// Related returns the distinct relation targets of a class in declaration
// order. Unknown classes have none.
func (c *Catalog) Related(id string) []string {
	cl, ok := c.Lookup(id)
	if !ok {
		return nil
	}
	var out []string
	for _, rel := range cl.Relations {
		if !slices.Contains(out, rel.Target) {
			out = append(out, rel.Target)
		}
	}
	return out
}

// Rows returns the descriptive rows shown inside a node: fields as
// "name: type", then relations as "name -> Target".
func (c *Catalog) Rows(id string) []string {
	cl, ok := c.Lookup(id)
	if !ok {
		return nil
	}
	rows := make([]string, 0, len(cl.Fields)+len(cl.Relations))
	for _, f := range cl.Fields {
		rows = append(rows, f.Name+": "+f.Type)
	}
	for _, rel := range cl.Relations {
		target := shortName(rel.Target)
		if rel.Many {
			target = "[]" + target
		}
		rows = append(rows, rel.Name+" -> "+target)
	}
	return rows
}

func shortName(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}

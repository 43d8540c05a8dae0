// Package catalog holds the ordered list of object classes the detection
// model was trained on, and resolves operator-typed names into class filters.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrUnknownClass is returned when a name is not in the catalog.
var ErrUnknownClass = errors.New("catalog: unknown class")

// maxSuggestions caps how many close names an UnknownClassError carries.
const maxSuggestions = 5

// UnknownClassError reports a class name absent from the catalog.
type UnknownClassError struct {
	Name        string
	Suggestions []string
}

// Error implements the error interface.
func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("catalog: unknown class %q", e.Name)
}

// Unwrap lets errors.Is match ErrUnknownClass.
func (e *UnknownClassError) Unwrap() error {
	return ErrUnknownClass
}

// Filter restricts detection to one class index, or to none.
// The zero value allows every class.
type Filter struct {
	index int
	set   bool
}

// AllClasses is the filter that allows every class.
var AllClasses = Filter{}

// Only returns a filter restricted to class index i.
func Only(i int) Filter {
	return Filter{index: i, set: true}
}

// Class returns the restricted class index and whether a restriction is set.
func (f Filter) Class() (int, bool) {
	return f.index, f.set
}

// All reports whether the filter allows every class.
func (f Filter) All() bool {
	return !f.set
}

// Allows reports whether class index i passes the filter.
func (f Filter) Allows(i int) bool {
	return !f.set || f.index == i
}

// String renders the filter for logs.
func (f Filter) String() string {
	if !f.set {
		return "all"
	}
	return fmt.Sprintf("class:%d", f.index)
}

// Catalog is an immutable, ordered list of class names.
// The order must match the model's output labels.
type Catalog struct {
	names  []string
	labels []string
	index  map[string]int
}

// New builds a catalog from names in model output order.
// Duplicate names are rejected since resolution would be ambiguous.
// Detections are labelled with the names themselves.
func New(names []string) (*Catalog, error) {
	return NewWithLabels(names, names)
}

// NewWithLabels builds a catalog whose operator-typed names differ from the
// labels drawn on detections. Both lists share the model output order.
func NewWithLabels(names, labels []string) (*Catalog, error) {
	if len(labels) != len(names) {
		return nil, fmt.Errorf("catalog: %d labels for %d names", len(labels), len(names))
	}
	if len(names) == 0 {
		return nil, errors.New("catalog: no class names")
	}
	idx := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("catalog: empty class name at index %d", i)
		}
		if prev, ok := idx[n]; ok {
			return nil, fmt.Errorf("catalog: duplicate class %q at %d and %d", n, prev, i)
		}
		idx[n] = i
	}
	for i, l := range labels {
		if l == "" {
			return nil, fmt.Errorf("catalog: empty label at index %d", i)
		}
	}
	return &Catalog{
		names:  append([]string(nil), names...),
		labels: append([]string(nil), labels...),
		index:  idx,
	}, nil
}

// Default returns the catalog for the bundled YOLOv8 COCO model.
func Default() *Catalog {
	c, err := NewWithLabels(cocoNames, cocoLabels)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of classes.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Names returns a copy of the class names in order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Name returns the class name at index i.
func (c *Catalog) Name(i int) (string, bool) {
	if i < 0 || i >= len(c.names) {
		return "", false
	}
	return c.names[i], true
}

// Label returns the label drawn for class i.
func (c *Catalog) Label(i int) (string, bool) {
	if i < 0 || i >= len(c.labels) {
		return "", false
	}
	return c.labels[i], true
}

// Index returns the position of name in the catalog.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Resolve turns an operator-typed class name into a filter.
// The empty string selects all classes; otherwise the match is exact.
func (c *Catalog) Resolve(name string) (Filter, error) {
	if name == "" {
		return AllClasses, nil
	}
	i, ok := c.index[name]
	if !ok {
		return Filter{}, &UnknownClassError{Name: name, Suggestions: c.suggest(name)}
	}
	return Only(i), nil
}

// suggest returns catalog names that contain the typed text or share its
// first letters, in catalog order.
func (c *Catalog) suggest(name string) []string {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return nil
	}
	prefix := q
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	matches := lo.Filter(c.names, func(n string, _ int) bool {
		n = strings.ToLower(n)
		return strings.Contains(n, q) || strings.Contains(q, n) || strings.HasPrefix(n, prefix)
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}

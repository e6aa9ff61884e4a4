// Package catalog holds the parameter and layout catalogs of an app: the
// typed field definitions, the output variable declarations, and the
// display expressions plus field ordering supplied by the layout.
//
// Catalogs are immutable after construction and safe for concurrent reads.
package catalog

import (
	"errors"
	"fmt"
)

// DefaultActionField is the conventional name of the field selecting which
// operation an app performs.
const DefaultActionField = "tc_action"

// ErrDuplicateName is returned when a catalog declares the same name twice.
var ErrDuplicateName = errors.New("duplicate name")

// FieldType classifies how a parameter is rendered and whether its values can
// be enumerated.
type FieldType string

const (
	TypeString          FieldType = "String"
	TypeBoolean         FieldType = "Boolean"
	TypeChoice          FieldType = "Choice"
	TypeEditChoice      FieldType = "EditChoice"
	TypeMultiChoice     FieldType = "MultiChoice"
	TypeKeyValueList    FieldType = "KeyValueList"
	TypeStringMixed     FieldType = "StringMixed"
	TypeTEEnabledString FieldType = "TEEnabledString"
	TypeKeyValue        FieldType = "KeyValue"
)

// Enumerable reports whether the permutation generator can branch over the
// values of a field of this type.
func (t FieldType) Enumerable() bool {
	switch t {
	case TypeBoolean, TypeChoice, TypeEditChoice:
		return true
	default:
		return false
	}
}

// ParameterDef describes one input field.
type ParameterDef struct {
	Name          string
	Type          FieldType
	ValidValues   []string // may contain placeholders such as ${GROUP_TYPES}
	Hidden        bool
	ServiceConfig bool
	Default       any
	Label         string
	Required      bool
}

// OutputDef describes one output variable.
type OutputDef struct {
	Name string
	Type string
}

// ParameterCatalog holds the ordered parameter definitions, the output
// declarations and the name of the action field.
type ParameterCatalog struct {
	params      []*ParameterDef
	index       map[string]*ParameterDef
	names       []string
	outputs     []*OutputDef
	actionField string
}

// NewParameterCatalog builds a catalog, preserving declaration order.
// Duplicate parameter or output names are rejected. actionField may be empty
// when the app has no action field; it is not checked here.
func NewParameterCatalog(params []ParameterDef, outputs []OutputDef, actionField string) (*ParameterCatalog, error) {
	c := &ParameterCatalog{
		index:       make(map[string]*ParameterDef, len(params)),
		actionField: actionField,
	}
	for i := range params {
		p := params[i]
		if _, dup := c.index[p.Name]; dup {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, ErrDuplicateName)
		}
		p.ValidValues = append([]string(nil), p.ValidValues...)
		c.params = append(c.params, &p)
		c.index[p.Name] = &p
		c.names = append(c.names, p.Name)
	}
	seen := make(map[string]bool, len(outputs))
	for i := range outputs {
		o := outputs[i]
		if seen[o.Name] {
			return nil, fmt.Errorf("output %q: %w", o.Name, ErrDuplicateName)
		}
		seen[o.Name] = true
		c.outputs = append(c.outputs, &o)
	}
	return c, nil
}

// Params returns the parameters in declaration order.
func (c *ParameterCatalog) Params() []*ParameterDef {
	return c.params
}

// Param returns the named parameter.
func (c *ParameterCatalog) Param(name string) (*ParameterDef, bool) {
	p, ok := c.index[name]
	return p, ok
}

// Names returns parameter names in declaration order.
func (c *ParameterCatalog) Names() []string {
	return c.names
}

// Outputs returns the output declarations in declaration order.
func (c *ParameterCatalog) Outputs() []*OutputDef {
	return c.outputs
}

// ActionField returns the action field name, or "" if the app has none.
func (c *ParameterCatalog) ActionField() string {
	return c.actionField
}

// Len returns the number of parameters.
func (c *ParameterCatalog) Len() int {
	return len(c.params)
}

// LayoutEntry pairs a field or output name with its optional display
// expression.
type LayoutEntry struct {
	Name    string
	Display string
}

// LayoutCatalog carries the authoritative field order and the display
// expressions for fields and outputs.
type LayoutCatalog struct {
	fields        []LayoutEntry
	outputs       []LayoutEntry
	fieldIndex    map[string]int
	outputDisplay map[string]string
}

// NewLayoutCatalog builds a layout catalog. Duplicate field or output
// entries are rejected.
func NewLayoutCatalog(fields, outputs []LayoutEntry) (*LayoutCatalog, error) {
	l := &LayoutCatalog{
		fieldIndex:    make(map[string]int, len(fields)),
		outputDisplay: make(map[string]string, len(outputs)),
	}
	for _, f := range fields {
		if _, dup := l.fieldIndex[f.Name]; dup {
			return nil, fmt.Errorf("layout field %q: %w", f.Name, ErrDuplicateName)
		}
		l.fieldIndex[f.Name] = len(l.fields)
		l.fields = append(l.fields, f)
	}
	for _, o := range outputs {
		if _, dup := l.outputDisplay[o.Name]; dup {
			return nil, fmt.Errorf("layout output %q: %w", o.Name, ErrDuplicateName)
		}
		l.outputDisplay[o.Name] = o.Display
		l.outputs = append(l.outputs, o)
	}
	return l, nil
}

// Fields returns the field entries in layout order. Safe on a nil catalog.
func (l *LayoutCatalog) Fields() []LayoutEntry {
	if l == nil {
		return nil
	}
	return l.fields
}

// Outputs returns the output entries in layout order. Safe on a nil catalog.
func (l *LayoutCatalog) Outputs() []LayoutEntry {
	if l == nil {
		return nil
	}
	return l.outputs
}

// FieldDisplay returns the display expression for a field.
func (l *LayoutCatalog) FieldDisplay(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	i, ok := l.fieldIndex[name]
	if !ok {
		return "", false
	}
	return l.fields[i].Display, true
}

// OutputDisplay returns the display expression for an output.
func (l *LayoutCatalog) OutputDisplay(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	d, ok := l.outputDisplay[name]
	return d, ok
}

// App bundles the catalogs of one app directory.
type App struct {
	Name   string
	Dir    string
	Format string // "json", "yaml", "cue" or "hcl"
	Params *ParameterCatalog
	Layout *LayoutCatalog
}

// Package query holds the small boolean filter language shared by the access rules,
// the Postgres repositories and in-memory fakes.
package query

import (
	"fmt"
	"strings"
)

// Expr is a boolean expression over named record fields.
type Expr interface {
	isExpr()
}

// Record is anything whose columns can be read by name.
type Record interface {
	Field(name string) (string, bool)
}

// All matches every record.
type All struct{}

// Eq matches when Field equals Value.
type Eq struct {
	Field string
	Value string
}

// In matches when Field equals any of Values.
type In struct {
	Field  string
	Values []string
}

// IsNull matches when Field is unset.
type IsNull struct {
	Field string
}

// And matches when every child matches. An empty And matches everything.
type And []Expr

// Or matches when any child matches. An empty Or matches nothing.
type Or []Expr

func (All) isExpr()    {}
func (Eq) isExpr()     {}
func (In) isExpr()     {}
func (IsNull) isExpr() {}
func (And) isExpr()    {}
func (Or) isExpr()     {}

// Match evaluates expr against rec.
func Match(expr Expr, rec Record) bool {
	switch e := expr.(type) {
	case nil, All:
		return true
	case Eq:
		v, ok := rec.Field(e.Field)
		return ok && v == e.Value
	case In:
		v, ok := rec.Field(e.Field)
		if !ok {
			return false
		}
		for _, candidate := range e.Values {
			if v == candidate {
				return true
			}
		}
		return false
	case IsNull:
		_, ok := rec.Field(e.Field)
		return !ok
	case And:
		for _, child := range e {
			if !Match(child, rec) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range e {
			if Match(child, rec) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("query: unknown expression %T", expr))
	}
}

// Expander widens a value before it is rendered to SQL, e.g. to include legacy spellings.
type Expander func(field, value string) []string

// Builder renders expressions to a Postgres WHERE fragment with positional args.
type Builder struct {
	columns map[string]string
	expand  Expander
	args    []interface{}
}

// NewBuilder restricts rendering to the given field→column mapping.
func NewBuilder(columns map[string]string, expand Expander) *Builder {
	return &Builder{columns: columns, expand: expand}
}

// Args returns the positional arguments collected so far.
func (b *Builder) Args() []interface{} {
	return b.args
}

// Where renders expr. Unknown fields are an error so a typo never widens a filter.
func (b *Builder) Where(expr Expr) (string, error) {
	switch e := expr.(type) {
	case nil, All:
		return "TRUE", nil
	case Eq:
		return b.Where(In{Field: e.Field, Values: []string{e.Value}})
	case In:
		col, err := b.column(e.Field)
		if err != nil {
			return "", err
		}
		values := b.widen(e.Field, e.Values)
		if len(values) == 0 {
			return "FALSE", nil
		}
		if len(values) == 1 {
			return fmt.Sprintf("%s = %s", col, b.bind(values[0])), nil
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = b.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), nil
	case IsNull:
		col, err := b.column(e.Field)
		if err != nil {
			return "", err
		}
		return col + " IS NULL", nil
	case And:
		return b.join(e, " AND ", "TRUE")
	case Or:
		return b.join(e, " OR ", "FALSE")
	default:
		return "", fmt.Errorf("query: unknown expression %T", expr)
	}
}

func (b *Builder) join(children []Expr, sep, empty string) (string, error) {
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	for _, child := range children {
		part, err := b.Where(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *Builder) column(field string) (string, error) {
	col, ok := b.columns[field]
	if !ok {
		return "", fmt.Errorf("query: field %q not filterable", field)
	}
	return col, nil
}

func (b *Builder) widen(field string, values []string) []string {
	if b.expand == nil {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, w := range b.expand(field, v) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

func (b *Builder) bind(v string) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

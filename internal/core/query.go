// AngelaMos | 2026
// query.go

package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Args is an ordered list of bound values. Bind appends a value and returns
// the placeholder that refers to it, so a placeholder can never exist
// without its value and vice versa.
type Args struct {
	values []any
}

func (a *Args) Bind(value any) string {
	a.values = append(a.values, value)
	return "$" + strconv.Itoa(len(a.values))
}

func (a *Args) Values() []any {
	out := make([]any, len(a.values))
	copy(out, a.values)
	return out
}

type predicate func(a *Args) string

// Where accumulates optional filter predicates. Absent inputs contribute
// nothing, so an empty Where renders to "".
type Where struct {
	preds []predicate
}

// Condition adds a predicate that binds its own values through a.
func (w *Where) Condition(render func(a *Args) string) *Where {
	w.preds = append(w.preds, render)
	return w
}

// Literal adds a predicate with no bound values, e.g. "is_active = TRUE".
func (w *Where) Literal(sql string) *Where {
	return w.Condition(func(*Args) string { return sql })
}

func (w *Where) Equal(column, value string) *Where {
	if value == "" {
		return w
	}
	return w.Condition(func(a *Args) string {
		return column + " = " + a.Bind(value)
	})
}

func (w *Where) EqualInt(column string, value int64) *Where {
	if value == 0 {
		return w
	}
	return w.Condition(func(a *Args) string {
		return column + " = " + a.Bind(value)
	})
}

// Search matches term case-insensitively as a substring of any of columns.
// Each column gets its own placeholder bound to the same pattern.
func (w *Where) Search(term string, columns ...string) *Where {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return w
	}

	pattern := "%" + EscapeLike(term) + "%"
	return w.Condition(func(a *Args) string {
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			parts = append(parts, col+" ILIKE "+a.Bind(pattern))
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	})
}

// Overlaps matches rows whose array column shares at least one element
// with values.
func (w *Where) Overlaps(column string, values []string) *Where {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return w
	}

	return w.Condition(func(a *Args) string {
		return column + " && " + a.Bind(pq.Array(cleaned))
	})
}

// Between adds inclusive lower and upper bounds. A nil bound is absent.
func (w *Where) Between(column string, lower, upper any) *Where {
	if lower != nil {
		w.Condition(func(a *Args) string {
			return column + " >= " + a.Bind(lower)
		})
	}
	if upper != nil {
		w.Condition(func(a *Args) string {
			return column + " <= " + a.Bind(upper)
		})
	}
	return w
}

// Render writes the clause (with its WHERE keyword) into a, continuing the
// placeholder numbering a already holds.
func (w *Where) Render(a *Args) string {
	if len(w.preds) == 0 {
		return ""
	}

	conds := make([]string, 0, len(w.preds))
	for _, p := range w.preds {
		conds = append(conds, p(a))
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

func (w *Where) Build() (string, []any) {
	var a Args
	clause := w.Render(&a)
	return clause, a.Values()
}

// FieldMap translates external (API) field names to column names.
type FieldMap map[string]string

func (m FieldMap) Column(field string) (string, bool) {
	col, ok := m[field]
	return col, ok
}

// Validate reports fields that share a column.
func (m FieldMap) Validate() error {
	seen := make(map[string]string, len(m))
	for field, col := range m {
		if col == "" {
			return fmt.Errorf("field %q has no column", field)
		}
		if other, ok := seen[col]; ok {
			return fmt.Errorf("fields %q and %q both map to %q", field, other, col)
		}
		seen[col] = field
	}
	return nil
}

// Assignments builds a SET clause from explicitly provided fields only.
type Assignments struct {
	fields  FieldMap
	columns []string
	values  []any
	err     error
}

func NewAssignments(fields FieldMap) *Assignments {
	return &Assignments{fields: fields}
}

func (s *Assignments) Set(field string, value any) *Assignments {
	col, ok := s.fields.Column(field)
	if !ok {
		if s.err == nil {
			s.err = fmt.Errorf("unknown field %q: %w", field, ErrInvalidInput)
		}
		return s
	}
	s.columns = append(s.columns, col)
	s.values = append(s.values, value)
	return s
}

func (s *Assignments) Len() int {
	return len(s.columns)
}

func (s *Assignments) Err() error {
	return s.err
}

func (s *Assignments) Render(a *Args) string {
	parts := make([]string, 0, len(s.columns))
	for i, col := range s.columns {
		parts = append(parts, col+" = "+a.Bind(s.values[i]))
	}
	return strings.Join(parts, ", ")
}

func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

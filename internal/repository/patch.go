package repository

import "strings"

// assignments collects the SET list of an UPDATE from a typed patch.  Only
// column names written in this package ever reach the query text; caller
// data travels exclusively as bind arguments.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, v any) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, v)
}

// raw appends a fixed assignment that takes no argument.
func (a *assignments) raw(expr string) { a.cols = append(a.cols, expr) }

func setIf[T any](a *assignments, col string, v *T) {
	if v != nil {
		a.set(col, *v)
	}
}

func (a *assignments) empty() bool { return len(a.cols) == 0 }

func (a *assignments) clause() string { return strings.Join(a.cols, ", ") }

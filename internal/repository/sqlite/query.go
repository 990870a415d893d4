package sqlite

import (
	"fmt"
	"strings"
)

// Small helpers for assembling the dynamic parts of SQL statements. All SQL
// text stays visible at the call sites; only the repetitive bookkeeping of
// fragments-plus-args lives here. Values always travel as placeholders —
// never spliced into the SQL string.

// searchWhere returns an OR group matching the search term as a
// case-insensitive substring of any of the given columns:
//
//	(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')
//
// plus one pattern argument per column.
func searchWhere(cols []string, term string) (string, []any) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	frags := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		frags[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
		args[i] = pattern
	}
	return "(" + strings.Join(frags, " OR ") + ")", args
}

// escapeLike neutralises LIKE metacharacters in a user-supplied term, so
// searching for "100%" matches the literal text instead of everything.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// assignments collects "col = ?" fragments for a partial UPDATE. The addX
// methods append only when the value is present, so an untouched field never
// appears in the statement at all.
type assignments struct {
	frags []string
	args  []any
}

func (a *assignments) add(col string, v any) {
	a.frags = append(a.frags, col+" = ?")
	a.args = append(a.args, v)
}

func (a *assignments) addString(col string, v *string) {
	if v != nil {
		a.add(col, *v)
	}
}

func (a *assignments) addInt64(col string, v *int64) {
	if v != nil {
		a.add(col, *v)
	}
}

func (a *assignments) empty() bool {
	return len(a.frags) == 0
}

func (a *assignments) clause() string {
	return strings.Join(a.frags, ", ")
}

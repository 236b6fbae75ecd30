package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// whereBuilder collects AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conds  []string
	params []any
}

// add appends cond, replacing each "?" with the next $n placeholder.
func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.params = append(w.params, a)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.params)), 1)
	}
	w.conds = append(w.conds, cond)
}

// in adds "column IN (...)" for a non-empty list of values.
func (w *whereBuilder) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	marks := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		marks[i] = "?"
		args[i] = v
	}
	w.add(column+" IN ("+strings.Join(marks, ", ")+")", args...)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

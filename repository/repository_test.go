package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.String())

	w.add("in_stock = ?", true)
	w.in("category", []string{"Куклы", "Пазлы"})
	w.in("country", nil)
	w.add("CAST(price5 AS NUMERIC) >= ?", 10)

	assert.Equal(t, " WHERE in_stock = $1 AND category IN ($2, $3) AND CAST(price5 AS NUMERIC) >= $4", w.String())
	assert.Equal(t, []any{true, "Куклы", "Пазлы", 10}, w.params)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.False(t, isUniqueViolation(errors.New("boom")))

	assert.True(t, isForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.True(t, isForeignKeyViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}))
}

package query

import "fmt"

// Predicate renders one filter expression of a WHERE clause.
type Predicate interface {
	SQL() string
}

// Eq is an equality predicate against a named placeholder.
type Eq struct {
	Column string
	Param  string
}

// NewEq builds an equality predicate comparing column to the named parameter.
func NewEq(column, param string) Eq {
	return Eq{Column: column, Param: param}
}

// SQL renders the predicate text.
func (e Eq) SQL() string {
	return fmt.Sprintf("%s = @%s", e.Column, e.Param)
}

// Package query generates parameterized SQL text from class metadata. It is
// purely textual: placeholders use the @name form and are bound later by the
// statement layer.
package query

import (
	"fmt"
	"strings"

	"github.com/omega-orm/omega/internal/metadata"
)

// Alias is the table alias used by generated selects.
const Alias = "t"

// Builder accumulates the pieces of a single SQL statement.
type Builder struct {
	head   string
	from   string
	wheres []string
}

// Select starts a select of explicit columns.
func Select(columns ...string) *Builder {
	return &Builder{
		head: "SELECT " + strings.Join(columns, ", "),
	}
}

// SelectEntity starts a select projecting every plain column of the entity,
// aliased and in declaration order.
func SelectEntity(meta *metadata.ClassMetadata) *Builder {
	cols := meta.PlainColumns()
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = Alias + "." + col.ColumnName
	}
	b := Select(names...)
	return b.FromEntity(meta)
}

// Count starts a COUNT(*) select over a table.
func Count(table string) *Builder {
	return Select("COUNT(*)").From(table)
}

// Insert builds the parameterized insert for an entity's plain columns,
// excluding the generated identifier.
func Insert(meta *metadata.ClassMetadata) *Builder {
	var names, params []string
	for _, col := range meta.PlainColumns() {
		if col.IsIdentifier {
			continue
		}
		names = append(names, col.ColumnName)
		params = append(params, "@"+col.ColumnName)
	}
	return &Builder{
		head: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			meta.TableName, strings.Join(names, ", "), strings.Join(params, ", ")),
	}
}

// Update builds the parameterized update of an entity's plain columns,
// excluding the identifier; callers add the identifier filter.
func Update(meta *metadata.ClassMetadata) *Builder {
	var sets []string
	for _, col := range meta.PlainColumns() {
		if col.IsIdentifier {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = @%s", col.ColumnName, col.ColumnName))
	}
	return &Builder{
		head: fmt.Sprintf("UPDATE %s SET %s", meta.TableName, strings.Join(sets, ", ")),
	}
}

// From scopes the statement to a table with the default alias.
func (b *Builder) From(table string) *Builder {
	b.from = fmt.Sprintf("FROM %s %s", table, Alias)
	return b
}

// FromEntity scopes the statement to the entity's table.
func (b *Builder) FromEntity(meta *metadata.ClassMetadata) *Builder {
	return b.From(meta.TableName)
}

// Where starts the filter list.
func (b *Builder) Where(p Predicate) *Builder {
	b.wheres = []string{p.SQL()}
	return b
}

// AndWhere appends a filter ANDed to the previous ones.
func (b *Builder) AndWhere(p Predicate) *Builder {
	b.wheres = append(b.wheres, p.SQL())
	return b
}

// SQL renders the accumulated statement text.
func (b *Builder) SQL() string {
	var sb strings.Builder
	sb.WriteString(b.head)
	if b.from != "" {
		sb.WriteString(" ")
		sb.WriteString(b.from)
	}
	if len(b.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.wheres, " AND "))
	}
	return sb.String()
}

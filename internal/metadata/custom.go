package metadata

import "fmt"

// Named parameters shared by the custom-column upsert statements.
const (
	ParamIdentifier    = "identifier"
	ParamCustomFieldID = "customFieldId"
	ParamFieldValue    = "fieldValue"
)

// UpsertSQL returns the update and insert statements that together upsert
// this custom column's value for one entity: the update runs first, and the
// insert only when the update touched no row.
func (c *ColumnMetadata) UpsertSQL() (update string, insert string) {
	update = fmt.Sprintf(
		"UPDATE %s SET %s = @%s WHERE %s = @%s AND %s = @%s",
		c.CustomTable, CustomValueColumn, ParamFieldValue,
		c.ReferenceColumn, ParamIdentifier,
		CustomIDColumn, ParamCustomFieldID,
	)
	insert = fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s) VALUES (@%s, @%s, @%s)",
		c.CustomTable, c.ReferenceColumn, CustomIDColumn, CustomValueColumn,
		ParamIdentifier, ParamCustomFieldID, ParamFieldValue,
	)
	return update, insert
}

// UpsertParameters builds the named parameters for the upsert statements.
// Nil values and empty strings normalize to SQL NULL before binding.
func (c *ColumnMetadata) UpsertParameters(entity any, identifier any) (map[string]any, error) {
	value, err := c.Value(entity)
	if err != nil {
		return nil, err
	}
	if s, ok := value.(string); ok && s == "" {
		value = nil
	}
	return map[string]any{
		ParamIdentifier:    identifier,
		ParamCustomFieldID: c.CustomFieldID,
		ParamFieldValue:    value,
	}, nil
}

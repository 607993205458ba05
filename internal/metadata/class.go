package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

// TableNamer lets an entity type override its derived table name.
type TableNamer interface {
	TableName() string
}

var tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()

// ClassMetadata is the per-entity-type aggregate of column metadata. It is
// computed once per type, never mutated afterwards, and shared across
// goroutines for the lifetime of the process.
type ClassMetadata struct {
	// Type is the entity struct type.
	Type reflect.Type
	// TableName is the bound relational table.
	TableName string
	// Columns holds column metadata in field declaration order.
	Columns []*ColumnMetadata
	// IdentifierColumn is the primary key column name.
	IdentifierColumn string
	// GuidColumn is the row GUID column name, empty when absent.
	GuidColumn string
	// CustomTable is the EAV side table, empty when the type declares no
	// custom columns.
	CustomTable string
	// CustomReference is the side-table column referencing the identifier.
	CustomReference string

	byColumn   map[string]*ColumnMetadata
	byCustomID map[int]*ColumnMetadata
	identifier *ColumnMetadata
	guid       *ColumnMetadata
}

// newClassMetadata inspects a struct type field by field and builds its
// relational description.
func newClassMetadata(t reflect.Type) (*ClassMetadata, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotAStruct, t)
	}

	meta := &ClassMetadata{
		Type:       t,
		TableName:  tableName(t),
		byColumn:   make(map[string]*ColumnMetadata),
		byCustomID: make(map[int]*ColumnMetadata),
	}

	for i := 0; i < t.NumField(); i++ {
		col, err := newColumn(t, t.Field(i), i)
		if err != nil {
			return nil, err
		}
		if col == nil {
			continue
		}
		if col.ColumnName != "" && !col.IsCustomColumn {
			if _, dup := meta.byColumn[col.ColumnName]; dup {
				return nil, fmt.Errorf("%w: %s declares column %s twice", ErrInvalidMapping, t.Name(), col.ColumnName)
			}
			meta.byColumn[col.ColumnName] = col
		}
		meta.Columns = append(meta.Columns, col)

		if col.IsIdentifier {
			if meta.identifier != nil {
				return nil, fmt.Errorf("%w: %s declares more than one identifier column", ErrInvalidMapping, t.Name())
			}
			meta.identifier = col
			meta.IdentifierColumn = col.ColumnName
		}
		if col.IsRowGuid {
			if meta.guid != nil {
				return nil, fmt.Errorf("%w: %s declares more than one row guid column", ErrInvalidMapping, t.Name())
			}
			meta.guid = col
			meta.GuidColumn = col.ColumnName
		}
		if col.IsCustomColumn {
			if _, dup := meta.byCustomID[col.CustomFieldID]; dup {
				return nil, fmt.Errorf("%w: %s declares custom field id %d twice", ErrInvalidMapping, t.Name(), col.CustomFieldID)
			}
			meta.byCustomID[col.CustomFieldID] = col
			switch {
			case meta.CustomTable == "":
				meta.CustomTable = col.CustomTable
				meta.CustomReference = col.ReferenceColumn
			case meta.CustomTable != col.CustomTable || meta.CustomReference != col.ReferenceColumn:
				return nil, fmt.Errorf("%w: %s declares custom columns against different side tables", ErrInvalidMapping, t.Name())
			}
		}
	}

	if len(meta.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s declares no mapped fields", ErrInvalidMapping, t.Name())
	}
	if meta.identifier == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoIdentifier, t.Name())
	}

	return meta, nil
}

// HasGuidColumn reports whether the type declares a row GUID column.
func (m *ClassMetadata) HasGuidColumn() bool {
	return m.guid != nil
}

// HasCustomColumns reports whether the type declares any custom columns.
func (m *ClassMetadata) HasCustomColumns() bool {
	return len(m.byCustomID) > 0
}

// Column returns the metadata for a plain column by name.
func (m *ClassMetadata) Column(name string) (*ColumnMetadata, error) {
	col, ok := m.byColumn[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, m.Type.Name(), name)
	}
	return col, nil
}

// CustomColumn returns the metadata for a custom column by its field id.
func (m *ClassMetadata) CustomColumn(fieldID int) (*ColumnMetadata, error) {
	col, ok := m.byCustomID[fieldID]
	if !ok {
		return nil, fmt.Errorf("%w: %s id %d", ErrUnknownCustomField, m.Type.Name(), fieldID)
	}
	return col, nil
}

// IdentifierMeta returns the identifier column metadata.
func (m *ClassMetadata) IdentifierMeta() *ColumnMetadata {
	return m.identifier
}

// GuidMeta returns the row GUID column metadata, or nil.
func (m *ClassMetadata) GuidMeta() *ColumnMetadata {
	return m.guid
}

// Identifier reads the identifier value from an entity instance.
func (m *ClassMetadata) Identifier(entity any) (any, error) {
	return m.identifier.Value(entity)
}

// SetIdentifier writes the identifier value into an entity instance.
func (m *ClassMetadata) SetIdentifier(entity any, value any) error {
	return m.identifier.SetValue(entity, value)
}

// PlainColumns returns the columns persisted on the entity's own table, in
// declaration order. Many-to-one foreign keys are included; custom columns
// and one-to-many relationships are not.
func (m *ClassMetadata) PlainColumns() []*ColumnMetadata {
	cols := make([]*ColumnMetadata, 0, len(m.Columns))
	for _, col := range m.Columns {
		if col.IsCustomColumn || col.ColumnName == "" {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

// CustomColumns returns the custom columns in declaration order.
func (m *ClassMetadata) CustomColumns() []*ColumnMetadata {
	var cols []*ColumnMetadata
	for _, col := range m.Columns {
		if col.IsCustomColumn {
			cols = append(cols, col)
		}
	}
	return cols
}

// NewInstance allocates a zero-valued entity instance of this type.
func (m *ClassMetadata) NewInstance() any {
	return reflect.New(m.Type).Interface()
}

// tableName resolves the bound table for a type: the TableNamer override when
// present, otherwise the snake_case plural of the type name.
func tableName(t reflect.Type) string {
	if reflect.PointerTo(t).Implements(tableNamerType) {
		return reflect.New(t).Interface().(TableNamer).TableName()
	}
	return pluralize(toSnakeCase(t.Name()))
}

// toSnakeCase converts a string to snake_case.
func toSnakeCase(s string) string {
	var result []rune
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if prev >= 'a' && prev <= 'z' {
				result = append(result, '_')
			} else if i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' {
				result = append(result, '_')
			}
		}
		if r >= 'A' && r <= 'Z' {
			result = append(result, r+('a'-'A'))
		} else {
			result = append(result, r)
		}
	}
	return string(result)
}

// pluralize adds simple pluralization.
func pluralize(s string) string {
	if strings.HasSuffix(s, "s") ||
		strings.HasSuffix(s, "x") ||
		strings.HasSuffix(s, "z") {
		return s + "es"
	}
	if strings.HasSuffix(s, "y") {
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}

package metadata

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagName is the struct tag inspected for column declarations.
const TagName = "orm"

// CustomValueColumn is the fixed name of the value column in the custom-field
// side table shared by all custom-column-bearing entities.
const CustomValueColumn = "CustomFieldValue"

// CustomIDColumn is the fixed name of the field-id column in the custom-field
// side table.
const CustomIDColumn = "CustomFieldId"

// ColumnMetadata describes the relational binding of a single entity field.
type ColumnMetadata struct {
	// FieldName is the Go struct field name.
	FieldName string
	// FieldType is the Go type of the struct field.
	FieldType reflect.Type
	// ColumnName is the bound column; empty for one-to-many relationships.
	ColumnName string
	// ColumnType is the declared semantic storage type.
	ColumnType ColumnType

	IsIdentifier bool
	IsUnique     bool
	IsNullable   bool
	IsRowGuid    bool
	IsVersion    bool

	// IsRelationship marks many-to-one and one-to-many fields.
	IsRelationship   bool
	RelationshipType RelationshipType
	// TargetType is the related entity struct type, derived from the field's
	// Go type rather than declared in the tag.
	TargetType reflect.Type

	// ReferenceColumn is the join column: for relationships, the column on
	// the target type matched against this entity's value; for custom
	// columns, the side-table column holding the owning identifier.
	ReferenceColumn string

	// IsCustomColumn marks sparse fields stored in the EAV side table.
	IsCustomColumn bool
	CustomTable    string
	CustomFieldID  int

	fieldIndex int
}

// newColumn builds column metadata from a struct field's orm tag. Fields
// without a tag (or tagged "-") are outside the mapper's remit and yield
// (nil, nil).
func newColumn(owner reflect.Type, field reflect.StructField, index int) (*ColumnMetadata, error) {
	tag := field.Tag.Get(TagName)
	if tag == "" || tag == "-" {
		return nil, nil
	}
	if field.PkgPath != "" {
		return nil, fmt.Errorf("%w: field %s.%s is unexported", ErrInvalidMapping, owner.Name(), field.Name)
	}

	col := &ColumnMetadata{
		FieldName:  field.Name,
		FieldType:  field.Type,
		IsNullable: true,
		fieldIndex: index,
	}

	var (
		hasColumn    bool
		hasCustom    bool
		hasManyToOne bool
		hasOneToMany bool
		hasRef       bool
	)

	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}

		key, value := opt, ""
		if i := strings.IndexByte(opt, '='); i >= 0 {
			key, value = opt[:i], opt[i+1:]
		}

		switch key {
		case "column":
			if value == "" {
				return nil, tagError(owner, field, "column option requires a name")
			}
			hasColumn = true
			col.ColumnName = value
		case "type":
			col.ColumnType = ParseColumnType(value)
		case "identity":
			col.IsIdentifier = true
		case "unique":
			col.IsUnique = true
		case "notnull":
			col.IsNullable = false
		case "rowguid":
			col.IsRowGuid = true
		case "version":
			col.IsVersion = true
		case "many2one":
			hasManyToOne = true
		case "one2many":
			hasOneToMany = true
		case "ref":
			if value == "" {
				return nil, tagError(owner, field, "ref option requires a column name")
			}
			hasRef = true
			col.ReferenceColumn = value
		case "custom":
			hasCustom = true
		case "table":
			col.CustomTable = value
		case "id":
			id, err := strconv.Atoi(value)
			if err != nil {
				return nil, tagError(owner, field, fmt.Sprintf("invalid custom field id %q", value))
			}
			col.CustomFieldID = id
		default:
			return nil, tagError(owner, field, fmt.Sprintf("unknown option %q", key))
		}
	}

	// Exactly one of plain column, custom column, or one-to-many must apply.
	// A many-to-one rides on a plain column: its foreign key is read from the
	// owning row.
	if !hasColumn && !hasCustom && !hasOneToMany {
		return nil, tagError(owner, field, "no column, custom, or one2many marker")
	}
	if hasCustom && (hasManyToOne || hasOneToMany) {
		return nil, tagError(owner, field, "a field cannot be both a custom column and a relationship")
	}
	if hasCustom && hasColumn {
		return nil, tagError(owner, field, "a field cannot be both a plain column and a custom column")
	}
	if hasOneToMany && hasColumn {
		return nil, tagError(owner, field, "a one2many field cannot bind a column")
	}
	if hasManyToOne && hasOneToMany {
		return nil, tagError(owner, field, "a field cannot declare both relationship kinds")
	}
	if hasManyToOne && !hasColumn {
		return nil, tagError(owner, field, "a many2one field requires a foreign key column")
	}

	if hasManyToOne || hasOneToMany {
		// The join column must always be explicit; guessing a default has
		// produced inconsistent joins in the past.
		if !hasRef {
			return nil, tagError(owner, field, "relationships require an explicit ref column")
		}
		col.IsRelationship = true
		if hasManyToOne {
			col.RelationshipType = ManyToOne
			target, err := manyToOneTarget(field.Type)
			if err != nil {
				return nil, tagError(owner, field, err.Error())
			}
			col.TargetType = target
		} else {
			col.RelationshipType = OneToMany
			target, err := oneToManyTarget(field.Type)
			if err != nil {
				return nil, tagError(owner, field, err.Error())
			}
			col.TargetType = target
		}
	}

	if hasCustom {
		if col.CustomTable == "" {
			return nil, tagError(owner, field, "custom columns require a table")
		}
		if col.CustomFieldID <= 0 {
			return nil, tagError(owner, field, "custom columns require a positive field id")
		}
		if !hasRef {
			return nil, tagError(owner, field, "custom columns require a ref column")
		}
		col.IsCustomColumn = true
		col.ColumnName = CustomValueColumn
	}

	return col, nil
}

// manyToOneTarget derives the related entity type from a pointer-to-struct field.
func manyToOneTarget(t reflect.Type) (reflect.Type, error) {
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("many2one fields must be a pointer to a struct, got %s", t)
	}
	return t.Elem(), nil
}

// oneToManyTarget derives the related entity type from a slice-of-pointer field.
func oneToManyTarget(t reflect.Type) (reflect.Type, error) {
	if t.Kind() != reflect.Slice {
		return nil, fmt.Errorf("one2many fields must be a slice of pointers to a struct, got %s", t)
	}
	elem := t.Elem()
	if elem.Kind() != reflect.Ptr || elem.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("one2many fields must be a slice of pointers to a struct, got %s", t)
	}
	return elem.Elem(), nil
}

func tagError(owner reflect.Type, field reflect.StructField, msg string) error {
	return fmt.Errorf("%w: field %s.%s: %s", ErrInvalidMapping, owner.Name(), field.Name, msg)
}

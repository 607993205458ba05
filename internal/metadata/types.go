// Package metadata derives the relational shape of an entity type from its
// struct tags and memoizes the result for the lifetime of the process.
package metadata

// ColumnType is the semantic storage type of a mapped column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeBinary
	TypeBoolean
	TypeByte
	TypeBytes
	TypeChars
	TypeDate
	TypeDateTime
	TypeTime
	TypeDecimal
	TypeDouble
	TypeGuid
	TypeInt16
	TypeInt32
	TypeInt64
	TypeMoney
	TypeSingle
	TypeXml
)

// String returns the string representation of the column type.
func (c ColumnType) String() string {
	switch c {
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	case TypeBoolean:
		return "boolean"
	case TypeByte:
		return "byte"
	case TypeBytes:
		return "bytes"
	case TypeChars:
		return "chars"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	case TypeTime:
		return "time"
	case TypeDecimal:
		return "decimal"
	case TypeDouble:
		return "double"
	case TypeGuid:
		return "guid"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeMoney:
		return "money"
	case TypeSingle:
		return "single"
	case TypeXml:
		return "xml"
	default:
		return "unknown"
	}
}

// ParseColumnType converts a tag value to a ColumnType. Unrecognized values
// map to the generic string storage type, matching the storage fallback used
// when no more specific type is declared.
func ParseColumnType(s string) ColumnType {
	switch s {
	case "binary":
		return TypeBinary
	case "bool", "boolean":
		return TypeBoolean
	case "byte":
		return TypeByte
	case "bytes":
		return TypeBytes
	case "chars":
		return TypeChars
	case "date":
		return TypeDate
	case "datetime", "timestamp":
		return TypeDateTime
	case "time":
		return TypeTime
	case "decimal":
		return TypeDecimal
	case "double", "float64":
		return TypeDouble
	case "guid", "uuid":
		return TypeGuid
	case "int16":
		return TypeInt16
	case "int32", "int":
		return TypeInt32
	case "int64", "bigint":
		return TypeInt64
	case "money":
		return TypeMoney
	case "single", "float32":
		return TypeSingle
	case "xml":
		return TypeXml
	default:
		return TypeString
	}
}

// RelationshipType is the kind of relationship a field declares.
type RelationshipType int

const (
	// ManyToOne links a field to a single related entity through a foreign
	// key column on this entity's table.
	ManyToOne RelationshipType = iota
	// OneToMany links a field to the set of related entities whose reference
	// column matches this entity's identifier.
	OneToMany
)

// String returns the string representation of the relationship type.
func (r RelationshipType) String() string {
	switch r {
	case ManyToOne:
		return "many2one"
	case OneToMany:
		return "one2many"
	default:
		return "unknown"
	}
}

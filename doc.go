// Package omega is an object-relational mapping engine. It translates
// between typed entity structs and rows of a relational store using
// declarative per-field metadata, resolved once per type and cached for the
// lifetime of the process.
//
// Entities declare their relational binding through orm struct tags:
//
//	type Customer struct {
//		ID      int64      `orm:"column=Id,type=int64,identity"`
//		Code    string     `orm:"column=Code,type=string,unique"`
//		Name    string     `orm:"column=Name,type=string"`
//		RowGuid string     `orm:"column=RowGuid,type=guid,rowguid"`
//		Rating  int32      `orm:"custom,table=CustomerFields,id=7,ref=CustomerId,type=int32"`
//		Orders  []*Order   `orm:"one2many,ref=CustomerId"`
//	}
//
//	type Order struct {
//		ID       int64     `orm:"column=Id,type=int64,identity"`
//		Customer *Customer `orm:"column=CustomerId,type=int64,many2one,ref=Id"`
//		Total    float64   `orm:"column=Total,type=money"`
//	}
//
// Tag options:
//
//   - column=<name>, type=<storage type>: a plain column binding.
//   - identity: marks the single numeric primary key column.
//   - unique, notnull, rowguid, version: column flags.
//   - many2one, ref=<column>: the field (a pointer to the target struct)
//     resolves to the one target entity whose ref column equals this row's
//     foreign key value. Requires a column binding for the foreign key.
//   - one2many, ref=<column>: the field (a slice of pointers) resolves to
//     every target entity whose ref column equals this entity's identifier.
//   - custom, table=<side table>, id=<field id>, ref=<column>: a sparse
//     attribute stored in a shared entity-attribute-value side table.
//
// Table names derive from the snake_case plural of the type name, or from a
// TableName() method on the entity type.
//
// The EntityManager guarantees at most one live instance per (type,
// identifier) within a process: hydration consults the identity cache before
// allocating, so relationship graphs with cycles terminate and repeated
// reads of one row return one shared object. Writes run as single
// transactions with bounded retry on transient database errors.
package omega

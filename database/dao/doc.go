// Package dao maps table rows onto records.
//
// An Entity describes a table: its name, mapped fields, primary key and
// relationships.  Entities are usually declared from a sqlbuilder.Table, or
// derived from a tagged struct with EntityFromStruct, and registered in a
// Registry so that relationships can refer to them by name.
//
// A Record holds the field values of one row plus the change-set of fields
// written since it was last loaded or saved.  The Mapper turns records and
// entities into sqlbuilder statements and runs them through an Executor:
//
//	users := dao.MustEntity("user", usersTable)
//	mapper := dao.NewMapper(exec, registry)
//	rec, err := mapper.LoadByPrimary(ctx, "user", 42)
//	...
//	_ = rec.Set("name", "john")
//	err = mapper.Save(ctx, rec)
//
// Statements are built by BuildLoadBy, BuildSave and BuildDelete, which do not
// touch the database and can be rendered on their own.
package dao

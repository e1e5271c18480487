// Package native models the objects the multidimensional query engine hands
// to this module: the parsed query tree, resolved expression types, schema
// objects and evaluated axes.
//
// Everything here is owned by the engine for the lifetime of one statement
// and is treated as read-only. The translation packages (convert, drill,
// axis) hold references to these objects only for the duration of a call.
//
// SEALED INTERFACES:
//
// Expr and Type are sealed with an unexported marker method, so only types in
// this package implement them. Consumers dispatch with exhaustive type
// switches; a kind the consumer does not handle surfaces as a defect rather
// than a silent fallthrough.
//
//	switch e := expr.(type) {
//	case *Identifier:
//	case *FunctionCall:
//	case *DimensionRef, *HierarchyRef, *LevelRef, *MemberRef:
//	case *Literal:
//	default:
//	    // defect
//	}
//
// CALLBACKS:
//
// Navigation that needs the engine (parent, children, root members, default
// member, lookup by name) goes through SchemaReader. Schema objects do not
// embed a reference to the session that produced them; callers pass the
// reader explicitly.
package native

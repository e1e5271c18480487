// Package convert translates the engine's parsed query tree into the
// portable tree.
//
// The translation is exhaustive and shape-preserving: every native node
// becomes exactly one portable node, arguments keep their order, and nothing
// is simplified. Dispatch is by node kind with no implicit coercion:
//
//	native               portable
//	------               --------
//	Identifier           IdentifierNode (segments + quoting, one to one)
//	FunctionCall         CallNode (name verbatim, syntax looked up by name)
//	DimensionRef ...     DimensionNode ... via the injected Wrapper
//	Literal(symbol)      LiteralNode symbol
//	Literal(numeric)     LiteralNode numeric, exact decimal
//	Literal(string)      LiteralNode string
//	Literal(null)        LiteralNode null
//
// Anything else is a defect (see package fault): the input has already been
// parsed by the engine, so a gap in coverage is a bug in this package, not a
// user error. Defects are returned unwrapped.
//
// NUMERIC PRECISION:
//
// Numeric literals become *apd.Decimal values. Integer storage of any width
// and big integers convert without touching floating point; float32 and
// float64 values convert through their shortest round-trip text at their own
// width, so 5.25 stored as float32 and as float64 give the same decimal.
//
// TYPES:
//
// Resolved types map case by case. Hierarchy and level types have no
// portable counterpart and map to BooleanType. That mapping is kept as is.
package convert

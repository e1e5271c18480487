package native

// Type is the engine's resolved type of an expression.
//
// This is a sealed interface. ScalarType and EmptyType exist only in the
// engine model and have no client-facing counterpart.
type Type interface {
	nativeType()
}

// BooleanType is the type of logical expressions.
type BooleanType struct{}

func (BooleanType) nativeType() {}

// CubeType is the type of a cube reference.
type CubeType struct{}

func (CubeType) nativeType() {}

// DecimalType is a numeric type with fixed precision and scale.
type DecimalType struct {
	Precision int
	Scale     int
}

func (DecimalType) nativeType() {}

// DimensionType is the type of an expression yielding a dimension.
type DimensionType struct {
	Dimension *Dimension
}

func (*DimensionType) nativeType() {}

// HierarchyType is the type of an expression yielding a hierarchy.
type HierarchyType struct {
	Dimension *Dimension
	Hierarchy *Hierarchy
}

func (*HierarchyType) nativeType() {}

// LevelType is the type of an expression yielding a level.
type LevelType struct {
	Dimension *Dimension
	Hierarchy *Hierarchy
	Level     *Level
}

func (*LevelType) nativeType() {}

// MemberType is the type of an expression yielding a member. Any of the
// references may be nil when the engine could not narrow them.
type MemberType struct {
	Dimension *Dimension
	Hierarchy *Hierarchy
	Level     *Level
	Member    *Member
}

func (*MemberType) nativeType() {}

// MemberTypeOf returns the most specific member type for m.
func MemberTypeOf(m *Member) *MemberType {
	return &MemberType{
		Dimension: m.Dimension(),
		Hierarchy: m.Hierarchy(),
		Level:     m.Level,
		Member:    m,
	}
}

// NullType is the type of the null literal.
type NullType struct{}

func (NullType) nativeType() {}

// NumericType is the type of numeric expressions.
type NumericType struct{}

func (NumericType) nativeType() {}

// SetType is a set whose elements have type Element (member or tuple).
type SetType struct {
	Element Type
}

func (*SetType) nativeType() {}

// StringType is the type of string expressions.
type StringType struct{}

func (StringType) nativeType() {}

// TupleType is a tuple with one element type per component.
type TupleType struct {
	Elements []Type
}

func (*TupleType) nativeType() {}

// SymbolType is the type of symbol literals.
type SymbolType struct{}

func (SymbolType) nativeType() {}

// ScalarType is the engine's catch-all scalar. It has no client-facing form.
type ScalarType struct{}

func (ScalarType) nativeType() {}

// EmptyType is the type of the empty expression. It has no client-facing form.
type EmptyType struct{}

func (EmptyType) nativeType() {}

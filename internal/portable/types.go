package portable

import "fmt"

// Type is the resolved type of a portable expression.
//
// This is a sealed interface. There is no hierarchy or level type; see the
// convert package for how engine types without a counterpart are mapped.
type Type interface {
	portableType()
}

// BooleanType is the type of logical expressions.
type BooleanType struct{}

func (BooleanType) portableType() {}

// CubeType is the type of a cube reference.
type CubeType struct{}

func (CubeType) portableType() {}

// DecimalType is a numeric type with fixed precision and scale.
type DecimalType struct {
	Precision int
	Scale     int
}

func (DecimalType) portableType() {}

// DimensionType is the type of a dimension-valued expression.
type DimensionType struct {
	Dimension *Dimension
}

func (*DimensionType) portableType() {}

// MemberType is the type of a member-valued expression. References are nil
// when not narrowed.
type MemberType struct {
	Dimension *Dimension
	Hierarchy *Hierarchy
	Level     *Level
	Member    *Member
}

func (*MemberType) portableType() {}

// NullType is the type of the null literal.
type NullType struct{}

func (NullType) portableType() {}

// NumericType is the type of numeric expressions.
type NumericType struct{}

func (NumericType) portableType() {}

// SetType is a set of members or tuples.
type SetType struct {
	Element Type
}

func (*SetType) portableType() {}

// StringType is the type of string expressions.
type StringType struct{}

func (StringType) portableType() {}

// TupleType is a tuple with one element type per component.
type TupleType struct {
	Elements []Type
}

func (*TupleType) portableType() {}

// SymbolType is the type of symbol literals.
type SymbolType struct{}

func (SymbolType) portableType() {}

// TypeName returns a short lower-case name for t, used in encodings.
func TypeName(t Type) string {
	switch t.(type) {
	case BooleanType:
		return "boolean"
	case CubeType:
		return "cube"
	case DecimalType:
		return "decimal"
	case *DimensionType:
		return "dimension"
	case *MemberType:
		return "member"
	case NullType:
		return "null"
	case NumericType:
		return "numeric"
	case *SetType:
		return "set"
	case StringType:
		return "string"
	case *TupleType:
		return "tuple"
	case SymbolType:
		return "symbol"
	default:
		return fmt.Sprintf("%T", t)
	}
}

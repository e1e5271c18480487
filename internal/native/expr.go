package native

import "strings"

// Expr is a node of the engine's parsed query tree.
//
// This is a sealed interface. Node kinds:
//   - Identifier: a possibly compound name not yet resolved to a schema object
//   - FunctionCall: a function, operator or property access
//   - DimensionRef, HierarchyRef, LevelRef, MemberRef: resolved schema objects
//   - Literal: numeric, string, symbol or null constant
type Expr interface {
	nativeExpr()
}

// Quoting describes how an identifier segment was written.
type Quoting int

const (
	// Unquoted is a bare name, e.g. Store.
	Unquoted Quoting = iota
	// Quoted is a bracketed name, e.g. [Store].
	Quoted
	// Key is an ampersand key reference, e.g. &[1997].
	Key
)

func (q Quoting) String() string {
	switch q {
	case Unquoted:
		return "UNQUOTED"
	case Quoted:
		return "QUOTED"
	case Key:
		return "KEY"
	default:
		return "Quoting(?)"
	}
}

// Segment is one part of a compound identifier.
type Segment struct {
	Name    string
	Quoting Quoting
}

// Identifier is a compound name such as [Store].[USA].
type Identifier struct {
	Segments []Segment
}

func (*Identifier) nativeExpr() {}

// NewIdentifier creates an identifier from segments.
func NewIdentifier(segments ...Segment) *Identifier {
	return &Identifier{Segments: segments}
}

// QuotedIdentifier creates an identifier whose segments are all quoted.
func QuotedIdentifier(names ...string) *Identifier {
	segs := make([]Segment, len(names))
	for i, n := range names {
		segs[i] = Segment{Name: n, Quoting: Quoted}
	}
	return &Identifier{Segments: segs}
}

// Syntax is the engine's classification of how a function call is written.
type Syntax int

const (
	SyntaxFunction Syntax = iota
	SyntaxProperty
	SyntaxMethod
	SyntaxInfix
	SyntaxPrefix
	SyntaxPostfix
	SyntaxBraces
	SyntaxParentheses
	SyntaxCase
	SyntaxMask
	SyntaxInternal
	SyntaxEmpty
	SyntaxCast
	SyntaxQuotedProperty
	SyntaxAmpersandQuotedProperty
	SyntaxStatement
)

var syntaxNames = [...]string{
	SyntaxFunction:                "Function",
	SyntaxProperty:                "Property",
	SyntaxMethod:                  "Method",
	SyntaxInfix:                   "Infix",
	SyntaxPrefix:                  "Prefix",
	SyntaxPostfix:                 "Postfix",
	SyntaxBraces:                  "Braces",
	SyntaxParentheses:             "Parentheses",
	SyntaxCase:                    "Case",
	SyntaxMask:                    "Mask",
	SyntaxInternal:                "Internal",
	SyntaxEmpty:                   "Empty",
	SyntaxCast:                    "Cast",
	SyntaxQuotedProperty:          "QuotedProperty",
	SyntaxAmpersandQuotedProperty: "AmpersandQuotedProperty",
	SyntaxStatement:               "Statement",
}

// String returns the syntax name. Unknown values render as "Syntax(?)".
func (s Syntax) String() string {
	if s < 0 || int(s) >= len(syntaxNames) {
		return "Syntax(?)"
	}
	return syntaxNames[s]
}

// ParseSyntax returns the syntax with the given name.
func ParseSyntax(name string) (Syntax, bool) {
	for i, n := range syntaxNames {
		if n == name {
			return Syntax(i), true
		}
	}
	return 0, false
}

// FunctionCall is a call of a function, operator or property.
//
// Type is the resolved result type when the engine has validated the
// expression, nil otherwise.
type FunctionCall struct {
	Name   string
	Syntax Syntax
	Args   []Expr
	Type   Type
}

func (*FunctionCall) nativeExpr() {}

// DimensionRef is a resolved reference to a dimension.
type DimensionRef struct {
	Dimension *Dimension
}

func (*DimensionRef) nativeExpr() {}

// HierarchyRef is a resolved reference to a hierarchy.
type HierarchyRef struct {
	Hierarchy *Hierarchy
}

func (*HierarchyRef) nativeExpr() {}

// LevelRef is a resolved reference to a level.
type LevelRef struct {
	Level *Level
}

func (*LevelRef) nativeExpr() {}

// MemberRef is a resolved reference to a member.
type MemberRef struct {
	Member *Member
}

func (*MemberRef) nativeExpr() {}

// LiteralCategory classifies a literal constant.
type LiteralCategory int

const (
	LiteralNull LiteralCategory = iota
	LiteralString
	LiteralNumeric
	LiteralSymbol
)

func (c LiteralCategory) String() string {
	switch c {
	case LiteralNull:
		return "NULL"
	case LiteralString:
		return "STRING"
	case LiteralNumeric:
		return "NUMERIC"
	case LiteralSymbol:
		return "SYMBOL"
	default:
		return "LiteralCategory(?)"
	}
}

// Literal is a constant.
//
// Value depends on Category:
//   - LiteralNull: nil
//   - LiteralString, LiteralSymbol: string
//   - LiteralNumeric: int8, int16, int32, int64, int, *big.Int, float32,
//     float64 or *apd.Decimal, whatever width the engine stored it in
type Literal struct {
	Category LiteralCategory
	Value    any
}

func (*Literal) nativeExpr() {}

// NullLiteral creates the null constant.
func NullLiteral() *Literal {
	return &Literal{Category: LiteralNull}
}

// StringLiteral creates a string constant.
func StringLiteral(s string) *Literal {
	return &Literal{Category: LiteralString, Value: s}
}

// SymbolLiteral creates a symbol constant such as ASC or BDESC.
func SymbolLiteral(s string) *Literal {
	return &Literal{Category: LiteralSymbol, Value: s}
}

// NumericLiteral creates a numeric constant holding v as stored by the engine.
func NumericLiteral(v any) *Literal {
	return &Literal{Category: LiteralNumeric, Value: v}
}

// Children returns the direct sub-expressions of e in argument order.
// Leaves return nil.
func Children(e Expr) []Expr {
	if call, ok := e.(*FunctionCall); ok {
		return call.Args
	}
	return nil
}

// CountNodes returns the number of nodes in the tree rooted at e.
func CountNodes(e Expr) int {
	if e == nil {
		return 0
	}
	n := 1
	for _, c := range Children(e) {
		n += CountNodes(c)
	}
	return n
}

// TypeOf returns the static type of e, or nil when it is not known without
// validation (unresolved identifiers, calls the engine did not type).
func TypeOf(e Expr) Type {
	switch x := e.(type) {
	case *FunctionCall:
		return x.Type
	case *MemberRef:
		return MemberTypeOf(x.Member)
	case *LevelRef:
		return &LevelType{Dimension: x.Level.Dimension(), Hierarchy: x.Level.Hierarchy, Level: x.Level}
	case *HierarchyRef:
		return &HierarchyType{Dimension: x.Hierarchy.Dimension, Hierarchy: x.Hierarchy}
	case *DimensionRef:
		return &DimensionType{Dimension: x.Dimension}
	case *Literal:
		switch x.Category {
		case LiteralNumeric:
			return NumericType{}
		case LiteralString:
			return StringType{}
		case LiteralSymbol:
			return SymbolType{}
		case LiteralNull:
			return NullType{}
		}
	}
	return nil
}

// Shape renders the branching structure of e as nested parentheses, one pair
// per node, children in order. Two trees with equal shapes have the same node
// count and argument arity at every position.
func Shape(e Expr) string {
	var sb strings.Builder
	writeShape(&sb, e)
	return sb.String()
}

func writeShape(sb *strings.Builder, e Expr) {
	if e == nil {
		return
	}
	sb.WriteByte('(')
	for _, c := range Children(e) {
		writeShape(sb, c)
	}
	sb.WriteByte(')')
}

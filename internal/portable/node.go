package portable

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Node is a node of the portable query tree.
//
// This is a sealed interface - only types in this package implement it.
type Node interface {
	portableNode()
}

// SelectNode is a complete SELECT statement.
type SelectNode struct {
	// With holds *WithMemberNode and *WithSetNode definitions in written order.
	With []Node

	Axes []*AxisNode

	// From is the cube reference (normally a *CubeNode).
	From Node

	// Filter is the WHERE clause, nil when absent.
	Filter *AxisNode

	CellProperties []*IdentifierNode
}

func (*SelectNode) portableNode() {}

// AxisNode is one axis of a SELECT, including the filter axis.
type AxisNode struct {
	Axis     Axis
	NonEmpty bool

	// Expression is the axis set expression, nil for an empty axis.
	Expression Node

	DimensionProperties []*IdentifierNode
}

func (*AxisNode) portableNode() {}

// WithMemberNode defines a calculated member.
type WithMemberNode struct {
	Identifier       *IdentifierNode
	Expression       Node
	MemberProperties []*PropertyValueNode
}

func (*WithMemberNode) portableNode() {}

// SolveOrderProperty is the member property holding a calculated member's
// solve order.
const SolveOrderProperty = "SOLVE_ORDER"

// SolveOrder returns the integral SOLVE_ORDER assignment, or 0 when absent.
func (w *WithMemberNode) SolveOrder() int {
	for _, p := range w.MemberProperties {
		if p.Name != SolveOrderProperty {
			continue
		}
		lit, ok := p.Expression.(*LiteralNode)
		if !ok || lit.Kind != LiteralNumeric || lit.Number == nil {
			return 0
		}
		n, err := lit.Number.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

// WithSetNode defines a named set.
type WithSetNode struct {
	Identifier *IdentifierNode
	Expression Node
}

func (*WithSetNode) portableNode() {}

// PropertyValueNode is a "name = expression" member property assignment.
type PropertyValueNode struct {
	Name       string
	Expression Node
}

func (*PropertyValueNode) portableNode() {}

// CallNode is a call of a function, operator or property.
type CallNode struct {
	Name   string
	Syntax Syntax
	Args   []Node

	// Type is the resolved result type, nil when unknown.
	Type Type
}

func (*CallNode) portableNode() {}

// IdentifierSegment is one part of a compound identifier.
type IdentifierSegment struct {
	Name    string
	Quoting Quoting
}

// IdentifierNode is a compound name.
type IdentifierNode struct {
	Segments []IdentifierSegment
}

func (*IdentifierNode) portableNode() {}

// NewIdentifier creates an identifier from segments.
func NewIdentifier(segments ...IdentifierSegment) *IdentifierNode {
	return &IdentifierNode{Segments: segments}
}

// CubeNode references a cube.
type CubeNode struct {
	Cube Cube
}

func (*CubeNode) portableNode() {}

// DimensionNode references a dimension.
type DimensionNode struct {
	Dimension Dimension
}

func (*DimensionNode) portableNode() {}

// HierarchyNode references a hierarchy.
type HierarchyNode struct {
	Hierarchy Hierarchy
}

func (*HierarchyNode) portableNode() {}

// LevelNode references a level.
type LevelNode struct {
	Level Level
}

func (*LevelNode) portableNode() {}

// MemberNode references a member.
type MemberNode struct {
	Member Member
}

func (*MemberNode) portableNode() {}

// LiteralKind classifies a literal.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralString
	LiteralSymbol
	LiteralNumeric
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralNull:
		return "null"
	case LiteralString:
		return "string"
	case LiteralSymbol:
		return "symbol"
	case LiteralNumeric:
		return "numeric"
	default:
		return "literal(" + strconv.Itoa(int(k)) + ")"
	}
}

// LiteralNode is a constant. Text holds string and symbol values; Number
// holds numeric values exactly.
type LiteralNode struct {
	Kind   LiteralKind
	Text   string
	Number *apd.Decimal
}

func (*LiteralNode) portableNode() {}

// NullLiteral creates the null constant.
func NullLiteral() *LiteralNode {
	return &LiteralNode{Kind: LiteralNull}
}

// StringLiteral creates a string constant.
func StringLiteral(s string) *LiteralNode {
	return &LiteralNode{Kind: LiteralString, Text: s}
}

// SymbolLiteral creates a symbol constant.
func SymbolLiteral(s string) *LiteralNode {
	return &LiteralNode{Kind: LiteralSymbol, Text: s}
}

// NumericLiteral creates an exact numeric constant.
func NumericLiteral(d *apd.Decimal) *LiteralNode {
	return &LiteralNode{Kind: LiteralNumeric, Number: d}
}

// Children returns the direct children of n in structural order.
// Leaves return nil.
func Children(n Node) []Node {
	switch x := n.(type) {
	case *CallNode:
		return x.Args
	case *SelectNode:
		var out []Node
		out = append(out, x.With...)
		for _, a := range x.Axes {
			out = append(out, a)
		}
		if x.From != nil {
			out = append(out, x.From)
		}
		if x.Filter != nil {
			out = append(out, x.Filter)
		}
		for _, p := range x.CellProperties {
			out = append(out, p)
		}
		return out
	case *AxisNode:
		var out []Node
		if x.Expression != nil {
			out = append(out, x.Expression)
		}
		for _, p := range x.DimensionProperties {
			out = append(out, p)
		}
		return out
	case *WithMemberNode:
		out := []Node{x.Identifier, x.Expression}
		for _, p := range x.MemberProperties {
			out = append(out, p)
		}
		return out
	case *WithSetNode:
		return []Node{x.Identifier, x.Expression}
	case *PropertyValueNode:
		return []Node{x.Expression}
	default:
		return nil
	}
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range Children(n) {
		count += CountNodes(c)
	}
	return count
}

// Shape renders the branching structure of n as nested parentheses, one pair
// per node, children in order.
func Shape(n Node) string {
	var sb strings.Builder
	writeShape(&sb, n)
	return sb.String()
}

func writeShape(sb *strings.Builder, n Node) {
	if n == nil {
		return
	}
	sb.WriteByte('(')
	for _, c := range Children(n) {
		writeShape(sb, c)
	}
	sb.WriteByte(')')
}

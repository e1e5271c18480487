package native

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// AxisOrdinal identifies a query axis. The slicer is -1; numbered axes start
// at 0 (COLUMNS).
type AxisOrdinal int

const (
	AxisSlicer   AxisOrdinal = -1
	AxisColumns  AxisOrdinal = 0
	AxisRows     AxisOrdinal = 1
	AxisPages    AxisOrdinal = 2
	AxisChapters AxisOrdinal = 3
	AxisSections AxisOrdinal = 4
)

func (o AxisOrdinal) String() string {
	switch o {
	case AxisSlicer:
		return "SLICER"
	case AxisColumns:
		return "COLUMNS"
	case AxisRows:
		return "ROWS"
	case AxisPages:
		return "PAGES"
	case AxisChapters:
		return "CHAPTERS"
	case AxisSections:
		return "SECTIONS"
	default:
		return fmt.Sprintf("AXIS(%d)", int(o))
	}
}

// QueryAxis is one axis of a parsed query.
type QueryAxis struct {
	Ordinal  AxisOrdinal
	NonEmpty bool

	// Set is the axis expression; nil for an axis with no expression.
	Set Expr

	// Properties are the requested DIMENSION PROPERTIES, in order.
	Properties []*Identifier
}

// Type returns the static type of the axis expression, or nil.
func (a *QueryAxis) Type() Type {
	if a == nil || a.Set == nil {
		return nil
	}
	return TypeOf(a.Set)
}

// PropertyAssignment is a "name = expr" clause of a calculated member.
type PropertyAssignment struct {
	Name string
	Expr Expr
}

// SolveOrderProperty is the member property holding a formula's solve order.
const SolveOrderProperty = "SOLVE_ORDER"

// Formula is a WITH MEMBER or WITH SET definition.
type Formula struct {
	Identifier *Identifier
	Expr       Expr

	// IsMember distinguishes calculated members from named sets.
	IsMember bool

	// Properties are the member property assignments, in order. Always
	// empty for named sets.
	Properties []*PropertyAssignment
}

// SolveOrder returns the numeric SOLVE_ORDER assignment, or 0 when absent
// or not an integral literal.
func (f *Formula) SolveOrder() int {
	for _, p := range f.Properties {
		if p.Name != SolveOrderProperty {
			continue
		}
		lit, ok := p.Expr.(*Literal)
		if !ok || lit.Category != LiteralNumeric {
			return 0
		}
		return integralValue(lit.Value)
	}
	return 0
}

func integralValue(v any) int {
	switch n := v.(type) {
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case *big.Int:
		if n.IsInt64() {
			return int(n.Int64())
		}
	case float32:
		return int(n)
	case float64:
		return int(n)
	case *apd.Decimal:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}

// Query is a parsed SELECT statement.
type Query struct {
	Cube     *Cube
	Formulas []*Formula

	// Axes are the non-slicer axes in the order they were written.
	Axes []*QueryAxis

	// Slicer is the WHERE clause axis, nil when absent.
	Slicer *QueryAxis

	// CellProperties are the requested CELL PROPERTIES, in order.
	CellProperties []*Identifier
}

// Position is one evaluated coordinate: one member per hierarchy of the
// axis, in hierarchy declaration order.
type Position []*Member

// Axis is an evaluated query axis.
type Axis struct {
	Ordinal   AxisOrdinal
	Positions []Position
}

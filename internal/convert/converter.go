package convert

import (
	"github.com/roach88/mdxbridge/internal/fault"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/portable"
)

// Converter translates native query trees into portable trees.
//
// A Converter holds no per-call state and is safe for concurrent use.
type Converter struct {
	wrap Wrapper
}

// NewConverter creates a Converter that translates schema objects with w.
// A nil w uses NameWrapper.
func NewConverter(w Wrapper) *Converter {
	if w == nil {
		w = NameWrapper{}
	}
	return &Converter{wrap: w}
}

// Wrapper returns the schema-object translation used by c.
func (c *Converter) Wrapper() Wrapper {
	return c.wrap
}

// Query converts a parsed SELECT statement.
//
// Formulas, axes and cell properties keep their original order. The slicer,
// when present, becomes the select's filter axis.
func (c *Converter) Query(q *native.Query) (*portable.SelectNode, error) {
	if q == nil {
		return nil, fault.Defect(fault.ErrCodeUnknownNode, "nil query")
	}

	sel := &portable.SelectNode{
		With: make([]portable.Node, 0, len(q.Formulas)),
		Axes: make([]*portable.AxisNode, 0, len(q.Axes)),
		From: &portable.CubeNode{Cube: c.wrap.Cube(q.Cube)},
	}

	for _, f := range q.Formulas {
		w, err := c.formula(f)
		if err != nil {
			return nil, err
		}
		sel.With = append(sel.With, w)
	}

	for _, a := range q.Axes {
		axis, err := c.Axis(a)
		if err != nil {
			return nil, err
		}
		sel.Axes = append(sel.Axes, axis)
	}

	if q.Slicer != nil {
		filter, err := c.Axis(q.Slicer)
		if err != nil {
			return nil, err
		}
		sel.Filter = filter
	}

	props, err := c.identifiers(q.CellProperties)
	if err != nil {
		return nil, err
	}
	sel.CellProperties = props

	return sel, nil
}

// formula converts a WITH MEMBER or WITH SET definition.
func (c *Converter) formula(f *native.Formula) (portable.Node, error) {
	id, err := c.Identifier(f.Identifier)
	if err != nil {
		return nil, err
	}
	expr, err := c.Expr(f.Expr)
	if err != nil {
		return nil, err
	}
	if !f.IsMember {
		return &portable.WithSetNode{Identifier: id, Expression: expr}, nil
	}

	props := make([]*portable.PropertyValueNode, 0, len(f.Properties))
	for _, p := range f.Properties {
		val, err := c.Expr(p.Expr)
		if err != nil {
			return nil, err
		}
		props = append(props, &portable.PropertyValueNode{Name: p.Name, Expression: val})
	}
	return &portable.WithMemberNode{
		Identifier:       id,
		Expression:       expr,
		MemberProperties: props,
	}, nil
}

// Axis converts one query axis. An axis without a set expression converts
// to an AxisNode with a nil Expression.
func (c *Converter) Axis(a *native.QueryAxis) (*portable.AxisNode, error) {
	ordinal, err := AxisOf(a.Ordinal)
	if err != nil {
		return nil, err
	}
	node := &portable.AxisNode{Axis: ordinal, NonEmpty: a.NonEmpty}
	if a.Set != nil {
		if node.Expression, err = c.Expr(a.Set); err != nil {
			return nil, err
		}
	}
	if node.DimensionProperties, err = c.identifiers(a.Properties); err != nil {
		return nil, err
	}
	return node, nil
}

// Expr converts a sub-expression.
func (c *Converter) Expr(e native.Expr) (portable.Node, error) {
	switch x := e.(type) {
	case *native.Identifier:
		return c.Identifier(x)
	case *native.FunctionCall:
		return c.call(x)
	case *native.DimensionRef:
		return &portable.DimensionNode{Dimension: c.wrap.Dimension(x.Dimension)}, nil
	case *native.HierarchyRef:
		return &portable.HierarchyNode{Hierarchy: c.wrap.Hierarchy(x.Hierarchy)}, nil
	case *native.LevelRef:
		return &portable.LevelNode{Level: c.wrap.Level(x.Level)}, nil
	case *native.MemberRef:
		return &portable.MemberNode{Member: c.wrap.Member(x.Member)}, nil
	case *native.Literal:
		return c.literal(x)
	default:
		return nil, fault.UnknownNode("expression", e)
	}
}

func (c *Converter) call(call *native.FunctionCall) (*portable.CallNode, error) {
	if call == nil {
		return nil, fault.Defect(fault.ErrCodeUnknownNode, "nil function call")
	}
	syntax, ok := portable.SyntaxByName(call.Syntax.String())
	if !ok {
		return nil, fault.Defect(fault.ErrCodeUnknownSyntax,
			"call %q: no portable syntax named %q", call.Name, call.Syntax)
	}

	args := make([]portable.Node, len(call.Args))
	for i, arg := range call.Args {
		node, err := c.Expr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = node
	}

	typ, err := c.Type(call.Type)
	if err != nil {
		return nil, err
	}

	return &portable.CallNode{
		Name:   call.Name,
		Syntax: syntax,
		Args:   args,
		Type:   typ,
	}, nil
}

// Identifier converts a compound identifier segment by segment.
func (c *Converter) Identifier(id *native.Identifier) (*portable.IdentifierNode, error) {
	if id == nil {
		return nil, fault.Defect(fault.ErrCodeUnknownNode, "nil identifier")
	}
	segs := make([]portable.IdentifierSegment, len(id.Segments))
	for i, s := range id.Segments {
		q, err := quoting(s.Quoting)
		if err != nil {
			return nil, err
		}
		segs[i] = portable.IdentifierSegment{Name: s.Name, Quoting: q}
	}
	return &portable.IdentifierNode{Segments: segs}, nil
}

func (c *Converter) identifiers(ids []*native.Identifier) ([]*portable.IdentifierNode, error) {
	out := make([]*portable.IdentifierNode, len(ids))
	for i, id := range ids {
		node, err := c.Identifier(id)
		if err != nil {
			return nil, err
		}
		out[i] = node
	}
	return out, nil
}

func quoting(q native.Quoting) (portable.Quoting, error) {
	switch q {
	case native.Unquoted:
		return portable.Unquoted, nil
	case native.Quoted:
		return portable.Quoted, nil
	case native.Key:
		return portable.Key, nil
	default:
		return 0, fault.Defect(fault.ErrCodeUnknownNode, "unhandled quoting %d", int(q))
	}
}

func (c *Converter) literal(l *native.Literal) (*portable.LiteralNode, error) {
	if l == nil {
		return nil, fault.Defect(fault.ErrCodeUnknownNode, "nil literal")
	}
	switch l.Category {
	case native.LiteralSymbol:
		s, err := literalText(l)
		if err != nil {
			return nil, err
		}
		return portable.SymbolLiteral(s), nil
	case native.LiteralNumeric:
		d, err := ExactDecimal(l.Value)
		if err != nil {
			return nil, err
		}
		return portable.NumericLiteral(d), nil
	case native.LiteralString:
		s, err := literalText(l)
		if err != nil {
			return nil, err
		}
		return portable.StringLiteral(s), nil
	case native.LiteralNull:
		return portable.NullLiteral(), nil
	default:
		return nil, fault.Defect(fault.ErrCodeUnknownLiteral,
			"unhandled literal category %s (%d)", l.Category, int(l.Category))
	}
}

func literalText(l *native.Literal) (string, error) {
	s, ok := l.Value.(string)
	if !ok {
		return "", fault.Defect(fault.ErrCodeUnknownLiteral,
			"%s literal holds %T, want string", l.Category, l.Value)
	}
	return s, nil
}

// AxisOf maps a native axis ordinal to the portable axis.
func AxisOf(o native.AxisOrdinal) (portable.Axis, error) {
	switch {
	case o == native.AxisSlicer:
		return portable.AxisFilter, nil
	case o >= native.AxisColumns:
		return portable.Axis(int(o)), nil
	default:
		return 0, fault.Defect(fault.ErrCodeUnknownAxis, "unhandled axis ordinal %d", int(o))
	}
}

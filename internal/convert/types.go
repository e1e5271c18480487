package convert

import (
	"github.com/roach88/mdxbridge/internal/fault"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/portable"
)

// Type maps a native resolved type to the portable type. A nil type maps to
// nil. Set and tuple element types are mapped recursively; schema references
// go through the converter's Wrapper.
func (c *Converter) Type(t native.Type) (portable.Type, error) {
	switch x := t.(type) {
	case nil:
		return nil, nil
	case native.BooleanType:
		return portable.BooleanType{}, nil
	case native.CubeType:
		return portable.CubeType{}, nil
	case native.DecimalType:
		return portable.DecimalType{Precision: x.Precision, Scale: x.Scale}, nil
	case *native.DimensionType:
		return &portable.DimensionType{Dimension: c.dimensionRef(x.Dimension)}, nil
	case *native.HierarchyType, *native.LevelType:
		// No portable equivalent.
		return portable.BooleanType{}, nil
	case *native.MemberType:
		return &portable.MemberType{
			Dimension: c.dimensionRef(x.Dimension),
			Hierarchy: c.hierarchyRef(x.Hierarchy),
			Level:     c.levelRef(x.Level),
			Member:    c.memberRef(x.Member),
		}, nil
	case native.NullType:
		return portable.NullType{}, nil
	case native.NumericType:
		return portable.NumericType{}, nil
	case *native.SetType:
		elem, err := c.Type(x.Element)
		if err != nil {
			return nil, err
		}
		return &portable.SetType{Element: elem}, nil
	case native.StringType:
		return portable.StringType{}, nil
	case *native.TupleType:
		elems := make([]portable.Type, len(x.Elements))
		for i, e := range x.Elements {
			pt, err := c.Type(e)
			if err != nil {
				return nil, err
			}
			elems[i] = pt
		}
		return &portable.TupleType{Elements: elems}, nil
	case native.SymbolType:
		return portable.SymbolType{}, nil
	default:
		return nil, fault.Defect(fault.ErrCodeUnknownType, "unhandled type %T", t)
	}
}

func (c *Converter) dimensionRef(d *native.Dimension) *portable.Dimension {
	if d == nil {
		return nil
	}
	v := c.wrap.Dimension(d)
	return &v
}

func (c *Converter) hierarchyRef(h *native.Hierarchy) *portable.Hierarchy {
	if h == nil {
		return nil
	}
	v := c.wrap.Hierarchy(h)
	return &v
}

func (c *Converter) levelRef(l *native.Level) *portable.Level {
	if l == nil {
		return nil
	}
	v := c.wrap.Level(l)
	return &v
}

func (c *Converter) memberRef(m *native.Member) *portable.Member {
	if m == nil {
		return nil
	}
	v := c.wrap.Member(m)
	return &v
}

package memengine

import (
	"strings"

	"github.com/roach88/mdxbridge/internal/native"
)

// inferType gives a call the static type a validating engine would assign
// for the set, tuple and navigation functions used in fixtures. Calls it
// does not recognize stay untyped.
func inferType(call *native.FunctionCall) native.Type {
	args := call.Args
	first := func() native.Type {
		if len(args) == 0 {
			return nil
		}
		return native.TypeOf(args[0])
	}

	switch call.Syntax {
	case native.SyntaxBraces:
		return setOf(first())

	case native.SyntaxParentheses:
		if len(args) == 1 {
			return first()
		}
		return tupleOf(args)

	case native.SyntaxProperty:
		switch strings.ToUpper(call.Name) {
		case "CHILDREN", "MEMBERS", "ALLMEMBERS", "SIBLINGS":
			return setOf(first())
		case "PARENT", "FIRSTCHILD", "LASTCHILD", "CURRENTMEMBER", "DEFAULTMEMBER",
			"PREVMEMBER", "NEXTMEMBER", "FIRSTSIBLING", "LASTSIBLING":
			if m := memberOf(first()); m != nil {
				return m
			}
		case "NAME", "UNIQUENAME", "CAPTION":
			return native.StringType{}
		}

	case native.SyntaxFunction:
		switch strings.ToUpper(call.Name) {
		case "CROSSJOIN", "NONEMPTYCROSSJOIN":
			return crossJoin(args)
		case "FILTER", "ORDER", "TOPCOUNT", "BOTTOMCOUNT", "HEAD", "TAIL", "HIERARCHIZE",
			"NONEMPTY", "UNION", "EXCEPT", "DISTINCT", "INTERSECT", "SUBSET", "DESCENDANTS",
			"DRILLDOWNMEMBER":
			return setOf(first())
		case "SUM", "AVG", "COUNT", "MIN", "MAX", "AGGREGATE":
			return native.NumericType{}
		case "IIF":
			if len(args) == 3 {
				return native.TypeOf(args[1])
			}
		}

	case native.SyntaxInfix:
		switch strings.ToUpper(call.Name) {
		case "*":
			if t := crossJoin(args); t != nil {
				return t
			}
			return native.NumericType{}
		case "+", "-", "/":
			return native.NumericType{}
		case "AND", "OR", "XOR", "=", "<>", "<", ">", "<=", ">=":
			return native.BooleanType{}
		}

	case native.SyntaxPrefix:
		switch strings.ToUpper(call.Name) {
		case "-":
			return native.NumericType{}
		case "NOT":
			return native.BooleanType{}
		}
	}
	return nil
}

// memberOf generalizes a member, level or hierarchy type to the member type
// of its hierarchy.
func memberOf(t native.Type) *native.MemberType {
	switch x := t.(type) {
	case *native.MemberType:
		return &native.MemberType{Dimension: x.Dimension, Hierarchy: x.Hierarchy}
	case *native.LevelType:
		return &native.MemberType{Dimension: x.Dimension, Hierarchy: x.Hierarchy}
	case *native.HierarchyType:
		return &native.MemberType{Dimension: x.Dimension, Hierarchy: x.Hierarchy}
	}
	return nil
}

func setOf(t native.Type) native.Type {
	switch x := t.(type) {
	case *native.SetType:
		return x
	case *native.TupleType:
		return &native.SetType{Element: x}
	}
	if m := memberOf(t); m != nil {
		return &native.SetType{Element: m}
	}
	return nil
}

func tupleOf(args []native.Expr) native.Type {
	elems := make([]native.Type, 0, len(args))
	for _, a := range args {
		m := memberOf(native.TypeOf(a))
		if m == nil {
			return nil
		}
		elems = append(elems, m)
	}
	return &native.TupleType{Elements: elems}
}

// crossJoin flattens the element types of its set arguments into one tuple.
func crossJoin(args []native.Expr) native.Type {
	if len(args) < 2 {
		return nil
	}
	var elems []native.Type
	for _, a := range args {
		set, ok := setOf(native.TypeOf(a)).(*native.SetType)
		if !ok {
			return nil
		}
		switch x := set.Element.(type) {
		case *native.TupleType:
			elems = append(elems, x.Elements...)
		case *native.MemberType:
			elems = append(elems, x)
		default:
			return nil
		}
	}
	return &native.SetType{Element: &native.TupleType{Elements: elems}}
}

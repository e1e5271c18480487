package portable

import (
	"fmt"
	"strings"
)

// Case expressions are calls with one of these names; _CaseMatch carries the
// matched value as its first argument.
const (
	CaseTest  = "_CaseTest"
	CaseMatch = "_CaseMatch"
)

// Unparse writes n as MDX text.
func Unparse(n Node) string {
	var sb strings.Builder
	unparse(&sb, n)
	return sb.String()
}

func unparse(sb *strings.Builder, n Node) {
	switch x := n.(type) {
	case nil:
	case *SelectNode:
		unparseSelect(sb, x)
	case *AxisNode:
		unparseAxis(sb, x)
	case *WithMemberNode:
		sb.WriteString("MEMBER ")
		unparse(sb, x.Identifier)
		sb.WriteString(" AS ")
		unparse(sb, x.Expression)
		for _, p := range x.MemberProperties {
			sb.WriteString(", ")
			unparse(sb, p)
		}
	case *WithSetNode:
		sb.WriteString("SET ")
		unparse(sb, x.Identifier)
		sb.WriteString(" AS ")
		unparse(sb, x.Expression)
	case *PropertyValueNode:
		sb.WriteString(x.Name)
		sb.WriteString(" = ")
		unparse(sb, x.Expression)
	case *CallNode:
		unparseCall(sb, x)
	case *IdentifierNode:
		writeIdentifier(sb, x)
	case *CubeNode:
		sb.WriteString(x.Cube.UniqueName)
	case *DimensionNode:
		sb.WriteString(x.Dimension.UniqueName)
	case *HierarchyNode:
		sb.WriteString(x.Hierarchy.UniqueName)
	case *LevelNode:
		sb.WriteString(x.Level.UniqueName)
	case *MemberNode:
		sb.WriteString(x.Member.UniqueName)
	case *LiteralNode:
		writeLiteral(sb, x)
	default:
		fmt.Fprintf(sb, "/* %T */", n)
	}
}

func unparseSelect(sb *strings.Builder, s *SelectNode) {
	if len(s.With) > 0 {
		sb.WriteString("WITH\n")
		for _, w := range s.With {
			unparse(sb, w)
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("SELECT")
	for i, a := range s.Axes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
		unparse(sb, a)
	}
	sb.WriteString("\nFROM ")
	unparse(sb, s.From)
	if s.Filter != nil && s.Filter.Expression != nil {
		sb.WriteString("\nWHERE ")
		unparse(sb, s.Filter.Expression)
	}
	if len(s.CellProperties) > 0 {
		sb.WriteString("\nCELL PROPERTIES ")
		writeIdentifierList(sb, s.CellProperties)
	}
}

func unparseAxis(sb *strings.Builder, a *AxisNode) {
	if a.NonEmpty {
		sb.WriteString("NON EMPTY ")
	}
	if a.Expression == nil {
		sb.WriteString("{}")
	} else {
		unparse(sb, a.Expression)
	}
	if len(a.DimensionProperties) > 0 {
		sb.WriteString(" DIMENSION PROPERTIES ")
		writeIdentifierList(sb, a.DimensionProperties)
	}
	if !a.Axis.IsFilter() {
		sb.WriteString(" ON ")
		sb.WriteString(a.Axis.String())
	}
}

func unparseCall(sb *strings.Builder, c *CallNode) {
	switch c.Syntax {
	case SyntaxProperty, SyntaxQuotedProperty, SyntaxAmpersandQuotedProperty:
		if len(c.Args) > 0 {
			unparse(sb, c.Args[0])
		}
		sb.WriteByte('.')
		switch c.Syntax {
		case SyntaxQuotedProperty:
			sb.WriteString(quote(c.Name))
		case SyntaxAmpersandQuotedProperty:
			sb.WriteString("&" + quote(c.Name))
		default:
			sb.WriteString(c.Name)
		}
	case SyntaxMethod:
		if len(c.Args) > 0 {
			unparse(sb, c.Args[0])
		}
		sb.WriteByte('.')
		sb.WriteString(c.Name)
		sb.WriteByte('(')
		if len(c.Args) > 1 {
			writeList(sb, c.Args[1:])
		}
		sb.WriteByte(')')
	case SyntaxInfix:
		sb.WriteByte('(')
		for i, a := range c.Args {
			if i > 0 {
				sb.WriteString(" " + c.Name + " ")
			}
			unparse(sb, a)
		}
		sb.WriteByte(')')
	case SyntaxPrefix:
		sb.WriteString("(" + c.Name + " ")
		writeList(sb, c.Args)
		sb.WriteByte(')')
	case SyntaxPostfix:
		sb.WriteByte('(')
		writeList(sb, c.Args)
		sb.WriteString(" " + c.Name + ")")
	case SyntaxBraces:
		sb.WriteByte('{')
		writeList(sb, c.Args)
		sb.WriteByte('}')
	case SyntaxParentheses:
		sb.WriteByte('(')
		writeList(sb, c.Args)
		sb.WriteByte(')')
	case SyntaxCase:
		unparseCase(sb, c)
	case SyntaxCast:
		sb.WriteString("CAST(")
		if len(c.Args) > 0 {
			unparse(sb, c.Args[0])
		}
		if len(c.Args) > 1 {
			sb.WriteString(" AS ")
			unparse(sb, c.Args[1])
		}
		sb.WriteByte(')')
	case SyntaxEmpty:
	default:
		sb.WriteString(c.Name)
		sb.WriteByte('(')
		writeList(sb, c.Args)
		sb.WriteByte(')')
	}
}

func unparseCase(sb *strings.Builder, c *CallNode) {
	args := c.Args
	sb.WriteString("CASE")
	if c.Name == CaseMatch && len(args) > 0 {
		sb.WriteByte(' ')
		unparse(sb, args[0])
		args = args[1:]
	}
	for len(args) >= 2 {
		sb.WriteString(" WHEN ")
		unparse(sb, args[0])
		sb.WriteString(" THEN ")
		unparse(sb, args[1])
		args = args[2:]
	}
	if len(args) == 1 {
		sb.WriteString(" ELSE ")
		unparse(sb, args[0])
	}
	sb.WriteString(" END")
}

func writeList(sb *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(", ")
		}
		unparse(sb, n)
	}
}

func writeIdentifierList(sb *strings.Builder, ids []*IdentifierNode) {
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeIdentifier(sb, id)
	}
}

func writeIdentifier(sb *strings.Builder, id *IdentifierNode) {
	for i, s := range id.Segments {
		if i > 0 {
			sb.WriteByte('.')
		}
		switch s.Quoting {
		case Quoted:
			sb.WriteString(quote(s.Name))
		case Key:
			sb.WriteString("&" + quote(s.Name))
		default:
			sb.WriteString(s.Name)
		}
	}
}

func writeLiteral(sb *strings.Builder, l *LiteralNode) {
	switch l.Kind {
	case LiteralNull:
		sb.WriteString("NULL")
	case LiteralString:
		sb.WriteString("'" + strings.ReplaceAll(l.Text, "'", "''") + "'")
	case LiteralSymbol:
		sb.WriteString(l.Text)
	case LiteralNumeric:
		if l.Number != nil {
			sb.WriteString(l.Number.Text('f'))
		}
	}
}

func quote(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

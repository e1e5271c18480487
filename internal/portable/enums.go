package portable

import "fmt"

// Quoting describes how an identifier segment is written.
type Quoting int

const (
	Unquoted Quoting = iota
	Quoted
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
		return fmt.Sprintf("Quoting(%d)", int(q))
	}
}

// Syntax says how a call is written.
type Syntax int

const (
	// SyntaxFunction is name(args), e.g. CrossJoin(a, b).
	SyntaxFunction Syntax = iota
	// SyntaxProperty is arg.name, e.g. [Store].Children.
	SyntaxProperty
	// SyntaxMethod is arg0.name(args...), e.g. [Time].Lag(1).
	SyntaxMethod
	// SyntaxInfix is a binary operator.
	SyntaxInfix
	// SyntaxPrefix is a unary operator written before its operand.
	SyntaxPrefix
	// SyntaxPostfix is a unary operator written after its operand.
	SyntaxPostfix
	// SyntaxBraces is a set constructor {a, b}.
	SyntaxBraces
	// SyntaxParentheses is a tuple or grouping (a, b).
	SyntaxParentheses
	// SyntaxCase is a CASE expression.
	SyntaxCase
	// SyntaxCast is CAST(expr AS type).
	SyntaxCast
	// SyntaxEmpty is the empty expression.
	SyntaxEmpty
	// SyntaxInternal marks calls generated by the engine.
	SyntaxInternal
	// SyntaxQuotedProperty is arg.[name].
	SyntaxQuotedProperty
	// SyntaxAmpersandQuotedProperty is arg.&[name].
	SyntaxAmpersandQuotedProperty
)

var syntaxNames = map[Syntax]string{
	SyntaxFunction:                "Function",
	SyntaxProperty:                "Property",
	SyntaxMethod:                  "Method",
	SyntaxInfix:                   "Infix",
	SyntaxPrefix:                  "Prefix",
	SyntaxPostfix:                 "Postfix",
	SyntaxBraces:                  "Braces",
	SyntaxParentheses:             "Parentheses",
	SyntaxCase:                    "Case",
	SyntaxCast:                    "Cast",
	SyntaxEmpty:                   "Empty",
	SyntaxInternal:                "Internal",
	SyntaxQuotedProperty:          "QuotedProperty",
	SyntaxAmpersandQuotedProperty: "AmpersandQuotedProperty",
}

var syntaxByName = func() map[string]Syntax {
	m := make(map[string]Syntax, len(syntaxNames))
	for s, n := range syntaxNames {
		m[n] = s
	}
	return m
}()

func (s Syntax) String() string {
	if n, ok := syntaxNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}

// SyntaxByName returns the syntax with the given name.
func SyntaxByName(name string) (Syntax, bool) {
	s, ok := syntaxByName[name]
	return s, ok
}

// Axis identifies a query axis. Filter is the WHERE clause.
type Axis int

const (
	AxisFilter   Axis = -1
	AxisColumns  Axis = 0
	AxisRows     Axis = 1
	AxisPages    Axis = 2
	AxisChapters Axis = 3
	AxisSections Axis = 4
)

// IsFilter reports whether a is the filter axis.
func (a Axis) IsFilter() bool {
	return a == AxisFilter
}

func (a Axis) String() string {
	switch a {
	case AxisFilter:
		return "FILTER"
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
		return fmt.Sprintf("AXIS(%d)", int(a))
	}
}

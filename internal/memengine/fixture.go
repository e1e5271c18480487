package memengine

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mdxbridge/internal/native"
)

// Fixture is a query document decoded against an engine: the parsed query
// and, when the document carries one, its evaluated result.
type Fixture struct {
	Query  *native.Query
	Result *Result
}

// Result holds evaluated axes.
type Result struct {
	// Axes are aligned with Query.Axes.
	Axes []*native.Axis

	// Filter is the evaluated slicer tuple as a one-position axis, or nil
	// when the engine produced no tuple.
	Filter *native.Axis
}

// queryDoc is the YAML form of a query fixture.
//
// Expressions are written as single-key mappings:
//
//	{id: "[Store].[USA]"}                  identifier (a bare string works too)
//	{call: Children, syntax: Property, args: [...], type: numeric}
//	{member: "[Product].[Drink]"}          also level, hierarchy, dimension
//	{number: 5.25, width: float32}         width defaults from the YAML tag
//	{string: abc}  {symbol: ASC}  {null: true}
type queryDoc struct {
	Cube           string       `yaml:"cube"`
	With           []formulaDoc `yaml:"with"`
	Axes           []axisDoc    `yaml:"axes"`
	Where          *axisDoc     `yaml:"where"`
	CellProperties []yaml.Node  `yaml:"cellProperties"`
	Result         *resultDoc   `yaml:"result"`
}

type formulaDoc struct {
	Member     yaml.Node     `yaml:"member"`
	Set        yaml.Node     `yaml:"set"`
	Expr       yaml.Node     `yaml:"expr"`
	Properties []propertyDoc `yaml:"properties"`
}

type propertyDoc struct {
	Name string    `yaml:"name"`
	Expr yaml.Node `yaml:"expr"`
}

type axisDoc struct {
	Axis       string      `yaml:"axis"`
	NonEmpty   bool        `yaml:"nonEmpty"`
	Set        yaml.Node   `yaml:"set"`
	Properties []yaml.Node `yaml:"properties"`
}

type resultDoc struct {
	// Axes lists, per query axis, each position as member unique names.
	Axes [][][]string `yaml:"axes"`

	// Filter is the evaluated slicer tuple. Absent means no tuple.
	Filter *[]string `yaml:"filter"`
}

// LoadQuery reads and decodes a query fixture file.
func (e *Engine) LoadQuery(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query: %w", err)
	}
	fx, err := e.DecodeQuery(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// DecodeQuery decodes a YAML query fixture, resolving schema references
// against e. Call types are inferred for the common set functions so axis
// expressions carry a static type.
func (e *Engine) DecodeQuery(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc queryDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse query YAML: %w", err)
	}

	cube, ok := e.Cube(doc.Cube)
	if !ok {
		return nil, fmt.Errorf("unknown cube %q", doc.Cube)
	}
	d := &decoder{engine: e, cube: cube}

	q := &native.Query{Cube: cube}
	for i, fd := range doc.With {
		f, err := d.formula(fd)
		if err != nil {
			return nil, fmt.Errorf("with[%d]: %w", i, err)
		}
		q.Formulas = append(q.Formulas, f)
	}
	for i, ad := range doc.Axes {
		a, err := d.axis(ad, native.AxisOrdinal(i))
		if err != nil {
			return nil, fmt.Errorf("axes[%d]: %w", i, err)
		}
		q.Axes = append(q.Axes, a)
	}
	if doc.Where != nil {
		a, err := d.axis(*doc.Where, native.AxisSlicer)
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		a.Ordinal = native.AxisSlicer
		q.Slicer = a
	}
	for i := range doc.CellProperties {
		id, err := d.identifier(&doc.CellProperties[i])
		if err != nil {
			return nil, fmt.Errorf("cellProperties[%d]: %w", i, err)
		}
		q.CellProperties = append(q.CellProperties, id)
	}

	fx := &Fixture{Query: q}
	if doc.Result != nil {
		res, err := d.result(q, doc.Result)
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
		fx.Result = res
	}
	return fx, nil
}

type decoder struct {
	engine *Engine
	cube   *native.Cube
}

func (d *decoder) formula(fd formulaDoc) (*native.Formula, error) {
	f := &native.Formula{}
	idNode := &fd.Member
	switch {
	case fd.Member.Kind != 0 && fd.Set.Kind != 0:
		return nil, fmt.Errorf("formula declares both member and set")
	case fd.Member.Kind != 0:
		f.IsMember = true
	case fd.Set.Kind != 0:
		idNode = &fd.Set
	default:
		return nil, fmt.Errorf("formula needs member or set")
	}

	id, err := d.identifier(idNode)
	if err != nil {
		return nil, err
	}
	f.Identifier = id

	if f.Expr, err = d.expr(&fd.Expr); err != nil {
		return nil, err
	}

	if !f.IsMember && len(fd.Properties) > 0 {
		return nil, fmt.Errorf("named set %s cannot carry properties", id)
	}
	for _, pd := range fd.Properties {
		pe, err := d.expr(&pd.Expr)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", pd.Name, err)
		}
		f.Properties = append(f.Properties, &native.PropertyAssignment{Name: pd.Name, Expr: pe})
	}
	return f, nil
}

func (d *decoder) axis(ad axisDoc, fallback native.AxisOrdinal) (*native.QueryAxis, error) {
	ordinal, err := parseAxisOrdinal(ad.Axis, fallback)
	if err != nil {
		return nil, err
	}
	a := &native.QueryAxis{Ordinal: ordinal, NonEmpty: ad.NonEmpty}
	if ad.Set.Kind != 0 {
		if a.Set, err = d.expr(&ad.Set); err != nil {
			return nil, err
		}
	}
	for i := range ad.Properties {
		id, err := d.identifier(&ad.Properties[i])
		if err != nil {
			return nil, fmt.Errorf("properties[%d]: %w", i, err)
		}
		a.Properties = append(a.Properties, id)
	}
	return a, nil
}

func parseAxisOrdinal(s string, fallback native.AxisOrdinal) (native.AxisOrdinal, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return fallback, nil
	case "COLUMNS":
		return native.AxisColumns, nil
	case "ROWS":
		return native.AxisRows, nil
	case "PAGES":
		return native.AxisPages, nil
	case "CHAPTERS":
		return native.AxisChapters, nil
	case "SECTIONS":
		return native.AxisSections, nil
	}
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "AXIS(") && strings.HasSuffix(upper, ")") {
		s = s[len("AXIS(") : len(s)-1]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("unknown axis %q", s)
	}
	return native.AxisOrdinal(n), nil
}

func (d *decoder) result(q *native.Query, rd *resultDoc) (*Result, error) {
	if len(rd.Axes) != len(q.Axes) {
		return nil, fmt.Errorf("%d evaluated axes for %d query axes", len(rd.Axes), len(q.Axes))
	}
	res := &Result{}
	for i, positions := range rd.Axes {
		ax := &native.Axis{Ordinal: q.Axes[i].Ordinal}
		for j, names := range positions {
			pos, err := d.position(names)
			if err != nil {
				return nil, fmt.Errorf("axes[%d][%d]: %w", i, j, err)
			}
			ax.Positions = append(ax.Positions, pos)
		}
		res.Axes = append(res.Axes, ax)
	}
	if rd.Filter != nil {
		pos, err := d.position(*rd.Filter)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		res.Filter = &native.Axis{Ordinal: native.AxisSlicer, Positions: []native.Position{pos}}
	}
	return res, nil
}

func (d *decoder) position(names []string) (native.Position, error) {
	pos := make(native.Position, len(names))
	for i, name := range names {
		m, ok := d.engine.Member(d.cube, name)
		if !ok {
			return nil, fmt.Errorf("unknown member %s", name)
		}
		pos[i] = m
	}
	return pos, nil
}

func (d *decoder) identifier(n *yaml.Node) (*native.Identifier, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return native.ParseIdentifier(n.Value)
	case yaml.SequenceNode:
		id := &native.Identifier{}
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: identifier segment must be a string", item.Line)
			}
			part, err := native.ParseIdentifier(item.Value)
			if err != nil {
				return nil, err
			}
			if len(part.Segments) != 1 {
				return nil, fmt.Errorf("line %d: %q is not a single segment", item.Line, item.Value)
			}
			id.Segments = append(id.Segments, part.Segments[0])
		}
		return id, nil
	default:
		return nil, fmt.Errorf("line %d: identifier must be a string or list", n.Line)
	}
}

func (d *decoder) expr(n *yaml.Node) (native.Expr, error) {
	switch n.Kind {
	case 0:
		return nil, fmt.Errorf("missing expression")
	case yaml.ScalarNode:
		return d.identifier(n)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: expression must be a string or mapping", n.Line)
	}

	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		fields[n.Content[i].Value] = n.Content[i+1]
	}

	switch {
	case fields["id"] != nil:
		return d.identifier(fields["id"])
	case fields["call"] != nil:
		return d.call(fields)
	case fields["member"] != nil:
		m, ok := d.engine.Member(d.cube, fields["member"].Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown member %s", n.Line, fields["member"].Value)
		}
		return &native.MemberRef{Member: m}, nil
	case fields["level"] != nil:
		l, ok := d.engine.Level(d.cube, fields["level"].Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown level %s", n.Line, fields["level"].Value)
		}
		return &native.LevelRef{Level: l}, nil
	case fields["hierarchy"] != nil:
		h, ok := d.engine.Hierarchy(d.cube, fields["hierarchy"].Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown hierarchy %s", n.Line, fields["hierarchy"].Value)
		}
		return &native.HierarchyRef{Hierarchy: h}, nil
	case fields["dimension"] != nil:
		dim, ok := d.engine.Dimension(d.cube, fields["dimension"].Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown dimension %s", n.Line, fields["dimension"].Value)
		}
		return &native.DimensionRef{Dimension: dim}, nil
	case fields["number"] != nil:
		v, err := numericValue(fields["number"], fields["width"])
		if err != nil {
			return nil, err
		}
		return native.NumericLiteral(v), nil
	case fields["string"] != nil:
		return native.StringLiteral(fields["string"].Value), nil
	case fields["symbol"] != nil:
		return native.SymbolLiteral(fields["symbol"].Value), nil
	case fields["null"] != nil:
		return native.NullLiteral(), nil
	}
	return nil, fmt.Errorf("line %d: unrecognized expression", n.Line)
}

func (d *decoder) call(fields map[string]*yaml.Node) (native.Expr, error) {
	call := &native.FunctionCall{Name: fields["call"].Value, Syntax: native.SyntaxFunction}
	if s := fields["syntax"]; s != nil {
		syntax, ok := native.ParseSyntax(s.Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown syntax %q", s.Line, s.Value)
		}
		call.Syntax = syntax
	}
	if args := fields["args"]; args != nil {
		if args.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: args must be a list", args.Line)
		}
		for _, an := range args.Content {
			arg, err := d.expr(an)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
	}
	if t := fields["type"]; t != nil {
		typ, err := scalarType(t.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", t.Line, err)
		}
		call.Type = typ
	} else {
		call.Type = inferType(call)
	}
	return call, nil
}

func scalarType(name string) (native.Type, error) {
	switch strings.ToLower(name) {
	case "boolean":
		return native.BooleanType{}, nil
	case "numeric":
		return native.NumericType{}, nil
	case "string":
		return native.StringType{}, nil
	case "symbol":
		return native.SymbolType{}, nil
	case "null":
		return native.NullType{}, nil
	case "cube":
		return native.CubeType{}, nil
	case "scalar":
		return native.ScalarType{}, nil
	case "empty":
		return native.EmptyType{}, nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

// numericValue stores a YAML number the way an engine would: integers as
// int64 (or *big.Int when they overflow), floats as float64, unless width
// asks for a specific storage.
func numericValue(n, width *yaml.Node) (any, error) {
	text := n.Value
	w := ""
	if width != nil {
		w = strings.ToLower(width.Value)
	}
	if w == "" {
		switch n.ShortTag() {
		case "!!int":
			w = "int64"
		case "!!float":
			w = "float64"
		default:
			return nil, fmt.Errorf("line %d: %q is not a number", n.Line, text)
		}
		// YAML resolves integers past the uint64 range as floats.
		if _, ok := new(big.Int).SetString(text, 10); ok {
			w = "int64"
			if _, err := strconv.ParseInt(text, 10, 64); err != nil {
				w = "big"
			}
		}
	}

	bad := func(err error) error {
		return fmt.Errorf("line %d: %q as %s: %w", n.Line, text, w, err)
	}
	switch w {
	case "int8", "int16", "int32", "int64", "int":
		bits := map[string]int{"int8": 8, "int16": 16, "int32": 32, "int64": 64, "int": 64}[w]
		i, err := strconv.ParseInt(text, 10, bits)
		if err != nil {
			return nil, bad(err)
		}
		switch w {
		case "int8":
			return int8(i), nil
		case "int16":
			return int16(i), nil
		case "int32":
			return int32(i), nil
		case "int":
			return int(i), nil
		}
		return i, nil
	case "big":
		b, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, bad(fmt.Errorf("not an integer"))
		}
		return b, nil
	case "float32":
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, bad(err)
		}
		return float32(f), nil
	case "float64":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, bad(err)
		}
		return f, nil
	case "decimal":
		dec, _, err := apd.NewFromString(text)
		if err != nil {
			return nil, bad(err)
		}
		return dec, nil
	}
	return nil, fmt.Errorf("line %d: unknown numeric width %q", width.Line, w)
}

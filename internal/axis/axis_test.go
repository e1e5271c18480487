package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mdxbridge/internal/convert"
	"github.com/roach88/mdxbridge/internal/fault"
	"github.com/roach88/mdxbridge/internal/memengine"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/portable"
	"github.com/roach88/mdxbridge/internal/session"
	"github.com/roach88/mdxbridge/internal/testutil"
)

type fixture struct {
	engine *memengine.Engine
	cube   *native.Cube
	conv   *convert.Converter
	stmt   *session.Statement
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	e, err := memengine.New(testutil.FoodMartSpec())
	require.NoError(t, err)
	cube, ok := e.Cube("Sales")
	require.True(t, ok)
	return &fixture{
		engine: e,
		cube:   cube,
		conv:   convert.NewConverter(nil),
		stmt:   session.NewStatement(session.NewFixedGenerator("stmt-1", "stmt-2")),
	}
}

func (f *fixture) member(t *testing.T, uniqueName string) *native.Member {
	t.Helper()
	m, ok := f.engine.Member(f.cube, uniqueName)
	require.True(t, ok, "member %s", uniqueName)
	return m
}

func (f *fixture) hierarchy(t *testing.T, uniqueName string) *native.Hierarchy {
	t.Helper()
	h, ok := f.engine.Hierarchy(f.cube, uniqueName)
	require.True(t, ok, "hierarchy %s", uniqueName)
	return h
}

// slicer builds a WHERE axis whose tuple type spans the given hierarchies.
func (f *fixture) slicer(t *testing.T, hierarchies ...string) *native.QueryAxis {
	t.Helper()
	var elems []native.Type
	var args []native.Expr
	for _, name := range hierarchies {
		h := f.hierarchy(t, name)
		elems = append(elems, &native.MemberType{Dimension: h.Dimension, Hierarchy: h})
		args = append(args, &native.FunctionCall{
			Name:   "CurrentMember",
			Syntax: native.SyntaxProperty,
			Args:   []native.Expr{&native.HierarchyRef{Hierarchy: h}},
			Type:   &native.MemberType{Dimension: h.Dimension, Hierarchy: h},
		})
	}
	return &native.QueryAxis{
		Ordinal: native.AxisSlicer,
		Set: &native.FunctionCall{
			Name:   "()",
			Syntax: native.SyntaxParentheses,
			Args:   args,
			Type:   &native.TupleType{Elements: elems},
		},
	}
}

func tuple(members ...*native.Member) *native.Axis {
	return &native.Axis{Ordinal: native.AxisSlicer, Positions: []native.Position{members}}
}

func uniqueNames(p *Position) []string {
	out := make([]string, len(p.Members))
	for i, m := range p.Members {
		out[i] = m.UniqueName
	}
	return out
}

func TestFilter_SinglePositionWhenTupleAbsent(t *testing.T) {
	f := newFixture(t)
	qa := f.slicer(t, "[Time]", "[Promotion Media]")

	a, err := MaterializeFilter(f.stmt, f.conv, f.engine, qa, nil)
	require.NoError(t, err)

	n, err := a.PositionCount(f.stmt)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := a.Position(f.stmt, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Ordinal)
	assert.Equal(t, []string{"[Time].[1997].[Q1]", "[Promotion Media].[All Media]"}, uniqueNames(p))
}

func TestFilter_SinglePositionWhenTupleEmpty(t *testing.T) {
	f := newFixture(t)
	qa := f.slicer(t, "[Time]")

	a, err := MaterializeFilter(f.stmt, f.conv, f.engine, qa, &native.Axis{Ordinal: native.AxisSlicer})
	require.NoError(t, err)

	n, err := a.PositionCount(f.stmt)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFilter_DefaultSubstitution(t *testing.T) {
	f := newFixture(t)
	qa := f.slicer(t, "[Time]", "[Promotion Media]")
	y1998 := f.member(t, "[Time].[1998]")

	a, err := MaterializeFilter(f.stmt, f.conv, f.engine, qa, tuple(y1998))
	require.NoError(t, err)

	p, err := a.Position(f.stmt, 0)
	require.NoError(t, err)
	require.Len(t, p.Members, 2)
	assert.Equal(t, f.conv.Wrapper().Member(y1998), p.Members[0])
	assert.Equal(t, "[Promotion Media].[All Media]", p.Members[1].UniqueName)
	assert.Equal(t, "[Promotion Media]", p.Members[1].Hierarchy)
}

func TestFilter_MatchesByHierarchyNotOrdinal(t *testing.T) {
	f := newFixture(t)
	qa := f.slicer(t, "[Time]", "[Promotion Media]")
	radio := f.member(t, "[Promotion Media].[All Media].[Radio]")
	q2 := f.member(t, "[Time].[1998].[Q2]")

	a, err := MaterializeFilter(f.stmt, f.conv, f.engine, qa, tuple(radio, q2))
	require.NoError(t, err)

	p, err := a.Position(f.stmt, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"[Time].[1998].[Q2]", "[Promotion Media].[All Media].[Radio]"}, uniqueNames(p))
}

func TestFilter_DistinguishesHierarchiesOfOneDimension(t *testing.T) {
	f := newFixture(t)
	qa := f.slicer(t, "[Time]", "[Time].[Weekly]")
	week := f.member(t, "[Time].[Weekly].[1997].[2]")

	a, err := MaterializeFilter(f.stmt, f.conv, f.engine, qa, tuple(week))
	require.NoError(t, err)

	p, err := a.Position(f.stmt, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"[Time].[1997].[Q1]", "[Time].[Weekly].[1997].[2]"}, uniqueNames(p))
}

func TestFilter_SetTypedSlicer(t *testing.T) {
	f := newFixture(t)
	time := f.hierarchy(t, "[Time]")
	qa := &native.QueryAxis{
		Ordinal: native.AxisSlicer,
		Set: &native.FunctionCall{
			Name:   "{}",
			Syntax: native.SyntaxBraces,
			Args: []native.Expr{
				&native.MemberRef{Member: f.member(t, "[Time].[1997]")},
				&native.MemberRef{Member: f.member(t, "[Time].[1998]")},
			},
			Type: &native.SetType{Element: &native.MemberType{Dimension: time.Dimension, Hierarchy: time}},
		},
	}

	a, err := MaterializeFilter(f.stmt, f.conv, f.engine, qa, nil)
	require.NoError(t, err)
	require.Len(t, a.Metadata().Hierarchies, 1)
	assert.Equal(t, "[Time]", a.Metadata().Hierarchies[0].UniqueName)
}

func TestFilter_NoWhereClause(t *testing.T) {
	f := newFixture(t)

	a, err := MaterializeFilter(f.stmt, f.conv, f.engine, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, portable.AxisFilter, a.Metadata().Axis)
	assert.Empty(t, a.Metadata().Hierarchies)

	n, err := a.PositionCount(f.stmt)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := a.Position(f.stmt, 0)
	require.NoError(t, err)
	assert.Empty(t, p.Members)
}

// noDefaultReader is an engine that finds no default member for any hierarchy.
type noDefaultReader struct {
	*memengine.Engine
}

func (noDefaultReader) HierarchyDefaultMember(*native.Hierarchy) (*native.Member, error) {
	return nil, nil
}

func TestFilter_MissingDefaultMember(t *testing.T) {
	f := newFixture(t)
	qa := f.slicer(t, "[Time]", "[Promotion Media]")

	a, err := MaterializeFilter(f.stmt, f.conv, noDefaultReader{f.engine}, qa, tuple(f.member(t, "[Time].[1997]")))
	require.NoError(t, err)

	n, err := a.PositionCount(f.stmt)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := a.Position(f.stmt, 0)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "hierarchy [Promotion Media] has no default member")

	_, err = a.Positions(f.stmt)
	assert.Error(t, err)
}

func TestFilter_MalformedType(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		set  native.Expr
	}{
		{"numeric literal", native.NumericLiteral(int64(5))},
		{"untyped call", &native.FunctionCall{Name: "Mystery", Syntax: native.SyntaxFunction}},
		{"tuple with a numeric element", &native.FunctionCall{
			Name:   "()",
			Syntax: native.SyntaxParentheses,
			Type:   &native.TupleType{Elements: []native.Type{native.NumericType{}}},
		}},
		{"dimension typed", &native.DimensionRef{Dimension: f.cube.Dimensions[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qa := &native.QueryAxis{Ordinal: native.AxisSlicer, Set: tt.set}

			_, err := MaterializeFilter(f.stmt, f.conv, f.engine, qa, nil)
			require.Error(t, err)
			assert.True(t, fault.IsDefect(err))
			assert.Equal(t, fault.ErrCodeMalformedAxisType, fault.CodeOf(err))
		})
	}
}

func TestBounds(t *testing.T) {
	f := newFixture(t)
	filter, err := MaterializeFilter(f.stmt, f.conv, f.engine, f.slicer(t, "[Time]"), nil)
	require.NoError(t, err)

	columns, err := Materialize(f.stmt, f.conv, columnsAxis(t, f), columnsResult(t, f))
	require.NoError(t, err)

	empty, err := Materialize(f.stmt, f.conv, &native.QueryAxis{Ordinal: native.AxisRows}, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		axis *Axis
		i    int
	}{
		{"filter negative", filter, -1},
		{"filter past end", filter, 1},
		{"columns negative", columns, -1},
		{"columns past end", columns, 3},
		{"empty axis", empty, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.axis.Position(f.stmt, tt.i)
			require.Error(t, err)
			assert.True(t, fault.IsOutOfBounds(err))
		})
	}
}

func columnsAxis(t *testing.T, f *fixture) *native.QueryAxis {
	t.Helper()
	product := f.hierarchy(t, "[Product]")
	store := f.hierarchy(t, "[Store]")
	drink := f.member(t, "[Product].[Drink]")
	return &native.QueryAxis{
		Ordinal:  native.AxisColumns,
		NonEmpty: true,
		Set: &native.FunctionCall{
			Name:   "CrossJoin",
			Syntax: native.SyntaxFunction,
			Args: []native.Expr{
				&native.FunctionCall{
					Name:   "Children",
					Syntax: native.SyntaxProperty,
					Args:   []native.Expr{&native.MemberRef{Member: drink}},
					Type:   &native.SetType{Element: &native.MemberType{Dimension: product.Dimension, Hierarchy: product}},
				},
				&native.FunctionCall{
					Name:   "Members",
					Syntax: native.SyntaxProperty,
					Args:   []native.Expr{&native.HierarchyRef{Hierarchy: store}},
					Type:   &native.SetType{Element: &native.MemberType{Dimension: store.Dimension, Hierarchy: store}},
				},
			},
			Type: &native.SetType{Element: &native.TupleType{Elements: []native.Type{
				&native.MemberType{Dimension: product.Dimension, Hierarchy: product},
				&native.MemberType{Dimension: store.Dimension, Hierarchy: store},
			}}},
		},
		Properties: []*native.Identifier{native.QuotedIdentifier("Store", "Store Name")},
	}
}

func columnsResult(t *testing.T, f *fixture) *native.Axis {
	t.Helper()
	usa := f.member(t, "[Store].[USA]")
	return &native.Axis{
		Ordinal: native.AxisColumns,
		Positions: []native.Position{
			{f.member(t, "[Product].[Drink].[Alcoholic Beverages]"), usa},
			{f.member(t, "[Product].[Drink].[Beverages]"), usa},
			{f.member(t, "[Product].[Drink].[Dairy]"), usa},
		},
	}
}

func TestMaterialize_OrdinaryAxis(t *testing.T) {
	f := newFixture(t)

	a, err := Materialize(f.stmt, f.conv, columnsAxis(t, f), columnsResult(t, f))
	require.NoError(t, err)

	meta := a.Metadata()
	assert.Equal(t, portable.AxisColumns, meta.Axis)
	require.Len(t, meta.Hierarchies, 2)
	assert.Equal(t, "[Product]", meta.Hierarchies[0].UniqueName)
	assert.Equal(t, "[Store]", meta.Hierarchies[1].UniqueName)
	require.Len(t, meta.Properties, 1)
	assert.Equal(t, "Store Name", meta.Properties[0].Segments[1].Name)

	n, err := a.PositionCount(f.stmt)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	p, err := a.Position(f.stmt, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Ordinal)
	assert.Equal(t, []string{"[Product].[Drink].[Beverages]", "[Store].[USA]"}, uniqueNames(p))
	assert.Equal(t, portable.Member{
		Name:       "Beverages",
		UniqueName: "[Product].[Drink].[Beverages]",
		Depth:      1,
		Level:      "[Product].[Product Department]",
		Hierarchy:  "[Product]",
		Dimension:  "[Product]",
	}, p.Members[0])
}

func TestMaterialize_UntypedAxisUsesFirstPosition(t *testing.T) {
	f := newFixture(t)
	qa := &native.QueryAxis{
		Ordinal: native.AxisRows,
		Set:     &native.FunctionCall{Name: "Mystery", Syntax: native.SyntaxFunction},
	}

	a, err := Materialize(f.stmt, f.conv, qa, columnsResult(t, f))
	require.NoError(t, err)
	assert.Equal(t, portable.AxisRows, a.Metadata().Axis)
	require.Len(t, a.Metadata().Hierarchies, 2)
	assert.Equal(t, "[Store]", a.Metadata().Hierarchies[1].UniqueName)
}

func TestMaterialize_Idempotent(t *testing.T) {
	f := newFixture(t)
	qa := columnsAxis(t, f)
	ev := columnsResult(t, f)

	first, err := Materialize(f.stmt, f.conv, qa, ev)
	require.NoError(t, err)
	second, err := Materialize(f.stmt, f.conv, qa, ev)
	require.NoError(t, err)

	a, err := first.Positions(f.stmt)
	require.NoError(t, err)
	b, err := second.Positions(f.stmt)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	filterQA := f.slicer(t, "[Time]", "[Promotion Media]")
	ft := tuple(f.member(t, "[Time].[1998]"))
	fa, err := MaterializeFilter(f.stmt, f.conv, f.engine, filterQA, ft)
	require.NoError(t, err)
	fb, err := MaterializeFilter(f.stmt, f.conv, f.engine, filterQA, ft)
	require.NoError(t, err)

	pa, err := fa.Position(f.stmt, 0)
	require.NoError(t, err)
	pb, err := fb.Position(f.stmt, 0)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestClosedStatement(t *testing.T) {
	f := newFixture(t)
	a, err := Materialize(f.stmt, f.conv, columnsAxis(t, f), columnsResult(t, f))
	require.NoError(t, err)

	f.stmt.Close()

	_, err = a.PositionCount(f.stmt)
	assert.True(t, fault.IsClosed(err))
	_, err = a.Position(f.stmt, 0)
	assert.True(t, fault.IsClosed(err))
	_, err = Materialize(f.stmt, f.conv, columnsAxis(t, f), nil)
	assert.True(t, fault.IsClosed(err))
	_, err = MaterializeFilter(f.stmt, f.conv, f.engine, nil, nil)
	assert.True(t, fault.IsClosed(err))
}

func TestMaterialize_FromFixture(t *testing.T) {
	f := newFixture(t)
	fx, err := f.engine.DecodeQuery([]byte(`
cube: Sales
axes:
  - axis: COLUMNS
    set:
      call: "{}"
      syntax: Braces
      args:
        - {member: "[Measures].[Unit Sales]"}
        - {member: "[Measures].[Store Sales]"}
  - axis: ROWS
    set:
      call: CrossJoin
      args:
        - {call: Children, syntax: Property, args: [{member: "[Store].[USA]"}]}
        - {call: "{}", syntax: Braces, args: [{member: "[Product].[Food]"}]}
where:
  set:
    call: "()"
    syntax: Parentheses
    args:
      - {member: "[Time].[1998]"}
      - {member: "[Promotion Media].[All Media].[TV]"}
result:
  axes:
    - - ["[Measures].[Unit Sales]"]
      - ["[Measures].[Store Sales]"]
    - - ["[Store].[USA].[CA]", "[Product].[Food]"]
      - ["[Store].[USA].[OR]", "[Product].[Food]"]
  filter: ["[Time].[1998]"]
`))
	require.NoError(t, err)
	q := fx.Query

	rows, err := Materialize(f.stmt, f.conv, q.Axes[1], fx.Result.Axes[1])
	require.NoError(t, err)
	require.Len(t, rows.Metadata().Hierarchies, 2)
	assert.Equal(t, "[Store]", rows.Metadata().Hierarchies[0].UniqueName)
	assert.Equal(t, "[Product]", rows.Metadata().Hierarchies[1].UniqueName)

	p, err := rows.Position(f.stmt, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"[Store].[USA].[OR]", "[Product].[Food]"}, uniqueNames(p))

	filter, err := MaterializeFilter(f.stmt, f.conv, f.engine, q.Slicer, fx.Result.Filter)
	require.NoError(t, err)
	fp, err := filter.Position(f.stmt, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"[Time].[1998]", "[Promotion Media].[All Media]"}, uniqueNames(fp))
}

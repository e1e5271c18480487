package drill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mdxbridge/internal/fault"
	"github.com/roach88/mdxbridge/internal/memengine"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/session"
	"github.com/roach88/mdxbridge/internal/testutil"
)

func foodMart(t *testing.T) (*memengine.Engine, *native.Cube) {
	t.Helper()
	e, err := memengine.New(testutil.FoodMartSpec())
	require.NoError(t, err)
	cube, ok := e.Cube("Sales")
	require.True(t, ok)
	return e, cube
}

func member(t *testing.T, e *memengine.Engine, c *native.Cube, uniqueName string) *native.Member {
	t.Helper()
	m, ok := e.Member(c, uniqueName)
	require.True(t, ok, "member %s", uniqueName)
	return m
}

func names(ms []*native.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func openStatement() *session.Statement {
	return session.NewStatement(session.NewFixedGenerator("stmt-1"))
}

func TestExpand(t *testing.T) {
	e, cube := foodMart(t)
	stmt := openStatement()

	const (
		drink     = "[Product].[Drink]"
		beverages = "[Product].[Drink].[Beverages]"
		food      = "[Product].[Food]"
	)
	beverageKids := []string{"Carbonated Beverages", "Drinks", "Hot Beverages", "Pure Juice Beverages"}

	tests := []struct {
		name   string
		member string
		ops    TreeOpSet
		want   []string
	}{
		{
			name:   "siblings and self",
			member: beverages,
			ops:    NewTreeOpSet(Siblings, Self),
			want:   []string{"Alcoholic Beverages", "Beverages", "Dairy"},
		},
		{
			name:   "self and children",
			member: beverages,
			ops:    NewTreeOpSet(Self, Children),
			want:   append([]string{"Beverages"}, beverageKids...),
		},
		{
			name:   "ancestors and self",
			member: beverages,
			ops:    NewTreeOpSet(Ancestors, Self),
			want:   []string{"Drink", "Beverages"},
		},
		{
			name:   "empty set",
			member: beverages,
			ops:    NewTreeOpSet(),
			want:   []string{},
		},
		{
			name:   "self and descendants is a pre-order walk",
			member: drink,
			ops:    NewTreeOpSet(Self, Descendants),
			want: []string{
				"Drink",
				"Alcoholic Beverages", "Beer and Wine",
				"Beverages", "Carbonated Beverages", "Drinks", "Hot Beverages", "Pure Juice Beverages",
				"Dairy", "Dairy",
			},
		},
		{
			name:   "ancestors self descendants",
			member: beverages,
			ops:    NewTreeOpSet(Ancestors, Self, Descendants),
			want:   append([]string{"Drink", "Beverages"}, beverageKids...),
		},
		{
			name:   "parent alone",
			member: beverages,
			ops:    NewTreeOpSet(Parent),
			want:   []string{"Drink"},
		},
		{
			name:   "parent of a root is nothing",
			member: drink,
			ops:    NewTreeOpSet(Parent),
			want:   []string{},
		},
		{
			name:   "ancestors win over parent",
			member: "[Product].[Drink].[Beverages].[Drinks]",
			ops:    NewTreeOpSet(Ancestors, Parent),
			want:   []string{"Drink", "Beverages"},
		},
		{
			name:   "siblings without self",
			member: beverages,
			ops:    NewTreeOpSet(Siblings),
			want:   []string{"Alcoholic Beverages", "Dairy"},
		},
		{
			name:   "after-siblings follow children",
			member: beverages,
			ops:    NewTreeOpSet(Siblings, Self, Children),
			want:   append(append([]string{"Alcoholic Beverages", "Beverages"}, beverageKids...), "Dairy"),
		},
		{
			name:   "root member siblings are the roots",
			member: food,
			ops:    NewTreeOpSet(Siblings, Self),
			want:   []string{"Drink", "Food", "Non-Consumable"},
		},
		{
			name:   "descendants win over children",
			member: food,
			ops:    NewTreeOpSet(Children, Descendants),
			want:   []string{"Baked Goods", "Produce", "Fruit", "Vegetables"},
		},
		{
			name:   "everything",
			member: "[Product].[Food].[Produce]",
			ops:    NewTreeOpSet(Ancestors, Parent, Siblings, Self, Children, Descendants),
			want:   []string{"Food", "Baked Goods", "Produce", "Fruit", "Vegetables"},
		},
		{
			name:   "leaf has no children",
			member: "[Product].[Food].[Produce].[Fruit]",
			ops:    NewTreeOpSet(Self, Children),
			want:   []string{"Fruit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(stmt, e, member(t, e, cube, tt.member), tt.ops)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestExpand_NilMember(t *testing.T) {
	e, _ := foodMart(t)

	got, err := Expand(openStatement(), e, nil, NewTreeOpSet(Self))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExpand_DoesNotMutateReaderLists(t *testing.T) {
	e, cube := foodMart(t)
	drink := member(t, e, cube, "[Product].[Drink]")
	before, err := e.MemberChildren(drink)
	require.NoError(t, err)
	snapshot := names(before)

	_, err = Expand(openStatement(), e, member(t, e, cube, "[Product].[Drink].[Beverages]"),
		NewTreeOpSet(Ancestors, Siblings, Self, Descendants))
	require.NoError(t, err)

	after, err := e.MemberChildren(drink)
	require.NoError(t, err)
	assert.Equal(t, snapshot, names(after))
}

func TestExpand_ClosedStatement(t *testing.T) {
	e, cube := foodMart(t)
	stmt := openStatement()
	stmt.Close()

	_, err := Expand(stmt, e, member(t, e, cube, "[Product].[Drink]"), NewTreeOpSet(Self))
	require.Error(t, err)
	assert.True(t, fault.IsClosed(err))
}

func TestLookupMembers(t *testing.T) {
	e, cube := foodMart(t)
	stmt := openStatement()

	t.Run("resolves and expands", func(t *testing.T) {
		id, err := native.ParseIdentifier("[Product].[Drink].[Beverages]")
		require.NoError(t, err)

		got, err := LookupMembers(stmt, e, cube, NewTreeOpSet(Ancestors, Self), id.Segments)
		require.NoError(t, err)
		assert.Equal(t, []string{"Drink", "Beverages"}, names(got))
	})

	t.Run("miss is an empty result", func(t *testing.T) {
		id, err := native.ParseIdentifier("[Product].[Drink].[Lemonade]")
		require.NoError(t, err)

		got, err := LookupMembers(stmt, e, cube, NewTreeOpSet(Self), id.Segments)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

// brokenReader fails every navigation call.
type brokenReader struct {
	native.SchemaReader
}

var errEngineDown = errors.New("engine down")

func (brokenReader) MemberParent(*native.Member) (*native.Member, error) {
	return nil, errEngineDown
}

func (brokenReader) MemberChildren(*native.Member) ([]*native.Member, error) {
	return nil, errEngineDown
}

func TestExpand_ReaderErrorsAreWrapped(t *testing.T) {
	e, cube := foodMart(t)
	m := member(t, e, cube, "[Product].[Drink]")

	_, err := Expand(openStatement(), brokenReader{}, m, NewTreeOpSet(Parent))
	require.Error(t, err)
	assert.ErrorIs(t, err, errEngineDown)
	assert.False(t, fault.IsDefect(err))

	_, err = Expand(openStatement(), brokenReader{}, m, NewTreeOpSet(Children))
	assert.ErrorIs(t, err, errEngineDown)
}

// orphanReader reports a member whose sibling list does not contain it.
type orphanReader struct {
	native.SchemaReader
	roots []*native.Member
}

func (orphanReader) MemberParent(*native.Member) (*native.Member, error) {
	return nil, nil
}

func (r orphanReader) HierarchyRootMembers(*native.Hierarchy) ([]*native.Member, error) {
	return r.roots, nil
}

func TestExpand_MemberOutsideSiblingListHasNoSiblings(t *testing.T) {
	e, cube := foodMart(t)
	drink := member(t, e, cube, "[Product].[Drink]")
	orphan := &native.Member{Name: "Orphan", UniqueName: "[Product].[Orphan]", Level: drink.Level}

	r := orphanReader{roots: []*native.Member{drink}}
	got, err := Expand(openStatement(), r, orphan, NewTreeOpSet(Siblings, Self))
	require.NoError(t, err)
	assert.Equal(t, []string{"Orphan"}, names(got))
}

func TestTreeOpSet(t *testing.T) {
	s := NewTreeOpSet(Self, Ancestors)

	assert.True(t, s.Has(Self))
	assert.True(t, s.Has(Ancestors))
	assert.False(t, s.Has(Children))
	assert.False(t, s.IsEmpty())
	assert.True(t, NewTreeOpSet().IsEmpty())
	assert.Equal(t, []TreeOp{Ancestors, Self}, s.Ops())
	assert.Equal(t, "{ANCESTORS,SELF}", s.String())
	assert.Equal(t, "{}", TreeOpSet(0).String())
	assert.Equal(t, "TreeOp(9)", TreeOp(9).String())
}

func TestParseTreeOps(t *testing.T) {
	s, err := ParseTreeOps([]string{"self", "Siblings,children", " descendants "})
	require.NoError(t, err)
	assert.Equal(t, NewTreeOpSet(Self, Siblings, Children, Descendants), s)

	empty, err := ParseTreeOps(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = ParseTreeOps([]string{"cousins"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown tree op "COUSINS"`)
}

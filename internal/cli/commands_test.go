package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mdxbridge/internal/session"
)

var (
	foodMartYAML = filepath.Join("..", "schema", "testdata", "foodmart.yaml")
	tinyCUE      = filepath.Join("..", "schema", "testdata", "tiny.cue")
	salesQuery   = filepath.Join("..", "convert", "testdata", "queries", "sales_by_store.yaml")
	sliceQuery   = filepath.Join("testdata", "slice.yaml")
)

// execute runs args through the root command and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvert_Text(t *testing.T) {
	out, err := execute(t, "convert", "--schema", foodMartYAML, "--query", salesQuery)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "WITH\nMEMBER [Measures].[Profit]"), out)
	assert.Contains(t, out, "FROM [Sales]")
	assert.Contains(t, out, "WHERE [Time].[1997]")
}

func TestConvert_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "convert", "--schema", foodMartYAML, "--query", salesQuery)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"missing schema", []string{"--schema", "nope.yaml", "--query", salesQuery}, ExitCommandError, "E005"},
		{"bad extension", []string{"--schema", "commands_test.go", "--query", salesQuery}, ExitCommandError, "unsupported schema file extension"},
		{"missing query", []string{"--schema", foodMartYAML, "--query", "nope.yaml"}, ExitCommandError, "query not found"},
		{"query on wrong schema", []string{"--schema", tinyCUE, "--query", salesQuery}, ExitCommandError, "E011"},
		{"defect", []string{"--schema", foodMartYAML, "--query", filepath.Join("testdata", "bad_syntax.yaml")}, ExitFailure, "E020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"convert"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestDrill_Text(t *testing.T) {
	out, err := execute(t, "drill", "--schema", foodMartYAML, "--member", "[Product].[Drink]", "--ops", "self,children")
	require.NoError(t, err)
	assert.Equal(t, `[Product].[Drink] {SELF,CHILDREN}: 4 member(s)
  [Product].[Drink]
    [Product].[Drink].[Alcoholic Beverages]
    [Product].[Drink].[Beverages]
    [Product].[Drink].[Dairy]
`, out)
}

func TestDrill_SiblingsAroundSelf(t *testing.T) {
	out, err := execute(t, "drill", "--schema", foodMartYAML, "--member", "[Store].[USA].[OR]", "--ops", "parent", "--ops", "siblings,self")
	require.NoError(t, err)
	assert.Equal(t, `[Store].[USA].[OR] {PARENT,SIBLINGS,SELF}: 4 member(s)
  [Store].[USA]
    [Store].[USA].[CA]
    [Store].[USA].[OR]
    [Store].[USA].[WA]
`, out)
}

func TestDrill_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	opts := &DrillOptions{
		RootOptions: &RootOptions{Format: "json"},
		IDs:         session.NewFixedGenerator("stmt-1"),
	}
	cmd := NewDrillCommand(opts.RootOptions)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--schema", foodMartYAML, "--member", "[Time].[1997].[Q2]", "--ops", "ancestors"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string      `json:"status"`
		Data   DrillResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "{ANCESTORS}", resp.Data.Ops)
	require.Len(t, resp.Data.Members, 1)
	assert.Equal(t, "[Time].[1997]", resp.Data.Members[0].UniqueName)
	assert.Equal(t, "[Time]", resp.Data.Members[0].Hierarchy)
}

func TestDrill_Miss(t *testing.T) {
	out, err := execute(t, "drill", "--schema", foodMartYAML, "--member", "[Store].[Mexico]", "--ops", "self")
	require.NoError(t, err)
	assert.Equal(t, "[Store].[Mexico] {SELF}: 0 member(s)\n", out)
}

func TestDrill_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"bad ops", []string{"--member", "[Store].[USA]", "--ops", "cousins"}, `unknown tree op "COUSINS"`},
		{"bad member", []string{"--member", "[Store"}, "unterminated"},
		{"unknown cube", []string{"--member", "[Store].[USA]", "--cube", "Warehouse"}, "cube not found: Warehouse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"drill", "--schema", foodMartYAML}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestAxes_Text(t *testing.T) {
	out, err := execute(t, "axes", "--schema", foodMartYAML, "--query", sliceQuery)
	require.NoError(t, err)
	assert.Equal(t, `COLUMNS [Measures]
  0: [Measures].[Unit Sales]
  1: [Measures].[Store Sales]
ROWS [Store]
  0: [Store].[USA].[CA]
  1: [Store].[USA].[OR]
  2: [Store].[USA].[WA]
FILTER [Time] [Promotion Media]
  0: [Time].[1998], [Promotion Media].[All Media]
`, out)
}

func TestAxes_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	opts := &AxesOptions{RootOptions: &RootOptions{Format: "json"}}
	cmd := NewAxesCommand(opts.RootOptions)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--schema", foodMartYAML, "--query", sliceQuery})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status  string     `json:"status"`
		Data    []AxisView `json:"data"`
		TraceID string     `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, []string{"[Store].[Store State].[Name]"}, resp.Data[1].Properties)

	filter := resp.Data[2]
	assert.Equal(t, "FILTER", filter.Axis)
	assert.Len(t, filter.Positions, 1)
}

func TestAxes_NoResult(t *testing.T) {
	out, err := execute(t, "axes", "--schema", foodMartYAML, "--query", filepath.Join("testdata", "no_result.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "has no result section")
}

func TestCatalog_ImportListAndServe(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	out, err := execute(t, "catalog", "import", "--db", db, foodMartYAML, tinyCUE)
	require.NoError(t, err)
	assert.Equal(t, "✓ Imported FoodMart, Tiny\n", out)

	out, err = execute(t, "catalog", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "FoodMart\t1 cube(s)")
	assert.Contains(t, out, "Tiny\t1 cube(s)\t6 member(s)")

	// Two schemas in the catalog: --name is required.
	_, err = execute(t, "drill", "--schema", db, "--member", "[Product].[Drink]")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err = execute(t, "drill", "--schema", db, "--name", "Tiny", "--member", "[Product].[Drink]", "--ops", "children")
	require.NoError(t, err)
	assert.Contains(t, out, "[Product].[Drink].[Dairy]")

	_, err = execute(t, "drill", "--schema", db, "--name", "Nope", "--member", "[Product].[Drink]")
	require.Error(t, err)

	out, err = execute(t, "axes", "--schema", db, "--name", "FoodMart", "--query", sliceQuery)
	require.NoError(t, err)
	assert.Contains(t, out, "[Promotion Media].[All Media]")
}

func TestCatalog_EmptyList(t *testing.T) {
	out, err := execute(t, "--format", "json", "catalog", "list", "--db", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":[]}`, out)
}

func TestCatalog_ImportInvalid(t *testing.T) {
	_, err := execute(t, "catalog", "import", "--db", filepath.Join(t.TempDir(), "catalog.db"), sliceQuery)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mdxbridge/internal/axis"
	"github.com/roach88/mdxbridge/internal/convert"
	"github.com/roach88/mdxbridge/internal/portable"
	"github.com/roach88/mdxbridge/internal/session"
)

// AxesOptions holds flags for the axes command.
type AxesOptions struct {
	*RootOptions
	Schema SchemaSource
	Query  string

	// IDs overrides the statement ID generator (for testing).
	IDs session.IDGenerator
}

// AxisView is the JSON form of one materialized axis.
type AxisView struct {
	Axis        string     `json:"axis"`
	Hierarchies []string   `json:"hierarchies"`
	Properties  []string   `json:"properties,omitempty"`
	Positions   [][]string `json:"positions"`
}

// NewAxesCommand creates the axes command.
func NewAxesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AxesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "axes",
		Short: "Materialize the evaluated axes of a query fixture",
		Long: `Decode a query fixture that carries an evaluated result and print every
axis position by position, followed by the filter axis.

The filter axis always has exactly one position with one member per
hierarchy of the WHERE clause; hierarchies the evaluated tuple leaves out
show their default member.

Example:
  mdxbridge axes --schema foodmart.yaml --query sales.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAxes(opts, cmd)
		},
	}

	addSchemaFlags(cmd, &opts.Schema)
	cmd.Flags().StringVar(&opts.Query, "query", "", "path to query fixture with a result section (required)")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runAxes(opts *AxesOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	engine, err := opts.Schema.LoadEngine(cmd.Context())
	if err != nil {
		return outputError(formatter, err)
	}
	fx, err := loadQuery(engine, opts.Query)
	if err != nil {
		return outputError(formatter, err)
	}
	if fx.Result == nil {
		return outputError(formatter, &LoadError{
			Code:    ErrCodeInvalidQuery,
			Message: fmt.Sprintf("%s has no result section", opts.Query),
		})
	}

	stmt := session.NewStatement(opts.IDs)
	defer stmt.Close()
	conv := convert.NewConverter(nil)

	var views []AxisView
	for i, qa := range fx.Query.Axes {
		a, err := axis.Materialize(stmt, conv, qa, fx.Result.Axes[i])
		if err != nil {
			return outputError(formatter, err)
		}
		view, err := viewOf(stmt, a)
		if err != nil {
			return outputError(formatter, err)
		}
		views = append(views, view)
	}

	filter, err := axis.MaterializeFilter(stmt, conv, engine, fx.Query.Slicer, fx.Result.Filter)
	if err != nil {
		return outputError(formatter, err)
	}
	view, err := viewOf(stmt, filter)
	if err != nil {
		return outputError(formatter, err)
	}
	views = append(views, view)
	formatter.VerboseLog("Materialized %d axes under statement %s", len(views), stmt.ID())

	if formatter.Format == "json" {
		return formatter.SuccessTraced(views, stmt.ID())
	}

	var sb strings.Builder
	for i, v := range views {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s %s", v.Axis, strings.Join(v.Hierarchies, " "))
		for j, pos := range v.Positions {
			fmt.Fprintf(&sb, "\n  %d: %s", j, strings.Join(pos, ", "))
		}
	}
	return formatter.Success(sb.String())
}

func viewOf(h session.Handle, a *axis.Axis) (AxisView, error) {
	meta := a.Metadata()
	v := AxisView{
		Axis:        meta.Axis.String(),
		Hierarchies: make([]string, len(meta.Hierarchies)),
		Positions:   [][]string{},
	}
	for i, hier := range meta.Hierarchies {
		v.Hierarchies[i] = hier.UniqueName
	}
	for _, p := range meta.Properties {
		v.Properties = append(v.Properties, portable.Unparse(p))
	}

	positions, err := a.Positions(h)
	if err != nil {
		return AxisView{}, err
	}
	for _, p := range positions {
		names := make([]string, len(p.Members))
		for i, m := range p.Members {
			names[i] = m.UniqueName
		}
		v.Positions = append(v.Positions, names)
	}
	return v, nil
}

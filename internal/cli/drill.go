package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mdxbridge/internal/convert"
	"github.com/roach88/mdxbridge/internal/drill"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/portable"
	"github.com/roach88/mdxbridge/internal/session"
)

// DrillOptions holds flags for the drill command.
type DrillOptions struct {
	*RootOptions
	Schema SchemaSource
	Cube   string
	Member string
	Ops    []string

	// IDs overrides the statement ID generator (for testing).
	IDs session.IDGenerator
}

// DrillResult is the JSON payload of the drill command.
type DrillResult struct {
	Member  string            `json:"member"`
	Ops     string            `json:"ops"`
	Members []portable.Member `json:"members"`
}

// NewDrillCommand creates the drill command.
func NewDrillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DrillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Expand a member along its hierarchy",
		Long: `Expand a member into the members a set of tree operations selects, in
hierarchy order: ancestors or parent, siblings before the member, the member
itself, children or descendants, then siblings after the member.

Operations: ancestors, parent, siblings, self, children, descendants.

Example:
  mdxbridge drill --schema foodmart.yaml --member "[Product].[Drink]" --ops self,children
  mdxbridge drill --schema foodmart.yaml --member "[Store].[USA].[CA]" --ops ancestors,siblings,self`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrill(opts, cmd)
		},
	}

	addSchemaFlags(cmd, &opts.Schema)
	cmd.Flags().StringVar(&opts.Cube, "cube", "", "cube name (defaults to the only cube)")
	cmd.Flags().StringVar(&opts.Member, "member", "", "member unique name (required)")
	cmd.Flags().StringSliceVar(&opts.Ops, "ops", []string{"self"}, "tree operations to apply")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func runDrill(opts *DrillOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ops, err := drill.ParseTreeOps(opts.Ops)
	if err != nil {
		return outputError(formatter, &LoadError{Code: ErrCodeInvalidArgs, Message: err.Error()})
	}
	id, err := native.ParseIdentifier(opts.Member)
	if err != nil {
		return outputError(formatter, &LoadError{Code: ErrCodeInvalidArgs, Message: err.Error()})
	}

	engine, err := opts.Schema.LoadEngine(cmd.Context())
	if err != nil {
		return outputError(formatter, err)
	}
	cube, err := pickCube(engine, opts.Cube)
	if err != nil {
		return outputError(formatter, err)
	}

	stmt := session.NewStatement(opts.IDs)
	defer stmt.Close()

	members, err := drill.LookupMembers(stmt, engine, cube, ops, id.Segments)
	if err != nil {
		return outputError(formatter, err)
	}
	if len(members) == 0 {
		formatter.VerboseLog("No member named %s in cube %s", id, cube.Name)
	}

	wrap := convert.NameWrapper{}
	result := DrillResult{Member: id.String(), Ops: ops.String(), Members: make([]portable.Member, len(members))}
	for i, m := range members {
		result.Members[i] = wrap.Member(m)
	}

	if formatter.Format == "json" {
		return formatter.SuccessTraced(result, stmt.ID())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: %d member(s)", result.Member, result.Ops, len(members))
	for _, m := range result.Members {
		fmt.Fprintf(&sb, "\n%s%s", strings.Repeat("  ", m.Depth+1), m.UniqueName)
	}
	return formatter.Success(sb.String())
}

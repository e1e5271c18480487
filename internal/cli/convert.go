package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/mdxbridge/internal/convert"
	"github.com/roach88/mdxbridge/internal/portable"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Schema SchemaSource
	Query  string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Translate a query fixture into a portable tree",
		Long: `Decode a native query fixture against a schema and translate it into the
portable expression tree.

Text output is the tree unparsed as MDX. JSON output is the canonical JSON
encoding of the tree.

Example:
  mdxbridge convert --schema foodmart.yaml --query sales.yaml
  mdxbridge convert --schema catalog.db --name FoodMart --query sales.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, cmd)
		},
	}

	addSchemaFlags(cmd, &opts.Schema)
	cmd.Flags().StringVar(&opts.Query, "query", "", "path to query fixture (required)")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
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
	formatter.VerboseLog("Decoded query on cube %s: %d axes, %d formulas",
		fx.Query.Cube.Name, len(fx.Query.Axes), len(fx.Query.Formulas))

	sel, err := convert.NewConverter(nil).Query(fx.Query)
	if err != nil {
		return outputError(formatter, err)
	}

	if formatter.Format == "json" {
		data, err := portable.MarshalCanonical(sel)
		if err != nil {
			return outputError(formatter, err)
		}
		return formatter.Success(json.RawMessage(data))
	}
	return formatter.Success(portable.Unparse(sel))
}

// addSchemaFlags registers --schema and --name.
func addSchemaFlags(cmd *cobra.Command, src *SchemaSource) {
	cmd.Flags().StringVar(&src.Path, "schema", "", "schema spec (.yaml, .yml, .cue) or catalog database (.db) (required)")
	cmd.Flags().StringVar(&src.Name, "name", "", "schema name inside a catalog database")
	_ = cmd.MarkFlagRequired("schema")
}

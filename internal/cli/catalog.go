package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mdxbridge/internal/catalog"
)

// CatalogOptions holds flags for the catalog commands.
type CatalogOptions struct {
	*RootOptions
	Database string
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage a SQLite catalog of schemas",
		Long: `Store schema specs in a SQLite catalog. Commands that take --schema accept
the catalog path (.db) with --name in place of a spec file.

Example:
  mdxbridge catalog import --db ./catalog.db foodmart.yaml
  mdxbridge catalog list --db ./catalog.db`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "import <schema-file>...",
		Short:         "Validate schema specs and save them to the catalog",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogImport(opts, args, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List the schemas in the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(opts, cmd)
		},
	})

	return cmd
}

func runCatalogImport(opts *CatalogOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := catalog.Open(opts.Database)
	if err != nil {
		return outputError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
	}
	defer cat.Close()

	var imported []string
	for _, path := range paths {
		src := SchemaSource{Path: path}
		spec, err := src.LoadSpec(cmd.Context())
		if err != nil {
			return outputError(formatter, err)
		}
		if err := cat.Save(cmd.Context(), spec); err != nil {
			return outputError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()})
		}
		formatter.VerboseLog("Imported %s from %s", spec.Name, path)
		imported = append(imported, spec.Name)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{"imported": imported})
	}
	return formatter.Success(fmt.Sprintf("✓ Imported %s", strings.Join(imported, ", ")))
}

func runCatalogList(opts *CatalogOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := catalog.Open(opts.Database)
	if err != nil {
		return outputError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
	}
	defer cat.Close()

	entries, err := cat.List(cmd.Context())
	if err != nil {
		return outputError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	if len(entries) == 0 {
		return formatter.Success("(empty catalog)")
	}
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s\t%d cube(s)\t%d member(s)", e.Name, e.Cubes, e.Members)
	}
	return formatter.Success(sb.String())
}

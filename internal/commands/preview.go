package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

// PreviewOptions holds options for the preview command
type PreviewOptions struct {
	File  string
	Group string
	AppID int64
}

// NewPreviewCommand creates the preview command
func NewPreviewCommand(global *GlobalOptions) *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the JSON schema of an interface draft's parameters",
		Long: `Builds the JSON schema of one parameter group of an interface draft, as
the adapter exposes it to MCP clients. Custom types are resolved from the
backend when --app is given.`,
		Example: `  # Input schema of a draft
  mcpconsole preview -f forecast.yaml

  # Output schema, resolving custom types of application 3
  mcpconsole preview -f forecast.yaml --group output --app 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Draft file (yaml or json)")
	cmd.Flags().StringVarP(&opts.Group, "group", "g", string(schema.GroupInput), "Parameter group (input|output|fixed)")
	cmd.Flags().Int64Var(&opts.AppID, "app", 0, "Application whose custom types are resolved")

	return cmd
}

func runPreview(cmd *cobra.Command, global *GlobalOptions, opts *PreviewOptions) error {
	var group schema.Group
	if err := group.UnmarshalText([]byte(opts.Group)); err != nil {
		return err
	}

	d, err := readInterfaceDraft(opts.File)
	if err != nil {
		return err
	}

	catalog := schema.NewCatalog(d.AppID, nil)
	if opts.AppID != 0 {
		if catalog, err = loadCatalog(cmd, global, opts.AppID); err != nil {
			return err
		}
	}

	doc, err := schema.BuildSchema(d.Parameters, group, catalog)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

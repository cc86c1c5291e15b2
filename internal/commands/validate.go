package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

// ValidateOptions holds options for the validate command
type ValidateOptions struct {
	File   string
	Type   bool
	TypeID int64
	AppID  int64
}

// NewValidateCommand creates the validate command
func NewValidateCommand(global *GlobalOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an interface or custom type draft",
		Long: `Applies the submission rules to a draft file without sending it.

Interface drafts are checked offline. Custom type drafts that reference other
types need --app so the application's types can be loaded from the backend.`,
		Example: `  # Check an interface draft
  mcpconsole validate -f forecast.yaml

  # Check an edit of custom type 7 of application 3
  mcpconsole validate -f address.yaml --type --id 7 --app 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Draft file (yaml or json)")
	cmd.Flags().BoolVar(&opts.Type, "type", false, "The draft is a custom type")
	cmd.Flags().Int64Var(&opts.TypeID, "id", 0, "Id of the custom type being edited")
	cmd.Flags().Int64Var(&opts.AppID, "app", 0, "Application whose custom types are in scope")

	return cmd
}

func runValidate(cmd *cobra.Command, global *GlobalOptions, opts *ValidateOptions) error {
	if !opts.Type {
		d, err := readInterfaceDraft(opts.File)
		if err != nil {
			return err
		}
		if opts.AppID != 0 {
			d.AppID = opts.AppID
		}
		if res := schema.Validate(d); !res.OK() {
			return res.Err()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "interface %q is valid\n", d.Name)
		return nil
	}

	d, err := readTypeDraft(opts.File)
	if err != nil {
		return err
	}
	if opts.AppID != 0 {
		d.AppID = opts.AppID
	}

	catalog := schema.NewCatalog(d.AppID, nil)
	if opts.AppID != 0 {
		if catalog, err = loadCatalog(cmd, global, opts.AppID); err != nil {
			return err
		}
	}
	if res := schema.ValidateType(d, opts.TypeID, catalog); !res.OK() {
		return res.Err()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "custom type %q is valid\n", d.Name)
	return nil
}

func loadCatalog(cmd *cobra.Command, global *GlobalOptions, appID int64) (*schema.Catalog, error) {
	c, err := global.connect(cmd)
	if err != nil {
		return nil, err
	}
	defer c.close()

	types, err := c.client.ListCustomTypes(cmd.Context(), appID)
	if err != nil {
		return nil, err
	}
	return schema.NewCatalog(appID, types), nil
}

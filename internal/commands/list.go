package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

// ListOptions holds options for the types and interfaces commands
type ListOptions struct {
	AppID  int64
	Search string
	Method string
}

// NewAppsCommand creates the apps command
func NewAppsCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List applications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := global.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()
			apps, err := c.session.Applications(cmd.Context())
			if err != nil {
				return err
			}
			return printApplications(cmd.OutOrStdout(), apps)
		},
	}
}

// NewTypesCommand creates the types command
func NewTypesCommand(global *GlobalOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:     "types",
		Short:   "List the custom types of an application",
		Example: `  mcpconsole types --app 3 --search address`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := global.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()
			if err := c.session.Open(cmd.Context(), opts.AppID); err != nil {
				return err
			}
			return printTypes(cmd.OutOrStdout(), c.session.Catalog(), c.session.FilterTypes(opts.Search))
		},
	}

	cmd.Flags().Int64Var(&opts.AppID, "app", 0, "Application id")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Only types whose name or description contains this text")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

// NewInterfacesCommand creates the interfaces command
func NewInterfacesCommand(global *GlobalOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:     "interfaces",
		Short:   "List the interfaces of an application",
		Example: `  mcpconsole interfaces --app 3 --method POST --search weather`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var method schema.Method
			if opts.Method != "" {
				if err := method.UnmarshalText([]byte(opts.Method)); err != nil {
					return err
				}
			}

			c, err := global.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()
			if err := c.session.Open(cmd.Context(), opts.AppID); err != nil {
				return err
			}
			return printInterfaces(cmd.OutOrStdout(), c.session.FilterInterfaces(opts.Search, method))
		},
	}

	cmd.Flags().Int64Var(&opts.AppID, "app", 0, "Application id")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Only interfaces whose name, description or url contains this text")
	cmd.Flags().StringVarP(&opts.Method, "method", "m", "", "Only interfaces with this HTTP method")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

func printApplications(w io.Writer, apps []schema.Application) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPATH\tPROTOCOL\tENABLED")
	for _, app := range apps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", app.ID, app.Name, app.Path, app.Protocol, app.Enabled)
	}
	return tw.Flush()
}

func printTypes(w io.Writer, catalog *schema.Catalog, types []schema.CustomType) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFIELDS\tDESCRIPTION")
	for _, ct := range types {
		fields := make([]string, 0, len(ct.Fields))
		for _, f := range ct.Fields {
			fields = append(fields, f.Name+":"+catalog.Label(f.Type, f.Ref, f.IsArray))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ct.ID, ct.Name, joinOrDash(fields), ct.Description)
	}
	return tw.Flush()
}

func printInterfaces(w io.Writer, ifaces []schema.Interface) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMETHOD\tURL\tPARAMS\tENABLED")
	for _, it := range ifaces {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\n", it.ID, it.Name, it.Method, it.URL, len(it.Parameters), it.Enabled)
	}
	return tw.Flush()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

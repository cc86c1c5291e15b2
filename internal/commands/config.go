package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cocofhu/mcp-adapter-console/logger"
)

// NewConfigCommand creates the config command
func NewConfigCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print every configuration key after defaults, the config file, the
environment and flags are merged. Header values and secrets are masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			values := cfg.All()
			if global.BackendURL != "" {
				values["backend.url"] = global.BackendURL
			}
			if global.LogLevel != "" {
				values["log.level"] = global.LogLevel
			}
			printSettings(cmd.OutOrStdout(), values)
			return nil
		},
	}
}

func printSettings(w io.Writer, values map[string]any) {
	masking := logger.DefaultFilterConfig()
	masking.SensitiveFields = append(masking.SensitiveFields, "headers.")
	filter := logger.NewSensitiveDataFilter(masking)

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		fmt.Fprintf(w, "%s = %v\n", key, filter.FilterValue(key, values[key]))
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the vtc2tavern configuration file",
		Long:  `Loads the configuration file, applies environment overrides and checks for invalid values.`,
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %q is valid.\n", o.cfgFile)
			o.log.Debugf("Loaded config: %+v", o.cfg)
			return nil
		},
	}
}

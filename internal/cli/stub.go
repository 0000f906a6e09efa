package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/frherrer/vtc2tavern/internal/scanner"
	"github.com/frherrer/vtc2tavern/internal/stub"
)

func newStubCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stub SOURCE DEST [NEEDS_SERVER_DEST]",
		Short: "Write commented-out Tavern stubs for hand conversion",
		Long: heredoc.Doc(`
			Write a <name>.tavern.yaml.pre stub holding the commented-out
			script for every VTC file directly inside SOURCE. Scripts that
			declare a server block go to NEEDS_SERVER_DEST when given.
			Existing stubs are never overwritten.
		`),
		Args: usageArgs(cobra.RangeArgs(2, 3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := stub.Request{Source: args[0], Dest: args[1]}
			if len(args) > 2 {
				req.ServerDest = args[2]
			}

			w := stub.NewWriter(scanner.NewScanner(), o.cfg, o.log)
			result, err := w.Write(req)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d stub(s), kept %d existing, skipped %d ambiguous\n",
					len(result.Written), len(result.Existing), len(result.Ambiguous))
			}
			return err
		},
	}
}

package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/frherrer/vtc2tavern/internal/yamldiff"
)

func newDiffCmd(_ *options) *cobra.Command {
	var unified bool

	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Compare two YAML files by value",
		Long: heredoc.Doc(`
			Load two YAML documents and report whether they hold the same
			data. Key order, quoting and layout are ignored. Exits with
			status 1 when the documents differ.
		`),
		Example: heredoc.Doc(`
			vtc2tavern diff expected.tavern.yaml out/get_asset.tavern.yaml
			vtc2tavern diff --unified a.yaml b.yaml
		`),
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := yamldiff.CompareFiles(args[0], args[1], yamldiff.Options{Unified: unified})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Equal {
				fmt.Fprintln(out, "equal")
				return nil
			}
			fmt.Fprintln(out, "different")
			fmt.Fprint(out, res.Diff)
			if res.Unified != "" {
				fmt.Fprint(out, res.Unified)
			}
			return ErrDifferent
		},
	}

	cmd.Flags().BoolVarP(&unified, "unified", "u", false, "also print a unified text diff")
	return cmd
}

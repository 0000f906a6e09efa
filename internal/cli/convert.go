package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/frherrer/vtc2tavern/internal/converter"
	"github.com/frherrer/vtc2tavern/internal/generator"
	"github.com/frherrer/vtc2tavern/internal/parser"
	"github.com/frherrer/vtc2tavern/internal/scanner"
)

func newConvertCmd(o *options) *cobra.Command {
	var (
		recursive   bool
		workers     int
		noOverwrite bool
	)

	cmd := &cobra.Command{
		Use:   "convert SOURCE [DEST]",
		Short: "Convert VTC files into Tavern YAML",
		Long: heredoc.Doc(`
			Convert one VTC file, or every VTC file in a directory, into Tavern
			test files. Output names replace the input extension with
			.tavern.yaml. For a directory source the destination must be an
			existing directory and defaults to the source itself.
		`),
		Example: heredoc.Doc(`
			vtc2tavern convert tests/get_asset.vtc
			vtc2tavern convert -r tests/ out/
			vtc2tavern convert --workers 8 --no-overwrite tests/ out/
		`),
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.cfg
			if cmd.Flags().Changed("workers") {
				cfg.Batch.Workers = workers
			}
			if noOverwrite {
				cfg.Output.Overwrite = false
			}

			registry := parser.NewRegistry()
			registry.Register(parser.NewVTCParser(cfg.Input.Extensions...))
			registry.Register(parser.NewMarkdownParser(cfg.Input.MarkdownExtensions))
			registry.Register(parser.NewAsciiDocParser(cfg.Input.AsciiDocExtensions))

			conv, err := converter.NewConverter(&cfg.Convert, o.log)
			if err != nil {
				return err
			}

			req := generator.Request{Source: args[0], Recursive: recursive}
			if len(args) > 1 {
				req.Dest = args[1]
			}

			gen := generator.NewGenerator(scanner.NewScanner(), registry, conv, cfg, o.log)
			summary, err := gen.Generate(cmd.Context(), req)
			if summary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %d file(s) into %d stage(s), wrote %d file(s)\n",
					summary.Files-len(summary.Failed), summary.Stages, len(summary.Written))
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into sub-directories")
	cmd.Flags().IntVar(&workers, "workers", 1, "files converted in parallel (0 = one per CPU)")
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "fail instead of replacing existing output files")
	return cmd
}

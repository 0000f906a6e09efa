// Package cli wires the vtc2tavern commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/frherrer/vtc2tavern/internal/config"
	"github.com/frherrer/vtc2tavern/internal/domain"
	"github.com/frherrer/vtc2tavern/internal/logging"
)

const defaultConfigFile = "vtc2tavern.yaml"

// ErrDifferent is returned by the diff command when the documents differ.
// It maps to exit status 1 and is not printed.
var ErrDifferent = errors.New("documents differ")

// options is the state shared by all commands of one invocation.
type options struct {
	cfgFile string
	envFile string
	verbose bool
	dryRun  bool

	cfg    *config.Config
	log    *logrus.Logger
	closer io.Closer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "vtc2tavern",
		Short: "Convert Varnish test cases into Tavern test files",
		Long: heredoc.Doc(`
			vtc2tavern reads varnishtest (VTC) scripts and writes equivalent
			Tavern YAML test cases: one stage per txreq/rxresp pair, headers
			normalized and expectations mapped to response fields.

			Settings come from vtc2tavern.yaml (or .toml) when present, from a
			.env file and from VTC2TAVERN_* environment variables.
		`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.closer != nil {
				_ = o.closer.Close()
			}
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usage(err)
	})

	root.PersistentFlags().StringVarP(&o.cfgFile, "config", "c", defaultConfigFile, "config file path (.yaml or .toml)")
	root.PersistentFlags().StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&o.dryRun, "dry-run", false, "parse and convert but don't write files")

	root.AddCommand(
		newConvertCmd(o),
		newStubCmd(o),
		newDiffCmd(o),
		newValidateCmd(o),
		newVersionCmd(),
	)
	return root
}

// setup loads the environment, the configuration and the logger.
func (o *options) setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(o.envFile); err != nil {
		return err
	}

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg)
	if o.dryRun {
		cfg.DryRun = true
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Logging, o.verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	o.cfg, o.log, o.closer = cfg, log, closer
	return nil
}

// loadConfig reads the config file. A missing file is only an error when
// the path was given explicitly.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.DefaultConfig(), nil
	}
	return nil, err
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return domain.NewError("config", path, 0, "failed to load env file", err)
	}
	return nil
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usage(err)
		}
		return nil
	}
}

func usage(err error) error {
	return domain.NewError("usage", "", 0, err.Error(), domain.ErrUsage)
}

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrUsage):
		return 2
	default:
		return 1
	}
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	err := NewRootCmd().Execute()
	if err != nil && !errors.Is(err, ErrDifferent) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return ExitCode(err)
}

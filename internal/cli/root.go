package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // SQLite path; defaults to JANUS_DB
	Runtime  string // CUE runtime description; defaults to JANUS_RUNTIME, then the built-in one

	// Env is read before any command runs. Commands built directly in tests
	// see the zero value: no JWT, info logging.
	Env config.Env
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the janus CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "janus",
		Short: "janus - an authenticated single-slot state machine",
		Long: `Run the Janus pallet: authenticated calls overwrite one stored value
and append a SomethingStored event, atomically, to a SQLite journal.`,
		Version: fmt.Sprintf("%s (journal format %s)", ir.RuntimeVersion, ir.IRVersion),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			env, err := config.ParseEnv()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			return applyEnv(opts, env, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $JANUS_DB or janus.db)")
	cmd.PersistentFlags().StringVar(&opts.Runtime, "runtime", "", "CUE runtime description file or directory (default $JANUS_RUNTIME or built-in)")

	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applyEnv fills options the user did not set on the command line.
func applyEnv(opts *RootOptions, env config.Env, cmd *cobra.Command) error {
	opts.Env = env
	if !cmd.Flags().Changed("db") {
		opts.Database = env.DB
	}
	if !cmd.Flags().Changed("runtime") {
		opts.Runtime = env.Runtime
	}
	if _, err := env.Level(); err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/origin"
)

// ValidationResult holds the validate command's JSON output.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Name     string          `json:"name,omitempty"`
	Pallets  []PalletSummary `json:"pallets,omitempty"`
	Accounts []string        `json:"accounts,omitempty"` // Dev keyring names
	Errors   []ValidationErr `json:"errors,omitempty"`
}

// PalletSummary is one compiled pallet binding.
type PalletSummary struct {
	Name   string   `json:"name"`
	Index  uint8    `json:"index"`
	Calls  []string `json:"calls"`
	Events []string `json:"events"`
}

// ValidationErr is one compile error with its source position.
type ValidationErr struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [runtime-path]",
		Short: "Validate a runtime description",
		Long: `Compile a CUE runtime description and print its pallet bindings.

The path defaults to --runtime. With neither, the built-in description
is validated.

Examples:
  janus validate ./runtime.cue
  janus validate ./runtime --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Runtime
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	if path == "" {
		formatter.VerboseLog("No path given, validating the built-in runtime description")
	}

	fail := func(err error) error {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeRuntimeInvalid, err.Error(), ValidationResult{Errors: []ValidationErr{toValidationErr(err)}})
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", err)
		}
		return WrapExitError(ExitFailure, "runtime description is invalid", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fail(err)
	}
	keyring, err := origin.NewKeyring(cfg.Accounts, cfg.StrictAccounts)
	if err != nil {
		return fail(err)
	}

	result := ValidationResult{Valid: true, Name: cfg.Name, Accounts: keyring.Names()}
	for _, p := range cfg.Pallets {
		result.Pallets = append(result.Pallets, PalletSummary{
			Name:   p.Name,
			Index:  p.Index,
			Calls:  p.Calls,
			Events: p.Events,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ runtime %q is valid\n", cfg.Name)
	for _, p := range result.Pallets {
		fmt.Fprintf(w, "  %s (index %d): calls %v, events %v\n", p.Name, p.Index, p.Calls, p.Events)
	}
	if len(result.Accounts) > 0 {
		fmt.Fprintf(w, "  accounts: %s\n", strings.Join(result.Accounts, ", "))
	}
	formatter.VerboseLog("strict accounts: %t", cfg.StrictAccounts)
	return nil
}

func toValidationErr(err error) ValidationErr {
	var cerr *config.CompileError
	if errors.As(err, &cerr) {
		v := ValidationErr{Field: cerr.Field, Message: cerr.Message}
		if cerr.Pos.IsValid() {
			v.File = cerr.Pos.Filename()
			v.Line = cerr.Pos.Line()
		}
		return v
	}
	return ValidationErr{Field: "runtime", Message: err.Error()}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/janus/internal/runtime"
)

// VerifyResult holds the verify command's JSON output.
type VerifyResult struct {
	Consistent bool     `json:"consistent"`
	Events     int      `json:"events"`
	Calls      int      `json:"calls"`
	Rejected   int      `json:"rejected"`
	Present    bool     `json:"present"`
	Stored     uint32   `json:"stored"`
	Problems   []string `json:"problems,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Replay the event log and check it against storage",
		Long: `Replay the event log and check the journal.

Checks that every event ID matches its content, that event tags match the
runtime description's binding, that every accepted call deposited an event,
and that the stored value equals the last SomethingStored.

Exit codes:
  0 - The journal is consistent
  1 - Problems were found
  2 - Command error (database not found, etc.)

Examples:
  janus verify --db ./janus.db
  janus verify --db ./janus.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	sess, err := openSession(ctx, opts, newLogger(opts, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := sess.runtime.Verify(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to verify journal", err)
	}

	result := VerifyResult{
		Consistent: report.OK(),
		Events:     report.Events,
		Calls:      report.Calls,
		Rejected:   report.Rejected,
		Present:    report.Present,
		Stored:     report.Stored,
		Problems:   report.Problems,
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		if !result.Consistent {
			_ = formatter.Error(ErrCodeInconsistent, "journal is inconsistent", result)
			return NewExitError(ExitFailure, "journal is inconsistent")
		}
		return formatter.Success(result)
	}

	outputVerifyText(cmd, report)
	if !report.OK() {
		return NewExitError(ExitFailure, "journal is inconsistent")
	}
	return nil
}

func outputVerifyText(cmd *cobra.Command, report runtime.Report) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Calls:    %d (%d rejected)\n", report.Calls, report.Rejected)
	fmt.Fprintf(w, "Events:   %d\n", report.Events)
	if report.Present {
		fmt.Fprintf(w, "Stored:   %d\n", report.Stored)
	} else {
		fmt.Fprintln(w, "Stored:   absent")
	}

	if report.OK() {
		fmt.Fprintln(w, "✓ journal consistent")
		return
	}
	fmt.Fprintf(w, "✗ %d problem(s)\n", len(report.Problems))
	for _, p := range report.Problems {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

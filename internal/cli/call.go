package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/pallet/janus"
	"github.com/roach88/janus/internal/runtime"
)

// CallOptions holds flags shared by the call subcommands.
type CallOptions struct {
	*RootOptions
	Origin string
	Token  string
}

// NewCallCommand creates the call command and its subcommands.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Dispatch one call against the database",
		Long: `Dispatch a single call through the runtime and print its receipt.

The call is verified, executed and journaled in the database given by --db.
Rejected calls change nothing but are still journaled with their outcome.

Exit codes:
  0 - The call succeeded
  1 - The call was rejected (BadOrigin, UNKNOWN_CALL, INVALID_ARGS, ...)
  2 - Command error (database, runtime description, flags)`,
	}

	cmd.PersistentFlags().StringVar(&opts.Origin, "origin", "", `call origin: "signed:<account>", "none", "root" or "bearer:<jwt>" (required)`)
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "correlation token (default: a new UUIDv7)")

	cmd.AddCommand(newDoSomethingCommand(opts))
	cmd.AddCommand(newDispatchCommand(opts))

	return cmd
}

func newDoSomethingCommand(opts *CallOptions) *cobra.Command {
	var value int64

	cmd := &cobra.Command{
		Use:   "do-something",
		Short: "Store a value as the calling account",
		Long: `Call Janus.do_something: store --value and emit SomethingStored.

Examples:
  janus call do-something --origin signed:alice --value 42
  janus call do-something --origin none --value 42   # rejected: BadOrigin`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(opts, cmd, runtime.Call{
				Module:   janus.PalletName,
				Function: janus.CallDoSomething,
				Args:     ir.Object{"something": ir.Int(value)},
			})
		},
	}

	cmd.Flags().Int64Var(&value, "value", 0, "value to store, 0 to 4294967295 (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newDispatchCommand(opts *CallOptions) *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "dispatch <module> <function>",
		Short: "Dispatch any call by name or call index",
		Long: `Dispatch <module>.<function> with JSON arguments.

Function may also be a decimal call index.

Examples:
  janus call dispatch Janus do_something --origin signed:bob --args '{"something":7}'
  janus call dispatch Janus 0 --origin signed:bob --args '{"something":7}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var callArgs ir.Object
			if err := json.Unmarshal([]byte(argsJSON), &callArgs); err != nil {
				return WrapExitError(ExitCommandError, "invalid --args JSON", err)
			}
			return runCall(opts, cmd, runtime.Call{
				Module:   args[0],
				Function: args[1],
				Args:     callArgs,
			})
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args", "{}", "call arguments as a JSON object")

	return cmd
}

func runCall(opts *CallOptions, cmd *cobra.Command, call runtime.Call) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Origin == "" {
		return NewExitError(ExitCommandError, "required flag \"origin\" not set")
	}
	o, err := ir.ParseOrigin(opts.Origin)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --origin", err)
	}
	call.Origin = o
	call.Token = opts.Token

	ctx := cmd.Context()
	sess, err := openSession(ctx, opts.RootOptions, newLogger(opts.RootOptions, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer sess.Close()

	formatter.VerboseLog("Dispatching %s.%s as %s", call.Module, call.Function, o)
	receipt, err := sess.runtime.Dispatch(ctx, call)
	if err != nil {
		_ = formatter.Error(errorCode(receipt.Outcome), err.Error(), receipt)
		return WrapExitError(ExitFailure, "call rejected", err)
	}

	if opts.Format == "json" {
		return formatter.Success(receipt)
	}
	return formatter.Success(formatReceipt(receipt))
}

// formatReceipt renders a receipt for text output.
func formatReceipt(r runtime.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s.%s (seq %d, call %s)", r.Outcome, r.Module, r.Function, r.Seq, r.CallID)
	for _, ev := range r.Events {
		fmt.Fprintf(&b, "\n  %s", formatEvent(ev))
	}
	return b.String()
}

// formatEvent renders one event as "#seq Pallet[i].Variant[j] payload".
func formatEvent(ev ir.EventRecord) string {
	payload, err := ir.MarshalCanonical(ev.Payload)
	if err != nil {
		payload = []byte("<unprintable>")
	}
	return fmt.Sprintf("#%d %s[%d].%s[%d] %s",
		ev.Seq, ev.Pallet, ev.PalletIndex, ev.Variant, ev.EventIndex, payload)
}

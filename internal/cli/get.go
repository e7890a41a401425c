package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/pallet/janus"
)

// GetResult is the JSON form of the get command's output.
type GetResult struct {
	Present bool         `json:"present"`
	Value   uint32       `json:"value"`
	Who     ir.AccountID `json:"who,omitempty"` // Author of the last SomethingStored
	Seq     int64        `json:"seq,omitempty"` // Seq of that event
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored value",
		Long: `Print Janus.Something from the database.

Prints "absent" until the first successful do_something. With --verbose,
the author of the last SomethingStored is printed to stderr.

Examples:
  janus get --db ./janus.db
  janus get --db ./janus.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, cmd)
		},
	}
}

func runGet(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	v, ok, err := janus.Something.Get(cmd.Context(), st)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read value", err)
	}

	res := GetResult{Present: ok, Value: v}
	ev, found, err := st.LastEvent(cmd.Context(), janus.PalletName, janus.EventSomethingStored)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	if found {
		stored, err := janus.DecodeSomethingStored(ev.Payload)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to decode last event", err)
		}
		res.Who = stored.Who
		res.Seq = ev.Seq
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if found {
		formatter.VerboseLog("set by %s at seq %d", res.Who, res.Seq)
	}
	if opts.Format == "json" {
		return formatter.Success(res)
	}
	if !ok {
		return formatter.Success("absent")
	}
	return formatter.Success(fmt.Sprintf("%d", v))
}

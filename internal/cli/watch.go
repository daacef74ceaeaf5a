package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/quilldb/quill/internal/db"
	"github.com/quilldb/quill/internal/document"
)

// NewWatchCommand creates the watch command: a long-poll loop over one
// key. The initial value and version come from StartPolling; each
// received patch is applied locally and the evolving value printed, so
// the command doubles as a demonstration of client-side patch replay.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	var blockMs int64

	cmd := &cobra.Command{
		Use:   "watch <key>",
		Short: "Follow a document's changes until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			database, err := db.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}
			defer database.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			vv, err := database.StartPolling(ctx, key)
			if err != nil {
				return WrapExitError(ExitCommandError, "watch", err)
			}
			value := vv.Value
			since := vv.Version
			if err := out.Success(map[string]any{"version": since, "value": value}); err != nil {
				return err
			}

			for {
				results, err := database.Poll(ctx,
					[]db.KeyVersion{{Key: key, Since: since}},
					db.PollOptions{ReadBlockTime: time.Duration(blockMs) * time.Millisecond},
				)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "poll", err)
				}

				for _, kp := range results {
					for _, p := range kp.Patches {
						next, err := document.Apply(value, p)
						if err != nil {
							// History may have outrun us; resync from the store.
							out.VerboseLog("resync after apply failure: %v", err)
							vv, err := database.GetWithVersion(ctx, key)
							if err != nil {
								return WrapExitError(ExitCommandError, "resync", err)
							}
							next = vv.Value
							p.Version = vv.Version
						}
						value = next
						since = p.Version
						if err := out.Success(map[string]any{"version": since, "value": value}); err != nil {
							return err
						}
					}
				}
			}
		},
	}

	cmd.Flags().Int64Var(&blockMs, "block-ms", 50000, "how long each poll blocks waiting for a change")
	return cmd
}

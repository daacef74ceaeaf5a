package cli

import (
	"github.com/spf13/cobra"

	"github.com/quilldb/quill/internal/db"
)

// NewRemoveCommand creates the rm command. With --if-version the
// removal is a CAS against the given version; otherwise it removes
// whatever live document is present.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	var ifVersion string

	cmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove a document (writes a tombstone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			database, err := db.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}
			defer database.Close()

			ctx := cmd.Context()
			var ok bool
			if ifVersion != "" {
				expected, err := parseVersionFlag(ifVersion)
				if err != nil {
					return WrapExitError(ExitCommandError, "parse --if-version", err)
				}
				ok, err = database.SetIfVersion(ctx, key, expected, nil, nil)
				if err != nil {
					return WrapExitError(ExitCommandError, "rm", err)
				}
			} else {
				ok, err = database.Remove(ctx, key)
				if err != nil {
					return WrapExitError(ExitCommandError, "rm", err)
				}
			}

			if !ok {
				_ = out.Error("nothing removed: " + key)
				return NewExitError(ExitFailure, "nothing removed")
			}
			return out.Success(map[string]any{"key": key, "removed": true})
		},
	}

	cmd.Flags().StringVar(&ifVersion, "if-version", "", "expected version as major.minor")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/quilldb/quill/internal/db"
)

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	var (
		withMeta    bool
		withVersion bool
	)

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Read a document",
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
			switch {
			case withMeta:
				env, err := database.GetWithMeta(ctx, key)
				if err != nil {
					return WrapExitError(ExitCommandError, "get", err)
				}
				if env == nil {
					_ = out.Error("not found: " + key)
					return NewExitError(ExitFailure, "not found")
				}
				return out.Success(env)

			case withVersion:
				vv, err := database.GetWithVersion(ctx, key)
				if err != nil {
					return WrapExitError(ExitCommandError, "get", err)
				}
				return out.Success(vv)

			default:
				value, err := database.Get(ctx, key)
				if err != nil {
					return WrapExitError(ExitCommandError, "get", err)
				}
				if value == nil {
					_ = out.Error("not found: " + key)
					return NewExitError(ExitFailure, "not found")
				}
				return out.Success(value)
			}
		},
	}

	cmd.Flags().BoolVar(&withMeta, "meta", false, "print the full envelope including patch history")
	cmd.Flags().BoolVar(&withVersion, "version", false, "print value with version (zero version when absent)")
	return cmd
}

package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/quilldb/quill/internal/db"
	"github.com/quilldb/quill/internal/query"
)

// NewQueryCommand creates the query command. The argument is the JSON
// wire form of a find request; "-" reads it from stdin.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <json-query>",
		Short: "Run a filtered, ordered, paginated query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			raw := []byte(args[0])
			if args[0] == "-" {
				var err error
				raw, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return WrapExitError(ExitCommandError, "read stdin", err)
				}
			}

			q, err := query.ParseQuery(raw)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse query", err)
			}

			database, err := db.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}
			defer database.Close()

			docs, err := database.Find(cmd.Context(), q)
			if err != nil {
				return WrapExitError(ExitCommandError, "find", err)
			}

			out.VerboseLog("%d documents matched", len(docs))
			return out.Success(docs)
		},
	}
	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quilldb/quill/internal/db"
	"github.com/quilldb/quill/internal/document"
)

// parseVersionFlag parses the "major.minor" form used by --if-version.
func parseVersionFlag(s string) (document.Version, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return document.Version{}, fmt.Errorf("version must be major.minor, got %q", s)
	}
	ma, err := strconv.ParseInt(major, 10, 64)
	if err != nil {
		return document.Version{}, fmt.Errorf("bad major in %q: %w", s, err)
	}
	mi, err := strconv.ParseInt(minor, 10, 64)
	if err != nil {
		return document.Version{}, fmt.Errorf("bad minor in %q: %w", s, err)
	}
	return document.Version{Major: ma, Minor: mi}, nil
}

// NewSetCommand creates the set command: create a document, or with
// --if-version update it under CAS.
func NewSetCommand(opts *RootOptions) *cobra.Command {
	var ifVersion string

	cmd := &cobra.Command{
		Use:   "set <key> <json-value>",
		Short: "Create a document, or update it with --if-version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			var value any
			if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
				return WrapExitError(ExitCommandError, "parse value", err)
			}

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
				ok, err = database.SetIfVersion(ctx, key, expected, value, nil)
				if err != nil {
					return WrapExitError(ExitCommandError, "set", err)
				}
				if !ok {
					_ = out.Error("version mismatch for " + key)
					return NewExitError(ExitFailure, "version mismatch")
				}
			} else {
				ok, err = database.Create(ctx, key, value)
				if err != nil {
					return WrapExitError(ExitCommandError, "create", err)
				}
				if !ok {
					_ = out.Error("already exists: " + key)
					return NewExitError(ExitFailure, "already exists")
				}
			}

			vv, err := database.GetWithVersion(ctx, key)
			if err != nil {
				return WrapExitError(ExitCommandError, "read back version", err)
			}
			return out.Success(map[string]any{"key": key, "version": vv.Version})
		},
	}

	cmd.Flags().StringVar(&ifVersion, "if-version", "", "expected version as major.minor (0.0 to create under CAS)")
	return cmd
}

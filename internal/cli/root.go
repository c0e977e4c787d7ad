// Package cli implements rulectl, the command-line client for the rule
// administration API.
package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

// DefaultServer is used when neither --server nor RULES_SERVER is set
const DefaultServer = "http://localhost:8080"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Format  string // "json" | "text"
	Timeout time.Duration
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for rulectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rulectl",
		Short: "Manage storefront automation rules",
		Long:  "rulectl lists, adds, toggles and removes automation rules and fires test events against a running rules server.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Server == "" {
				return NewExitError(ExitCommandError, "server URL must not be empty")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("RULES_SERVER")
	if server == "" {
		server = DefaultServer
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", server, "rules server base URL (env RULES_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewFireCommand(opts))

	return cmd
}

func (o *RootOptions) client() *Client {
	return NewClient(o.Server, o.Timeout)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

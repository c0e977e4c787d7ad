package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// NewRulesCommand creates the rules command group.
func NewRulesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List, inspect and change automation rules",
	}

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newGetCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newToggleCommand(opts, "enable", true))
	cmd.AddCommand(newToggleCommand(opts, "disable", false))

	return cmd
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			list, err := opts.client().ListRules(ctx)
			if err != nil {
				return requestError("failed to list rules", err)
			}
			return opts.formatter(cmd).Success(list, func(w io.Writer) {
				writeRuleTable(w, list)
			})
		},
	}
}

func newGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <rule-id>",
		Short: "Show one rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			rule, err := opts.client().GetRule(ctx, args[0])
			if err != nil {
				return requestError(fmt.Sprintf("failed to get rule %s", args[0]), err)
			}
			return opts.formatter(cmd).Success(rule, func(w io.Writer) {
				writeRule(w, rule)
			})
		},
	}
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	File string
}

func newAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add -f <rules.yaml>",
		Short: "Add the rules defined in a YAML file",
		Long: `Add the rules defined in a YAML file.

The file uses the same format as RULES_FILE:

  rules:
    - id: vip-free-shipping
      name: Free shipping for VIPs
      trigger: order_created
      conditions:
        customer_type: vip
        total: {$gte: 100}
      actions:
        - type: update_order
          parameters: {field: notes, value: free shipping}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return addRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "YAML rules file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func addRules(cmd *cobra.Command, opts *AddOptions) error {
	loaded, err := rules.LoadFile(opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load rules file", err)
	}

	// Validate the whole file before sending anything
	for i, rule := range loaded {
		if err := rules.ValidateRule(rule); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("rule %d (%s) is invalid", i, rule.Name), err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	out := opts.formatter(cmd)
	client := opts.client()
	added := make([]*rules.Rule, 0, len(loaded))
	for _, rule := range loaded {
		stored, err := client.AddRule(ctx, rule)
		if err != nil {
			return requestError(fmt.Sprintf("failed to add rule %q", rule.Name), err)
		}
		out.VerboseLog("added %s", stored.ID)
		added = append(added, stored)
	}

	return out.Success(added, func(w io.Writer) {
		for _, r := range added {
			fmt.Fprintf(w, "added %s (%s)\n", r.ID, r.Name)
		}
	})
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <rule-id>",
		Aliases: []string{"rm"},
		Short:   "Remove every rule with the given ID",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			if err := opts.client().RemoveRule(ctx, args[0]); err != nil {
				return requestError(fmt.Sprintf("failed to remove rule %s", args[0]), err)
			}
			return opts.formatter(cmd).Success(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %s\n", args[0])
			})
		},
	}
}

func newToggleCommand(opts *RootOptions, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <rule-id>",
		Short: "Set enabled=" + strconv.FormatBool(enabled) + " on every rule with the given ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			rule, err := opts.client().SetEnabled(ctx, args[0], enabled)
			if err != nil {
				return requestError(fmt.Sprintf("failed to %s rule %s", verb, args[0]), err)
			}
			return opts.formatter(cmd).Success(rule, func(w io.Writer) {
				fmt.Fprintf(w, "%sd %s\n", verb, rule.ID)
			})
		},
	}
}

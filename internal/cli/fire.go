package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// FireOptions holds flags for the fire command.
type FireOptions struct {
	*RootOptions
	Payload string
}

// NewFireCommand creates the fire command.
func NewFireCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FireOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fire <trigger>",
		Short: "Send an event through the rule engine",
		Long: `Send an event through the rule engine and print which rules ran.

Example:
  rulectl fire order_created --payload '{"order_id":"o-1","total":650}'`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(rules.TriggerOrderCreated), string(rules.TriggerOrderStatusChanged), string(rules.TriggerScheduled)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return fireEvent(cmd, opts, rules.Trigger(args[0]))
		},
	}

	cmd.Flags().StringVar(&opts.Payload, "payload", "{}", "event payload as JSON")

	return cmd
}

func fireEvent(cmd *cobra.Command, opts *FireOptions, trigger rules.Trigger) error {
	if !trigger.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown trigger %q", trigger))
	}

	var payload rules.Payload
	if err := json.Unmarshal([]byte(opts.Payload), &payload); err != nil {
		return WrapExitError(ExitCommandError, "invalid --payload JSON", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	result, err := opts.client().Fire(ctx, trigger, payload)
	if err != nil {
		return requestError("failed to fire event", err)
	}

	if err := opts.formatter(cmd).Success(result, func(w io.Writer) {
		writeResult(w, result)
	}); err != nil {
		return err
	}
	if !result.Success {
		return NewExitError(ExitFailure, "event processing failed")
	}
	return nil
}

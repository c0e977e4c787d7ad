package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the server rejected the request or the event failed
	ExitCommandError = 2 // bad flags, unreadable files, server unreachable
)

// ExitError carries the process exit code for a command failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// requestError maps a client error to an exit code: API errors are
// failures, anything else means the server could not be reached.
func requestError(message string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return WrapExitError(ExitFailure, message, err)
	}
	return WrapExitError(ExitCommandError, message, err)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for --format json.
type CLIResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// Success writes data as JSON, or calls text for human-readable output
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// VerboseLog writes to ErrWriter so JSON output stays parseable
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func writeRuleTable(w io.Writer, list []*rules.Rule) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTRIGGER\tENABLED\tACTIONS\tNAME")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", r.ID, r.Trigger, r.Enabled, actionTypes(r.Actions), r.Name)
	}
	tw.Flush()
}

func writeRule(w io.Writer, r *rules.Rule) {
	fmt.Fprintf(w, "ID:       %s\n", r.ID)
	fmt.Fprintf(w, "Name:     %s\n", r.Name)
	fmt.Fprintf(w, "Trigger:  %s\n", r.Trigger)
	fmt.Fprintf(w, "Enabled:  %t\n", r.Enabled)
	if r.Schedule != "" {
		fmt.Fprintf(w, "Schedule: %s\n", r.Schedule)
	}
	if r.Expression != "" {
		fmt.Fprintf(w, "Guard:    %s\n", r.Expression)
	}
	if len(r.Conditions) > 0 {
		conditions, _ := json.Marshal(r.Conditions)
		fmt.Fprintf(w, "When:     %s\n", conditions)
	}
	fmt.Fprintf(w, "Actions:  %s\n", actionTypes(r.Actions))
}

func writeResult(w io.Writer, result *rules.ProcessResult) {
	if !result.Success {
		fmt.Fprintf(w, "event failed: %s\n", result.Error)
		return
	}
	fmt.Fprintf(w, "%d rule(s) executed\n", result.RulesExecuted)
	for _, o := range result.Outcomes {
		fmt.Fprintf(w, "  %s\n", o.RuleID)
		for _, a := range o.Actions {
			line := fmt.Sprintf("    %-20s %s", a.Type, a.Status)
			if a.Error != "" {
				line += "  " + a.Error
			}
			fmt.Fprintln(w, line)
		}
	}
}

func actionTypes(actions []rules.ActionSpec) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a.Type)
	}
	return strings.Join(names, ",")
}

// Package cli holds the pieces shared by the command-line tools: exit
// codes, positional index arguments and error reporting.
package cli

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cognicore/standoff/pkg/standoff/config"
	"github.com/cognicore/standoff/pkg/standoff/indices"
	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

// Exit codes
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitFailure = 2
)

// UsageError marks a bad invocation: wrong arguments, flags or config.
type UsageError struct {
	err error
}

// Usagef builds a UsageError.
func Usagef(format string, args ...interface{}) error {
	return &UsageError{err: errors.Errorf(format, args...)}
}

func (e *UsageError) Error() string { return e.err.Error() }

func (e *UsageError) Unwrap() error { return e.err }

// ExitCode maps an error returned by a command to the process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var uerr *UsageError
	if errors.As(err, &uerr) || errors.Is(err, internalerr.ErrInvalidConfig) {
		return ExitUsage
	}
	return ExitFailure
}

// RangeArgs is cobra.RangeArgs reporting a UsageError.
func RangeArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			return Usagef("accepts between %d and %d arg(s), received %d", min, max, len(args))
		}
		return nil
	}
}

// Indices resolves the optional [TOKENIDX [BIOIDX]] positionals over the
// configured token index and the loader's tag indices.
func Indices(comp *config.Components, args []string) (int, []int, error) {
	tokenIdx := comp.Config.TokenIndex
	tagIndices := comp.TagIndices

	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, nil, Usagef("failed to parse TOKENIDX %q", args[0])
		}
		tokenIdx = v
	}
	if len(args) > 1 {
		parsed, err := indices.Parse(args[1])
		if err != nil {
			return 0, nil, &UsageError{err: err}
		}
		tagIndices = parsed
	}

	if len(tagIndices) == 0 {
		return 0, nil, Usagef("BIOIDX selects no columns")
	}
	return tokenIdx, tagIndices, nil
}

// Execute runs cmd, reports a returned error on its error stream and
// returns the exit code.
func Execute(cmd *cobra.Command) int {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{err: err}
	})

	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}

	code := ExitCode(err)
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	if code == ExitUsage {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	}
	return code
}

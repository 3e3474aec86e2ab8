package cli

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/standoff/pkg/standoff/config"
	"github.com/cognicore/standoff/pkg/standoff/indices"
	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(Usagef("bad %s", "args")))
	assert.Equal(t, ExitUsage, ExitCode(errors.Wrap(Usagef("bad"), "wrapped")))
	assert.Equal(t, ExitUsage, ExitCode(errors.Wrap(internalerr.ErrInvalidConfig, "config")))
	assert.Equal(t, ExitFailure, ExitCode(internalerr.NewAlignmentError(internalerr.KindMismatch, 3, "x")))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}

func loaded(t *testing.T, cfg *config.Config) *config.Components {
	t.Helper()
	tags, err := indices.Parse(cfg.TagIndices)
	require.NoError(t, err)
	return &config.Components{Config: cfg, Rules: cfg.Rules(), TagIndices: tags}
}

func TestIndices(t *testing.T) {
	comp := loaded(t, config.Default())

	tok, tags, err := Indices(comp, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tok)
	assert.Equal(t, []int{-1}, tags)

	tok, tags, err = Indices(comp, []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, 1, tok)
	assert.Equal(t, []int{-1}, tags)

	tok, tags, err = Indices(comp, []string{"0", "6,8-11"})
	require.NoError(t, err)
	assert.Equal(t, 0, tok)
	assert.Equal(t, []int{6, 8, 9, 10}, tags)

	cfg := config.Default()
	cfg.TokenIndex = 2
	cfg.TagIndices = "3"
	tok, tags, err = Indices(loaded(t, cfg), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tok)
	assert.Equal(t, []int{3}, tags)
}

func TestIndicesUseLoadedTagIndices(t *testing.T) {
	comp := &config.Components{Config: config.Default(), TagIndices: []int{4, 5}}

	_, tags, err := Indices(comp, []string{"0"})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, tags)
}

func TestIndicesUsageErrors(t *testing.T) {
	for _, args := range [][]string{{"x"}, {"0", "a,b"}, {"0", "5-5"}, {"0", "99999999999999999999-1"}} {
		_, _, err := Indices(loaded(t, config.Default()), args)
		require.Error(t, err, "args %v", args)
		assert.Equal(t, ExitUsage, ExitCode(err), "args %v", args)
	}
}

func TestExecuteReportsErrors(t *testing.T) {
	newCmd := func(runErr error) (*cobra.Command, *bytes.Buffer) {
		var stderr bytes.Buffer
		cmd := &cobra.Command{
			Use:  "tool ARG",
			Args: RangeArgs(1, 1),
			RunE: func(*cobra.Command, []string) error { return runErr },
		}
		cmd.SetErr(&stderr)
		cmd.SetOut(&bytes.Buffer{})
		return cmd, &stderr
	}

	cmd, _ := newCmd(nil)
	cmd.SetArgs([]string{"a"})
	assert.Equal(t, ExitOK, Execute(cmd))

	cmd, stderr := newCmd(nil)
	cmd.SetArgs([]string{})
	assert.Equal(t, ExitUsage, Execute(cmd))
	assert.Contains(t, stderr.String(), "Usage:")

	cmd, stderr = newCmd(nil)
	cmd.SetArgs([]string{"--nope", "a"})
	assert.Equal(t, ExitUsage, Execute(cmd))
	assert.Contains(t, stderr.String(), "nope")

	cmd, stderr = newCmd(internalerr.NewAlignmentError(internalerr.KindLeftover, 0, "leftover text"))
	cmd.SetArgs([]string{"a"})
	assert.Equal(t, ExitFailure, Execute(cmd))
	assert.Contains(t, stderr.String(), "leftover text")
	assert.NotContains(t, stderr.String(), "Usage:")
}

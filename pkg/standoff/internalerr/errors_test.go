package internalerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignmentErrorUnwrapsToSentinel(t *testing.T) {
	cases := map[Kind]error{
		KindFieldParse:       ErrFieldParse,
		KindMismatch:         ErrMismatch,
		KindUnclosedBracket:  ErrUnclosedBracket,
		KindTypeContinuation: ErrTypeContinuation,
		KindEntityText:       ErrEntityText,
		KindLeftover:         ErrLeftover,
	}
	for kind, sentinel := range cases {
		err := errors.Wrap(NewAlignmentError(kind, 3, "ctx %d", 1), "convert")
		assert.True(t, errors.Is(err, sentinel), "kind %s", kind)

		var aerr *AlignmentError
		require.True(t, errors.As(err, &aerr))
		assert.Equal(t, kind, aerr.Kind)
		assert.Equal(t, 3, aerr.Line)
	}
}

func TestAlignmentErrorMessage(t *testing.T) {
	err := NewAlignmentError(KindMismatch, 12, "reference %q tagged %q", "a", "b")
	assert.Equal(t, `mismatch (line 12): reference "a" tagged "b"`, err.Error())

	err = NewAlignmentError(KindLeftover, 0, "extra %q", "x")
	assert.Equal(t, `leftover: extra "x"`, err.Error())
}

package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeValidate(t *testing.T) {
	require.NoError(t, Range{From: 1, To: 1}.Validate())
	require.NoError(t, Range{From: 1, To: 20}.Validate())

	err := Range{From: 5, To: 4}.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidRange))
}

func TestParseHandle(t *testing.T) {
	h, err := ParseHandle("4242")
	require.NoError(t, err)
	require.Equal(t, Handle(4242), h)
	require.Equal(t, "4242", h.String())

	for _, in := range []string{"", "abc", "0", "-3"} {
		_, err := ParseHandle(in)
		require.ErrorIs(t, err, ErrHandleNotFound, in)
	}
}

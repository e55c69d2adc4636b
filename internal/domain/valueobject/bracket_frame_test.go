package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBracketFrame(t *testing.T) {
	frame, err := NewBracketFrame('(', 3, 14)
	require.NoError(t, err)
	assert.Equal(t, '(', frame.Opener())
	assert.Equal(t, 3, frame.Line())
	assert.Equal(t, 14, frame.Column())

	_, err = NewBracketFrame(')', 0, 0)
	assert.Error(t, err, "closers are not openers")

	_, err = NewBracketFrame('<', 0, 0)
	assert.Error(t, err, "angle brackets are not tracked")

	_, err = NewBracketFrame('(', -1, 0)
	assert.Error(t, err)
}

func TestBracketFrame_ExpectedCloser(t *testing.T) {
	pairs := map[rune]rune{'(': ')', '[': ']', '{': '}'}
	for opener, closer := range pairs {
		frame, err := NewBracketFrame(opener, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, closer, frame.ExpectedCloser())
		assert.True(t, frame.Matches(closer))
		assert.False(t, frame.Matches('x'))
	}
}

func TestBracketClassification(t *testing.T) {
	for _, r := range "([{" {
		assert.True(t, IsOpeningBracket(r))
		assert.False(t, IsClosingBracket(r))
	}
	for _, r := range ")]}" {
		assert.True(t, IsClosingBracket(r))
		assert.False(t, IsOpeningBracket(r))
	}
	for _, r := range "a\"<># " {
		assert.False(t, IsOpeningBracket(r))
		assert.False(t, IsClosingBracket(r))
	}
}

package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleConfirmAnswers(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: " yes \n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
		{input: "yes", want: true},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		got, err := NewConsole(strings.NewReader(tc.input), &out).Confirm(context.Background(), "Delete?")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Equal(t, "Delete? [y/N]: ", out.String())
	}
}

func TestConsoleConfirmHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := NewConsole(strings.NewReader("y\n"), &bytes.Buffer{}).Confirm(ctx, "Delete?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsoleNotifyPrefixesLevel(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out)
	c.Notify(context.Background(), Notice{Level: LevelSuccess, Message: "User created!"})
	c.Notify(context.Background(), Notice{Level: LevelError, Message: "Delete failed."})
	assert.Equal(t, "[success] User created!\n[error] Delete failed.\n", out.String())
}

func TestInlineRendersNoticesAndTracksPendingQuestion(t *testing.T) {
	in := NewInline(false)
	ok, err := in.Confirm(context.Background(), "Really delete?")
	require.NoError(t, err)
	assert.False(t, ok)
	q, pending := in.Pending()
	assert.True(t, pending)
	assert.Equal(t, "Really delete?", q)

	in.Notify(context.Background(), Notice{Level: LevelError, Message: "Version conflict"})
	var sb strings.Builder
	require.NoError(t, in.Render(context.Background(), &sb))
	assert.Contains(t, sb.String(), "alert-danger")
	assert.Contains(t, sb.String(), "Version conflict")
}

func TestInlineConfirmedHasNoPendingQuestion(t *testing.T) {
	in := NewInline(true)
	ok, err := in.Confirm(context.Background(), "Really delete?")
	require.NoError(t, err)
	assert.True(t, ok)
	_, pending := in.Pending()
	assert.False(t, pending)
}

func TestRecorderAndAssume(t *testing.T) {
	r := NewRecorder(false)
	ok, err := r.Confirm(context.Background(), "q1")
	require.NoError(t, err)
	assert.False(t, ok)
	r.Notify(context.Background(), Notice{Message: "m1"})
	assert.Equal(t, []string{"q1"}, r.Questions())
	assert.Equal(t, []string{"m1"}, r.Messages())

	ok, err = Assume(true).Confirm(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}

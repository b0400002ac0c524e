package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("first line\r\nlast"), &out)

	got, err := p.Ask("Title: ")
	require.NoError(t, err)
	assert.Equal(t, "first line", got)

	got, err = p.Ask("Body: ")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = p.Ask("More: ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "Title: Body: More: ", out.String())
}

func TestConfirm_RepromptsOnInvalidInput(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("maybe\n\n Y \n"), &out)

	ok, err := p.Confirm("Post it?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, strings.Count(out.String(), "Post it? [y/n] "))
	assert.Equal(t, 2, strings.Count(out.String(), "Please enter y or n."))
}

func TestConfirm_No(t *testing.T) {
	p := New(strings.NewReader("n\n"), io.Discard)
	ok, err := p.Confirm("Vote?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirm_EOF(t *testing.T) {
	p := New(strings.NewReader("x\n"), io.Discard)
	_, err := p.Confirm("Vote?")
	assert.ErrorIs(t, err, io.EOF)
}

//go:build linux || darwin || freebsd || netbsd || openbsd

package input

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPoll(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	term := NewTerminal(r)

	_, ok, err := term.Poll(time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "nothing written yet")

	_, err = w.Write([]byte("zx\x03"))
	require.NoError(t, err)

	var got []Event
	for i := 0; i < 3; i++ {
		ev, ok, err := term.Poll(100 * time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)
		got = append(got, ev)
	}
	assert.Equal(t, []Event{{KeyPress, 'z'}, {KeyPress, 'x'}, {Kind: Interrupt}}, got)

	_, ok, err = term.Poll(time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

//go:build !windows

package proclist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPSListerInvokesExpectedCommand(t *testing.T) {
	var gotName string
	var gotArgs []string
	l := &psLister{run: func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte("    PID    PPID %CPU %MEM COMMAND\n   4321       1 42.0  2.5 firefox\n"), nil
	}}

	records, err := l.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ps", gotName)
	assert.Equal(t, []string{"-eo", "pid,ppid,pcpu,pmem,comm", "--sort=-pcpu"}, gotArgs)
	require.Len(t, records, 1)
	assert.Equal(t, "firefox", records[0].Name)
}

func TestPSListerWrapsCommandError(t *testing.T) {
	l := &psLister{run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 127")
	}}

	_, err := l.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ps:")
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithOutput_WritesAndClosesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, withOutput(path, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "a,b")
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestWithOutput_PropagatesRunError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	boom := errors.New("boom")

	err := withOutput(path, func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWithOutput_CreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	err := withOutput(path, func(io.Writer) error { return nil })
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

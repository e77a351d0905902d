package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf_compressor/logging"
)

func TestPdfcpuRun(t *testing.T) {
	// pdfcpu keeps its configuration under the user config dir
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	p := NewPdfcpu(logging.Discard())
	assert.Equal(t, EnginePdfcpu, p.Name())

	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, os.WriteFile(in, []byte("this is not a pdf"), 0o600))

	t.Run("RejectsMalformedInput", func(t *testing.T) {
		err := p.Run(context.Background(), in, out, PresetScreen)
		assert.ErrorContains(t, err, "pdfcpu optimize failed")
	})

	t.Run("CancelledBeforeStart", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.Run(ctx, in, out, PresetScreen)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

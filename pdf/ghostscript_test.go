package pdf

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf_compressor/logging"
	"pdf_compressor/tempfile"
)

// copyScript stands in for gs: it records its arguments and copies the input to -sOutputFile.
const copyScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "10.02.1"
  exit 0
fi
out=""
for arg in "$@"; do
  case "$arg" in
    -sOutputFile=*) out="${arg#-sOutputFile=}" ;;
  esac
  last="$arg"
done
printf '%s\n' "$@" > "$(dirname "$0")/args.txt"
cp "$last" "$out"
`

const failScript = `#!/bin/sh
echo "Error: /syntaxerror in --file--"
exit 1
`

const slowScript = `#!/bin/sh
exec sleep 5
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "gs")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestGhostscriptArgs(t *testing.T) {
	args := ghostscriptArgs("/tmp/in.pdf", "/tmp/out.pdf", PresetEbook)
	assert.Equal(t, []string{
		"-q",
		"-dNOPAUSE",
		"-dBATCH",
		"-dSAFER",
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/ebook",
		"-sOutputFile=/tmp/out.pdf",
		"/tmp/in.pdf",
	}, args)
}

func TestNewGhostscriptDefaults(t *testing.T) {
	g := NewGhostscript("", 0, logging.Discard())
	assert.Equal(t, DefaultGhostscriptBinary, g.Binary)
	assert.Zero(t, g.Timeout)
	assert.Equal(t, EngineGhostscript, g.Name())
}

func TestGhostscriptRun(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		script := writeScript(t, copyScript)
		g := NewGhostscript(script, 5*time.Second, logging.Discard())

		dir := t.TempDir()
		in := filepath.Join(dir, "in.pdf")
		out := filepath.Join(dir, "out.pdf")
		require.NoError(t, os.WriteFile(in, []byte("%PDF-1.4 body"), 0o600))

		require.NoError(t, g.Run(context.Background(), in, out, PresetScreen))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 body", string(data))

		recorded, err := os.ReadFile(filepath.Join(filepath.Dir(script), "args.txt"))
		require.NoError(t, err)
		assert.Equal(t, strings.Join(ghostscriptArgs(in, out, PresetScreen), "\n")+"\n", string(recorded))
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		g := NewGhostscript(writeScript(t, failScript), 5*time.Second, logging.Discard())

		err := g.Run(context.Background(), "in.pdf", "out.pdf", PresetScreen)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with code 1")
		assert.Contains(t, err.Error(), "syntaxerror")
	})

	t.Run("Timeout", func(t *testing.T) {
		g := NewGhostscript(writeScript(t, slowScript), 100*time.Millisecond, logging.Discard())

		err := g.Run(context.Background(), "in.pdf", "out.pdf", PresetScreen)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("MissingBinary", func(t *testing.T) {
		g := NewGhostscript(filepath.Join(t.TempDir(), "no-such-gs"), time.Second, logging.Discard())

		err := g.Run(context.Background(), "in.pdf", "out.pdf", PresetScreen)
		assert.Error(t, err)
	})
}

func TestGhostscriptProbe(t *testing.T) {
	g := NewGhostscript(writeScript(t, copyScript), time.Second, logging.Discard())
	version, err := g.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.02.1", version)

	missing := NewGhostscript(filepath.Join(t.TempDir(), "no-such-gs"), time.Second, logging.Discard())
	_, err = missing.Probe(context.Background())
	assert.ErrorContains(t, err, "not available")
}

func TestCompressorWithGhostscript(t *testing.T) {
	g := NewGhostscript(writeScript(t, copyScript), 5*time.Second, logging.Discard())

	t.Run("Success", func(t *testing.T) {
		artifacts, err := tempfile.NewManager(afero.NewOsFs(), t.TempDir())
		require.NoError(t, err)
		c := NewCompressor(artifacts, g, 1, logging.Discard())

		input := samplePDF("gs", 1024)
		result, err := c.Compress(context.Background(), bytes.NewReader(input), PresetScreen)
		require.NoError(t, err)
		assert.Equal(t, input, result.Output)
		assert.Equal(t, 0.0, result.RatioPercent)
		assertNoArtifacts(t, artifacts)
	})

	t.Run("EngineFailureLeavesNothing", func(t *testing.T) {
		failing := NewGhostscript(writeScript(t, failScript), 5*time.Second, logging.Discard())
		artifacts, err := tempfile.NewManager(afero.NewOsFs(), t.TempDir())
		require.NoError(t, err)
		c := NewCompressor(artifacts, failing, 1, logging.Discard())

		_, err = c.Compress(context.Background(), bytes.NewReader([]byte("not really a pdf")), PresetScreen)
		var engineErr *EngineError
		require.ErrorAs(t, err, &engineErr)
		assert.Equal(t, EngineGhostscript, engineErr.Engine)
		assertNoArtifacts(t, artifacts)
	})
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(EngineGhostscript, "/usr/bin/gs", time.Minute, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, EngineGhostscript, b.Name())

	b, err = NewBackend("", "", 0, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, EngineGhostscript, b.Name())

	b, err = NewBackend(EnginePdfcpu, "", 0, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, EnginePdfcpu, b.Name())

	_, err = NewBackend("imagemagick", "", 0, logging.Discard())
	assert.ErrorContains(t, err, "unknown engine")
}

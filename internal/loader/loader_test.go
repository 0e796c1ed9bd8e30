package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcviewer/rclog/internal/parser"
	"github.com/rcviewer/rclog/pkg/core"
)

const sampleReplay = `T TeamA TeamB
V 0 62 10
S 0.0 kick_off_l 0 0
b 1.5 -2.0
l 1 -10.0 0.0 90.0
r 1 10.0 2.0 -45.0
S 0.1 play_on 0 0
b 1.6 -1.9
l 1 -9.9 0.1 89.0
r 1 10.0 2.0 -45.0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeGzipFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())
	return path
}

func TestLoadPlainFile(t *testing.T) {
	path := writeFile(t, "match.rcg", sampleReplay)

	res, err := New(nil).Load(context.Background(), path)
	require.NoError(t, err)

	log := res.Log.Base()
	assert.Equal(t, "match.rcg", log.Resource)
	assert.Equal(t, core.Kind2D, log.Kind)
	assert.Equal(t, 2, log.StateCount())
	assert.True(t, log.FullyLoaded())
	assert.Empty(t, res.Diagnostics)
}

func TestLoadGzipFile(t *testing.T) {
	path := writeGzipFile(t, "match.rcg.gz", sampleReplay)

	res, err := New(nil).Load(context.Background(), path)
	require.NoError(t, err)

	log := res.Log.Base()
	assert.Equal(t, "match.rcg", log.Resource, "resource drops the .gz suffix")
	assert.Equal(t, 2, log.StateCount())
}

func TestLoadChunked(t *testing.T) {
	// Many snapshots so the source spans several chunks.
	var sb strings.Builder
	sb.WriteString("T A B\nV 0 62 10\n")
	for i := 0; i < 500; i++ {
		sb.WriteString("b 1.0 2.0\nl 1 -10.0 0.0 90.0\nr 1 10.0 2.0 -45.0\n")
	}
	path := writeFile(t, "big.rcg", sb.String())

	l := New(nil)
	l.chunkSize = 64

	res, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 500, res.Log.Base().StateCount())
}

func TestLoadUnknownFormat(t *testing.T) {
	path := writeFile(t, "bogus.txt", "this is not a match log\n")

	_, err := New(nil).Load(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrNoHeader)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.rcg"))
	require.Error(t, err)
}

func TestLoadCancelled(t *testing.T) {
	path := writeFile(t, "match.rcg", sampleReplay)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadDiagnostics(t *testing.T) {
	content := sampleReplay + "l not-a-number\n"
	path := writeFile(t, "noisy.rcg", content)

	res, err := New(nil).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "l", res.Diagnostics[0].Tag)
}

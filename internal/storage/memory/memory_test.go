package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcviewer/rclog/internal/config"
	"github.com/rcviewer/rclog/pkg/core"
)

func sampleLog(t *testing.T) *core.SimulationLog {
	t.Helper()
	log := core.NewSimulationLog("match.rcg", core.Kind2D)
	log.LeftTeam.Name = "TeamA"
	log.RightTeam.Name = "TeamB"
	log.EnvParams.Set("field_length", 105.0)
	log.LeftTeam.EnsureAgent(1).UseType(0)

	part := core.NewPartialWorldState(0, 0.1)
	for i := 0; i < 3; i++ {
		part.Ball.SetPosition(float64(i), 0.2, 0)
		part.Ball.SetQuat(0, 0, 0, 1)
		agent := part.Agent(core.SideLeft, 1)
		agent.SetPosition(float64(-i), 0, 0)
		agent.SetHeading(0)
		require.True(t, part.AppendTo(log))
	}
	log.Finalize()
	return log
}

func writeAll(t *testing.T, b *Backend, log *core.SimulationLog) {
	t.Helper()
	require.NoError(t, b.BeginRecording("session-1", 1, log))
	for _, ws := range log.States() {
		require.NoError(t, b.WriteSnapshot(ws))
	}
	require.NoError(t, b.FinishRecording())
}

func TestExportPlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir}, nil)
	require.NoError(t, b.Init())

	writeAll(t, b, sampleLog(t))

	path := b.ExportedFilePath()
	require.NotEmpty(t, path)
	assert.Equal(t, filepath.Join(dir, "match.session-1.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc exportDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "session-1", doc.ID)
	assert.Equal(t, "match.rcg", doc.Resource)
	assert.Equal(t, 2, doc.Kind)
	assert.Equal(t, "TeamA", doc.LeftTeam.Name)
	require.Len(t, doc.LeftTeam.Agents, 1)
	assert.Equal(t, 1, doc.LeftTeam.Agents[0].PlayerNo)
	assert.Equal(t, 105.0, doc.EnvParams["field_length"])
	require.Len(t, doc.Snapshots, 3)
	assert.Equal(t, []float64{1, 0.2, 0, 0, 0, 0, 1}, doc.Snapshots[1].Ball)
	assert.True(t, strings.HasPrefix(doc.BallPath, "LINESTRING"), doc.BallPath)
}

func TestExportCompressed(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true}, nil)

	writeAll(t, b, sampleLog(t))

	path := b.ExportedFilePath()
	require.True(t, strings.HasSuffix(path, ".json.gz"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	gz, err := gzip.NewReader(file)
	require.NoError(t, err)

	var doc exportDocument
	require.NoError(t, json.NewDecoder(gz).Decode(&doc))
	assert.Len(t, doc.Snapshots, 3)
}

func TestBeginAssignsUUID(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()}, nil)
	require.NoError(t, b.BeginRecording("", 0, sampleLog(t)))
	assert.NotEmpty(t, b.id)
}

func TestWriteWithoutBegin(t *testing.T) {
	b := New(config.MemoryConfig{}, nil)
	assert.Error(t, b.WriteSnapshot(&core.WorldState{Ball: core.NewObjectState()}))
	assert.Error(t, b.FinishRecording())
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"match.rcg", "match"},
		{"/var/logs/final.rcg.gz", "final"},
		{"plain", "plain"},
		{"", "recording"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, sanitizeName(tc.in), tc.in)
	}
}

package influx

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcviewer/rclog/pkg/core"
)

func backupManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "influx-backup.gz")

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)

	m := NewManager(zerolog.New(os.Stderr), path)
	m.BackupWriter = gzip.NewWriter(file)
	return m, path
}

func backupLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	zr, err := gzip.NewReader(file)
	require.NoError(t, err)
	defer zr.Close()

	var lines []string
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestWritePointFallsBackToBackup(t *testing.T) {
	m, path := backupManager(t)

	point := influxdb2_write.NewPointWithMeasurement("decode_stats").
		AddTag("resource", "match.rcg").
		AddField("queue_len", 7).
		SetTime(time.Unix(0, 42))
	require.NoError(t, m.WritePoint(context.Background(), BucketDecodePerformance, point))
	m.Close()

	lines := backupLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "decode_stats")
	assert.Contains(t, lines[0], "resource=match.rcg")
	assert.Contains(t, lines[0], "queue_len=7i")
}

func TestWriteMatchResult(t *testing.T) {
	m, path := backupManager(t)

	log := core.NewSimulationLog("final.rcg", core.Kind2D)
	log.LeftTeam.Name = "Alpha"
	log.RightTeam.Name = "Beta"

	part := core.NewPartialWorldState(0, 0.1)
	part.SetScore(core.GameScore{GoalsLeft: 3, GoalsRight: 1}, 0)
	part.Agent(core.SideLeft, 1).SetPosition(0, 0, 0)
	require.True(t, part.AppendTo(log))

	require.NoError(t, m.WriteMatchResult(context.Background(), log))
	m.Close()

	lines := backupLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "match_result")
	assert.Contains(t, lines[0], "left_team=Alpha")
	assert.Contains(t, lines[0], "goals_left=3i")
}

func TestWritePointWithoutSink(t *testing.T) {
	m := NewManager(zerolog.New(os.Stderr), "")
	point := influxdb2_write.NewPointWithMeasurement("decode_stats")
	assert.Error(t, m.WritePoint(context.Background(), BucketDecodePerformance, point))
}

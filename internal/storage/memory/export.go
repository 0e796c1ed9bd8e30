package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/rcviewer/rclog/internal/geo"
	"github.com/rcviewer/rclog/pkg/core"
	"github.com/rcviewer/rclog/pkg/streaming"
)

// exportDocument is the on-disk JSON schema of one recording.
type exportDocument struct {
	ID        string    `json:"id"`
	Resource  string    `json:"resource"`
	Kind      int       `json:"kind"`
	Version   int       `json:"version"`
	DecodedAt time.Time `json:"decodedAt"`
	Frequency float64   `json:"frequency"`

	LeftTeam  teamDocument `json:"leftTeam"`
	RightTeam teamDocument `json:"rightTeam"`

	EnvParams    map[string]any   `json:"envParams,omitempty"`
	PlayerParams map[string]any   `json:"playerParams,omitempty"`
	TypeParams   []map[string]any `json:"typeParams,omitempty"`

	PlayModes []playModeDocument `json:"playModes"`
	Scores    []scoreDocument    `json:"scores"`

	// BallPath is a simplified WKT polyline for archive previews.
	BallPath string `json:"ballPath,omitempty"`

	Snapshots []streaming.SnapshotPayload `json:"snapshots"`
}

type teamDocument struct {
	Name   string          `json:"name"`
	Color  string          `json:"color,omitempty"`
	Agents []agentDocument `json:"agents,omitempty"`
}

type agentDocument struct {
	PlayerNo int   `json:"playerNo"`
	Types    []int `json:"types,omitempty"`
}

type playModeDocument struct {
	Time float64 `json:"time"`
	Mode string  `json:"mode"`
}

type scoreDocument struct {
	Time          float64 `json:"time"`
	GoalsLeft     int     `json:"goalsLeft"`
	GoalsRight    int     `json:"goalsRight"`
	PenScoreLeft  int     `json:"penScoreLeft,omitempty"`
	PenMissLeft   int     `json:"penMissLeft,omitempty"`
	PenScoreRight int     `json:"penScoreRight,omitempty"`
	PenMissRight  int     `json:"penMissRight,omitempty"`
}

// exportJSON writes the recording to outputDir, compressed when configured.
// Returns the written file path. Caller holds the lock.
func (b *Backend) exportJSON() (string, error) {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	doc := b.buildDocument()

	name := fmt.Sprintf("%s.%s.json", sanitizeName(b.log.Resource), b.id)
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	path := filepath.Join(b.cfg.OutputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer file.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(file)
		if err := json.NewEncoder(gz).Encode(doc); err != nil {
			gz.Close()
			return "", fmt.Errorf("encoding export: %w", err)
		}
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("closing gzip stream: %w", err)
		}
	} else {
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return "", fmt.Errorf("encoding export: %w", err)
		}
	}
	return path, nil
}

func (b *Backend) buildDocument() exportDocument {
	log := b.log
	doc := exportDocument{
		ID:           b.id,
		Resource:     log.Resource,
		Kind:         int(log.Kind),
		Version:      b.version,
		DecodedAt:    b.startedAt,
		Frequency:    log.Frequency,
		LeftTeam:     teamDocumentFrom(log.LeftTeam),
		RightTeam:    teamDocumentFrom(log.RightTeam),
		EnvParams:    log.EnvParams.ToMap(),
		PlayerParams: log.PlayerParams.ToMap(),
		BallPath:     geo.BallPathWKT(log.States(), geo.DefaultSimplifyTolerance),
		Snapshots:    b.snapshots,
	}
	for _, tp := range log.TypeParams {
		doc.TypeParams = append(doc.TypeParams, tp.ToMap())
	}
	for _, gs := range log.GameStateList() {
		doc.PlayModes = append(doc.PlayModes, playModeDocument{
			Time: gs.Time,
			Mode: gs.PlayMode,
		})
	}
	for _, sc := range log.GameScoreList() {
		doc.Scores = append(doc.Scores, scoreDocument{
			Time:          sc.Time,
			GoalsLeft:     sc.GoalsLeft,
			GoalsRight:    sc.GoalsRight,
			PenScoreLeft:  sc.PenScoreLeft,
			PenMissLeft:   sc.PenMissLeft,
			PenScoreRight: sc.PenScoreRight,
			PenMissRight:  sc.PenMissRight,
		})
	}
	return doc
}

func teamDocumentFrom(team *core.TeamDescription) teamDocument {
	doc := teamDocument{Name: team.Name, Color: team.Color}
	for _, agent := range team.Agents {
		if agent == nil {
			continue
		}
		doc.Agents = append(doc.Agents, agentDocument{
			PlayerNo: agent.PlayerNo,
			Types:    agent.PlayerTypes,
		})
	}
	return doc
}

// sanitizeName strips path separators and extensions from a resource name so
// it is safe as a file name component.
func sanitizeName(resource string) string {
	base := filepath.Base(resource)
	for {
		ext := filepath.Ext(base)
		if ext == "" || len(ext) > 6 {
			break
		}
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "recording"
	}
	return base
}

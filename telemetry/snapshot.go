package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/terrain/grid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a grid as it left one pipeline stage.
type Snapshot struct {
	Version int         `json:"version"`
	Seed    int64       `json:"seed"`
	Order   int         `json:"order"`
	Stage   string      `json:"stage"`
	Summary Summary     `json:"summary"`
	Heights [][]float64 `json:"heights"` // heights[y][x]
}

// NewSnapshot captures g after the stage at position order.
func NewSnapshot(seed int64, order int, stage string, g *grid.Grid) *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Seed:    seed,
		Order:   order,
		Stage:   stage,
		Summary: Summarize(order, stage, g),
		Heights: g.Rows(),
	}
}

// Grid rebuilds the captured heightmap.
func (s *Snapshot) Grid() (*grid.Grid, error) {
	return grid.FromArray(s.Heights)
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	stage := strings.ReplaceAll(snapshot.Stage, " ", "_")
	path := filepath.Join(dir, fmt.Sprintf("snapshot_%02d_%s.json", snapshot.Order, stage))

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}

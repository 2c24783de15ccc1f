package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is a flat node listing saved to disk for later diffing.
type Snapshot struct {
	TS    int64      `json:"ts"`
	Root  DrillID    `json:"root"`
	Nodes []FlatNode `json:"nodes"`
}

// SaveSnapshot writes a snapshot file.
func SaveSnapshot(path string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSnapshot reads a previously saved snapshot from disk.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("unmarshal snapshot %s: %w", path, err)
	}
	return snap, nil
}

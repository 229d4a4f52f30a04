// Package exports reads the snapshot files the bot process writes out
// periodically (node database, leaderboard, packet buffer). The panel never
// writes these except to clear the packet buffer.
package exports

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// IfaceExport is the per-interface slice of the exported node database.
type IfaceExport struct {
	MyNodeInfo map[string]any `json:"myNodeInfo"`
	Channels   []any          `json:"channels"`
}

// NodeDB is the node database snapshot exported by the bot.
type NodeDB struct {
	Interfaces map[string]IfaceExport `json:"interfaces"`
	Nodes      []map[string]any       `json:"nodes"`
	ExportedAt string                 `json:"exported_at"`
}

// LoadNodeDB reads the node database snapshot. ok is false when the export
// does not exist yet or cannot be parsed (the bot may still be starting).
func LoadNodeDB(path string) (NodeDB, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NodeDB{}, false
	}
	var db NodeDB
	if err := json.Unmarshal(data, &db); err != nil {
		return NodeDB{}, false
	}
	return db, true
}

// SortedNodes returns the mesh nodes ordered by lastHeard descending.
func (db NodeDB) SortedNodes() []map[string]any {
	nodes := make([]map[string]any, len(db.Nodes))
	copy(nodes, db.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		return lastHeard(nodes[i]) > lastHeard(nodes[j])
	})
	return nodes
}

func lastHeard(node map[string]any) float64 {
	if v, ok := node["lastHeard"].(float64); ok {
		return v
	}
	return 0
}

// LoadPackets reads the packet buffer, optionally keeping only packets
// newer than since (compared on the lexically ordered timestamp_full field).
func LoadPackets(path, since string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read packets: %w", err)
	}
	var packets []map[string]any
	if err := json.Unmarshal(data, &packets); err != nil {
		return nil, fmt.Errorf("parse packets: %w", err)
	}
	if since == "" {
		return packets, nil
	}
	var filtered []map[string]any
	for _, p := range packets {
		if ts, ok := p["timestamp_full"].(string); ok && ts > since {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ClearPackets empties the packet buffer in place.
func ClearPackets(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		return fmt.Errorf("clear packets: %w", err)
	}
	return nil
}

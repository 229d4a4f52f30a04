// Package bbs maintains the persisted directory of BBS sync peers built
// from log events.
package bbs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/meshlog"
)

const (
	maxHistory = 20
	maxDetails = 100
)

// HistoryEntry is one recorded sync occurrence for a peer.
type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Details   string `json:"details"`
}

// Peer is the persisted record for one sync peer. Known peers are keyed by
// node name when the log ever carried one, else by stringified numeric id;
// a peer first seen by id and later by name will occupy two entries, which
// is a known limitation of the key choice.
type Peer struct {
	NodeName       string         `json:"node_name"`
	NodeID         int64          `json:"node_id,omitempty"`
	FirstSeen      string         `json:"first_seen"`
	LastSeen       string         `json:"last_seen"`
	SyncCount      int            `json:"sync_count"`
	MessagesSynced int            `json:"messages_synced"`
	LastSyncType   string         `json:"last_sync_type,omitempty"`
	SyncHistory    []HistoryEntry `json:"sync_history"`
}

// Directory is the full persisted peer directory.
type Directory struct {
	Peers       map[string]*Peer `json:"peers"`
	LastUpdated string           `json:"last_updated,omitempty"`
}

// Fold merges events into dir in input order and returns it. The fold is a
// pure function of the event list: counters move only as the triggering
// event kinds dictate, last_seen only advances, and an event with neither a
// node name nor a numeric id is skipped because it cannot be attributed to
// any peer. Loading and persisting the directory is the caller's job.
func Fold(dir Directory, events []meshlog.Event) Directory {
	if dir.Peers == nil {
		dir.Peers = make(map[string]*Peer)
	}
	for _, ev := range events {
		key := peerKey(ev)
		if key == "" {
			continue
		}
		peer, ok := dir.Peers[key]
		if !ok {
			name := ev.NodeName
			if name == "" {
				name = fmt.Sprintf("Node %d", ev.NodeID)
			}
			peer = &Peer{
				NodeName:  name,
				NodeID:    ev.NodeID,
				FirstSeen: ev.Timestamp,
				LastSeen:  ev.Timestamp,
			}
			dir.Peers[key] = peer
		}

		// Timestamps are lexically ordered strings, so > is a time compare.
		if ev.Timestamp > peer.LastSeen {
			peer.LastSeen = ev.Timestamp
		}
		// The numeric id is supplementary: backfill it once known, never
		// rekey an existing name-based entry.
		if ev.NodeID != 0 && peer.NodeID == 0 {
			peer.NodeID = ev.NodeID
		}

		peer.SyncHistory = append(peer.SyncHistory, HistoryEntry{
			Timestamp: ev.Timestamp,
			Type:      ev.Type,
			Details:   meshlog.Truncate(ev.Message, maxDetails),
		})
		if len(peer.SyncHistory) > maxHistory {
			peer.SyncHistory = peer.SyncHistory[len(peer.SyncHistory)-maxHistory:]
		}

		switch ev.Type {
		case meshlog.EventSyncComplete, meshlog.EventDmSent, meshlog.EventDmReceived:
			peer.SyncCount++
			peer.LastSyncType = ev.Type
		case meshlog.EventSendingSync:
			if ev.TotalMessages > peer.MessagesSynced {
				peer.MessagesSynced = ev.TotalMessages
			}
		}
	}
	return dir
}

func peerKey(ev meshlog.Event) string {
	if ev.NodeName != "" {
		return ev.NodeName
	}
	if ev.NodeID != 0 {
		return strconv.FormatInt(ev.NodeID, 10)
	}
	return ""
}

// Load reads the directory at path. A missing or unparsable file loads as an
// empty directory; it will be overwritten on the next successful Save.
func Load(path string) Directory {
	data, err := os.ReadFile(path)
	if err != nil {
		return Directory{Peers: map[string]*Peer{}}
	}
	var dir Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return Directory{Peers: map[string]*Peer{}}
	}
	if dir.Peers == nil {
		dir.Peers = map[string]*Peer{}
	}
	return dir
}

// Save stamps last_updated and atomically replaces the file at path by
// writing a temp file and renaming it over the target. Readers never observe
// a partially written directory; the rename is the only commit point.
func Save(path string, dir Directory) error {
	dir.LastUpdated = time.Now().Format(time.RFC3339)
	data, err := json.MarshalIndent(dir, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal peers: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write peers temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace peers: %w", err)
	}
	return nil
}

// Clear removes the persisted directory entirely.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear peers: %w", err)
	}
	return nil
}

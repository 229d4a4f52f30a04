package bbs

import (
	"math"
	"sort"
	"time"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/meshlog"
)

// Liveness buckets derived from a peer's last_seen age. Computed at render
// time only; never persisted.
const (
	StatusActive  = "active"
	StatusStale   = "stale"
	StatusOffline = "offline"
	StatusUnknown = "unknown"
)

// Status classifies how recently a peer was seen relative to now.
// minutesAgo is -1 when lastSeen cannot be parsed.
func Status(lastSeen string, now time.Time) (status string, minutesAgo int) {
	ts, err := time.ParseInLocation(meshlog.TimeLayout, lastSeen, time.Local)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, lastSeen)
		if err != nil {
			return StatusUnknown, -1
		}
	}
	minutes := now.Sub(ts).Minutes()
	switch {
	case minutes < 10:
		status = StatusActive
	case minutes < 60:
		status = StatusStale
	default:
		status = StatusOffline
	}
	return status, int(math.Round(minutes))
}

// PeerView is a directory entry rendered for the API with its computed
// liveness attached.
type PeerView struct {
	Peer
	Key        string `json:"key"`
	Status     string `json:"status"`
	MinutesAgo *int   `json:"minutes_ago"`
}

// Render flattens the directory into a list sorted by last_seen descending,
// attaching the computed status per peer.
func Render(dir Directory, now time.Time) []PeerView {
	views := make([]PeerView, 0, len(dir.Peers))
	for key, peer := range dir.Peers {
		status, minutes := Status(peer.LastSeen, now)
		view := PeerView{Peer: *peer, Key: key, Status: status}
		if minutes >= 0 {
			view.MinutesAgo = &minutes
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].LastSeen > views[j].LastSeen
	})
	return views
}

// CountActive returns how many rendered peers are currently active.
func CountActive(views []PeerView) int {
	n := 0
	for _, v := range views {
		if v.Status == StatusActive {
			n++
		}
	}
	return n
}

package exports

import (
	"encoding/json"
	"fmt"
	"os"
)

type metricMeta struct {
	icon      string
	label     string
	unit      string
	precision int
}

var leaderboardMetrics = map[string]metricMeta{
	"lowestBattery":   {"🪫", "Low Battery", "%", 1},
	"longestUptime":   {"🕰️", "Uptime", "seconds", 0},
	"fastestSpeed":    {"🚓", "Speed", "km/h", 1},
	"highestAltitude": {"🚀", "Altitude", "m", 0},
	"tallestNode":     {"🪜", "Tallest", "m", 0},
	"coldestTemp":     {"🥶", "Coldest", "°C", 1},
	"hottestTemp":     {"🥵", "Hottest", "°C", 1},
	"mostMessages":    {"💬", "Most Messages", "", 0},
	"highestDBm":      {"📶", "Strongest Signal", "dBm", 0},
	"weakestDBm":      {"📶", "Weakest Signal", "dBm", 0},
}

type rawLeaderboardEntry struct {
	NodeID    int64   `json:"nodeID"`
	ShortName string  `json:"shortName"`
	LongName  string  `json:"longName"`
	Value     float64 `json:"value"`
	Timestamp float64 `json:"timestamp"`
}

type leaderboardFile struct {
	Leaderboard map[string]rawLeaderboardEntry `json:"leaderboard"`
	UpdatedAt   string                         `json:"updated_at"`
}

// LeaderboardEntry is one formatted leaderboard metric for display.
type LeaderboardEntry struct {
	NodeID    int64   `json:"nodeID"`
	NodeHex   string  `json:"nodeHex"`
	NodeName  string  `json:"nodeName"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Icon      string  `json:"icon"`
	Label     string  `json:"label"`
	Timestamp float64 `json:"timestamp"`
}

// LoadLeaderboard reads the leaderboard export and formats the known
// metrics for display. ok is false when the export is not yet available.
func LoadLeaderboard(path string) (map[string]LeaderboardEntry, string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", false
	}
	var doc leaderboardFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", false
	}

	out := map[string]LeaderboardEntry{}
	for key, meta := range leaderboardMetrics {
		raw, ok := doc.Leaderboard[key]
		if !ok || raw.NodeID == 0 {
			continue
		}
		hex := fmt.Sprintf("!%08x", raw.NodeID)
		name := raw.ShortName
		if name == "" {
			name = raw.LongName
		}
		if name == "" {
			name = hex
		}
		out[key] = LeaderboardEntry{
			NodeID:    raw.NodeID,
			NodeHex:   hex,
			NodeName:  name,
			Value:     raw.Value,
			Formatted: formatMetric(key, raw.Value, meta),
			Icon:      meta.icon,
			Label:     meta.label,
			Timestamp: raw.Timestamp,
		}
	}
	return out, doc.UpdatedAt, true
}

// FormatUptime renders seconds as days and hours, e.g. "3d 7h".
func FormatUptime(seconds float64) string {
	days := int(seconds) / 86400
	hours := (int(seconds) % 86400) / 3600
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh", hours)
}

func formatMetric(key string, value float64, meta metricMeta) string {
	if key == "longestUptime" && value > 0 {
		return FormatUptime(value)
	}
	if meta.precision > 0 {
		return fmt.Sprintf("%.*f%s", meta.precision, value, meta.unit)
	}
	return fmt.Sprintf("%d%s", int64(value), meta.unit)
}

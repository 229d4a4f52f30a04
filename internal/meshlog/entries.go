package meshlog

import (
	"strings"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/logtail"
)

// Entry is one leveled line from the bot log, as shown in the log viewer.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Source    string `json:"source"`
	Message   string `json:"message"`
}

// Filter narrows the log viewer output. Level matches exactly (case
// insensitive); Search is a case-insensitive substring test against the
// line body.
type Filter struct {
	Level  string
	Search string
}

// ParseEntries extracts leveled entries from raw lines, applies the filter,
// and returns the last max entries. Lines that are not leveled log lines are
// skipped.
func ParseEntries(lines []string, max int, f Filter) []Entry {
	level := strings.ToUpper(f.Level)
	search := strings.ToLower(f.Search)

	var entries []Entry
	for _, line := range lines {
		line = ansiRe.ReplaceAllString(strings.TrimSpace(line), "")
		m := leveledRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[3])
		if level != "" && m[2] != level {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(body), search) {
			continue
		}
		source, message := splitSource(body)
		entries = append(entries, Entry{
			Timestamp: m[1],
			Level:     m[2],
			Source:    source,
			Message:   message,
		})
	}
	if max > 0 && len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	return entries
}

// ReadEntries tails the log at path and returns up to max entries matching
// the filter. The read window is widened when a filter is set so filtered
// results can still fill the request.
func ReadEntries(path string, max int, f Filter) ([]Entry, error) {
	window := max * 2
	if f.Level != "" || f.Search != "" {
		window = max * 10
	}
	lines, err := logtail.Read(path, window)
	if err != nil {
		return nil, err
	}
	return ParseEntries(lines, max, f), nil
}

// CountLevels tallies entries per log level for the viewer's stats row.
func CountLevels(entries []Entry) map[string]int {
	counts := map[string]int{"DEBUG": 0, "INFO": 0, "WARNING": 0, "ERROR": 0}
	for _, e := range entries {
		if _, ok := counts[e.Level]; ok {
			counts[e.Level]++
		}
	}
	return counts
}

package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/meshlog"
)

// maxActivityEntries caps the persisted activity log.
const maxActivityEntries = 100

// LogEntry is one scheduler activity record reported by the scheduler
// runtime (as opposed to outcomes reconstructed from the bot log).
type LogEntry struct {
	Timestamp    string `json:"timestamp"`
	ScheduleName string `json:"schedule_name" validate:"required"`
	Action       string `json:"action" validate:"required"`
	Message      string `json:"message"`
	Channel      int    `json:"channel" validate:"gte=0"`
	Interface    int    `json:"interface" validate:"gte=1,lte=9"`
	Status       string `json:"status" validate:"omitempty,oneof=sent failed pending"`
}

// ActivityLog is the bounded JSON activity log.
type ActivityLog struct {
	path string
}

// NewActivityLog returns an ActivityLog backed by the JSON file at path.
func NewActivityLog(path string) *ActivityLog {
	return &ActivityLog{path: path}
}

type activityFile struct {
	Entries []LogEntry `json:"entries"`
}

// Entries returns the stored entries, oldest first. Missing or corrupt
// files are empty.
func (l *ActivityLog) Entries() []LogEntry {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}
	var doc activityFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc.Entries
}

// Append stamps and stores a new entry, truncating the message and keeping
// only the most recent entries.
func (l *ActivityLog) Append(entry LogEntry) (LogEntry, error) {
	entry.Timestamp = time.Now().Format(time.RFC3339)
	entry.Message = meshlog.Truncate(entry.Message, meshlog.MaxOutcomeMessage)
	if entry.Status == "" {
		entry.Status = meshlog.StatusSent
	}
	entries := append(l.Entries(), entry)
	if len(entries) > maxActivityEntries {
		entries = entries[len(entries)-maxActivityEntries:]
	}
	if err := l.save(entries); err != nil {
		return LogEntry{}, err
	}
	return entry, nil
}

// Clear drops all stored entries.
func (l *ActivityLog) Clear() error {
	return l.save(nil)
}

func (l *ActivityLog) save(entries []LogEntry) error {
	if entries == nil {
		entries = []LogEntry{}
	}
	data, err := json.MarshalIndent(activityFile{Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal activity log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// Package handler implements the panel's API endpoints on top of echo.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/archive"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/meshlog"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/schedule"
)

const (
	defaultViewerLines  = 500
	defaultActivityCap  = 100
	defaultArchiveLines = 1000
)

// Logs serves the log viewer, the reconstructed activity log and archives.
type Logs struct {
	BotLog   string
	Activity *schedule.ActivityLog
	Archives *archive.Manager
}

// GetLogs returns leveled bot log entries (GET /api/logs?lines&level&search).
func (h *Logs) GetLogs(c echo.Context) error {
	lines := intQuery(c, "lines", defaultViewerLines)
	filter := meshlog.Filter{
		Level:  c.QueryParam("level"),
		Search: c.QueryParam("search"),
	}
	entries, err := meshlog.ReadEntries(h.BotLog, lines, filter)
	if err != nil {
		return response.InternalError(c, "read logs failed", err.Error())
	}
	if entries == nil {
		entries = []meshlog.Entry{}
	}
	return response.OK(c, map[string]any{
		"entries": entries,
		"total":   len(entries),
		"counts":  meshlog.CountLevels(entries),
		"filters": map[string]any{
			"level":  filter.Level,
			"search": filter.Search,
			"lines":  lines,
		},
	}, "")
}

// GetActivity returns broadcast outcomes reconstructed from the bot log
// (GET /api/scheduler/log).
func (h *Logs) GetActivity(c echo.Context) error {
	outcomes, err := meshlog.ReadOutcomes(h.BotLog, defaultActivityCap)
	if err != nil {
		return response.InternalError(c, "parse activity failed", err.Error())
	}
	if outcomes == nil {
		outcomes = []meshlog.Outcome{}
	}
	return response.OK(c, map[string]any{"entries": outcomes}, "")
}

// PostActivity appends a scheduler-reported entry (POST /api/scheduler/log).
func (h *Logs) PostActivity(c echo.Context) error {
	var entry schedule.LogEntry
	if err := c.Bind(&entry); err != nil {
		return response.BadRequest(c, "invalid entry", err.Error())
	}
	if err := c.Validate(&entry); err != nil {
		return response.BadRequest(c, "invalid entry", err.Error())
	}
	stored, err := h.Activity.Append(entry)
	if err != nil {
		return response.InternalError(c, "store entry failed", err.Error())
	}
	return response.OK(c, map[string]any{"entry": stored}, "")
}

// DeleteActivity clears the stored activity log (DELETE /api/scheduler/log).
func (h *Logs) DeleteActivity(c echo.Context) error {
	if err := h.Activity.Clear(); err != nil {
		return response.InternalError(c, "clear activity failed", err.Error())
	}
	return response.OK(c, nil, "Scheduler log cleared")
}

// ListArchives returns stored log archives (GET /api/logs/archives).
func (h *Logs) ListArchives(c echo.Context) error {
	archives, err := h.Archives.List()
	if err != nil {
		return response.InternalError(c, "list archives failed", err.Error())
	}
	if archives == nil {
		archives = []archive.Info{}
	}
	return response.OK(c, map[string]any{
		"archives":       archives,
		"total":          len(archives),
		"retention_days": int(h.Archives.Retention.Hours() / 24),
	}, "")
}

// CreateArchive snapshots the current log (POST /api/logs/archive).
func (h *Logs) CreateArchive(c echo.Context) error {
	name, err := h.Archives.Create()
	if err != nil {
		return response.InternalError(c, "archive failed", err.Error())
	}
	return response.OK(c, map[string]any{"filename": name}, "")
}

// GetArchive returns the tail of one archive
// (GET /api/logs/archives/:filename?lines).
func (h *Logs) GetArchive(c echo.Context) error {
	filename := c.Param("filename")
	lines, err := h.Archives.Read(filename, intQuery(c, "lines", defaultArchiveLines))
	if err != nil {
		return response.NotFound(c, "archive not found", err.Error())
	}
	if lines == nil {
		lines = []string{}
	}
	return response.OK(c, map[string]any{
		"filename": filename,
		"lines":    lines,
		"total":    len(lines),
	}, "")
}

// DeleteArchive removes one archive (DELETE /api/logs/archives/:filename).
func (h *Logs) DeleteArchive(c echo.Context) error {
	filename := c.Param("filename")
	if err := h.Archives.Delete(filename); err != nil {
		return response.NotFound(c, "archive not found", err.Error())
	}
	return response.OK(c, map[string]any{"deleted": filename}, "")
}

func intQuery(c echo.Context, name string, fallback int) int {
	if raw := c.QueryParam(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

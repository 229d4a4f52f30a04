package handler

import (
	"os"

	"github.com/labstack/echo/v4"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/iniconf"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
)

// Config serves the bot's INI config: typed reads, schema-checked writes,
// and the backup/restore cycle around every write.
type Config struct {
	Path      string
	BackupDir string
}

// GetSchema returns the config schema for the editor UI (GET /api/schema).
func (h *Config) GetSchema(c echo.Context) error {
	return response.OK(c, map[string]any{
		"schema":                 iniconf.Schema,
		"order":                  iniconf.SectionOrder,
		"interfaceFields":        iniconf.InterfaceFields,
		"primaryInterfaceFields": iniconf.PrimaryInterfaceFields,
	}, "")
}

// GetConfig returns the whole config with schema-typed values
// (GET /api/config).
func (h *Config) GetConfig(c echo.Context) error {
	f, err := iniconf.Open(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return response.NotFound(c, "config file not found", err.Error())
		}
		return response.InternalError(c, "read config failed", err.Error())
	}
	cfg := map[string]map[string]any{}
	for _, section := range f.Sections() {
		values, _ := f.Section(section)
		typed := map[string]any{}
		for key, raw := range values {
			typed[key] = iniconf.ParseValue(raw, iniconf.LookupField(section, key).Type)
		}
		cfg[section] = typed
	}
	return response.OK(c, map[string]any{"config": cfg, "path": h.Path}, "")
}

// GetSection returns one section with typed values (GET /api/config/:section).
func (h *Config) GetSection(c echo.Context) error {
	f, err := iniconf.Open(h.Path)
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	section := c.Param("section")
	values, ok := f.Section(section)
	if !ok {
		return response.NotFound(c, "section not found", "section '"+section+"' not found")
	}
	typed := map[string]any{}
	for key, raw := range values {
		typed[key] = iniconf.ParseValue(raw, iniconf.LookupField(section, key).Type)
	}
	return response.OK(c, map[string]any{"section": section, "config": typed}, "")
}

// UpdateSection writes values into one section after backing up the config
// (PUT /api/config/:section).
func (h *Config) UpdateSection(c echo.Context) error {
	var updates map[string]any
	if err := c.Bind(&updates); err != nil {
		return response.BadRequest(c, "invalid body", err.Error())
	}
	section := c.Param("section")

	backup, err := iniconf.Backup(h.Path, h.BackupDir)
	if err != nil {
		return response.InternalError(c, "backup failed", err.Error())
	}
	f, err := iniconf.Open(h.Path)
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	if !f.HasSection(section) {
		return response.NotFound(c, "section not found", "section '"+section+"' not found")
	}
	keys := make([]string, 0, len(updates))
	for key, value := range updates {
		spec := iniconf.LookupField(section, key)
		f.Set(section, key, iniconf.FormatValue(value, spec.Type))
		keys = append(keys, key)
	}
	if err := f.Write(); err != nil {
		return response.InternalError(c, "write config failed", err.Error())
	}
	return response.OK(c, map[string]any{
		"section":      section,
		"backup":       backup,
		"updated_keys": keys,
	}, "")
}

type bulkUpdateRequest struct {
	Updates map[string]map[string]any `json:"updates"`
}

// BulkUpdate writes values across sections in one pass (PUT /api/config).
// Unknown sections are skipped rather than created.
func (h *Config) BulkUpdate(c echo.Context) error {
	var req bulkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid body", err.Error())
	}
	backup, err := iniconf.Backup(h.Path, h.BackupDir)
	if err != nil {
		return response.InternalError(c, "backup failed", err.Error())
	}
	f, err := iniconf.Open(h.Path)
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	var updated []string
	for section, updates := range req.Updates {
		if !f.HasSection(section) {
			continue
		}
		for key, value := range updates {
			spec := iniconf.LookupField(section, key)
			f.Set(section, key, iniconf.FormatValue(value, spec.Type))
			updated = append(updated, section+"."+key)
		}
	}
	if err := f.Write(); err != nil {
		return response.InternalError(c, "write config failed", err.Error())
	}
	return response.OK(c, map[string]any{"backup": backup, "updated": updated}, "")
}

// ValidateConfig checks a proposed document against the schema without
// writing anything (POST /api/config/validate).
func (h *Config) ValidateConfig(c echo.Context) error {
	var cfg map[string]map[string]any
	if err := c.Bind(&cfg); err != nil {
		return response.BadRequest(c, "invalid body", err.Error())
	}
	errs, warnings := iniconf.Validate(cfg)
	if errs == nil {
		errs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return response.OK(c, map[string]any{
		"valid":    len(errs) == 0,
		"errors":   errs,
		"warnings": warnings,
	}, "")
}

// CreateBackup snapshots the config on demand (POST /api/config/backup).
func (h *Config) CreateBackup(c echo.Context) error {
	backup, err := iniconf.Backup(h.Path, h.BackupDir)
	if err != nil {
		return response.InternalError(c, "backup failed", err.Error())
	}
	return response.OK(c, map[string]any{"path": backup}, "")
}

// ListBackups returns stored config backups (GET /api/config/backups).
func (h *Config) ListBackups(c echo.Context) error {
	backups, err := iniconf.ListBackups(h.BackupDir)
	if err != nil {
		return response.InternalError(c, "list backups failed", err.Error())
	}
	if backups == nil {
		backups = []iniconf.BackupInfo{}
	}
	return response.OK(c, map[string]any{"backups": backups}, "")
}

// RestoreBackup replaces the config with a stored backup
// (POST /api/config/restore/:filename).
func (h *Config) RestoreBackup(c echo.Context) error {
	filename := c.Param("filename")
	if err := iniconf.Restore(h.Path, h.BackupDir, filename); err != nil {
		return response.NotFound(c, "restore failed", err.Error())
	}
	return response.OK(c, map[string]any{"restored_from": filename}, "")
}

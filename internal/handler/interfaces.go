package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/iniconf"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
)

// Interfaces manages the bot's mesh interface sections (1..9). Interface 1
// is the primary [interface] section and cannot be removed.
type Interfaces struct {
	Path      string
	BackupDir string
}

func (h *Interfaces) open() (*iniconf.File, error) {
	return iniconf.Open(h.Path)
}

func interfaceNum(c echo.Context) (int, bool) {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil || num < 1 || num > iniconf.MaxInterfaces {
		return 0, false
	}
	return num, true
}

// List returns every configured interface (GET /api/interfaces).
func (h *Interfaces) List(c echo.Context) error {
	f, err := h.open()
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	ifaces := iniconf.Interfaces(f)
	return response.OK(c, map[string]any{
		"interfaces": ifaces,
		"total":      len(ifaces),
		"max":        iniconf.MaxInterfaces,
		"next_free":  iniconf.NextFreeInterface(f),
	}, "")
}

// Get returns one interface's typed config (GET /api/interfaces/:num).
func (h *Interfaces) Get(c echo.Context) error {
	num, ok := interfaceNum(c)
	if !ok {
		return response.BadRequest(c, "invalid interface number", "interface number must be 1-9")
	}
	f, err := h.open()
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	cfg, ok := iniconf.Interfaces(f)[num]
	if !ok {
		return response.NotFound(c, "interface not found", "interface "+strconv.Itoa(num)+" is not configured")
	}
	return response.OK(c, map[string]any{"interface": num, "config": cfg}, "")
}

// Update writes values into one interface section, creating the section if
// needed (PUT /api/interfaces/:num). Unknown keys are rejected.
func (h *Interfaces) Update(c echo.Context) error {
	num, ok := interfaceNum(c)
	if !ok {
		return response.BadRequest(c, "invalid interface number", "interface number must be 1-9")
	}
	var updates map[string]any
	if err := c.Bind(&updates); err != nil {
		return response.BadRequest(c, "invalid body", err.Error())
	}
	fields := iniconf.InterfaceFieldsFor(num)
	for key := range updates {
		if _, ok := fields[key]; !ok {
			return response.BadRequest(c, "unknown field", "field '"+key+"' is not an interface setting")
		}
	}

	backup, err := iniconf.Backup(h.Path, h.BackupDir)
	if err != nil {
		return response.InternalError(c, "backup failed", err.Error())
	}
	f, err := h.open()
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	section := iniconf.InterfaceSection(num)
	if !f.HasSection(section) {
		f.AddSection(section)
	}
	for key, value := range updates {
		f.Set(section, key, iniconf.FormatValue(value, fields[key].Type))
	}
	if err := f.Write(); err != nil {
		return response.InternalError(c, "write config failed", err.Error())
	}
	return response.OK(c, map[string]any{"interface": num, "backup": backup}, "")
}

// Create configures the next free secondary slot (POST /api/interfaces).
func (h *Interfaces) Create(c echo.Context) error {
	var updates map[string]any
	if err := c.Bind(&updates); err != nil {
		return response.BadRequest(c, "invalid body", err.Error())
	}

	backup, err := iniconf.Backup(h.Path, h.BackupDir)
	if err != nil {
		return response.InternalError(c, "backup failed", err.Error())
	}
	f, err := h.open()
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	num := iniconf.NextFreeInterface(f)
	if num == 0 {
		return response.BadRequest(c, "no free interface slot", "all interface slots (2-9) are configured")
	}
	section := iniconf.InterfaceSection(num)
	f.AddSection(section)
	fields := iniconf.InterfaceFieldsFor(num)
	for key, spec := range fields {
		value, ok := updates[key]
		if !ok {
			value = spec.Default
		}
		f.Set(section, key, iniconf.FormatValue(value, spec.Type))
	}
	if err := f.Write(); err != nil {
		return response.InternalError(c, "write config failed", err.Error())
	}
	return response.Created(c, map[string]any{"interface": num, "backup": backup}, "")
}

// Delete removes a secondary interface section (DELETE /api/interfaces/:num).
func (h *Interfaces) Delete(c echo.Context) error {
	num, ok := interfaceNum(c)
	if !ok {
		return response.BadRequest(c, "invalid interface number", "interface number must be 1-9")
	}
	if num == 1 {
		return response.BadRequest(c, "cannot delete primary interface", "interface 1 is the primary interface")
	}

	backup, err := iniconf.Backup(h.Path, h.BackupDir)
	if err != nil {
		return response.InternalError(c, "backup failed", err.Error())
	}
	f, err := h.open()
	if err != nil {
		return response.InternalError(c, "read config failed", err.Error())
	}
	section := iniconf.InterfaceSection(num)
	if !f.HasSection(section) {
		return response.NotFound(c, "interface not found", "interface "+strconv.Itoa(num)+" is not configured")
	}
	f.RemoveSection(section)
	if err := f.Write(); err != nil {
		return response.InternalError(c, "write config failed", err.Error())
	}
	return response.OK(c, map[string]any{"interface": num, "backup": backup}, "")
}

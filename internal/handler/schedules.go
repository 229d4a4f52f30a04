package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/schedule"
)

// Schedules exposes CRUD over the user-defined message schedules.
type Schedules struct {
	Store *schedule.Store
}

// List returns all schedules (GET /api/schedules).
func (h *Schedules) List(c echo.Context) error {
	items, err := h.Store.List()
	if err != nil {
		return response.InternalError(c, "read schedules failed", err.Error())
	}
	if items == nil {
		items = []schedule.Item{}
	}
	return response.OK(c, map[string]any{"schedules": items, "total": len(items)}, "")
}

// Get returns one schedule (GET /api/schedules/:id).
func (h *Schedules) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid schedule id", err.Error())
	}
	item, ok, err := h.Store.Get(id)
	if err != nil {
		return response.InternalError(c, "read schedules failed", err.Error())
	}
	if !ok {
		return response.NotFound(c, "schedule not found", "no schedule with id "+strconv.Itoa(id))
	}
	return response.OK(c, map[string]any{"schedule": item}, "")
}

// Create validates and stores a new schedule (POST /api/schedules).
func (h *Schedules) Create(c echo.Context) error {
	var item schedule.Item
	if err := c.Bind(&item); err != nil {
		return response.BadRequest(c, "invalid schedule", err.Error())
	}
	if err := c.Validate(&item); err != nil {
		return response.BadRequest(c, "invalid schedule", err.Error())
	}
	created, err := h.Store.Create(item)
	if err != nil {
		return response.InternalError(c, "store schedule failed", err.Error())
	}
	return response.Created(c, map[string]any{"schedule": created}, "Schedule created")
}

// Update replaces an existing schedule (PUT /api/schedules/:id).
func (h *Schedules) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid schedule id", err.Error())
	}
	var item schedule.Item
	if err := c.Bind(&item); err != nil {
		return response.BadRequest(c, "invalid schedule", err.Error())
	}
	if err := c.Validate(&item); err != nil {
		return response.BadRequest(c, "invalid schedule", err.Error())
	}
	updated, ok, err := h.Store.Update(id, item)
	if err != nil {
		return response.InternalError(c, "store schedule failed", err.Error())
	}
	if !ok {
		return response.NotFound(c, "schedule not found", "no schedule with id "+strconv.Itoa(id))
	}
	return response.OK(c, map[string]any{"schedule": updated}, "Schedule updated")
}

// Delete removes a schedule (DELETE /api/schedules/:id).
func (h *Schedules) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid schedule id", err.Error())
	}
	ok, err := h.Store.Delete(id)
	if err != nil {
		return response.InternalError(c, "delete schedule failed", err.Error())
	}
	if !ok {
		return response.NotFound(c, "schedule not found", "no schedule with id "+strconv.Itoa(id))
	}
	return response.OK(c, nil, "Schedule deleted")
}

package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/exports"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
)

// Exports serves the snapshot files the bot process writes out (node
// database, leaderboard, packet buffer). Missing exports are 503: the bot
// simply has not produced them yet.
type Exports struct {
	NodeDBPath      string
	LeaderboardPath string
	PacketsPath     string
}

// GetNodes returns the mesh node list, most recently heard first
// (GET /api/nodes).
func (h *Exports) GetNodes(c echo.Context) error {
	db, ok := exports.LoadNodeDB(h.NodeDBPath)
	if !ok {
		return response.Unavailable(c, "node database not available", "the bot has not exported its node database yet")
	}
	nodes := db.SortedNodes()
	return response.OK(c, map[string]any{
		"nodes":       nodes,
		"total":       len(nodes),
		"exported_at": db.ExportedAt,
	}, "")
}

// GetNodeInfo returns the bot's own node info per interface
// (GET /api/nodeinfo).
func (h *Exports) GetNodeInfo(c echo.Context) error {
	db, ok := exports.LoadNodeDB(h.NodeDBPath)
	if !ok {
		return response.Unavailable(c, "node database not available", "the bot has not exported its node database yet")
	}
	return response.OK(c, map[string]any{
		"interfaces":  db.Interfaces,
		"exported_at": db.ExportedAt,
	}, "")
}

// GetInterfaceNodeInfo returns one interface's node info
// (GET /api/interfaces/:num/nodeinfo).
func (h *Exports) GetInterfaceNodeInfo(c echo.Context) error {
	num, ok := interfaceNum(c)
	if !ok {
		return response.BadRequest(c, "invalid interface number", "interface number must be 1-9")
	}
	db, dbOK := exports.LoadNodeDB(h.NodeDBPath)
	if !dbOK {
		return response.Unavailable(c, "node database not available", "the bot has not exported its node database yet")
	}
	iface, found := db.Interfaces[strconv.Itoa(num)]
	if !found {
		return response.NotFound(c, "interface not found", "no export for interface "+strconv.Itoa(num))
	}
	return response.OK(c, map[string]any{
		"interface":   num,
		"myNodeInfo":  iface.MyNodeInfo,
		"channels":    iface.Channels,
		"exported_at": db.ExportedAt,
	}, "")
}

// GetLeaderboard returns the formatted node leaderboard
// (GET /api/leaderboard).
func (h *Exports) GetLeaderboard(c echo.Context) error {
	board, updatedAt, ok := exports.LoadLeaderboard(h.LeaderboardPath)
	if !ok {
		return response.Unavailable(c, "leaderboard not available", "the bot has not exported a leaderboard yet")
	}
	return response.OK(c, map[string]any{
		"leaderboard": board,
		"updated_at":  updatedAt,
	}, "")
}

// GetPackets returns captured packets, optionally only those newer than
// ?since (GET /api/packets).
func (h *Exports) GetPackets(c echo.Context) error {
	packets, err := exports.LoadPackets(h.PacketsPath, c.QueryParam("since"))
	if err != nil {
		return response.InternalError(c, "read packets failed", err.Error())
	}
	if packets == nil {
		packets = []map[string]any{}
	}
	return response.OK(c, map[string]any{"packets": packets, "total": len(packets)}, "")
}

// ClearPackets empties the packet buffer (DELETE /api/packets).
func (h *Exports) ClearPackets(c echo.Context) error {
	if err := exports.ClearPackets(h.PacketsPath); err != nil {
		return response.InternalError(c, "clear packets failed", err.Error())
	}
	return response.OK(c, nil, "Packet buffer cleared")
}

package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/bbs"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/meshlog"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
)

const defaultEventLimit = 50

// BBS serves the peer directory and the raw peer-sync event feed.
type BBS struct {
	BotLog    string
	PeersPath string
}

// GetPeers returns the peer directory with computed liveness
// (GET /api/bbs/peers?refresh). With refresh the log is re-parsed and the
// directory atomically re-persisted before rendering; refreshes are assumed
// to run one at a time.
func (h *BBS) GetPeers(c echo.Context) error {
	dir := bbs.Load(h.PeersPath)

	if c.QueryParam("refresh") == "true" {
		events, err := meshlog.ReadEvents(h.BotLog)
		if err != nil {
			return response.InternalError(c, "parse events failed", err.Error())
		}
		dir = bbs.Fold(dir, events)
		if err := bbs.Save(h.PeersPath, dir); err != nil {
			return response.InternalError(c, "save peers failed", err.Error())
		}
		// Reload so the rendered last_updated matches what was committed.
		dir = bbs.Load(h.PeersPath)
	}

	views := bbs.Render(dir, time.Now())
	return response.OK(c, map[string]any{
		"peers":        views,
		"total":        len(views),
		"active":       bbs.CountActive(views),
		"last_updated": dir.LastUpdated,
	}, "")
}

// GetEvents returns recent peer-sync events, newest first
// (GET /api/bbs/events?limit).
func (h *BBS) GetEvents(c echo.Context) error {
	events, err := meshlog.ReadEvents(h.BotLog)
	if err != nil {
		return response.InternalError(c, "parse events failed", err.Error())
	}
	recent := meshlog.RecentEvents(events, intQuery(c, "limit", defaultEventLimit))
	return response.OK(c, map[string]any{
		"events": recent,
		"total":  len(events),
	}, "")
}

// ClearPeers removes the persisted peer directory (DELETE /api/bbs/peers).
func (h *BBS) ClearPeers(c echo.Context) error {
	if err := bbs.Clear(h.PeersPath); err != nil {
		return response.InternalError(c, "clear peers failed", err.Error())
	}
	return response.OK(c, nil, "BBS peers data cleared")
}

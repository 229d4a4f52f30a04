package handler

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
)

const (
	statusTimeout  = 5 * time.Second
	restartTimeout = 30 * time.Second
)

// Service queries and restarts the bot process. A docker container named
// after the service is preferred; systemd is the fallback for bare-metal
// installs.
type Service struct {
	Name string
	Log  zerolog.Logger
}

// GetStatus reports whether the bot is running and under which manager
// (GET /api/service/status).
func (h *Service) GetStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), statusTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "docker", "inspect", "--format", "{{.State.Status}}", h.Name).Output()
	if err == nil {
		state := strings.TrimSpace(string(out))
		return response.OK(c, map[string]any{
			"service": h.Name,
			"manager": "docker",
			"state":   state,
			"running": state == "running",
		}, "")
	}

	out, err = exec.CommandContext(ctx, "systemctl", "is-active", h.Name).Output()
	state := strings.TrimSpace(string(out))
	if state == "" {
		state = "unknown"
	}
	return response.OK(c, map[string]any{
		"service": h.Name,
		"manager": "systemd",
		"state":   state,
		"running": err == nil && state == "active",
	}, "")
}

// Restart restarts the bot (POST /api/service/restart).
func (h *Service) Restart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), restartTimeout)
	defer cancel()

	if out, err := exec.CommandContext(ctx, "docker", "restart", h.Name).CombinedOutput(); err == nil {
		h.Log.Info().Str("service", h.Name).Str("manager", "docker").Msg("service restarted")
		return response.OK(c, map[string]any{"service": h.Name, "manager": "docker"}, "Service restarted")
	} else {
		h.Log.Debug().Err(err).Str("output", strings.TrimSpace(string(out))).Msg("docker restart failed, trying systemd")
	}

	if out, err := exec.CommandContext(ctx, "systemctl", "restart", h.Name).CombinedOutput(); err != nil {
		return response.InternalError(c, "restart failed", strings.TrimSpace(string(out)))
	}
	h.Log.Info().Str("service", h.Name).Str("manager", "systemd").Msg("service restarted")
	return response.OK(c, map[string]any{"service": h.Name, "manager": "systemd"}, "Service restarted")
}

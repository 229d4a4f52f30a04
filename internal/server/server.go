// Package server builds the Echo application: middleware, routes and the
// background archive loop.
package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/archive"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/config"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/handler"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/response"
	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/schedule"
)

// payloadValidator adapts go-playground/validator to echo's Validator.
type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Server holds the Echo app and its dependencies.
type Server struct {
	Echo     *echo.Echo
	Config   *config.Config
	Log      zerolog.Logger
	archives *archive.Manager
}

// New builds the Echo server and registers routes.
func New(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &payloadValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	if origins := cfg.Server.CORSOrigins(); len(origins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		}))
	}
	if cfg.Server.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key,query:api_key",
			Skipper: func(c echo.Context) bool {
				p := c.Path()
				return p == "/" || p == "/health"
			},
			Validator: func(key string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Server.APIKey)) == 1, nil
			},
		}))
	}
	if cfg.Observability.License != "" {
		app, err := newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.Observability.AppName),
			newrelic.ConfigLicense(cfg.Observability.License),
		)
		if err != nil {
			log.Warn().Err(err).Msg("new relic disabled")
		} else {
			e.Use(nrecho.Middleware(app))
		}
	}

	archives := &archive.Manager{
		LogPath:   cfg.Paths.BotLog,
		Dir:       cfg.Paths.Archives,
		Retention: time.Duration(cfg.Archive.RetentionDays) * 24 * time.Hour,
	}

	configH := &handler.Config{Path: cfg.Paths.Config, BackupDir: cfg.Paths.Backups}
	interfacesH := &handler.Interfaces{Path: cfg.Paths.Config, BackupDir: cfg.Paths.Backups}
	schedulesH := &handler.Schedules{Store: schedule.NewStore(cfg.Paths.Schedules)}
	logsH := &handler.Logs{
		BotLog:   cfg.Paths.BotLog,
		Activity: schedule.NewActivityLog(cfg.Paths.SchedulerLog),
		Archives: archives,
	}
	bbsH := &handler.BBS{BotLog: cfg.Paths.BotLog, PeersPath: cfg.Paths.Peers}
	exportsH := &handler.Exports{
		NodeDBPath:      cfg.Paths.NodeDB,
		LeaderboardPath: cfg.Paths.Leaderboard,
		PacketsPath:     cfg.Paths.Packets,
	}
	serviceH := &handler.Service{Name: cfg.Service.Name, Log: log}

	api := e.Group("/api")

	api.GET("/schema", configH.GetSchema)
	api.GET("/config", configH.GetConfig)
	api.PUT("/config", configH.BulkUpdate)
	api.POST("/config/validate", configH.ValidateConfig)
	api.POST("/config/backup", configH.CreateBackup)
	api.GET("/config/backups", configH.ListBackups)
	api.POST("/config/restore/:filename", configH.RestoreBackup)
	api.GET("/config/:section", configH.GetSection)
	api.PUT("/config/:section", configH.UpdateSection)

	api.GET("/interfaces", interfacesH.List)
	api.POST("/interfaces", interfacesH.Create)
	api.GET("/interfaces/:num", interfacesH.Get)
	api.PUT("/interfaces/:num", interfacesH.Update)
	api.DELETE("/interfaces/:num", interfacesH.Delete)
	api.GET("/interfaces/:num/nodeinfo", exportsH.GetInterfaceNodeInfo)

	api.GET("/schedules", schedulesH.List)
	api.POST("/schedules", schedulesH.Create)
	api.GET("/schedules/:id", schedulesH.Get)
	api.PUT("/schedules/:id", schedulesH.Update)
	api.DELETE("/schedules/:id", schedulesH.Delete)

	api.GET("/scheduler/log", logsH.GetActivity)
	api.POST("/scheduler/log", logsH.PostActivity)
	api.DELETE("/scheduler/log", logsH.DeleteActivity)

	api.GET("/logs", logsH.GetLogs)
	api.POST("/logs/archive", logsH.CreateArchive)
	api.GET("/logs/archives", logsH.ListArchives)
	api.GET("/logs/archives/:filename", logsH.GetArchive)
	api.DELETE("/logs/archives/:filename", logsH.DeleteArchive)

	api.GET("/bbs/peers", bbsH.GetPeers)
	api.DELETE("/bbs/peers", bbsH.ClearPeers)
	api.GET("/bbs/events", bbsH.GetEvents)

	api.GET("/nodes", exportsH.GetNodes)
	api.GET("/nodeinfo", exportsH.GetNodeInfo)
	api.GET("/leaderboard", exportsH.GetLeaderboard)
	api.GET("/packets", exportsH.GetPackets)
	api.DELETE("/packets", exportsH.ClearPackets)

	api.GET("/service/status", serviceH.GetStatus)
	api.POST("/service/restart", serviceH.Restart)

	authMode := "open"
	if cfg.Server.APIKey != "" {
		authMode = "api-key"
	}
	e.GET("/health", func(c echo.Context) error {
		return response.OK(c, map[string]any{
			"status": "ok",
			"env":    cfg.Primary.Env,
			"auth":   authMode,
		}, "")
	})
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, "<html><body><h1>Mesh Panel</h1><p>API is up. See /health.</p></body></html>")
	})

	return &Server{Echo: e, Config: cfg, Log: log, archives: archives}, nil
}

// Start runs the archive loop and the HTTP server. Blocks until the context
// is cancelled or the server fails; on cancel the server shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	go s.archives.Run(ctx, time.Duration(s.Config.Archive.IntervalSeconds)*time.Second, s.Log)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.Echo.Server.ReadTimeout = time.Duration(s.Config.Server.ReadTimeout) * time.Second
	s.Echo.Server.WriteTimeout = time.Duration(s.Config.Server.WriteTimeout) * time.Second
	s.Echo.Server.IdleTimeout = time.Duration(s.Config.Server.IdleTimeout) * time.Second

	s.Log.Info().Str("port", s.Config.Server.Port).Msg("server listening")
	err := s.Echo.Start(":" + s.Config.Server.Port)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

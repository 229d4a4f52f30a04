// Package config loads the panel's own configuration from the environment.
// (The bot's INI config that the panel edits lives in internal/iniconf.)
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the full panel configuration. Values come from MESHPANEL_*
// environment variables layered over the defaults below, e.g.
// MESHPANEL_SERVER_PORT=8080 or MESHPANEL_PATHS_BOTLOG=/var/log/meshbot.log.
type Config struct {
	Primary       Primary       `koanf:"primary" validate:"required"`
	Server        Server        `koanf:"server" validate:"required"`
	Paths         Paths         `koanf:"paths" validate:"required"`
	Archive       Archive       `koanf:"archive" validate:"required"`
	Service       Service       `koanf:"service" validate:"required"`
	Observability Observability `koanf:"observability"`
}

type Primary struct {
	Env      string `koanf:"env" validate:"required,oneof=development production"`
	LogLevel string `koanf:"loglevel" validate:"required"`
}

type Server struct {
	Port         string `koanf:"port" validate:"required"`
	ReadTimeout  int    `koanf:"readtimeout" validate:"required"`
	WriteTimeout int    `koanf:"writetimeout" validate:"required"`
	IdleTimeout  int    `koanf:"idletimeout" validate:"required"`
	// CORS is a comma-separated origin list; empty means same-origin only.
	CORS   string `koanf:"cors"`
	APIKey string `koanf:"apikey"`
}

// CORSOrigins splits the configured origin list.
func (s Server) CORSOrigins() []string {
	if s.CORS == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(s.CORS, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Paths locates every file the panel reads or writes.
type Paths struct {
	Config       string `koanf:"config" validate:"required"`
	Backups      string `koanf:"backups" validate:"required"`
	BotLog       string `koanf:"botlog" validate:"required"`
	Schedules    string `koanf:"schedules" validate:"required"`
	SchedulerLog string `koanf:"schedulerlog" validate:"required"`
	Archives     string `koanf:"archives" validate:"required"`
	Peers        string `koanf:"peers" validate:"required"`
	NodeDB       string `koanf:"nodedb" validate:"required"`
	Leaderboard  string `koanf:"leaderboard" validate:"required"`
	Packets      string `koanf:"packets" validate:"required"`
}

type Archive struct {
	IntervalSeconds int `koanf:"interval" validate:"required,gt=0"`
	RetentionDays   int `koanf:"retention" validate:"required,gt=0"`
}

// Service names the bot process the panel can query and restart.
type Service struct {
	Name string `koanf:"name" validate:"required"`
}

// Observability enables the New Relic agent when a license key is set.
type Observability struct {
	License string `koanf:"license"`
	AppName string `koanf:"appname"`
}

const envPrefix = "MESHPANEL_"

// Load reads the configuration from the environment over the defaults and
// validates it.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Observability.AppName == "" {
		cfg.Observability.AppName = "meshpanel-" + cfg.Primary.Env
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func defaults() Config {
	return Config{
		Primary: Primary{Env: "production", LogLevel: "info"},
		Server: Server{
			Port:         "8000",
			ReadTimeout:  15,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Paths: Paths{
			Config:       "/opt/meshing-around/config.ini",
			Backups:      "/opt/meshing-around/webgui/backups",
			BotLog:       "/opt/meshing-around/logs/meshbot.log",
			Schedules:    "/app/data/schedules.json",
			SchedulerLog: "/app/data/scheduler_log.json",
			Archives:     "/app/log_archives",
			Peers:        "/app/data/bbs_peers.json",
			NodeDB:       "/app/data/nodedb.json",
			Leaderboard:  "/app/data/leaderboard_webgui.json",
			Packets:      "/opt/meshing-around/data/packets.json",
		},
		Archive: Archive{IntervalSeconds: 3600, RetentionDays: 30},
		Service: Service{Name: "meshbot"},
	}
}

// Package config provides configuration helpers and TOML parsing.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	App     AppConfig     `toml:"app"`
	Plot    PlotConfig    `toml:"plot"`
	Server  ServerConfig  `toml:"server"`
	Project ProjectConfig `toml:"project"`
}

// AppConfig maps general settings.
type AppConfig struct {
	LogLevel *string `toml:"log-level"`
}

// PlotConfig maps chart settings.
type PlotConfig struct {
	Backend      *string `toml:"backend"`
	Acceleration *bool   `toml:"acceleration"`
	Width        *int    `toml:"width"`
	Height       *int    `toml:"height"`
}

// ServerConfig maps the websocket listener settings.
type ServerConfig struct {
	Listen *string `toml:"listen"`
}

// ProjectConfig maps project storage settings.
type ProjectConfig struct {
	Dir      *string `toml:"dir"`
	Autosave *int    `toml:"autosave"`
}

// Config is the resolved configuration after defaults, file and flags.
type Config struct {
	LogLevel     string
	PlotBackend  string
	Acceleration bool
	Width        int
	Height       int
	Listen       string
	ProjectDir   string
	// Autosave is the interval in seconds; zero disables it.
	Autosave int
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		LogLevel:     "info",
		PlotBackend:  "QtCharts",
		Acceleration: true,
		Width:        800,
		Height:       500,
		Listen:       "127.0.0.1:8765",
		ProjectDir:   DefaultProjectDir(),
	}
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, errors.New("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, errors.Wrap(err, "failed to stat config")
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, errors.Wrap(err, "failed to decode config")
	}
	return cfg, nil
}

// Apply copies the values present in the file over c.
func (f FileConfig) Apply(c *Config) {
	setString(&c.LogLevel, f.App.LogLevel)
	setString(&c.PlotBackend, f.Plot.Backend)
	if f.Plot.Acceleration != nil {
		c.Acceleration = *f.Plot.Acceleration
	}
	setInt(&c.Width, f.Plot.Width)
	setInt(&c.Height, f.Plot.Height)
	setString(&c.Listen, f.Server.Listen)
	setString(&c.ProjectDir, f.Project.Dir)
	setInt(&c.Autosave, f.Project.Autosave)
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("plot size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.PlotBackend == "" {
		return errors.New("plot backend must not be empty")
	}
	if c.Autosave < 0 {
		return errors.New("autosave must be >= 0")
	}
	return nil
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

// DefaultTemplate is written by the config command when no file exists.
func DefaultTemplate() string {
	d := Defaults()
	return `# qreflectometry configuration
# Uncomment a value to enable it. CLI flags override config values.

[app]
# log-level = "info"      # debug, info or error

[plot]
# backend = "` + d.PlotBackend + `"
# acceleration = true
# width = 800             # size of exported charts
# height = 500

[server]
# listen = "` + d.Listen + `"

[project]
# dir = "` + d.ProjectDir + `"
# autosave = 0            # seconds between saves, 0 disables
`
}

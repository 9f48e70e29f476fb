// Package config loads the optional client settings file.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-isatty"
)

// Color settings.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Transports.
const (
	TransportTCP = "tcp"
	TransportWS  = "ws"
)

// Config holds the client settings.
type Config struct {
	// Name is sent to the server after connecting. Empty means ask on stdin.
	Name      string
	Color     string
	Transport string
	LogLevel  string
}

type fileConfig struct {
	Name      string `toml:"name"`
	Color     string `toml:"color"`
	Transport string `toml:"transport"`
	LogLevel  string `toml:"log_level"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Color:     ColorAuto,
		Transport: TransportTCP,
		LogLevel:  "info",
	}
}

// Load overlays the keys present in the TOML file at path on Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load client config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load client config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("color") {
		cfg.Color = strings.ToLower(strings.TrimSpace(raw.Color))
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.ToLower(strings.TrimSpace(raw.Transport))
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func Validate(cfg Config) error {
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", cfg.Color)
	}
	switch cfg.Transport {
	case TransportTCP, TransportWS:
	default:
		return fmt.Errorf("invalid transport %q (want tcp or ws)", cfg.Transport)
	}
	return nil
}

// UseColor resolves the color setting for output w. "auto" enables color
// only when w is a terminal.
func (c Config) UseColor(w io.Writer) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the per-user YAML configuration, validates it against
// an embedded JSON schema and applies environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"gridtrace/internal/grid"
	"gridtrace/internal/interact"
	"gridtrace/internal/vector"
	"gridtrace/internal/viewport"
)

//go:embed schema.json
var schemaJSON []byte

// CanvasConfig holds grid limits and zoom behaviour.
type CanvasConfig struct {
	MaxRows     int     `yaml:"max_rows"`
	MaxCols     int     `yaml:"max_cols"`
	DefaultRows int     `yaml:"default_rows"`
	DefaultCols int     `yaml:"default_cols"`
	ZoomFactor  float64 `yaml:"zoom_factor"`
	MinScale    float64 `yaml:"min_scale"`
	MaxScale    float64 `yaml:"max_scale"`
	DesignWidth float64 `yaml:"design_width"`
}

// PaletteConfig holds colour strings per semantic role.
type PaletteConfig struct {
	GridStroke        string `yaml:"grid_stroke"`
	RowFill           string `yaml:"row_fill"`
	RowStroke         string `yaml:"row_stroke"`
	SelectedRowFill   string `yaml:"selected_row_fill"`
	SelectedRowStroke string `yaml:"selected_row_stroke"`
	ColStroke         string `yaml:"col_stroke"`
	SelectedColStroke string `yaml:"selected_col_stroke"`
	InactiveStroke    string `yaml:"inactive_stroke"`
}

type ExportConfig struct {
	Dir       string  `yaml:"dir"`
	Margin    float64 `yaml:"margin"`
	RowLabels bool    `yaml:"row_labels"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// TelemetryConfig controls the opt-in usage events and crash uploads. Both
// stay off unless OptIn is set and a URL is configured.
type TelemetryConfig struct {
	OptIn     bool   `yaml:"opt_in"`
	EventsURL string `yaml:"events_url"`
	CrashURL  string `yaml:"crash_url"`
}

// AppConfig is the user-editable configuration. Environment variables are
// read-only overrides applied on Load and never written back.
type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Canvas        CanvasConfig    `yaml:"canvas"`
	Palette       PaletteConfig   `yaml:"palette"`
	Export        ExportConfig    `yaml:"export"`
	Logging       LoggingConfig   `yaml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	lim := grid.DefaultLimits()
	return AppConfig{
		ConfigVersion: 1,
		Canvas: CanvasConfig{
			MaxRows:     lim.MaxRows,
			MaxCols:     lim.MaxCols,
			DefaultRows: grid.DefaultCount,
			DefaultCols: grid.DefaultCount,
			ZoomFactor:  viewport.DefaultZoomFactor,
		},
		Palette: PaletteConfig{
			GridStroke:        "#4d2d52dd",
			RowFill:           "rgba(200, 200, 200, .05)",
			RowStroke:         "#f49d376a",
			SelectedRowFill:   "#fada5e4a",
			SelectedRowStroke: "#f49d37dd",
			ColStroke:         "#3c6c82aa",
			SelectedColStroke: "#083d77dd",
			InactiveStroke:    "#aaaaaaaa",
		},
		Export:  ExportConfig{Dir: ".", Margin: 20, RowLabels: true},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath = "GT_CONFIG"
	EnvMaxRows    = "GT_MAX_ROWS"
	EnvMaxCols    = "GT_MAX_COLS"
	EnvZoomFactor = "GT_ZOOM_FACTOR"
	EnvExportDir  = "GT_EXPORT_DIR"
	EnvLogLevel   = "GT_LOG_LEVEL"
	EnvLogFormat  = "GT_LOG_FORMAT"
	EnvLogSource  = "GT_LOG_SOURCE"
	EnvLogFile    = "GT_LOG_FILE"
	EnvTelemetry  = "GT_TELEMETRY_OPT_IN"
	EnvEventsURL  = "GT_TELEMETRY_URL"
	EnvCrashURL   = "GT_CRASH_UPLOAD_URL"
)

var envKeys = map[string]string{
	"canvas.max_rows":      EnvMaxRows,
	"canvas.max_cols":      EnvMaxCols,
	"canvas.zoom_factor":   EnvZoomFactor,
	"export.dir":           EnvExportDir,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
	"telemetry.opt_in":     EnvTelemetry,
	"telemetry.events_url": EnvEventsURL,
	"telemetry.crash_url":  EnvCrashURL,
}

// ErrInvalid wraps schema violations found in the config file.
var ErrInvalid = errors.New("invalid config")

// ConfigPath returns the per-user config file path. GT_CONFIG replaces it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GridTrace")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GridTrace")
	default:
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config", "gridtrace")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file if present, validates it, lays it over the
// defaults and applies environment overrides. On a validation or parse error
// the returned config is still usable: defaults plus env overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := Parse(data, &cfg); err != nil {
			cfg = Defaults()
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Parse validates a YAML document and decodes it over cfg.
func Parse(data []byte, cfg *AppConfig) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return nil
	}
	if err := validate(doc); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	normalize(cfg)
	return nil
}

func validate(doc any) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// normalize puts zero or blank fields back to their defaults.
func normalize(cfg *AppConfig) {
	def := Defaults()
	c := &cfg.Canvas
	if c.MaxRows < 1 {
		c.MaxRows = def.Canvas.MaxRows
	}
	if c.MaxCols < 1 {
		c.MaxCols = def.Canvas.MaxCols
	}
	if c.DefaultRows < 1 {
		c.DefaultRows = def.Canvas.DefaultRows
	}
	if c.DefaultCols < 1 {
		c.DefaultCols = def.Canvas.DefaultCols
	}
	if c.ZoomFactor <= 1 {
		c.ZoomFactor = def.Canvas.ZoomFactor
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	if strings.TrimSpace(cfg.Export.Dir) == "" {
		cfg.Export.Dir = def.Export.Dir
	}
}

// Save writes cfg to the user config file.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvMaxRows)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.MaxRows = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxCols)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.MaxCols = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvZoomFactor)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 1 {
			cfg.Canvas.ZoomFactor = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetry)); v != "" {
		cfg.Telemetry.OptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEventsURL)); v != "" {
		cfg.Telemetry.EventsURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCrashURL)); v != "" {
		cfg.Telemetry.CrashURL = v
	}
}

// EnvOverrideFor returns the env var name if the dotted key is currently
// overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Colors parses the palette strings. Colours that do not parse keep their
// default.
func (p PaletteConfig) Colors() grid.Colors {
	c := grid.DefaultColors()
	set := func(dst *vector.Color, s string) {
		if col, err := vector.ParseColor(s); err == nil {
			*dst = col
		}
	}
	set(&c.GridStroke, p.GridStroke)
	set(&c.RowFill, p.RowFill)
	set(&c.RowStroke, p.RowStroke)
	set(&c.SelectedRowFill, p.SelectedRowFill)
	set(&c.SelectedRowStroke, p.SelectedRowStroke)
	set(&c.ColStroke, p.ColStroke)
	set(&c.SelectedColStroke, p.SelectedColStroke)
	set(&c.InactiveStroke, p.InactiveStroke)
	return c
}

// Options converts the config into controller options.
func (cfg AppConfig) Options() interact.Options {
	c := cfg.Canvas
	return interact.Options{
		Limits:      grid.Limits{MaxRows: c.MaxRows, MaxCols: c.MaxCols},
		DefaultRows: c.DefaultRows,
		DefaultCols: c.DefaultCols,
		ZoomFactor:  c.ZoomFactor,
		MinScale:    c.MinScale,
		MaxScale:    c.MaxScale,
		DesignWidth: c.DesignWidth,
		Palette:     grid.NewPalette(cfg.Palette.Colors()),
	}
}

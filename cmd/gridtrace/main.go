/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gridtrace/internal/config"
	"gridtrace/internal/crash"
	"gridtrace/internal/export"
	"gridtrace/internal/imageimport"
	"gridtrace/internal/interact"
	applog "gridtrace/internal/log"
	"gridtrace/internal/telemetry"
	"gridtrace/internal/tui"
	"gridtrace/internal/ui"
	"gridtrace/internal/version"
)

func usage() {
	fmt.Println("GridTrace - chart grid overlay")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gridtrace version|-v|--version     Show version")
	fmt.Println("  gridtrace ui [<image>]             Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  gridtrace tui [<image>]            Launch terminal UI")
	fmt.Println("  gridtrace config                   Print config path and effective settings")
	fmt.Println("  gridtrace config init              Write the defaults to the config file")
}

func main() {
	args := os.Args
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("GridTrace")
		fmt.Println(version.String())
	case "config":
		if err := configCmd(args[2:]); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "ui", "tui":
		var image string
		if len(args) >= 3 {
			image = args[2]
		}
		if err := run(args[1], image); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

// run loads the configuration, builds the controller and hands it to the
// chosen front end.
func run(mode, image string) error {
	cfg, cfgErr := config.Load()
	logOpts := applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	}
	if mode == "tui" {
		// the terminal belongs to bubbletea
		logOpts.Console = io.Discard
	}
	applog.Init(logOpts)
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config ignored, using defaults", slog.Any("err", cfgErr))
	}

	tel := telemetry.New(telemetry.Config{
		OptIn:     cfg.Telemetry.OptIn,
		EventsURL: cfg.Telemetry.EventsURL,
		CrashURL:  cfg.Telemetry.CrashURL,
	})
	telemetry.SetDefault(tel)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		tel.Flush(ctx)
		tel.Close()
	}()

	opts := cfg.Options()
	opts.Logger = applog.WithComponent("interact")
	ctrl := interact.New(opts)
	defer crash.Recover(ctrl.Describe)

	session := telemetry.StartSession(tel, mode)
	ctrl.OnEvent(session.Count)
	defer func() {
		session.End(map[string]any{"grids": ctrl.Registry().Len(), "pictures": len(ctrl.Pictures())})
	}()

	if image != "" {
		img, err := imageimport.DecodeFile(image)
		if err != nil {
			return fmt.Errorf("load %s: %w", image, err)
		}
		ctrl.AddPicture(img)
		l.Info("picture loaded", slog.String("path", image))
	}

	exp := export.DefaultOptions()
	exp.Margin = cfg.Export.Margin
	exp.Labels = cfg.Export.RowLabels

	l.Debug("start", slog.String("mode", mode))
	switch mode {
	case "tui":
		return tui.Run(ctrl, tui.Config{ExportDir: cfg.Export.Dir, Export: exp})
	default:
		return ui.Run(ui.Options{Controller: ctrl, ExportDir: cfg.Export.Dir, Export: exp})
	}
}

func configCmd(args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		switch args[0] {
		case "init":
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(config.Defaults()); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		default:
			return fmt.Errorf("unknown config command %q", args[0])
		}
	}

	cfg, loadErr := config.Load()
	fmt.Println("Config file:", path)
	if loadErr != nil {
		fmt.Println("Warning:", loadErr)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	fmt.Println()
	fmt.Print(string(data))

	var overridden []string
	for _, key := range []string{
		"canvas.max_rows", "canvas.max_cols", "canvas.zoom_factor", "export.dir",
		"logging.level", "logging.format", "logging.source", "logging.file",
		"telemetry.opt_in", "telemetry.events_url", "telemetry.crash_url",
	} {
		if name, ok := config.EnvOverrideFor(key); ok {
			overridden = append(overridden, fmt.Sprintf("%s (%s)", key, name))
		}
	}
	if len(overridden) > 0 {
		sort.Strings(overridden)
		fmt.Println()
		fmt.Println("Overridden by environment:", strings.Join(overridden, ", "))
	}
	return nil
}

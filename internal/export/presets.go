/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package export

import (
	"fmt"
	"strings"
	"time"

	"gridtrace/internal/interact"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls a multi-format export of one scene. All files share
// the timestamped base name from DefaultName.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: png, pdf, svg; empty means preset defaults
	Options Options  // Scale is multiplied by the preset scale
	OutDir  string
}

// Batch writes the scene once per format and returns the written paths. It
// stops at the first failure.
func Batch(s interact.Scene, opt BatchOptions, t time.Time) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	o := opt.Options.normalized()
	o.Scale *= presetScale(opt.Preset)
	dir := opt.OutDir
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}

	var written []string
	seen := map[string]bool{}
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case "png", "pdf", "svg":
		default:
			return written, fmt.Errorf("%w: %q", ErrFormat, f)
		}
		path := DefaultName(dir, f, t)
		if err := File(path, s, o); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"png"}
	}
}

// presetScale doubles the resolution for print.
func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}

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
	"bytes"
	"encoding/xml"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gridtrace/internal/interact"
)

func TestWriteSVG(t *testing.T) {
	c, s := sceneWithGrid(t)
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s, DefaultOptions()); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `width="164" height="134"`) {
		t.Fatalf("unexpected document size:\n%s", out[:200])
	}
	// background + 5 rows + border
	if n := strings.Count(out, "<rect "); n != 7 {
		t.Fatalf("rects = %d, want 7", n)
	}
	if n := strings.Count(out, "<line "); n != 6 {
		t.Fatalf("dividers = %d, want 6", n)
	}
	if n := strings.Count(out, "<text "); n != 10 {
		t.Fatalf("labels = %d, want 10", n)
	}
	if strings.Contains(out, "stroke-dasharray") {
		t.Fatalf("selected border should be solid")
	}
	if err := xml.Unmarshal(buf.Bytes(), new(struct{})); err != nil {
		t.Fatalf("not well-formed XML: %v", err)
	}

	c.Registry().Deselect()
	c.Resize(400, 300)
	c.AddPicture(image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	buf.Reset()
	if err := WriteSVG(&buf, c.Scene(), Options{Scale: 1}); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out = buf.String()
	if !strings.Contains(out, `stroke-dasharray="3,3"`) {
		t.Fatalf("inactive border should be dashed")
	}
	if !strings.Contains(out, "data:image/png;base64,") {
		t.Fatalf("picture not embedded")
	}
	if strings.Contains(out, "<text ") {
		t.Fatalf("labels written with Labels off")
	}
}

func TestWriteSVG_Empty(t *testing.T) {
	if err := WriteSVG(io.Discard, interact.Scene{}, DefaultOptions()); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty scene: %v, want ErrEmpty", err)
	}
}

func TestBatch_Presets(t *testing.T) {
	_, s := sceneWithGrid(t)
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, tc := range []struct {
		preset PresetName
		exts   []string
	}{
		{PresetWeb, []string{".png", ".svg"}},
		{PresetPrint, []string{".pdf", ".png"}},
		{"", []string{".png"}},
	} {
		dir := t.TempDir()
		paths, err := Batch(s, BatchOptions{Preset: tc.preset, Options: DefaultOptions(), OutDir: dir}, at)
		if err != nil {
			t.Fatalf("%q: %v", tc.preset, err)
		}
		if len(paths) != len(tc.exts) {
			t.Fatalf("%q wrote %v", tc.preset, paths)
		}
		for i, p := range paths {
			if filepath.Ext(p) != tc.exts[i] {
				t.Fatalf("%q path %d = %s", tc.preset, i, p)
			}
			if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
				t.Fatalf("missing output %s: %v", p, err)
			}
		}
	}
}

func TestBatch_FormatsAndErrors(t *testing.T) {
	_, s := sceneWithGrid(t)
	dir := t.TempDir()
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	paths, err := Batch(s, BatchOptions{Formats: []string{" SVG", "svg", "pdf"}, OutDir: dir}, at)
	if err != nil || len(paths) != 2 {
		t.Fatalf("Batch = %v, %v", paths, err)
	}
	if _, err := Batch(s, BatchOptions{Formats: []string{"cbz"}, OutDir: dir}, at); !errors.Is(err, ErrFormat) {
		t.Fatalf("cbz: %v, want ErrFormat", err)
	}
	if _, err := Batch(interact.Scene{}, BatchOptions{OutDir: dir}, at); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty: %v, want ErrEmpty", err)
	}
}

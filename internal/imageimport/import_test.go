/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package imageimport

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"gridtrace/internal/vector"
)

func sample(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 90, A: 255})
		}
	}
	return img
}

func TestDecode_Formats(t *testing.T) {
	src := sample(6, 4)
	var pngBuf, jpgBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(&jpgBuf, src, nil); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, src); err != nil {
		t.Fatal(err)
	}
	for name, c := range map[string]*bytes.Buffer{"png": &pngBuf, "jpeg": &jpgBuf, "bmp": &bmpBuf} {
		img, format, err := Decode(c)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if format != name {
			t.Fatalf("format = %q, want %q", format, name)
		}
		if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
			t.Fatalf("%s bounds = %v", name, b)
		}
	}
}

func TestDecode_Rejects(t *testing.T) {
	if _, err := DecodeBytes(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := DecodeBytes([]byte("hello, world")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("text: %v", err)
	}
}

func TestFromClipboardText(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sample(3, 5)); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "ref.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	inputs := []string{
		path,
		"  " + path + "\n",
		"file://" + filepath.ToSlash(path),
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}
	for _, in := range inputs {
		img, err := FromClipboardText(in)
		if err != nil {
			t.Fatalf("FromClipboardText(%.40q): %v", in, err)
		}
		if img.Bounds().Dy() != 5 {
			t.Fatalf("bounds = %v", img.Bounds())
		}
	}

	bad := map[string]error{
		"":                                ErrEmpty,
		"just some words":                 ErrNotImage,
		"data:text/plain;base64,aGVsbG8=": ErrNotImage,
		"data:image/png;base64,@@@":       ErrNotImage,
		t.TempDir():                       ErrNotImage,
	}
	for in, want := range bad {
		if _, err := FromClipboardText(in); !errors.Is(err, want) {
			t.Fatalf("FromClipboardText(%q) = %v, want %v", in, err, want)
		}
	}
}

func TestFit(t *testing.T) {
	view := vector.R(0, 0, 800, 600)
	cases := []struct {
		name string
		w, h int
		want vector.Rect
	}{
		{"landscape", 100, 50, vector.R(60, 160, 730, 330)},
		{"square", 10, 10, vector.R(60, -40, 730, 730)},
		{"portrait", 300, 600, vector.R(310, 60, 230, 530)},
	}
	for _, c := range cases {
		if got := Fit(c.w, c.h, view); got != c.want {
			t.Fatalf("%s: Fit = %+v, want %+v", c.name, got, c.want)
		}
	}
	if got := Fit(0, 10, view); got.W != 0 || got.H != 0 {
		t.Fatalf("degenerate image placed as %+v", got)
	}
	shifted := Fit(100, 50, vector.R(-100, 20, 800, 600))
	if shifted.X != -40 || shifted.Y != 180 {
		t.Fatalf("view origin ignored: %+v", shifted)
	}
}

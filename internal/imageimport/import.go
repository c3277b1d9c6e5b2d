/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package imageimport decodes pasted or dropped reference images and places
// them on the canvas.
package imageimport

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"gridtrace/internal/vector"
)

var (
	// ErrEmpty means there was nothing to decode.
	ErrEmpty = errors.New("imageimport: empty input")
	// ErrNotImage means the input is not in a supported image format.
	ErrNotImage = errors.New("imageimport: not an image")
)

// MaxBytes caps how much is read from a reader or file.
const MaxBytes = 64 << 20

// Padding is the offset of a placed picture from the fitted position.
const Padding = 60

// Decode reads one image from r. PNG, JPEG, GIF, BMP, TIFF and WebP are
// supported.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("imageimport: read: %w", err)
	}
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, "", err
	}
	_, format, _ := image.DecodeConfig(bytes.NewReader(data))
	return img, format, nil
}

// DecodeBytes decodes an in-memory blob.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, nil
}

// DecodeFile decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageimport: %w", err)
	}
	defer f.Close()
	img, _, err := Decode(f)
	return img, err
}

// FromClipboardText interprets clipboard text as an image reference: a
// data: URL with base64 payload, a file:// URL or a plain file path.
func FromClipboardText(text string) (image.Image, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmpty
	}
	switch {
	case strings.HasPrefix(text, "data:"):
		return fromDataURL(text)
	case strings.HasPrefix(text, "file://"):
		u, err := url.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		return DecodeFile(u.Path)
	}
	if strings.ContainsAny(text, "\n\r") {
		return nil, ErrNotImage
	}
	if fi, err := os.Stat(text); err != nil || fi.IsDir() {
		return nil, ErrNotImage
	}
	return DecodeFile(text)
}

func fromDataURL(s string) (image.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok || !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrNotImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return DecodeBytes(data)
}

// Fit places an imgW x imgH picture inside view: portrait images take the
// full view height, others the full width, both centred and then shifted by
// Padding and shrunk by Padding+10.
func Fit(imgW, imgH int, view vector.Rect) vector.Rect {
	if imgW <= 0 || imgH <= 0 || view.W <= 0 || view.H <= 0 {
		return vector.R(view.X+view.W/2, view.Y+view.H/2, 0, 0)
	}
	var w, h float64
	if imgH > imgW {
		h = view.H
		w = float64(imgW) / float64(imgH) * h
	} else {
		w = view.W
		h = float64(imgH) / float64(imgW) * w
	}
	return vector.R(
		view.X+(view.W-w)/2+Padding,
		view.Y+(view.H-h)/2+Padding,
		max(0, w-Padding-10),
		max(0, h-Padding-10),
	)
}

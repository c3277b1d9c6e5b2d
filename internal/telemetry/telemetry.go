/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


// Package telemetry provides a tiny, privacy-respecting, opt-in event sender
// for anonymous usage counts and optional crash uploads. Events carry counts
// and modes only, never picture data or grid geometry.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "gridtrace/internal/log"
	"gridtrace/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// Environment variables (read by FromEnv):
//   - GT_TELEMETRY_OPT_IN: "1", "true", "yes" to enable
//   - GT_TELEMETRY_URL: URL to POST JSON events to
//   - GT_CRASH_UPLOAD_URL: URL to POST crash reports to
//   - GT_TELEMETRY_TIMEOUT: request timeout as a Go duration, default 1.5s
//
// Without URLs nothing is sent even when opted in.
type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
}

const defaultTimeout = 1500 * time.Millisecond

func FromEnv() Config {
	cfg := Config{
		OptIn:     parseBool(os.Getenv("GT_TELEMETRY_OPT_IN")),
		EventsURL: strings.TrimSpace(os.Getenv("GT_TELEMETRY_URL")),
		CrashURL:  strings.TrimSpace(os.Getenv("GT_CRASH_UPLOAD_URL")),
		Timeout:   defaultTimeout,
	}
	if v := strings.TrimSpace(os.Getenv("GT_TELEMETRY_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Event is the JSON body of one usage event.
type Event struct {
	Name    string         `json:"name"`
	TS      string         `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

// Client sends events from a background goroutine. The queue is bounded and
// events are dropped when it is full or a request fails.
type Client struct {
	cfg     Config
	log     *slog.Logger
	cli     *http.Client
	q       chan Event
	pending sync.WaitGroup
	once    sync.Once
	closed  chan struct{}
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the package-level client, creating it from the environment
// on first use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// SetDefault installs c as the package-level client and closes the previous
// one.
func SetDefault(c *Client) {
	defaultMu.Lock()
	old := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	if old != nil && old != c {
		old.Close()
	}
}

// New constructs a client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan Event, 64),
		closed: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether events will be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Send queues an event if enabled. Safe to call from anywhere.
func (c *Client) Send(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := Event{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Props:   props,
	}
	c.pending.Add(1)
	select {
	case c.q <- ev:
	default:
		c.pending.Done()
		c.log.Debug("telemetry queue full, event dropped", slog.String("event", name))
	}
}

// Flush waits until queued events are sent or ctx is done.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Close stops the background goroutine. Queued events are discarded.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.closed) })
}

func (c *Client) loop() {
	for {
		select {
		case <-c.closed:
			return
		case ev := <-c.q:
			c.post(c.cfg.EventsURL, "application/json", c.encode(ev))
			c.pending.Done()
		}
	}
}

func (c *Client) encode(ev Event) []byte {
	buf, err := json.Marshal(ev)
	if err != nil {
		c.log.Debug("telemetry encode failed", slog.String("event", ev.Name), slog.Any("err", err))
		return nil
	}
	return buf
}

func (c *Client) post(url, contentType string, body []byte) bool {
	if body == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		c.log.Debug("telemetry send failed", slog.String("url", url), slog.Any("err", err))
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < 300
}

// UploadCrash posts a crash report synchronously, since the process is about
// to exit. It reports whether the server accepted it.
func (c *Client) UploadCrash(report []byte) bool {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return false
	}
	return c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", report)
}

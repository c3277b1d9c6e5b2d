/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Session aggregates counts for one run of a front end and reports them as a
// single event when it ends.
type Session struct {
	mode    string
	start   time.Time
	mu      sync.Mutex
	counts  map[string]int
	ended   atomic.Bool
	now     func() time.Time
	reports *Client
}

// StartSession sends a session_start event and returns the session.
func StartSession(c *Client, mode string) *Session {
	s := &Session{mode: mode, counts: map[string]int{}, now: time.Now, reports: c}
	s.start = s.now()
	c.Send("session_start", map[string]any{"mode": mode})
	return s
}

// Count adds one to the named counter.
func (s *Session) Count(name string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.counts[name]++
	s.mu.Unlock()
}

// Counts returns a copy of the counters.
func (s *Session) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// End sends the session_end event once, with the counters and extra props.
func (s *Session) End(extra map[string]any) {
	if s == nil || s.ended.Swap(true) {
		return
	}
	props := map[string]any{
		"mode":       s.mode,
		"duration_s": int(s.now().Sub(s.start).Seconds()),
	}
	for k, v := range s.Counts() {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	s.reports.Send("session_end", props)
}

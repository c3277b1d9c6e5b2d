/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package interact

import "testing"

func TestLock_RegisterFollowsMode(t *testing.T) {
	l := NewLock()
	g := GridHandle(1)
	l.Register(g)
	if !l.Draggable(g) {
		t.Fatalf("unlocked registration should be draggable")
	}
	if !l.Toggle() {
		t.Fatalf("first toggle should lock")
	}
	p := PictureHandle(1)
	l.Register(p)
	if l.Draggable(p) || l.Draggable(g) {
		t.Fatalf("everything should be fixed while locked")
	}
	if g == p {
		t.Fatalf("grid and picture handles must differ")
	}
}

func TestLock_ToggleRewritesAll(t *testing.T) {
	l := NewLock()
	hs := []Handle{GridHandle(1), GridHandle(2), PictureHandle(7)}
	for _, h := range hs {
		l.Register(h)
	}
	l.Toggle()
	for _, h := range hs {
		if l.Draggable(h) {
			t.Fatalf("%+v still draggable after lock", h)
		}
	}
	if l.Toggle() {
		t.Fatalf("second toggle should unlock")
	}
	for _, h := range hs {
		if !l.Draggable(h) {
			t.Fatalf("%+v not draggable after unlock", h)
		}
	}
	l.Unregister(hs[0])
	if l.Len() != 2 || l.Draggable(hs[0]) {
		t.Fatalf("unregister failed, len=%d", l.Len())
	}
}

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

// ElementKind distinguishes the draggable things on the canvas.
type ElementKind uint8

const (
	KindGrid ElementKind = iota
	KindPicture
)

// Handle identifies a draggable element.
type Handle struct {
	Kind ElementKind
	ID   uint64
}

func GridHandle(id uint64) Handle    { return Handle{Kind: KindGrid, ID: id} }
func PictureHandle(id uint64) Handle { return Handle{Kind: KindPicture, ID: id} }

// Lock holds the global lock flag and the drag-ability of every registered
// element. Toggling applies to all registered elements at once; nothing is
// remembered per element across toggles.
type Lock struct {
	locked    bool
	draggable map[Handle]bool
}

func NewLock() *Lock { return &Lock{draggable: make(map[Handle]bool)} }

func (l *Lock) Locked() bool { return l.locked }

// Register adds h with the drag-ability implied by the current lock state.
func (l *Lock) Register(h Handle) { l.draggable[h] = !l.locked }

func (l *Lock) Unregister(h Handle) { delete(l.draggable, h) }

// Draggable reports whether h may currently be dragged. Unknown handles are
// never draggable.
func (l *Lock) Draggable(h Handle) bool { return l.draggable[h] }

// Len returns the number of registered elements.
func (l *Lock) Len() int { return len(l.draggable) }

// Toggle flips the lock and rewrites every element's drag-ability. It
// returns the new lock state.
func (l *Lock) Toggle() bool {
	l.locked = !l.locked
	for h := range l.draggable {
		l.draggable[h] = !l.locked
	}
	return l.locked
}

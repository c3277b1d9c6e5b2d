/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package tui is the terminal front end: a bubbletea program that feeds
// mouse and key events into the interaction controller and draws the canvas
// with coloured half blocks and box-drawing characters.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"gridtrace/internal/export"
	"gridtrace/internal/interact"
	applog "gridtrace/internal/log"
	"gridtrace/internal/vector"
)

// Terminal cells are mapped to screen units of this size, roughly the
// aspect of a monospace cell.
const (
	cellW = 8.0
	cellH = 16.0
)

// Config wires the model to its surroundings.
type Config struct {
	ExportDir string
	Export    export.Options
	// Clipboard returns the clipboard text; nil uses the system clipboard.
	Clipboard func() (string, error)
	Now       func() time.Time
}

type editField uint8

const (
	editNone editField = iota
	editRows
	editCols
)

// Model is the bubbletea model.
type Model struct {
	ctrl   *interact.Controller
	cfg    Config
	log    *slog.Logger
	width  int
	height int

	status   string
	showHelp bool

	// mouse gesture
	pressed   bool
	dragging  bool
	dragOK    bool
	pressedAt vector.Pt

	editing  editField
	rowsText string
	colsText string
}

// New builds a model around ctrl.
func New(ctrl *interact.Controller, cfg Config) Model {
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.ReadAll
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}
	return Model{
		ctrl:     ctrl,
		cfg:      cfg,
		log:      applog.WithComponent("tui"),
		width:    80,
		height:   24,
		showHelp: len(ctrl.Pictures()) == 0,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctrl *interact.Controller, cfg Config) error {
	p := tea.NewProgram(
		New(ctrl, cfg),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ctrl.Resize(float64(m.width)*cellW, float64(m.canvasRows())*cellH)
		return m, nil
	case tea.KeyMsg:
		if m.editing != editNone {
			return m.updateEditing(msg), nil
		}
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg), nil
	}
	return m, nil
}

func (m Model) canvasRows() int {
	if m.height <= 1 {
		return 1
	}
	return m.height - 1
}

// screen converts a terminal cell to the centre of its screen-unit box.
func screen(x, y int) vector.Pt {
	return vector.P((float64(x)+0.5)*cellW, (float64(y)+0.5)*cellH)
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.ctrl
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "d":
		c.StartDraw()
	case "x", "delete", "backspace":
		c.Delete()
	case "l":
		if c.ToggleLock() {
			m.status = "locked"
		} else {
			m.status = "unlocked"
		}
	case "+", "=":
		c.AddRow()
	case "-", "_":
		c.RemoveRow()
	case "]":
		c.AddCol()
	case "[":
		c.RemoveCol()
	case "up":
		c.KeyPress(interact.KeyUp)
	case "down":
		c.KeyPress(interact.KeyDown)
	case "left":
		c.KeyPress(interact.KeyLeft)
	case "right":
		c.KeyPress(interact.KeyRight)
	case "enter":
		c.KeyPress(interact.KeyEnter)
	case "esc":
		c.KeyPress(interact.KeyEscape)
	case "n":
		m.editing = editRows
		m.rowsText, m.colsText = c.CountInputs()
	case "z":
		c.Space().Reset()
	case "h", "?":
		m.showHelp = !m.showHelp
	case "p":
		m.paste()
	case "e":
		m.exportChart()
	case "E":
		m.exportBatch(export.PresetWeb)
	}
	return m, nil
}

func (m *Model) paste() {
	text, err := m.cfg.Clipboard()
	if err != nil {
		m.log.Debug("clipboard read failed", slog.Any("err", err))
		m.status = "clipboard unavailable"
		return
	}
	if !m.ctrl.PasteText(text) {
		m.status = "clipboard holds no image"
		return
	}
	m.showHelp = false
	m.status = "picture pasted"
}

func (m *Model) exportChart() {
	path := export.DefaultName(m.cfg.ExportDir, "png", m.cfg.Now())
	if err := export.File(path, m.ctrl.Scene(), m.cfg.Export); err != nil {
		m.log.Warn("export failed", slog.Any("err", err))
		m.status = "export failed: " + err.Error()
		return
	}
	m.log.Info("chart exported", slog.String("path", path))
	m.status = "exported " + path
}

// exportBatch writes every format of a preset under one timestamp.
func (m *Model) exportBatch(p export.PresetName) {
	paths, err := export.Batch(m.ctrl.Scene(), export.BatchOptions{Preset: p, Options: m.cfg.Export, OutDir: m.cfg.ExportDir}, m.cfg.Now())
	if err != nil {
		m.log.Warn("batch export failed", slog.String("preset", string(p)), slog.Any("err", err))
		m.status = "export failed: " + err.Error()
		return
	}
	m.log.Info("chart exported", slog.String("preset", string(p)), slog.Int("files", len(paths)))
	m.status = fmt.Sprintf("exported %d files (%s)", len(paths), p)
}

// updateEditing handles the rows/cols prompt opened with "n". Tab switches
// fields, Enter applies, Esc abandons.
func (m Model) updateEditing(msg tea.KeyMsg) Model {
	field := &m.rowsText
	if m.editing == editCols {
		field = &m.colsText
	}
	switch msg.String() {
	case "esc":
		m.editing = editNone
	case "tab":
		if m.editing == editRows {
			m.editing = editCols
		} else {
			m.editing = editRows
		}
	case "backspace":
		if n := len(*field); n > 0 {
			*field = (*field)[:n-1]
		}
	case "enter":
		m.editing = editNone
		m.ctrl.SetCountInputs(m.rowsText, m.colsText)
		m.ctrl.ApplyCountInputs()
	default:
		if msg.Type == tea.KeyRunes {
			*field += string(msg.Runes)
		}
	}
	return m
}

// updateMouse maps terminal mouse events onto pointer and drag events. A
// press that starts or ends a grid never turns into a drag.
func (m Model) updateMouse(msg tea.MouseMsg) Model {
	if msg.Y >= m.canvasRows() {
		return m
	}
	p := screen(msg.X, msg.Y)
	c := m.ctrl
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		c.Wheel(p, 1)
	case msg.Button == tea.MouseButtonWheelDown:
		c.Wheel(p, -1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		before := c.State()
		c.PointerDown(p)
		m.pressed, m.dragging = true, false
		m.dragOK = before != interact.AwaitingGridStart && before != interact.AwaitingGridEnd
		m.pressedAt = p
	case msg.Action == tea.MouseActionMotion:
		c.PointerMove(p)
		if !m.pressed || !m.dragOK || p == m.pressedAt {
			break
		}
		if !m.dragging {
			c.DragStart(m.pressedAt)
			m.dragging = true
		}
		c.DragMove(p)
	case msg.Action == tea.MouseActionRelease:
		if m.dragging {
			c.DragEnd()
		}
		m.pressed, m.dragging = false, false
	}
	return m
}

func (m Model) View() string {
	r := newRaster(m.width, m.canvasRows())
	r.drawScene(m.ctrl.Scene())
	if m.showHelp {
		r.drawText(1, 0, helpLines)
	}
	var b strings.Builder
	b.WriteString(r.String())
	b.WriteByte('\n')
	b.WriteString(m.statusBar())
	return b.String()
}

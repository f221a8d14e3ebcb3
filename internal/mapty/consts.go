package mapty

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// AppState is the controller's implicit two-state machine
type AppState int

const (
	StateIdle          AppState = iota // form hidden, no pending click
	StateAwaitingInput                 // form visible, click buffered
)

func (s AppState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingInput:
		return "awaiting-input"
	}
	return "unknown"
}

const (
	DefaultZoom = 13
	MinZoom     = 1
	MaxZoom     = 18

	DefaultGeoTimeout  = 10 * time.Second
	DefaultPanDuration = time.Second

	InvalidInputMessage = "Inputs have to be positive numbers"
)

const (
	mapUnavailableText = "Map unavailable: waiting for location"
	mapPositionHint    = "No position? Start with --lat and --lng"
)

// Marker popups never auto-close and ignore map clicks; widths are in cells
const (
	popupMinWidth = 10
	popupMaxWidth = 25
)

// Map projection: each zoom level halves the degrees per cell, like slippy map tiles
const (
	cellsPerTile  = 32
	rowAspect     = 2 // terminal cells are about twice as tall as wide
	panSteps      = 12
	gridColEvery  = 8
	gridRowEvery  = 4
	formHeight    = 13
	sidebarWidth  = 46
	logPaneHeight = 8
)

// Page names for tview.Pages
const (
	pageMain  = "main"
	pageAlert = "alert"
)

var popupColors = map[string]tcell.Color{
	"running-popup": tcell.ColorGreen,
	"cycling-popup": tcell.ColorOrange,
}

const keyHints = "[yellow]Arrows/Click[white] pick spot  [yellow]Enter[white] log workout  [yellow]+/-[white] zoom  [yellow]Tab[white] focus  [yellow]Ctrl-R[white] reset  [yellow]Esc[white] cancel/quit"

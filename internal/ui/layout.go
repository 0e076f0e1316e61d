package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/theme"
)

// minListWidth keeps list rows readable on narrow terminals.
const minListWidth = 32

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	FilterBarHeight int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// The header, filter bar and status bar are one line each.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		FilterBarHeight: 1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the panes, accounting
// for the header, filter bar and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.FilterBarHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// ListWidth returns the outer width of the email list pane, a third of the
// screen but never narrower than minListWidth.
func (l Layout) ListWidth() int {
	w := l.Width / 3
	if w < minListWidth {
		w = minListWidth
	}
	if w > l.Width {
		w = l.Width
	}
	return w
}

// ViewerWidth returns the outer width of the viewer pane.
func (l Layout) ViewerWidth() int {
	w := l.Width - l.ListWidth()
	if w < 0 {
		return 0
	}
	return w
}

// PaneInner returns the content size inside a bordered pane of the given
// outer size.
func PaneInner(width, height int) (int, int) {
	frameW, frameH := theme.PanelStyle.GetFrameSize()
	return max(width-frameW, 0), max(height-frameH, 0)
}

// RenderHeader renders the top header bar with a title and a right-aligned
// status section.
func (l Layout) RenderHeader(title string, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(status)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderPanes places the list and viewer side by side, highlighting the
// border of the focused one.
func (l Layout) RenderPanes(list, viewer string, listFocused bool) string {
	listStyle, viewerStyle := theme.FocusedPanelStyle, theme.PanelStyle
	if !listFocused {
		listStyle, viewerStyle = theme.PanelStyle, theme.FocusedPanelStyle
	}

	listW, h := PaneInner(l.ListWidth(), l.ContentHeight())
	viewerW, _ := PaneInner(l.ViewerWidth(), l.ContentHeight())

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		listStyle.Width(listW).Height(h).Render(list),
		viewerStyle.Width(viewerW).Height(h).Render(viewer),
	)
}

// RenderOverlay centers box over the content area.
func (l Layout) RenderOverlay(box string) string {
	return lipgloss.Place(
		l.Width,
		l.ContentHeight(),
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, filter bar, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	filterBar string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		filterBar,
		content,
		statusBar,
	)
}

package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps a content pane.
var PanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// FocusedPanelStyle wraps the pane that receives keys.
var FocusedPanelStyle = PanelStyle.
	BorderForeground(ColorBlue)

// DetailPanelStyle wraps overlay content such as help and the palette.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ModalStyle frames blocking notices.
var ModalStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Border(lipgloss.ThickBorder()).
	BorderForeground(ColorRed)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// LabelStyle renders field labels in the viewer.
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ValueStyle renders field values in the viewer.
var ValueStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// BannerStyle renders the offline warning.
var BannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// ErrorStyle renders passive failure text in the status bar.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// CategoryStyle returns a color-coded badge style for the given category.
func CategoryStyle(c model.Category) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch c {
	case model.CategoryInterested:
		return base.Foreground(ColorGreen)
	case model.CategoryMeetingBooked:
		return base.Foreground(ColorBlue)
	case model.CategoryNotInterested:
		return base.Foreground(ColorOrange)
	case model.CategorySpam:
		return base.Foreground(ColorRed)
	case model.CategoryOutOfOffice:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}

// HealthStyle returns the badge style for a backend health status.
func HealthStyle(h model.HealthStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch h {
	case model.HealthOnline:
		return base.Foreground(ColorGreen)
	case model.HealthOffline:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorYellow)
	}
}

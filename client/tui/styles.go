// Package tui renders the attune terminal client: a bubbletea program over
// the nav, chat, and banner state kept in the client packages.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Dusk tones that stay readable on light and dark terminals.
var (
	colorInk     = lipgloss.AdaptiveColor{Light: "#2d2a3e", Dark: "#e8e6f0"}
	colorFaint   = lipgloss.AdaptiveColor{Light: "#8a86a0", Dark: "#6f6b85"}
	colorLilac   = lipgloss.Color("#9a8fdc")
	colorTeal    = lipgloss.Color("#4db6ac")
	colorAmber   = lipgloss.Color("#e0a458")
	colorRose    = lipgloss.Color("#d4708a")
	colorSurface = lipgloss.AdaptiveColor{Light: "#efedf7", Dark: "#232033"}
)

// Styles holds every lipgloss style the screens share.
type Styles struct {
	Header    lipgloss.Style
	HeaderTab lipgloss.Style
	ActiveTab lipgloss.Style
	Faint     lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageBody    lipgloss.Style

	InputBox   lipgloss.Style
	Cursor     lipgloss.Style
	ListItem   lipgloss.Style
	ListPicked lipgloss.Style
	Done       lipgloss.Style

	BannerInfo    lipgloss.Style
	BannerSuccess lipgloss.Style
	BannerError   lipgloss.Style

	Modal      lipgloss.Style
	ModalTitle lipgloss.Style

	Footer lipgloss.Style
}

// DefaultStyles builds the shared style set.
func DefaultStyles() Styles {
	banner := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(colorLilac).Padding(0, 1),
		HeaderTab: lipgloss.NewStyle().Foreground(colorFaint).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(colorInk).Bold(true).Underline(true).Padding(0, 1),
		Faint:     lipgloss.NewStyle().Foreground(colorFaint),

		UserLabel:      lipgloss.NewStyle().Bold(true).Foreground(colorTeal),
		AssistantLabel: lipgloss.NewStyle().Bold(true).Foreground(colorLilac),
		MessageBody:    lipgloss.NewStyle().Foreground(colorInk),

		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLilac).
			Padding(0, 1),
		Cursor:     lipgloss.NewStyle().Foreground(colorLilac).Bold(true),
		ListItem:   lipgloss.NewStyle().Foreground(colorInk),
		ListPicked: lipgloss.NewStyle().Foreground(colorTeal).Bold(true),
		Done:       lipgloss.NewStyle().Foreground(colorFaint).Strikethrough(true),

		BannerInfo:    banner.Foreground(colorInk).Background(colorSurface),
		BannerSuccess: banner.Foreground(lipgloss.Color("#1d3b2a")).Background(colorTeal),
		BannerError:   banner.Foreground(lipgloss.Color("#3b1d27")).Background(colorRose),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAmber).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().Bold(true).Foreground(colorAmber),

		Footer: lipgloss.NewStyle().Foreground(colorFaint).MarginTop(1),
	}
}

package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	key      lipgloss.Style
	detail   lipgloss.Style
	success  lipgloss.Style
	caution  lipgloss.Style
	problem  lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	faintest lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		key:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(10),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		caution:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		problem:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		faintest: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

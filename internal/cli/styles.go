package cli

import "github.com/charmbracelet/lipgloss"

// Палитра One Dark
var (
	colorFgMuted = lipgloss.Color("#636B78")
	colorRed     = lipgloss.Color("#E06C75")
	colorGreen   = lipgloss.Color("#98C379")
	colorYellow  = lipgloss.Color("#E5C07B")
	colorBlue    = lipgloss.Color("#61AFEF")
	colorMagenta = lipgloss.Color("#C678DD")
	colorBorder  = lipgloss.Color("#3F4451")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	failurePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorRed).
				Padding(0, 1)

	statValueStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorFgMuted)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			PaddingRight(1)

	// badgeMajorStyle линии крупных классов выделяются красным
	badgeMajorStyle = badgeStyle.
			Foreground(colorRed)
)

// noticeStyles стиль уведомления по классу
var noticeStyles = map[string]lipgloss.Style{
	"success": lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	"danger":  lipgloss.NewStyle().Foreground(colorRed).Bold(true),
	"info":    lipgloss.NewStyle().Foreground(colorBlue),
}

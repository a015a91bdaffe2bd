package producer

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles colour report lines when out is a terminal and render plain text
// otherwise.
type styles struct {
	success  lipgloss.Style
	failure  lipgloss.Style
	warning  lipgloss.Style
	emphasis lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return styles{
		success:  base.Foreground(lipgloss.Color("10")),
		failure:  base.Foreground(lipgloss.Color("9")),
		warning:  base.Foreground(lipgloss.Color("11")),
		emphasis: base.Foreground(lipgloss.Color("14")),
	}
}

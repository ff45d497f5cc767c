package home

import (
	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

const bannerArt = `
  █████╗ ██╗██████╗  ██████╗ ██████╗  ██████╗
 ██╔══██╗██║██╔══██╗██╔═══██╗██╔══██╗██╔════╝
 ███████║██║██████╔╝██║   ██║██████╔╝██║  ███╗
 ██╔══██║██║██╔══██╗██║   ██║██╔══██╗██║   ██║
 ██║  ██║██║██████╔╝╚██████╔╝██║  ██║╚██████╔╝
 ╚═╝  ╚═╝╚═╝╚═════╝  ╚═════╝ ╚═╝  ╚═╝ ╚═════╝`

const bannerCompact = "A I B O R G"

// RenderBanner returns the banner in the primary color, falling back to a
// single line on narrow or short terminals.
func RenderBanner(width int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if compact || width < 52 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}

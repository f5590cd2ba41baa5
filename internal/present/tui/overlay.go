package tui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

// renderOverlay composes a centered modal over a dimmed base view.
func (m model) renderOverlay(base, fg string, overlayW, overlayH int) string {
	termW, termH := m.width, m.height
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}
	x := max((termW-overlayW)/2, 0)
	y := max((termH-overlayH)/2, 0)

	dimBase := lipgloss.NewStyle().Faint(true).Render(base)
	baseLayer := lipgloss.NewLayer(dimBase).
		Width(termW).
		Height(termH)
	fgLayer := lipgloss.NewLayer(fg).
		Width(overlayW).
		Height(overlayH).
		X(x).
		Y(y)

	return lipgloss.NewCanvas(baseLayer, fgLayer).Render()
}

// modalSize sizes a modal relative to the terminal, within [minW,maxW] x [minH,maxH].
func modalSize(termW, termH, minW, maxW, minH, maxH int) (int, int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := min(max(termW*6/10, minW), maxW, max(termW-2, 10))
	h := min(max(termH*45/100, minH), maxH, max(termH-1, 5))
	return w, h
}

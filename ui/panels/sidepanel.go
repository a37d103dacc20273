// Package panels provides the side panel sections of the main window.
package panels

import (
	"drawing-redactor/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel holds the tabbed sections next to the canvas.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	pagesPanel *PagesPanel
	auditPanel *AuditPanel
}

// NewSidePanel creates the side panel bound to the application state.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.pagesPanel = NewPagesPanel(state)
	sp.auditPanel = NewAuditPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Pages", sp.pagesPanel.Container()),
		container.NewTabItem("Audit", sp.auditPanel.Container()),
	)

	// An arriving audit report is the one moment the panel steals focus.
	state.On(app.EventAuditComplete, func(interface{}) {
		sp.container.SelectIndex(1)
	})

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

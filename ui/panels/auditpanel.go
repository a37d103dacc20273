package panels

import (
	"drawing-redactor/internal/app"
	"drawing-redactor/internal/subject"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// AuditPanel shows the pre-review report of the active page and holds the
// free-form requirements that go into the export archive manifest.
type AuditPanel struct {
	state        *app.State
	report       *widget.RichText
	requirements *widget.Entry
	container    fyne.CanvasObject
}

// NewAuditPanel creates the audit panel.
func NewAuditPanel(state *app.State) *AuditPanel {
	ap := &AuditPanel{state: state}

	ap.report = widget.NewRichTextFromMarkdown("")
	ap.report.Wrapping = fyne.TextWrapWord

	ap.requirements = widget.NewMultiLineEntry()
	ap.requirements.SetPlaceHolder("Order requirements: quantity, finish, notes for the supplier...")
	ap.requirements.OnChanged = func(text string) {
		state.SetRequirements(text)
	}
	if req := state.Requirements(); req != "" {
		ap.requirements.SetText(req)
	}

	ap.container = container.NewBorder(
		widget.NewLabel("Requirements"),
		nil, nil, nil,
		container.NewVSplit(
			ap.requirements,
			container.NewVScroll(ap.report),
		),
	)

	state.On(app.EventActiveChanged, func(interface{}) {
		ap.showActive()
	})
	state.On(app.EventAuditComplete, func(data interface{}) {
		if sub, ok := data.(*subject.Subject); ok && sub == state.Active() {
			ap.report.ParseMarkdown(sub.Audit)
		}
	})

	return ap
}

// Container returns the panel container.
func (ap *AuditPanel) Container() fyne.CanvasObject {
	return ap.container
}

func (ap *AuditPanel) showActive() {
	sub := ap.state.Active()
	if sub == nil || sub.Audit == "" {
		ap.report.ParseMarkdown("*No audit report for this page yet.*")
		return
	}
	ap.report.ParseMarkdown(sub.Audit)
}

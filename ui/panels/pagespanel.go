package panels

import (
	"fmt"

	"drawing-redactor/internal/app"
	"drawing-redactor/internal/mask"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// PagesPanel lists the loaded pages and lets the user switch the active one.
type PagesPanel struct {
	state     *app.State
	list      *widget.List
	maskCount *widget.Label
	container fyne.CanvasObject
}

// NewPagesPanel creates the pages panel.
func NewPagesPanel(state *app.State) *PagesPanel {
	pp := &PagesPanel{state: state}

	pp.list = widget.NewList(
		func() int {
			return len(state.Subjects())
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("page name")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			subs := state.Subjects()
			if id < 0 || id >= len(subs) {
				return
			}
			sub := subs[id]
			label := obj.(*widget.Label)
			if sub.IsImage() {
				label.SetText(fmt.Sprintf("%s  (%d masks)", sub.Name, sub.Masks.Len()))
			} else {
				label.SetText(fmt.Sprintf("%s  [%s]", sub.Name, sub.Kind))
			}
		},
	)
	pp.list.OnSelected = func(id widget.ListItemID) {
		if id != state.ActiveIndex() {
			if err := state.SetActive(id); err != nil {
				state.Emit(app.EventError, err)
			}
		}
	}

	pp.maskCount = widget.NewLabel("")
	pp.updateMaskCount()

	clearBtn := widget.NewButton("Clear Masks", func() {
		state.ClearMasks()
	})
	copyBtn := widget.NewButton("Copy Masks to All Pages", func() {
		state.CopyMasksToAll()
	})

	pp.container = container.NewBorder(
		nil,
		container.NewVBox(pp.maskCount, clearBtn, copyBtn),
		nil, nil,
		pp.list,
	)

	state.On(app.EventSubjectsChanged, func(interface{}) {
		pp.list.Refresh()
	})
	state.On(app.EventActiveChanged, func(data interface{}) {
		if idx, ok := data.(int); ok {
			pp.list.Select(idx)
		}
		pp.updateMaskCount()
	})
	state.On(app.EventMasksChanged, func(interface{}) {
		pp.list.Refresh()
		pp.updateMaskCount()
	})

	return pp
}

// Container returns the panel container.
func (pp *PagesPanel) Container() fyne.CanvasObject {
	return pp.container
}

func (pp *PagesPanel) updateMaskCount() {
	sub := pp.state.Active()
	if sub == nil {
		pp.maskCount.SetText("No page loaded")
		return
	}
	if !sub.IsImage() {
		pp.maskCount.SetText(fmt.Sprintf("%s pages pass through unmasked", sub.Kind))
		return
	}
	manual, detected := 0, 0
	for _, m := range sub.Masks.Rects() {
		if m.Origin == mask.OriginDetected {
			detected++
		} else {
			manual++
		}
	}
	pp.maskCount.SetText(fmt.Sprintf("%d manual, %d detected masks", manual, detected))
}

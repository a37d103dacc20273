// Package mainwindow provides the main application window.
package mainwindow

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"
	"time"

	"drawing-redactor/internal/app"
	"drawing-redactor/internal/detect"
	"drawing-redactor/internal/export"
	"drawing-redactor/internal/interaction"
	"drawing-redactor/internal/subject"
	"drawing-redactor/internal/task"
	"drawing-redactor/internal/version"
	"drawing-redactor/ui/canvas"
	"drawing-redactor/ui/panels"
	"drawing-redactor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// requestTimeout bounds one model round trip, including retries.
const requestTimeout = 90 * time.Second

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	engine    *detect.Engine
	runner    *task.Runner
	local     *detect.LocalDetector
	canvas    *canvas.MaskCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates the main window. Background work (detection, audits, batch
// export) goes through a single-job runner so at most one request is ever
// in flight.
func New(fyneApp fyne.App, state *app.State, engine *detect.Engine, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Drawing Redactor")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		engine: engine,
		runner: task.NewRunner(),
	}

	state.SetRequirements(p.String(prefs.KeyRequirements))

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.SetOnClosed(func() {
		mw.runner.Close()
		if mw.local != nil {
			mw.local.Close()
		}
		p.SetString(prefs.KeyRequirements, state.Requirements())
		_ = p.Save()
	})

	return mw
}

// setupUI creates the main layout: side panel | toolbar over canvas, with a
// status bar at the bottom.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMaskCanvas(mw.state)
	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel(fmt.Sprintf("%.0f%%", mw.state.Zoom()*100))

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		nil, nil, nil,
		mw.canvas.Container(),
	)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// createToolbar builds the tool switcher and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	tools := widget.NewRadioGroup([]string{"Pan", "Draw"}, func(sel string) {
		if sel == "Draw" {
			mw.state.SetTool(interaction.ToolDraw)
		} else {
			mw.state.SetTool(interaction.ToolPan)
		}
	})
	tools.Horizontal = true
	tools.SetSelected("Pan")

	zoomOutBtn := widget.NewButton("-", mw.state.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.state.ZoomIn)

	detectBtn := widget.NewButton("Detect", mw.onDetect)
	auditBtn := widget.NewButton("Audit", mw.onAudit)
	exportBtn := widget.NewButton("Export All", mw.onExportArchive)

	return container.NewHBox(
		tools,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		mw.zoomLabel,
		zoomInBtn,
		widget.NewSeparator(),
		detectBtn,
		auditBtn,
		exportBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Pages...", mw.onOpen),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Page...", mw.onExportPage),
		fyne.NewMenuItem("Export Archive...", mw.onExportArchive),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Clear Masks", mw.state.ClearMasks),
		fyne.NewMenuItem("Copy Masks to All Pages", mw.state.CopyMasksToAll),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.state.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.state.ZoomOut),
		fyne.NewMenuItem("Actual Size", func() { mw.state.SetZoom(1.0) }),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Detect Sensitive Regions", mw.onDetect),
		fyne.NewMenuItem("Detect Offline", mw.onLocalDetect),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Run Drawing Audit", mw.onAudit),
		fyne.NewMenuItem("Audit All Pages", mw.onAuditAll),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventActiveChanged, func(interface{}) {
		if sub := mw.state.Active(); sub != nil {
			mw.SetTitle("Drawing Redactor - " + sub.Name)
			mw.updateStatus("Viewing " + sub.Name)
		}
	})
	mw.state.On(app.EventZoomChanged, func(data interface{}) {
		if z, ok := data.(float64); ok {
			mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", z*100))
		}
	})
	mw.state.On(app.EventMasksChanged, func(interface{}) {
		if sub := mw.state.Active(); sub != nil && sub.IsImage() {
			mw.updateStatus(fmt.Sprintf("%d masks on %s", sub.Masks.Len(), sub.Name))
		}
	})
	mw.state.On(app.EventAuditComplete, func(data interface{}) {
		if sub, ok := data.(*subject.Subject); ok {
			mw.updateStatus("Audit complete for " + sub.Name)
		}
	})
	mw.state.On(app.EventExportComplete, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})
	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Error: " + err.Error())
			dialog.ShowError(err, mw.Window)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// OpenFiles loads pages given on the command line.
func (mw *MainWindow) OpenFiles(paths []string) {
	for _, path := range paths {
		if _, err := mw.state.AddSubject(path); err != nil {
			mw.state.Emit(app.EventError, err)
		}
	}
}

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		if _, err := mw.state.AddSubject(path); err != nil {
			mw.state.Emit(app.EventError, err)
			return
		}
		mw.prefs.SetString(prefs.KeyLastOpenDir, filepath.Dir(path))
		mw.updateStatus("Loaded " + filepath.Base(path))
	}, mw.Window)

	exts := append(subject.SupportedFormats(),
		".pdf", ".stl", ".step", ".stp", ".iges", ".igs", ".csv", ".xls", ".xlsx")
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if dir := mw.listableDir(prefs.KeyLastOpenDir); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

// onDetect sends the active page to the vision model and merges the
// returned regions into the page's mask collection.
func (mw *MainWindow) onDetect() {
	sub := mw.state.Active()
	if sub == nil || !sub.IsImage() {
		mw.updateStatus("Detection needs an image page")
		return
	}
	if !mw.engine.Configured() {
		mw.updateStatus("No API key configured; use Tools > Detect Offline")
		return
	}
	mw.updateStatus("Detecting sensitive regions on " + sub.Name + "...")
	mw.runner.Submit("detect "+sub.Name, func() error {
		data, mime, err := imageBytes(sub)
		if err != nil {
			mw.state.Emit(app.EventError, err)
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		regions, err := mw.engine.Detect(ctx, data, mime)
		if err != nil {
			mw.state.Emit(app.EventError, err)
			return err
		}
		added := detect.Reconcile(sub.Masks, regions)
		mw.state.Emit(app.EventMasksChanged, sub)
		mw.state.Emit(app.EventExportComplete,
			fmt.Sprintf("Detection found %d regions on %s", len(added), sub.Name))
		return nil
	})
}

// onLocalDetect runs the OCR-based detector, used when no API key is set
// or the network is off limits.
func (mw *MainWindow) onLocalDetect() {
	sub := mw.state.Active()
	if sub == nil || !sub.IsImage() {
		mw.updateStatus("Detection needs an image page")
		return
	}
	mw.updateStatus("Scanning " + sub.Name + " for contact information...")
	mw.runner.Submit("local detect "+sub.Name, func() error {
		if mw.local == nil {
			local, err := detect.NewLocalDetector()
			if err != nil {
				mw.state.Emit(app.EventError, err)
				return err
			}
			mw.local = local
		}
		result, err := mw.local.Detect(sub.Image)
		if err != nil {
			mw.state.Emit(app.EventError, err)
			return err
		}
		added := detect.Reconcile(sub.Masks, result.Regions)
		mw.state.Emit(app.EventMasksChanged, sub)
		status := fmt.Sprintf("Offline scan found %d regions on %s", len(added), sub.Name)
		if result.SkewDegrees > 1 || result.SkewDegrees < -1 {
			status += fmt.Sprintf(" (page skewed %.1f degrees)", result.SkewDegrees)
		}
		mw.state.Emit(app.EventExportComplete, status)
		return nil
	})
}

// onAudit runs the drawing pre-review on the active page.
func (mw *MainWindow) onAudit() {
	sub := mw.state.Active()
	if sub == nil || !sub.IsImage() {
		mw.updateStatus("Audit needs an image page")
		return
	}
	if !mw.engine.Configured() {
		mw.updateStatus("No API key configured for the audit model")
		return
	}
	mw.updateStatus("Auditing " + sub.Name + "...")
	mw.runner.Submit("audit "+sub.Name, func() error {
		data, mime, err := imageBytes(sub)
		if err != nil {
			mw.state.Emit(app.EventError, err)
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		report, err := mw.engine.Audit(ctx, data, mime)
		if err != nil {
			mw.state.Emit(app.EventError, err)
			return err
		}
		mw.state.SetAudit(sub, report)
		return nil
	})
}

// onAuditAll queues an audit for every image page. Jobs run strictly one at
// a time; a page that fails is reported and the rest still run, and reports
// already produced stay cached on their pages.
func (mw *MainWindow) onAuditAll() {
	if !mw.engine.Configured() {
		mw.updateStatus("No API key configured for the audit model")
		return
	}
	queued := 0
	for _, sub := range mw.state.Subjects() {
		if !sub.IsImage() {
			continue
		}
		sub := sub
		mw.runner.Submit("audit "+sub.Name, func() error {
			data, mime, err := imageBytes(sub)
			if err != nil {
				mw.state.Emit(app.EventError, err)
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			report, err := mw.engine.Audit(ctx, data, mime)
			if err != nil {
				mw.state.Emit(app.EventError, err)
				return err
			}
			mw.state.SetAudit(sub, report)
			return nil
		})
		queued++
	}
	mw.updateStatus(fmt.Sprintf("Queued audits for %d pages", queued))
}

// onExportPage writes the active page's redacted PNG to a chosen file.
func (mw *MainWindow) onExportPage() {
	sub := mw.state.Active()
	if sub == nil || !sub.IsImage() {
		mw.updateStatus("Export needs an image page")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := export.Write(sub, writer); err != nil {
			mw.state.Emit(app.EventError, err)
			return
		}
		mw.prefs.SetString(prefs.KeyLastExportDir, filepath.Dir(writer.URI().Path()))
		mw.state.Emit(app.EventExportComplete, "Exported "+writer.URI().Name())
	}, mw.Window)
	fd.SetFileName(exportName(sub.Name))
	if dir := mw.listableDir(prefs.KeyLastExportDir); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

// onExportArchive writes every page into one zip, redacted images plus
// pass-through files, with the requirements manifest alongside.
func (mw *MainWindow) onExportArchive() {
	subs := mw.state.Subjects()
	if len(subs) == 0 {
		mw.updateStatus("Nothing to export")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		name := writer.URI().Name()
		mw.prefs.SetString(prefs.KeyLastExportDir, filepath.Dir(writer.URI().Path()))
		requirements := mw.state.Requirements()
		mw.runner.Submit("export archive", func() error {
			defer writer.Close()
			n, err := export.Archive(writer, subs, requirements)
			if err != nil {
				mw.state.Emit(app.EventError, err)
				return err
			}
			mw.state.Emit(app.EventExportComplete,
				fmt.Sprintf("Exported %d of %d pages to %s", n, len(subs), name))
			return nil
		})
	}, mw.Window)
	fd.SetFileName("drawings_redacted.zip")
	if dir := mw.listableDir(prefs.KeyLastExportDir); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("Drawing Redactor %s\n\nMask customer-identifying regions on "+
			"technical drawings before sending them to suppliers.", version.Version),
		mw.Window)
}

// listableDir resolves a stored directory preference, or nil.
func (mw *MainWindow) listableDir(key string) fyne.ListableURI {
	path := mw.prefs.String(key)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// imageBytes returns the bytes and MIME type to send to the model: the
// original file bytes when available, a PNG re-encode otherwise.
func imageBytes(sub *subject.Subject) ([]byte, string, error) {
	if len(sub.Raw) > 0 {
		return sub.Raw, mimeForName(sub.Name), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.Image); err != nil {
		return nil, "", fmt.Errorf("failed to encode %s: %w", sub.Name, err)
	}
	return buf.Bytes(), "image/png", nil
}

func mimeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// exportName derives the single-page export filename.
func exportName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + "_redacted.png"
}

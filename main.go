// Package main provides the entry point for the Drawing Redactor application.
package main

import (
	"log"
	"os"

	"drawing-redactor/internal/app"
	"drawing-redactor/internal/detect"
	"drawing-redactor/internal/version"
	"drawing-redactor/ui/mainwindow"
	"drawing-redactor/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Drawing Redactor v%s", version.Version)

	// A .env next to the binary is the easiest place for the API key.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	appPrefs := prefs.Load()
	appState := app.NewState()

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = appPrefs.String(prefs.KeyGeminiModel)
	}
	engine := detect.NewEngine(os.Getenv("GEMINI_API_KEY"), model)
	if !engine.Configured() {
		log.Println("GEMINI_API_KEY not set; only offline detection is available")
	}

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.RedactorTheme{})

	win := mainwindow.New(fyneApp, appState, engine, appPrefs)
	if len(os.Args) > 1 {
		win.OpenFiles(os.Args[1:])
	}

	win.ShowAndRun()
}

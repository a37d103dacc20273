// Command redact runs the redaction pipeline headless: load pages, detect
// sensitive regions, and write the redacted archive without opening a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"drawing-redactor/internal/detect"
	"drawing-redactor/internal/export"
	"drawing-redactor/internal/subject"
	"drawing-redactor/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	out := flag.String("out", "drawings_redacted.zip", "Output archive path")
	reqFile := flag.String("requirements", "", "Text file with order requirements for the manifest")
	runDetect := flag.Bool("detect", false, "Run sensitive-region detection on every image page")
	offline := flag.Bool("offline", false, "Use the OCR detector instead of the vision model")
	model := flag.String("model", "", "Vision model name (default from GEMINI_MODEL)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("redact %s\n", version.Version)
		return
	}
	if flag.NArg() == 0 {
		fmt.Println("Usage: redact [-out archive.zip] [-detect] [-offline] [-requirements file] <page>...")
		os.Exit(1)
	}

	_ = godotenv.Load()

	var subjects []*subject.Subject
	for _, path := range flag.Args() {
		sub, err := subject.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", path, err)
			os.Exit(1)
		}
		subjects = append(subjects, sub)
		fmt.Printf("Loaded %s (%s", sub.Name, sub.Kind)
		if sub.IsImage() {
			fmt.Printf(", %dx%d", sub.Width, sub.Height)
		}
		fmt.Println(")")
	}

	if *runDetect {
		if err := detectAll(subjects, *offline, *model); err != nil {
			fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
			os.Exit(1)
		}
	}

	requirements := ""
	if *reqFile != "" {
		data, err := os.ReadFile(*reqFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read requirements: %v\n", err)
			os.Exit(1)
		}
		requirements = string(data)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create archive: %v\n", err)
		os.Exit(1)
	}
	n, err := export.Archive(f, subjects, requirements)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write archive: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d of %d pages to %s\n", n, len(subjects), *out)
}

// detectAll appends detected masks to every image page. Pages are processed
// one at a time; a page that fails stops the run so a partially redacted
// archive is never written silently.
func detectAll(subjects []*subject.Subject, offline bool, model string) error {
	if offline {
		local, err := detect.NewLocalDetector()
		if err != nil {
			return err
		}
		defer local.Close()
		for _, sub := range subjects {
			if !sub.IsImage() {
				continue
			}
			result, err := local.Detect(sub.Image)
			if err != nil {
				return fmt.Errorf("%s: %w", sub.Name, err)
			}
			added := detect.Reconcile(sub.Masks, result.Regions)
			fmt.Printf("  %s: %d regions flagged\n", sub.Name, len(added))
		}
		return nil
	}

	if model == "" {
		model = os.Getenv("GEMINI_MODEL")
	}
	engine := detect.NewEngine(os.Getenv("GEMINI_API_KEY"), model)
	if !engine.Configured() {
		return fmt.Errorf("GEMINI_API_KEY is not set; use -offline for the OCR detector")
	}
	for _, sub := range subjects {
		if !sub.IsImage() {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		regions, err := engine.Detect(ctx, sub.Raw, "")
		cancel()
		if err != nil {
			return fmt.Errorf("%s: %w", sub.Name, err)
		}
		added := detect.Reconcile(sub.Masks, regions)
		fmt.Printf("  %s: %d regions flagged\n", sub.Name, len(added))
	}
	return nil
}

package export

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"drawing-redactor/internal/subject"
)

// manifestName is the archive entry holding the project's free-form
// requirements description.
const manifestName = "requirements.txt"

// Archive packages the redacted output of every subject plus an optional
// requirements manifest into one zip stream. Image subjects are composited
// at full resolution and stored as PNG; other subjects pass their original
// bytes through unmodified. A subject whose composition fails is logged and
// skipped — one bad page never aborts the batch. Returns the number of
// pages written.
func Archive(w io.Writer, subjects []*subject.Subject, requirements string) (int, error) {
	zw := zip.NewWriter(w)

	written := 0
	for i, s := range subjects {
		name, data, err := entryFor(s, i)
		if err != nil {
			log.Printf("Export: skipping %s: %v", s.Name, err)
			continue
		}
		if err := addEntry(zw, name, data); err != nil {
			zw.Close()
			return written, fmt.Errorf("archive write failed at %s: %w", name, err)
		}
		written++
	}

	if strings.TrimSpace(requirements) != "" {
		if err := addEntry(zw, manifestName, []byte(requirements)); err != nil {
			zw.Close()
			return written, fmt.Errorf("archive write failed at %s: %w", manifestName, err)
		}
	}
	return written, zw.Close()
}

// entryFor produces the archive filename and payload for one subject.
// Names carry a per-source-page suffix so two uploads of "drawing.png"
// cannot collide, and a redacted image always gets the .png extension its
// re-encoded bytes actually have.
func entryFor(s *subject.Subject, index int) (string, []byte, error) {
	ext := filepath.Ext(s.Name)
	stem := strings.TrimSuffix(s.Name, ext)
	if stem == "" {
		stem = fmt.Sprintf("page_%02d", index+1)
	}

	if s.Kind == subject.KindImage {
		data, err := PNG(s)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s_p%02d_redacted.png", stem, index+1), data, nil
	}
	return fmt.Sprintf("%s_p%02d%s", stem, index+1, ext), s.Raw, nil
}

func addEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

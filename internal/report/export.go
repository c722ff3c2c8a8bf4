package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joeycumines/shopdb/internal/storage"
)

// utf8BOM prefixes every exported file.
const utf8BOM = "\ufeff"

var syncFile = func(f *os.File) error { return f.Sync() }

// Exporter writes report files.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter returns an Exporter logging to logger, or slog.Default if nil.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Export writes content to targetFolder/filename and reports the outcome.
func Export(targetFolder, filename, content string) storage.Result {
	return NewExporter(nil).Export(targetFolder, filename, content)
}

// Export creates targetFolder if needed and (over)writes filename inside it
// with content prefixed by a byte order mark. The success message carries
// the absolute path of the written file.
func (e *Exporter) Export(targetFolder, filename, content string) storage.Result {
	path, err := e.write(targetFolder, filename, content)
	if err != nil {
		e.logger.Error("report export failed", "folder", targetFolder, "file", filename, "error", err)
		return storage.Failed(err)
	}
	e.logger.Info("report exported", "path", path)
	return storage.Succeeded("report saved to: " + path)
}

func (e *Exporter) write(targetFolder, filename, content string) (string, error) {
	if err := os.MkdirAll(targetFolder, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %q: %w", targetFolder, err)
	}

	path := filepath.Join(targetFolder, filename)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	payload := make([]byte, 0, len(utf8BOM)+len(content))
	payload = append(append(payload, utf8BOM...), content...)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create export file %q: %w", path, err)
	}
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write export file %q: %w", path, err)
	}
	if err := syncFile(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to sync export file %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file %q: %w", path, err)
	}
	return path, nil
}

package command

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/shopdb/internal/config"
)

func TestResolveLogSettings_Defaults(t *testing.T) {
	t.Setenv("SHOPDB_LOG_LEVEL", "")
	os.Unsetenv("SHOPDB_LOG_LEVEL")
	t.Setenv("SHOPDB_LOG_FILE", "")
	os.Unsetenv("SHOPDB_LOG_FILE")

	ls, err := ResolveLogSettings(nil)
	if err != nil {
		t.Fatalf("ResolveLogSettings: %v", err)
	}
	if ls.Level != slog.LevelInfo || ls.File != "" || ls.MaxSizeMB != 10 || ls.MaxFiles != 5 || ls.Verbose {
		t.Fatalf("unexpected defaults: %+v", ls)
	}
}

func TestResolveLogSettings_ConfigAndEnv(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetGlobalOption(config.KeyLogLevel, "warn")
	cfg.SetGlobalOption(config.KeyLogMaxFiles, "0")
	cfg.SetGlobalOption(config.KeyLogMaxSizeMB, "-1")
	cfg.SetGlobalOption(config.KeyVerbose, "yes")
	t.Setenv("SHOPDB_LOG_FILE", "/var/log/shopdb.log")
	t.Setenv("SHOPDB_LOG_LEVEL", "debug")

	ls, err := ResolveLogSettings(cfg)
	if err != nil {
		t.Fatalf("ResolveLogSettings: %v", err)
	}
	if ls.Level != slog.LevelDebug {
		t.Errorf("expected env level to win, got %v", ls.Level)
	}
	if ls.File != "/var/log/shopdb.log" {
		t.Errorf("unexpected file %q", ls.File)
	}
	if ls.MaxFiles != 0 || ls.MaxSizeMB != 10 || !ls.Verbose {
		t.Errorf("unexpected settings %+v", ls)
	}

	t.Setenv("SHOPDB_LOG_LEVEL", "loud")
	if _, err := ResolveLogSettings(cfg); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func TestNewLogger_Sinks(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "shopdb.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer

	logger, buf, closer, err := NewLogger(LogSettings{Level: slog.LevelInfo, File: logPath, MaxSizeMB: 1, MaxFiles: 1, Verbose: true}, &stderr)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("saved", "path", "db.json")
	logger.Warn("backup copy failed")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(stderr.String(), "hidden") || !strings.Contains(stderr.String(), "msg=saved") {
		t.Errorf("unexpected stderr output %q", stderr.String())
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"saved"`) {
		t.Errorf("expected JSON record in log file, got %q", data)
	}
	if w := buf.Warnings(); len(w) != 1 || w[0].Message != "backup copy failed" {
		t.Errorf("unexpected buffered warnings %+v", w)
	}
}

func TestNewLogger_QuietByDefault(t *testing.T) {
	var stderr bytes.Buffer
	logger, _, closer, err := NewLogger(LogSettings{Level: slog.LevelDebug}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	logger.Warn("not printed")
	if stderr.Len() != 0 {
		t.Errorf("expected no stderr output, got %q", stderr.String())
	}
}

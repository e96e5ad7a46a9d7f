package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-novel/internal/config"
)

func TestNewInteractiveWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LogConfig{Level: "debug", Format: "json", File: "logs/novel.log", MaxSizeMB: 1}

	l, err := New(cfg, true, dir, "novel")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("line shown", "speaker", "Aru")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "logs", "novel.log"))
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), `"speaker":"Aru"`) {
		t.Errorf("log file = %s", data)
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"loud", true},
	}
	for _, tt := range tests {
		_, err := New(config.LogConfig{Level: tt.level}, false, "", "")
		if (err != nil) != tt.wantErr {
			t.Errorf("New(level=%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
		}
	}
}

func TestNewInteractiveWithoutFile(t *testing.T) {
	l, err := New(config.LogConfig{}, true, t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	l.Info("dropped")
	if err := l.Close(); err != nil {
		t.Error(err)
	}
	Discard().Info("also dropped")
}

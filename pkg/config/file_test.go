package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rg3/battery-monitor/pkg/utils/ptr"
)

func TestFile_Defaults(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	if got := f.PollInterval(); got != 20*time.Second {
		t.Errorf("PollInterval() = %s, want 20s", got)
	}
	if got := f.SafetyWindow(); got != 60*time.Second {
		t.Errorf("SafetyWindow() = %s, want 60s", got)
	}
	if got := f.SignDwell(); got != 5*time.Second {
		t.Errorf("SignDwell() = %s, want 5s", got)
	}
	if got := f.ShutdownDelayMinutes(); got != 2 {
		t.Errorf("ShutdownDelayMinutes() = %d, want 2", got)
	}
	if f.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess() = true, want false")
	}
}

func TestFile_PollIntervalClamped(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{name: "in range", seconds: 45, want: 45 * time.Second},
		{name: "below minimum", seconds: 0, want: time.Second},
		{name: "above maximum", seconds: 100000, want: 86400 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileFromConfig(&RawFileConfig{PollIntervalSeconds: ptr.To(tt.seconds)}, "")
			if got := f.PollInterval(); got != tt.want {
				t.Errorf("PollInterval() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFile_SetPollIntervalSecondsRejectsOutOfRange(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	defer func() {
		if recover() == nil {
			t.Error("SetPollIntervalSeconds(0) did not panic")
		}
	}()
	f.SetPollIntervalSeconds(0)
}

func TestFile_LoadMissingFileGivesDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if got := f.PollInterval(); got != 20*time.Second {
		t.Errorf("PollInterval() = %s, want 20s", got)
	}
}

func TestFile_LoadEmptyFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if got := f.SafetyWindow(); got != 60*time.Second {
		t.Errorf("SafetyWindow() = %s, want 60s", got)
	}
}

func TestFile_LoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFile(path); err == nil {
		t.Error("NewFile() expected error for malformed JSON")
	}
}

func TestFile_SaveWithoutPathIsNoop(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")
	f.SetPollIntervalSeconds(42)

	if err := f.Save(); err != nil {
		t.Errorf("Save() error = %v, want nil for a file-less config", err)
	}
}

func TestFile_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	f := NewFileFromConfig(&RawFileConfig{
		PollIntervalSeconds: ptr.To(30),
		SafetyWindowSeconds: ptr.To(120),
	}, path)
	f.SetAllowNonRootAccess(true)
	if err := f.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if got := loaded.PollInterval(); got != 30*time.Second {
		t.Errorf("PollInterval() = %s, want 30s", got)
	}
	if got := loaded.SafetyWindow(); got != 120*time.Second {
		t.Errorf("SafetyWindow() = %s, want 120s", got)
	}
	if !loaded.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess() = false, want true")
	}
	// Unset fields still fall back to defaults.
	if got := loaded.SignDwell(); got != 5*time.Second {
		t.Errorf("SignDwell() = %s, want 5s", got)
	}
}

func TestNewRawFileConfigFromConfig(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{PollIntervalSeconds: ptr.To(10)}, "")

	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatalf("NewRawFileConfigFromConfig() error = %v", err)
	}
	if raw.PollIntervalSeconds == nil || *raw.PollIntervalSeconds != 10 {
		t.Errorf("PollIntervalSeconds = %v, want 10", raw.PollIntervalSeconds)
	}
	if raw.SafetyWindowSeconds == nil || *raw.SafetyWindowSeconds != 60 {
		t.Errorf("SafetyWindowSeconds = %v, want 60", raw.SafetyWindowSeconds)
	}

	if _, err := NewRawFileConfigFromConfig(nil); err == nil {
		t.Error("NewRawFileConfigFromConfig(nil) expected error")
	}
}

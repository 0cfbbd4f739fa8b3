package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("// rc\n"), FilePermissions); err != nil {
		t.Fatal(err)
	}
}

func TestInitialize(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if ConfigDir != filepath.Join(home, "xdg", "cream-browser") {
		t.Errorf("ConfigDir = %q", ConfigDir)
	}
	if DataDir != filepath.Join(home, ".cream-browser") {
		t.Errorf("DataDir = %q", DataDir)
	}
	for _, dir := range []string{ConfigDir, DataDir, DownloadsDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s was not created", dir)
		}
	}
	if filepath.Dir(DatabasePath) != DataDir || filepath.Dir(KeybindsFile) != ConfigDir {
		t.Errorf("unexpected file locations: %s, %s", DatabasePath, KeybindsFile)
	}
}

func TestFindConfig(t *testing.T) {
	base := t.TempDir()
	system := filepath.Join(base, "etc")
	t.Setenv("XDG_CONFIG_DIRS", system)
	SetPaths(filepath.Join(base, "user"), filepath.Join(base, "data"))

	if _, err := FindConfig("", ""); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("FindConfig() without files error = %v, want ErrConfigNotFound", err)
	}

	systemRC := filepath.Join(system, AppName, "rc.js")
	writeFile(t, systemRC)

	tests := []struct {
		name     string
		setup    string
		explicit string
		profile  string
		want     string
	}{
		{"system fallback", "", "", "", systemRC},
		{"user rc wins", filepath.Join(ConfigDir, "rc.js"), "", "", filepath.Join(ConfigDir, "rc.js")},
		{"missing profile falls back", "", "", "work", filepath.Join(ConfigDir, "rc.js")},
		{"profile", filepath.Join(ConfigDir, "rc.work.js"), "", "work", filepath.Join(ConfigDir, "rc.work.js")},
		{"explicit", filepath.Join(base, "custom.js"), filepath.Join(base, "custom.js"), "work", filepath.Join(base, "custom.js")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != "" {
				writeFile(t, tt.setup)
			}
			got, err := FindConfig(tt.explicit, tt.profile)
			if err != nil {
				t.Fatalf("FindConfig() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FindConfig() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := FindConfig(filepath.Join(base, "nope.js"), ""); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing explicit config error = %v", err)
	}
}

func TestScriptName(t *testing.T) {
	if got := ScriptName(""); got != "rc.js" {
		t.Errorf("ScriptName(\"\") = %q", got)
	}
	if got := ScriptName("dev"); got != "rc.dev.js" {
		t.Errorf("ScriptName(dev) = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandHome("~/rc.js"); got != filepath.Join(home, "rc.js") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/abs/rc.js"); got != "/abs/rc.js" {
		t.Errorf("ExpandHome(abs) = %q", got)
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if *s != *DefaultSettings() {
			t.Errorf("LoadSettings() = %+v, want %+v", s, DefaultSettings())
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("CREAM_HOMEPAGE", "https://start.example/")
		t.Setenv("CREAM_SOCKET", "/tmp/cream.sock")
		t.Setenv("CREAM_HTTP_TIMEOUT", "5s")
		t.Setenv("CREAM_LOG_LEVEL", "debug")
		t.Setenv("CREAM_LOG_DEV", "true")

		s, err := LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if s.Homepage != "https://start.example/" || s.Socket != "/tmp/cream.sock" {
			t.Errorf("settings = %+v", s)
		}
		if s.HTTPTimeout != 5*time.Second {
			t.Errorf("HTTPTimeout = %v", s.HTTPTimeout)
		}
		if s.Log.Level != "debug" || !s.Log.Development {
			t.Errorf("Log = %+v", s.Log)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("CREAM_HTTP_TIMEOUT", "soon")
		if _, err := LoadSettings(); err == nil {
			t.Error("LoadSettings() error = nil, want parse failure")
		}
	})
}

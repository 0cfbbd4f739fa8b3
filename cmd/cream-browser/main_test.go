package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/control"
)

// startServer serves a control socket whose handler echoes lines and
// fails on "fail".
func startServer(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "cream")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "cream.sock")
	srv := control.NewServer(path, func(ctx context.Context, line string) (string, error) {
		if line == "fail" {
			return "", errors.New("unknown command: fail")
		}
		return "ok " + line, nil
	}, nil)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return path
}

func TestRunCommand(t *testing.T) {
	path := startServer(t)
	t.Setenv("CREAM_SOCKET", "")

	tests := []struct {
		name    string
		line    string
		want    string
		wantErr string
	}{
		{"reply printed", "echo hi", "ok echo hi\n", ""},
		{"error reply", "fail", "", "unknown command: fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flagSocket, flagCommand = path, tt.line
			t.Cleanup(func() { flagSocket, flagCommand = "", "" })

			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)

			err := runCommand(cmd)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("runCommand() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("runCommand() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestRunCommand_NeedsSocket(t *testing.T) {
	t.Setenv("CREAM_SOCKET", "")
	flagSocket, flagCommand = "", "echo hi"
	t.Cleanup(func() { flagCommand = "" })

	err := runCommand(&cobra.Command{})
	if err == nil || !strings.Contains(err.Error(), "--socket") {
		t.Errorf("runCommand() error = %v, want a --socket hint", err)
	}
}

func TestSocketPath(t *testing.T) {
	t.Cleanup(func() { flagSocket = "" })

	flagSocket = ""
	if got := socketPath(&config.Settings{Socket: "/tmp/env.sock"}); got != "/tmp/env.sock" {
		t.Errorf("socketPath() = %q, want the environment value", got)
	}

	flagSocket = "/tmp/flag.sock"
	if got := socketPath(&config.Settings{Socket: "/tmp/env.sock"}); got != "/tmp/flag.sock" {
		t.Errorf("socketPath() = %q, want the flag value", got)
	}
}

func TestBuildCompleter(t *testing.T) {
	c := buildCompleter()
	found := false
	for _, child := range c.GetChildren() {
		if strings.TrimSpace(string(child.GetName())) == "tabopen" {
			found = true
		}
	}
	if !found {
		t.Error("completer does not offer tabopen")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	config.SetPaths(t.TempDir(), t.TempDir())
	config.SystemConfigDirs = nil
	flagConfig, flagProfile = "", ""

	_, err := loadConfig(context.Background(), config.DefaultSettings(), nil)
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Fatalf("loadConfig() error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "cream-browser init") {
		t.Errorf("error %q does not suggest init", err)
	}
}

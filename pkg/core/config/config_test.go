package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	"github.com/msto63/exprkit/foundation/expr/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "soon", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.General.Name != "exprkit" {
		t.Errorf("General.Name = %v, want exprkit", cfg.General.Name)
	}
	if cfg.Parser.Mode != "strict" || cfg.ParseMode() != parser.ModeStrict {
		t.Errorf("Parser.Mode = %v, want strict", cfg.Parser.Mode)
	}
	if cfg.Parser.MaxInputLength != parser.DefaultMaxInputLength {
		t.Errorf("Parser.MaxInputLength = %d", cfg.Parser.MaxInputLength)
	}
	if cfg.Store.Path != filepath.Join("./data", "exprkit.db") {
		t.Errorf("Store.Path = %v", cfg.Store.Path)
	}
	if cfg.GRPCAddress() != "127.0.0.1:9310" || cfg.HTTPAddress() != "127.0.0.1:8310" {
		t.Errorf("addresses = %s, %s", cfg.GRPCAddress(), cfg.HTTPAddress())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EXPRKIT_TEST_DIR", dir)

	path := writeFile(t, dir, "config.toml", `
[general]
log_level = "debug"
data_dir = "${EXPRKIT_TEST_DIR}/data"

[parser]
mode = "legacy"

[server]
grpc_port = 7000
read_timeout = "2s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %v", cfg.General.LogLevel)
	}
	if cfg.ParseMode() != parser.ModeLegacy {
		t.Errorf("ParseMode() = %v, want legacy", cfg.ParseMode())
	}
	if cfg.Server.GRPCPort != 7000 || cfg.Server.HTTPPort != 8310 {
		t.Errorf("ports = %d/%d", cfg.Server.GRPCPort, cfg.Server.HTTPPort)
	}
	if cfg.Server.ReadTimeout.Duration != 2*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if want := filepath.Join(dir, "data", "exprkit.db"); cfg.Store.Path != want {
		t.Errorf("Store.Path = %v, want %v", cfg.Store.Path, want)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
general:
  log_format: text
store:
  busy_timeout: 750ms
  disable_history: true
cache:
  ttl: 1m
tui:
  prompt: "> "
  show_tree: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogFormat != "text" {
		t.Errorf("LogFormat = %v", cfg.General.LogFormat)
	}
	if cfg.Store.BusyTimeout.Duration != 750*time.Millisecond || !cfg.Store.DisableHistory {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Cache.TTL.Duration != time.Minute {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if cfg.TUI.Prompt != "> " || !cfg.TUI.ShowTree {
		t.Errorf("TUI = %+v", cfg.TUI)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code exerr.Code
	}{
		{"missing file", filepath.Join(dir, "nope.toml"), exerr.CodeConfigError},
		{"broken toml", writeFile(t, dir, "broken.toml", "[general\n"), exerr.CodeConfigError},
		{"unknown mode", writeFile(t, dir, "mode.toml", "[parser]\nmode = \"loose\"\n"), exerr.CodeInvalidConfig},
		{"port clash", writeFile(t, dir, "ports.toml", "[server]\ngrpc_port = 9000\nhttp_port = 9000\n"), exerr.CodeInvalidConfig},
		{"bad level", writeFile(t, dir, "level.yaml", "general:\n  log_level: loud\n"), exerr.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if !exerr.HasCode(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	path := writeFile(t, t.TempDir(), "env.toml", "[general]\nname = \"from-env\"\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.General.Name != "from-env" {
		t.Errorf("Name = %v, want from-env", cfg.General.Name)
	}

	explicit, err := LoadOrDefault(writeFile(t, t.TempDir(), "x.toml", "[general]\nname = \"explicit\"\n"))
	if err != nil || explicit.General.Name != "explicit" {
		t.Errorf("LoadOrDefault(path) = %+v, %v", explicit, err)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "[general]\nlog_level = \"info\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err == nil {
				reloaded <- cfg
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case cfg := <-reloaded:
			if cfg.General.LogLevel != "debug" {
				t.Errorf("reloaded LogLevel = %v, want debug", cfg.General.LogLevel)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() error = %v", err)
			}
			return
		case <-tick.C:
			// rewrite until the watcher has been registered
			writeFile(t, dir, "config.toml", fmt.Sprintf("# %d\n[general]\nlog_level = \"debug\"\n", i))
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}
}

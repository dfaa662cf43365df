package main

import (
	"os"
	"path/filepath"
	"testing"

	"countdown/internal/entry"
)

type presetRecorder struct {
	presets map[string]entry.Buffer
	calls   int
}

func (r *presetRecorder) SetPresets(p map[string]entry.Buffer) {
	r.presets = p
	r.calls++
}

func TestServeCommand_FlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countdown.yaml")
	os.WriteFile(path, []byte("port: 9000\nstatic_dir: /srv/a\n"), 0644)

	cmd := newServeCommand()
	if err := cmd.ParseFlags([]string{"--config", path, "--port", "9100"}); err != nil {
		t.Fatal(err)
	}

	var opts serveOptions
	opts.configPath, _ = cmd.Flags().GetString("config")
	opts.port, _ = cmd.Flags().GetInt("port")
	opts.staticDir, _ = cmd.Flags().GetString("static")

	cfg, err := loadConfig(cmd.Flags(), opts)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("expected flag port 9100, got %d", cfg.Port)
	}
	if cfg.StaticDir != "/srv/a" {
		t.Errorf("expected static dir from file, got %q", cfg.StaticDir)
	}
}

func TestServeCommand_InvalidPortFlag(t *testing.T) {
	cmd := newServeCommand()
	if err := cmd.ParseFlags([]string{"--port", "99999"}); err != nil {
		t.Fatal(err)
	}
	opts := serveOptions{port: 99999}
	if _, err := loadConfig(cmd.Flags(), opts); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestReloadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countdown.yaml")
	os.WriteFile(path, []byte("presets:\n  pasta: \"001000\"\n"), 0644)

	var rec presetRecorder
	reloadPresets(&rec, path)
	if rec.calls != 1 {
		t.Fatalf("expected one reload, got %d", rec.calls)
	}
	if b, ok := rec.presets["pasta"]; !ok || b.TotalSeconds() != 600 {
		t.Errorf("expected pasta preset, got %+v", rec.presets)
	}
}

func TestReloadPresets_InvalidKeepsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countdown.yaml")
	os.WriteFile(path, []byte("presets:\n  broken: \"1:00\"\n"), 0644)

	var rec presetRecorder
	reloadPresets(&rec, path)
	if rec.calls != 0 {
		t.Error("expected invalid config not to replace presets")
	}
}

func TestRootCommand_HasServe(t *testing.T) {
	root := newRootCommand()
	cmd, _, err := root.Find([]string{"serve"})
	if err != nil || cmd.Name() != "serve" {
		t.Fatalf("expected serve subcommand, got %v, %v", cmd, err)
	}
}

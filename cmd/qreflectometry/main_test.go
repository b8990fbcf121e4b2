package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CrimsonAS/qreflectometry/internal/app"
	"github.com/CrimsonAS/qreflectometry/internal/config"
	"github.com/CrimsonAS/qreflectometry/internal/log"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[plot]\nwidth = 1024\nheight = 768\n[project]\nautosave = 30\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"export"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags([]string{"--config", path, "--height", "300", "--log-level", "debug"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1024 || cfg.Height != 300 || cfg.Autosave != 30 || cfg.LogLevel != "debug" {
		t.Errorf("config %+v", cfg)
	}
	if cfg.PlotBackend != config.Defaults().PlotBackend {
		t.Errorf("unset value changed: %q", cfg.PlotBackend)
	}

	cmd.ParseFlags([]string{"--width", "0"})
	if _, err := loadConfig(cmd); err == nil {
		t.Error("invalid width accepted")
	}
}

func TestVersion(t *testing.T) {
	about, err := config.LoadAbout()
	if err != nil {
		t.Fatal(err)
	}
	out := run(t, "version")
	if !strings.Contains(out, about.Version.Number) {
		t.Errorf("version printed %q", out)
	}
}

func TestConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qreflectometry", "config.toml")
	out := run(t, "config", "--config", path)
	if strings.TrimSpace(out) != path {
		t.Errorf("printed %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != config.DefaultTemplate() {
		t.Errorf("template not written: %v", err)
	}

	// An existing file is kept
	os.WriteFile(path, []byte("[plot]\n"), 0o644)
	run(t, "config", "--config", path)
	if data, _ := os.ReadFile(path); string(data) != "[plot]\n" {
		t.Errorf("config overwritten: %q", data)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	about, err := config.LoadAbout()
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()
	cfg.ProjectDir = dir
	a, err := app.New(cfg, about, log.Discard{})
	if err != nil {
		t.Fatal(err)
	}
	a.Backend.Project.Create()
	if err := a.Backend.Project.Save(); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	out := run(t, "export", a.Backend.Project.Path(),
		"--config", filepath.Join(dir, "none.toml"),
		"--log-level", "error",
		"--out", outDir, "--xlsx", "--html")
	want := []string{"project-sample-0.png", "project-sld-0.png", "project-summary.xlsx", "project-summary.html"}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(want) {
		t.Fatalf("exported %q", out)
	}
	for i, name := range want {
		path := filepath.Join(outDir, name)
		if lines[i] != path {
			t.Errorf("line %d is %q, want %q", i, lines[i], path)
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

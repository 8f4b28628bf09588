package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArrayFlags(t *testing.T) {
	var a ArrayFlags
	for _, v := range []string{"0.2", "0.4", "1e0"} {
		if err := a.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	if len(a) != 3 || a[0] != 0.2 || a[2] != 1 {
		t.Fatalf("ArrayFlags = %v", a)
	}
	if err := a.Set("wide"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.yaml")
	data := []byte(`
solver:
  field:
    frequency: 2.0e6
    rings: 8
    mode: distance
    distance_grid:
      start: 0.002
      stop: 0.03
      steps: 50
  gaps: [0.2, 0.4]
  threads: 3
server:
  port: "9090"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, srv, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()

	if cfg.Field.Frequency != 2e6 || cfg.Field.Rings != 8 || cfg.Field.Mode != "distance" {
		t.Errorf("field overrides not applied: %+v", cfg.Field)
	}
	if cfg.Field.DistanceGrid.Steps != 50 || cfg.Field.DistanceGrid.Start != 0.002 {
		t.Errorf("distance grid = %+v", cfg.Field.DistanceGrid)
	}
	if cfg.Field.SoundSpeed != def.Field.SoundSpeed || cfg.Field.Focal != def.Field.Focal {
		t.Errorf("defaults lost: %+v", cfg.Field)
	}
	if len(cfg.Gaps) != 2 || cfg.Threads != 3 {
		t.Errorf("gaps = %v threads = %d", cfg.Gaps, cfg.Threads)
	}
	if srv.Port != "9090" || srv.WorkerCount != DefaultServerConfig().WorkerCount {
		t.Errorf("server = %+v", srv)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("solver: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestPathFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"-q", "-n", "4"}, ""},
		{[]string{"-config", "probe.yaml", "-q"}, "probe.yaml"},
		{[]string{"--config=probe.yaml"}, "probe.yaml"},
		{[]string{"-q", "-config"}, ""},
		{[]string{"config", "probe.yaml"}, ""},
	}
	for _, tt := range tests {
		if got := PathFromArgs(tt.args); got != tt.want {
			t.Errorf("PathFromArgs(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}

	cfg, srv, err := LoadFromArgs([]string{"-q"})
	if err != nil || cfg.Field.Rings != DefaultConfig().Field.Rings || srv.Port != "8080" {
		t.Fatalf("LoadFromArgs defaults: %v %+v %+v", err, cfg, srv)
	}
}

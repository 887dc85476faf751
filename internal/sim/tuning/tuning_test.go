package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRepoTuning(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.Seed == 0 {
		t.Fatalf("seed missing from repo tuning")
	}
	if tune.HitRange <= 0 {
		t.Fatalf("hit_range = %g", tune.HitRange)
	}
	if tune.TickRateHz <= 0 {
		t.Fatalf("tick_rate_hz = %d", tune.TickRateHz)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("got %v, want not-exist", err)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("seed: 7\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.Seed != 7 {
		t.Fatalf("seed = %d, want 7", tune.Seed)
	}
	def := Defaults()
	if tune.HitRange != def.HitRange || tune.TickRateHz != def.TickRateHz {
		t.Fatalf("unset keys lost their defaults: %+v", tune)
	}
}

func TestLoadRejectsBadHitRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("hit_range: -1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("negative hit_range must fail")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("seed: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml must fail")
	}
}

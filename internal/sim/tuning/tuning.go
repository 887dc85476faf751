package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Seed int64 `yaml:"seed"`

	TickRateHz        int     `yaml:"tick_rate_hz"`
	HitRange          float64 `yaml:"hit_range"`
	SaveEverySeconds  int     `yaml:"save_every_seconds"`
	MeshBudgetPerTick int     `yaml:"mesh_budget_per_tick"` // 0 = unbounded

	Terrain Terrain `yaml:"terrain"`

	DebugListen string `yaml:"debug_listen"` // "" disables the debug ws endpoint
}

type Terrain struct {
	HeightAmplitude int     `yaml:"height_amplitude"`
	HeightScale     float64 `yaml:"height_scale"`
	DirtDepth       int     `yaml:"dirt_depth"`
	StonePermille   int     `yaml:"stone_permille"`
	SandPermille    int     `yaml:"sand_permille"`
}

func Defaults() Tuning {
	return Tuning{
		Seed:             1337,
		TickRateHz:       60,
		HitRange:         3,
		SaveEverySeconds: 0,
		Terrain: Terrain{
			HeightAmplitude: 12,
			HeightScale:     48,
			DirtDepth:       4,
			StonePermille:   30,
			SandPermille:    20,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.HitRange <= 0 {
		return t, fmt.Errorf("tuning.yaml: hit_range must be positive")
	}
	return t, nil
}

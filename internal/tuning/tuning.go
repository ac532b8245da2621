package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ListenAddr   string `yaml:"listen_addr"`
	ScenarioPath string `yaml:"scenario_path"`
	DBPath       string `yaml:"db_path"`

	Finder Finder `yaml:"finder"`
	Bench  Bench  `yaml:"bench"`
}

type Finder struct {
	Heuristic        string `yaml:"heuristic"` // manhattan | euclidean | chebyshev
	AllowDiagonal    bool   `yaml:"allow_diagonal"`
	DontCrossCorners bool   `yaml:"dont_cross_corners"`
	IterationLimit   int    `yaml:"iteration_limit"` // 0 = unlimited
}

type Bench struct {
	Repeat int `yaml:"repeat"`
}

func Defaults() Tuning {
	return Tuning{
		ListenAddr: ":8090",
		DBPath:     "navruns.db",
		Finder: Finder{
			Heuristic:     "manhattan",
			AllowDiagonal: true,
		},
		Bench: Bench{Repeat: 5},
	}
}

// Load reads path over Defaults, so absent keys keep their default
// values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

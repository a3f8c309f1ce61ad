package supers

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Consts holds the physical constants of the superdroplet model.
type Consts struct {
	RhoL   float64 `yaml:"rho_l"`
	RhoSol float64 `yaml:"rho_sol"`
	MrSol  float64 `yaml:"mr_sol"`
	Ionic  float64 `yaml:"ionic"`
}

// DefaultConsts returns the constants in the embedded defaults file.
func DefaultConsts() Consts {
	c := Consts{}
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		panic(fmt.Sprintf("Internal error: parsing embedded defaults: %s",
			err.Error()))
	}
	return c
}

// LoadConsts reads constants from a YAML file. Constants missing from the
// file keep their default values. An empty path returns the defaults.
func LoadConsts(path string) (Consts, error) {
	c := DefaultConsts()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading constants file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing constants file %s: %w", path, err)
	}
	if c.RhoL <= 0 || c.RhoSol <= 0 {
		return c, fmt.Errorf("Constants file %s gives non-positive "+
			"densities, rho_l = %g and rho_sol = %g.", path, c.RhoL, c.RhoSol)
	}
	return c, nil
}

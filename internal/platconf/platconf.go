// Package platconf loads board descriptions from YAML so a synthetic
// platform can be declared in a file instead of code.
package platconf

import (
	"fmt"
	"os"

	"github.com/tinyrange/fwplat/platform"
	"gopkg.in/yaml.v3"
)

// BoardConfig describes a board on disk.
type BoardConfig struct {
	Name          string   `yaml:"name"`
	Harts         uint32   `yaml:"harts"`
	StackSize     uint32   `yaml:"stackSize,omitempty"`
	DisabledHarts []uint32 `yaml:"disabledHarts,omitempty"`

	// Features lists flag names as printed by platform.FeatureSet.String.
	// ExtraFeatures carries reserved bits that have no name yet.
	Features      []string `yaml:"features,omitempty"`
	ExtraFeatures uint64   `yaml:"extraFeatures,omitempty"`

	TimerNsPerTick uint64 `yaml:"timerNsPerTick,omitempty"`

	PMP []PMPHartConfig `yaml:"pmp,omitempty"`
}

// PMPHartConfig lists the protection regions of one hart.
type PMPHartConfig struct {
	Hart    uint32      `yaml:"hart"`
	Regions []PMPRegion `yaml:"regions"`
}

// PMPRegion is one protection region in the config file.
type PMPRegion struct {
	Prot     uint64 `yaml:"prot"`
	Addr     uint64 `yaml:"addr"`
	Log2Size uint32 `yaml:"log2Size"`
}

// Parse decodes and validates a board config.
func Parse(data []byte) (*BoardConfig, error) {
	var cfg BoardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("platconf: parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a board config file.
func Load(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("platconf: read %s: %w", path, err)
	}
	return Parse(data)
}

func (c *BoardConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("platconf: name is required")
	}
	if c.Harts == 0 {
		return fmt.Errorf("platconf: harts must be at least 1")
	}
	for _, id := range c.DisabledHarts {
		if id >= c.Harts {
			return fmt.Errorf("platconf: disabled hart %d out of range (board has %d harts)", id, c.Harts)
		}
	}
	for _, name := range c.Features {
		if platform.FeatureByName(name) == 0 {
			return fmt.Errorf("platconf: unknown feature %q", name)
		}
	}
	for _, hart := range c.PMP {
		if hart.Hart >= c.Harts {
			return fmt.Errorf("platconf: PMP config for hart %d out of range (board has %d harts)", hart.Hart, c.Harts)
		}
		for i, region := range hart.Regions {
			if region.Log2Size > 63 {
				return fmt.Errorf("platconf: hart %d region %d: log2Size %d out of range", hart.Hart, i, region.Log2Size)
			}
		}
	}
	return nil
}

// FeatureSet resolves the configured feature names and reserved bits. An
// empty feature list means platform.DefaultFeatures.
func (c *BoardConfig) FeatureSet() platform.FeatureSet {
	if len(c.Features) == 0 && c.ExtraFeatures == 0 {
		return platform.DefaultFeatures
	}
	f := platform.FeatureSet(c.ExtraFeatures)
	for _, name := range c.Features {
		f |= platform.FeatureByName(name)
	}
	return f
}

// DisabledMask returns the disabled hart ids as a mask.
func (c *BoardConfig) DisabledMask() platform.HartMask {
	return platform.MaskOf(c.DisabledHarts...)
}

// PMPRegions returns the per-hart region tables, indexed by hart id.
func (c *BoardConfig) PMPRegions() [][]platform.PMPRegion {
	if len(c.PMP) == 0 {
		return nil
	}
	maxHart := uint32(0)
	for _, hart := range c.PMP {
		if hart.Hart > maxHart {
			maxHart = hart.Hart
		}
	}
	regions := make([][]platform.PMPRegion, maxHart+1)
	for _, hart := range c.PMP {
		for _, region := range hart.Regions {
			regions[hart.Hart] = append(regions[hart.Hart], platform.PMPRegion{
				Prot:     region.Prot,
				Addr:     region.Addr,
				Log2Size: region.Log2Size,
			})
		}
	}
	return regions
}

package platconf

import (
	"strings"
	"testing"

	"github.com/tinyrange/fwplat/platform"
)

const sampleConfig = `
name: qemu-virt
harts: 4
stackSize: 8192
disabledHarts: [3]
features: [mmio-timer-value, pmp]
timerNsPerTick: 100
pmp:
  - hart: 0
    regions:
      - {prot: 0x7, addr: 0x80000000, log2Size: 21}
      - {prot: 0x3, addr: 0x10000000, log2Size: 12}
  - hart: 2
    regions:
      - {prot: 0x7, addr: 0x80000000, log2Size: 21}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Name != "qemu-virt" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Harts != 4 {
		t.Errorf("Harts = %d, want 4", cfg.Harts)
	}

	features := cfg.FeatureSet()
	if !features.Has(platform.FeatureMMIOTimerValue) || !features.Has(platform.FeaturePMP) {
		t.Errorf("FeatureSet() = %v, missing configured flags", features)
	}
	if features.Has(platform.FeatureMCounterEnable) {
		t.Errorf("FeatureSet() = %v, has unconfigured flag", features)
	}

	mask := cfg.DisabledMask()
	if !mask.Has(3) || mask.Count() != 1 {
		t.Errorf("DisabledMask() = 0x%x, want only bit 3", uint64(mask))
	}

	regions := cfg.PMPRegions()
	if len(regions) != 3 {
		t.Fatalf("PMPRegions() covers %d harts, want 3", len(regions))
	}
	if len(regions[0]) != 2 || len(regions[1]) != 0 || len(regions[2]) != 1 {
		t.Errorf("region counts = %d/%d/%d, want 2/0/1",
			len(regions[0]), len(regions[1]), len(regions[2]))
	}
	want := platform.PMPRegion{Prot: 0x3, Addr: 0x1000_0000, Log2Size: 12}
	if regions[0][1] != want {
		t.Errorf("regions[0][1] = %+v, want %+v", regions[0][1], want)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("name: minimal\nharts: 1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.FeatureSet(); got != platform.DefaultFeatures {
		t.Errorf("FeatureSet() = %v, want defaults", got)
	}
	if cfg.PMPRegions() != nil {
		t.Error("PMPRegions() != nil for config without pmp section")
	}
	if cfg.DisabledMask() != 0 {
		t.Error("DisabledMask() != 0 for config without disabled harts")
	}
}

func TestParseExtraFeatures(t *testing.T) {
	cfg, err := Parse([]byte("name: rsvd\nharts: 1\nextraFeatures: 0x100\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.FeatureSet(); got != platform.FeatureSet(0x100) {
		t.Errorf("FeatureSet() = 0x%x, want 0x100", uint64(got))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad yaml", "name: [", "parse"},
		{"missing name", "harts: 2", "name is required"},
		{"zero harts", "name: x", "harts must be at least 1"},
		{"disabled out of range", "name: x\nharts: 2\ndisabledHarts: [2]", "out of range"},
		{"unknown feature", "name: x\nharts: 1\nfeatures: [warp-drive]", "unknown feature"},
		{"pmp hart out of range", "name: x\nharts: 1\npmp: [{hart: 4, regions: []}]", "out of range"},
		{"log2size out of range", "name: x\nharts: 1\npmp: [{hart: 0, regions: [{prot: 1, addr: 0, log2Size: 70}]}]", "log2Size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("Parse succeeded, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Fatal("Load succeeded for missing file")
	}
}

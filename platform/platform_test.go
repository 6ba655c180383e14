package platform

import (
	"strings"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "empty name",
			cfg:     Config{HartCount: 1},
			wantErr: "name is empty",
		},
		{
			name:    "name too long",
			cfg:     Config{Name: strings.Repeat("x", NameSize), HartCount: 1},
			wantErr: "longer than",
		},
		{
			name:    "zero harts",
			cfg:     Config{Name: "test"},
			wantErr: "hart count is zero",
		},
		{
			name:    "empty console group",
			cfg:     Config{Name: "test", HartCount: 1, Console: &ConsoleHooks{}},
			wantErr: "console hooks present but empty",
		},
		{
			name:    "empty lifecycle group",
			cfg:     Config{Name: "test", HartCount: 1, Lifecycle: &LifecycleHooks{}},
			wantErr: "lifecycle hooks present but empty",
		},
		{
			name:    "empty power group",
			cfg:     Config{Name: "test", HartCount: 1, Power: &PowerHooks{}},
			wantErr: "power hooks present but empty",
		},
		{
			name: "valid",
			cfg:  Config{Name: "test", HartCount: 4},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(tc.cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				if d == nil {
					t.Fatal("New returned nil descriptor without error")
				}
				return
			}
			if err == nil {
				t.Fatalf("New succeeded, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("New error %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestTopologyAccessors(t *testing.T) {
	d, err := New(Config{
		Name:          "virt-test",
		HartCount:     4,
		HartStackSize: 8192,
		DisabledHarts: MaskOf(2),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := d.Name(); got != "virt-test" {
		t.Errorf("Name() = %q, want %q", got, "virt-test")
	}
	if got := d.HartCount(); got != 4 {
		t.Errorf("HartCount() = %d, want 4", got)
	}
	if got := d.HartStackSize(); got != 8192 {
		t.Errorf("HartStackSize() = %d, want 8192", got)
	}

	if !d.HartDisabled(2) {
		t.Error("HartDisabled(2) = false, want true")
	}
	if d.HartDisabled(0) {
		t.Error("HartDisabled(0) = true, want false")
	}
	// Out of declared range: must not wrap or panic, reports false.
	if d.HartDisabled(5) {
		t.Error("HartDisabled(5) = true, want false")
	}
	if d.HartDisabled(64) {
		t.Error("HartDisabled(64) = true, want false")
	}
	if d.HartDisabled(200) {
		t.Error("HartDisabled(200) = true, want false")
	}
}

func TestAbsentDescriptorAccessors(t *testing.T) {
	var d *Descriptor

	if got := d.Name(); got != "" {
		t.Errorf("nil.Name() = %q, want empty", got)
	}
	if got := d.HartCount(); got != 0 {
		t.Errorf("nil.HartCount() = %d, want 0", got)
	}
	if got := d.HartStackSize(); got != 0 {
		t.Errorf("nil.HartStackSize() = %d, want 0", got)
	}
	if d.HasFeature(FeaturePMP) {
		t.Error("nil.HasFeature(FeaturePMP) = true, want false")
	}
	if d.HartDisabled(0) {
		t.Error("nil.HartDisabled(0) = true, want false")
	}
}

func TestHasFeature(t *testing.T) {
	d, err := New(Config{
		Name:      "feat-test",
		HartCount: 1,
		Features:  FeatureMMIOTimerValue | FeaturePMP,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !d.HasFeature(FeatureMMIOTimerValue) {
		t.Error("HasFeature(FeatureMMIOTimerValue) = false, want true")
	}
	if !d.HasFeature(FeaturePMP) {
		t.Error("HasFeature(FeaturePMP) = false, want true")
	}
	if d.HasFeature(FeatureHartHotplug) {
		t.Error("HasFeature(FeatureHartHotplug) = true, want false")
	}
	if d.HasFeature(FeatureSCounterEnable) {
		t.Error("HasFeature(FeatureSCounterEnable) = true, want false")
	}
}

func TestReservedFeatureBitsCarried(t *testing.T) {
	const reserved FeatureSet = 1 << 40

	d, err := New(Config{
		Name:      "reserved",
		HartCount: 1,
		Features:  DefaultFeatures | reserved,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !d.HasFeature(reserved) {
		t.Error("reserved feature bit was dropped")
	}
	if got := d.Features() &^ (DefaultFeatures | reserved); got != 0 {
		t.Errorf("unexpected extra feature bits 0x%x", uint64(got))
	}
}

func TestHookGroupsCopiedOnNew(t *testing.T) {
	calls := 0
	hooks := &ConsoleHooks{
		Putc: func(byte) { calls++ },
	}

	d, err := New(Config{Name: "copy", HartCount: 1, Console: hooks})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Mutating the caller's group after construction must not reach the
	// frozen descriptor.
	hooks.Putc = nil

	d.ConsolePutc('x')
	if calls != 1 {
		t.Fatalf("Putc called %d times, want 1", calls)
	}
}

func TestMaskOf(t *testing.T) {
	m := MaskOf(0, 3, 63, 64, 1000)

	if !m.Has(0) || !m.Has(3) || !m.Has(63) {
		t.Errorf("mask 0x%x missing expected bits", uint64(m))
	}
	if m.Has(1) || m.Has(64) {
		t.Errorf("mask 0x%x has unexpected bits", uint64(m))
	}
	if got := m.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestFeatureSetString(t *testing.T) {
	tests := []struct {
		f    FeatureSet
		want string
	}{
		{0, "none"},
		{FeaturePMP, "pmp"},
		{FeatureMMIOTimerValue | FeaturePMP, "mmio-timer-value,pmp"},
	}
	for _, tc := range tests {
		if got := tc.f.String(); got != tc.want {
			t.Errorf("FeatureSet(0x%x).String() = %q, want %q", uint64(tc.f), got, tc.want)
		}
	}

	if got := FeatureByName("pmp"); got != FeaturePMP {
		t.Errorf("FeatureByName(pmp) = 0x%x", uint64(got))
	}
	if got := FeatureByName("bogus"); got != 0 {
		t.Errorf("FeatureByName(bogus) = 0x%x, want 0", uint64(got))
	}
}

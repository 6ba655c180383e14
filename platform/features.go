package platform

import "strings"

// FeatureSet is a bit set of declared platform capabilities. Bits outside
// the named flags are reserved; readers must ignore them, never reject them.
type FeatureSet uint64

const (
	// FeatureMMIOTimerValue marks a readable MMIO timer value register.
	FeatureMMIOTimerValue FeatureSet = 1 << 0
	// FeatureHartHotplug marks support for starting and stopping harts at
	// runtime.
	FeatureHartHotplug FeatureSet = 1 << 1
	// FeaturePMP marks physical memory protection region support.
	FeaturePMP FeatureSet = 1 << 2
	// FeatureSCounterEnable marks a supervisor counter-enable register.
	FeatureSCounterEnable FeatureSet = 1 << 3
	// FeatureMCounterEnable marks a machine counter-enable register.
	FeatureMCounterEnable FeatureSet = 1 << 4
	// FeatureFaultDelegation marks machine fault delegation support.
	FeatureFaultDelegation FeatureSet = 1 << 5
)

// DefaultFeatures is the feature set a typical board declares: everything
// except hart hotplug.
const DefaultFeatures = FeatureMMIOTimerValue |
	FeaturePMP |
	FeatureSCounterEnable |
	FeatureMCounterEnable |
	FeatureFaultDelegation

var featureNames = []struct {
	flag FeatureSet
	name string
}{
	{FeatureMMIOTimerValue, "mmio-timer-value"},
	{FeatureHartHotplug, "hart-hotplug"},
	{FeaturePMP, "pmp"},
	{FeatureSCounterEnable, "scounteren"},
	{FeatureMCounterEnable, "mcounteren"},
	{FeatureFaultDelegation, "mfaults-delegation"},
}

// Has reports whether any bit of flag is set.
func (f FeatureSet) Has(flag FeatureSet) bool {
	return f&flag != 0
}

// String lists the named flags that are set, "none" when empty. Reserved
// bits are not printed.
func (f FeatureSet) String() string {
	var names []string
	for _, e := range featureNames {
		if f&e.flag != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// FeatureByName resolves a flag name as printed by String. It returns 0 for
// an unknown name.
func FeatureByName(name string) FeatureSet {
	for _, e := range featureNames {
		if e.name == name {
			return e.flag
		}
	}
	return 0
}

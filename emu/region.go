package emu

import "github.com/user-none/eblitui/coreif"

// Region is an alias for coreif.Region.
type Region = coreif.Region

const (
	RegionNTSC = coreif.RegionNTSC
	RegionPAL  = coreif.RegionPAL
)

// CPUClockHz is the Z80 clock of the 48K machine.
const CPUClockHz = 3500000

// RegionTiming holds timing constants for a specific region
type RegionTiming struct {
	CPUClockHz int // Z80 clock frequency
	Scanlines  int // Total scanlines per frame
	FPS        int // Frames per second
}

// PAL timing: 3.5 MHz, 312 scanlines, 50 Hz
var PALTiming = RegionTiming{
	CPUClockHz: CPUClockHz,
	Scanlines:  FrameScanlines,
	FPS:        50,
}

// GetTimingForRegion returns the timing constants for r. The 48K ULA
// only produces a 50 Hz raster, so every region maps to PAL timing.
func GetTimingForRegion(r Region) RegionTiming {
	return PALTiming
}

// DefaultRegion returns the default region (PAL).
func DefaultRegion() Region {
	return RegionPAL
}

// DetectRegion reports the region for a snapshot. Snapshots carry no
// region; the machine is always PAL.
func DetectRegion(data []byte) (Region, bool) {
	return RegionPAL, false
}

// frameMicros is the host time covered by one RunFrame call.
func (t RegionTiming) frameMicros() int {
	return 1000000 / t.FPS
}

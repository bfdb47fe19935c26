package emu

const (
	sampleRate     = 48000
	beeperVolume   = 8192
	beeperFPShift  = 16
	beeperMaxFrame = 2048
)

// Beeper converts the EAR output level into 16-bit stereo PCM by
// averaging the level over each sample period.
type Beeper struct {
	periodFP int64 // ticks per sample, fixed point
	phaseFP  int64
	highFP   int64
	samples  []int16
}

// NewBeeper creates a beeper for a CPU clocked at clockHz.
func NewBeeper(clockHz int) *Beeper {
	return &Beeper{
		periodFP: (int64(clockHz) << beeperFPShift) / sampleRate,
		samples:  make([]int16, 0, beeperMaxFrame),
	}
}

// Run advances the beeper by ticks with the output held at level.
func (b *Beeper) Run(ticks int, level bool) {
	units := int64(ticks) << beeperFPShift
	for units > 0 {
		step := b.periodFP - b.phaseFP
		if units < step {
			step = units
		}
		if level {
			b.highFP += step
		}
		b.phaseFP += step
		units -= step
		if b.phaseFP >= b.periodFP {
			s := int16(b.highFP * beeperVolume / b.periodFP)
			if len(b.samples) < cap(b.samples) {
				b.samples = append(b.samples, s, s)
			}
			b.phaseFP = 0
			b.highFP = 0
		}
	}
}

// Samples returns the stereo samples produced since the last Reset.
func (b *Beeper) Samples() []int16 {
	return b.samples
}

// Reset discards buffered samples.
func (b *Beeper) Reset() {
	b.samples = b.samples[:0]
}

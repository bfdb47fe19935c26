package emu

// Matrix geometry. Columns are selected by the high byte of the port
// address (A8..A15), lines are returned in bits 0-4 of the port value.
const (
	KbdColumns = 8
	KbdLines   = 5

	maxKeyCodes     = 256
	maxModifiers    = 4
	lineMaskShift   = 16
	defaultSticky   = 1
	maxPressedSlots = 16
)

// Modifier indices.
const (
	ModCapsShift = 0
	ModSymShift  = 1
)

// Key codes for keys without a printable character.
const (
	KeyEdit      = 0x07 // caps shift + 1
	KeyLeft      = 0x08 // caps shift + 5
	KeyRight     = 0x09 // caps shift + 8
	KeyDown      = 0x0A // caps shift + 6
	KeyUp        = 0x0B // caps shift + 7
	KeyDelete    = 0x0C // caps shift + 0
	KeyEnter     = 0x0D
	KeyCapsShift = 0x0E
	KeySymShift  = 0x0F
	KeySpace     = ' '
)

// zxKeymap lists the character produced by each matrix position for the
// unshifted, caps-shifted and symbol-shifted layers. Each layer is 8
// columns of 5 lines; a space marks an empty slot.
const zxKeymap = "" +
	// no shift
	" zxcv" + // A8
	"asdfg" + // A9
	"qwert" + // A10
	"12345" + // A11
	"09876" + // A12
	"poiuy" + // A13
	" lkjh" + // A14
	"  mnb" + // A15

	// caps shift
	" ZXCV" +
	"ASDFG" +
	"QWERT" +
	"     " +
	"     " +
	"POIUY" +
	" LKJH" +
	"  MNB" +

	// symbol shift
	" : ?/" +
	"     " +
	"   <>" +
	"!@#$%" +
	"_)('&" +
	"\";   " +
	" =+-^" +
	"  .,*"

type keyDef struct {
	mask uint32 // column bit | line bit << lineMaskShift, 0 if unregistered
	mods uint8
}

type pressedKey struct {
	code     int
	frame    uint32
	released bool
}

// Keyboard is the 8x5 key matrix.
type Keyboard struct {
	keys         [maxKeyCodes]keyDef
	modifiers    [maxModifiers]uint32
	pressed      []pressedKey
	frame        uint32
	stickyFrames uint32
}

// NewKeyboard creates an empty matrix. A released key stays asserted until
// Update has been called more than stickyFrames times since it was pressed.
func NewKeyboard(stickyFrames int) *Keyboard {
	if stickyFrames < 0 {
		stickyFrames = 0
	}
	return &Keyboard{
		pressed:      make([]pressedKey, 0, maxPressedSlots),
		stickyFrames: uint32(stickyFrames),
	}
}

// NewZXKeyboard creates a matrix populated with the 48K layout.
func NewZXKeyboard(stickyFrames int) *Keyboard {
	k := NewKeyboard(stickyFrames)
	k.RegisterModifier(ModCapsShift, 0, 0)
	k.RegisterModifier(ModSymShift, 7, 1)

	for layer := 0; layer < 3; layer++ {
		var mods uint8
		if layer > 0 {
			mods = 1 << (layer - 1)
		}
		for column := 0; column < KbdColumns; column++ {
			for line := 0; line < KbdLines; line++ {
				c := zxKeymap[layer*KbdColumns*KbdLines+column*KbdLines+line]
				if c != ' ' {
					k.RegisterKey(int(c), column, line, mods)
				}
			}
		}
	}

	k.RegisterKey(KeySpace, 7, 0, 0)
	k.RegisterKey(KeySymShift, 7, 1, 0)
	k.RegisterKey(KeyCapsShift, 0, 0, 0)
	k.RegisterKey(KeyLeft, 3, 4, 1<<ModCapsShift)
	k.RegisterKey(KeyDown, 4, 4, 1<<ModCapsShift)
	k.RegisterKey(KeyUp, 4, 3, 1<<ModCapsShift)
	k.RegisterKey(KeyRight, 4, 2, 1<<ModCapsShift)
	k.RegisterKey(KeyEdit, 3, 0, 1<<ModCapsShift)
	k.RegisterKey(KeyDelete, 4, 0, 1<<ModCapsShift)
	k.RegisterKey(KeyEnter, 6, 0, 0)
	return k
}

func matrixMask(column, line int) uint32 {
	return (1 << uint(column)) | (1<<uint(line))<<lineMaskShift
}

// RegisterModifier assigns a matrix position to modifier index mod.
func (k *Keyboard) RegisterModifier(mod, column, line int) {
	if mod < 0 || mod >= maxModifiers || column < 0 || column >= KbdColumns || line < 0 || line >= KbdLines {
		return
	}
	k.modifiers[mod] = matrixMask(column, line)
}

// RegisterKey assigns a matrix position and modifier set to key code.
func (k *Keyboard) RegisterKey(code, column, line int, mods uint8) {
	if code < 0 || code >= maxKeyCodes || column < 0 || column >= KbdColumns || line < 0 || line >= KbdLines {
		return
	}
	k.keys[code] = keyDef{mask: matrixMask(column, line), mods: mods}
}

// Registered reports whether code has a matrix position.
func (k *Keyboard) Registered(code int) bool {
	return code >= 0 && code < maxKeyCodes && k.keys[code].mask != 0
}

// KeyDown presses a key. Unregistered codes are ignored.
func (k *Keyboard) KeyDown(code int) {
	if !k.Registered(code) {
		return
	}
	for i := range k.pressed {
		if k.pressed[i].code == code {
			k.pressed[i].frame = k.frame
			k.pressed[i].released = false
			return
		}
	}
	if len(k.pressed) == maxPressedSlots {
		return
	}
	k.pressed = append(k.pressed, pressedKey{code: code, frame: k.frame})
}

// KeyUp releases a key. With a non-zero sticky count the key remains
// visible to the matrix until Update expires it.
func (k *Keyboard) KeyUp(code int) {
	for i := range k.pressed {
		if k.pressed[i].code != code {
			continue
		}
		if k.stickyFrames == 0 {
			k.pressed = append(k.pressed[:i], k.pressed[i+1:]...)
		} else {
			k.pressed[i].released = true
		}
		return
	}
}

// Update advances the sticky frame counter and drops expired releases.
func (k *Keyboard) Update() {
	k.frame++
	n := 0
	for _, p := range k.pressed {
		if p.released && k.frame > p.frame+k.stickyFrames {
			continue
		}
		k.pressed[n] = p
		n++
	}
	k.pressed = k.pressed[:n]
}

// SetStickyFrames changes how many updates a released key stays down.
// Negative values are treated as zero.
func (k *Keyboard) SetStickyFrames(n int) {
	if n < 0 {
		n = 0
	}
	k.stickyFrames = uint32(n)
}

func (k *Keyboard) StickyFrames() int {
	return int(k.stickyFrames)
}

// ReleaseAll clears every key immediately.
func (k *Keyboard) ReleaseAll() {
	k.pressed = k.pressed[:0]
}

// TestLines returns the lines (bits 0-4) asserted by down keys in the
// columns selected by columnMask. A set bit means the line is active.
func (k *Keyboard) TestLines(columnMask uint8) uint8 {
	cols := uint32(columnMask)
	var lines uint32
	for _, p := range k.pressed {
		def := k.keys[p.code]
		if def.mask&cols != 0 {
			lines |= def.mask >> lineMaskShift
		}
		for mod := 0; mod < maxModifiers; mod++ {
			if def.mods&(1<<uint(mod)) == 0 {
				continue
			}
			if m := k.modifiers[mod]; m&cols != 0 {
				lines |= m >> lineMaskShift
			}
		}
	}
	return uint8(lines) & (1<<KbdLines - 1)
}

// Down reports whether code is currently asserted.
func (k *Keyboard) Down(code int) bool {
	for _, p := range k.pressed {
		if p.code == code {
			return true
		}
	}
	return false
}

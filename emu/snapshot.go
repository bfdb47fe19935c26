package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Snapshot errors.
var (
	ErrSnapshotTruncated   = errors.New("snapshot truncated")
	ErrUnsupportedHardware = errors.New("unsupported snapshot hardware mode")
	ErrUncompressedPage    = errors.New("uncompressed snapshot pages are not supported")
	ErrPageOverflow        = errors.New("snapshot page overflows its bank")
	ErrBadExtHeader        = errors.New("invalid extended snapshot header")
)

// .z80 layout.
const (
	z80HeaderSize     = 30
	z80PageHeaderSize = 3
	z80ExtV2Size      = 23
	z80Uncompressed   = 0xFFFF
	z80MaxHWMode      = 3

	flagsRHigh      = 1 << 0
	flagsCompressed = 1 << 5
)

// Primary header offsets.
const (
	hdrA = iota
	hdrF
	hdrC
	hdrB
	hdrL
	hdrH
	hdrPCL
	hdrPCH
	hdrSPL
	hdrSPH
	hdrI
	hdrR
	hdrFlags0
	hdrE
	hdrD
	hdrC2
	hdrB2
	hdrE2
	hdrD2
	hdrL2
	hdrH2
	hdrA2
	hdrF2
	hdrIYL
	hdrIYH
	hdrIXL
	hdrIXH
	hdrEI
	hdrIFF2
	hdrFlags1
)

// Extended header offsets, relative to the length field.
const (
	extPCL     = 2
	extHWMode  = 4
	extOut7FFD = 5
	extOutFFFD = 8
)

// Snapshot is a decoded .z80 image.
type Snapshot struct {
	Regs   Registers
	Border uint8

	// Extended is set for files carrying an extended header (version 2
	// or 3). Version holds 1, 2 or 3.
	Extended bool
	Version  int
	HWMode   uint8
	Out7FFD  uint8
	OutFFFD  uint8

	// Pages holds the decompressed contents of each RAM bank present in
	// the file, nil for banks the file does not carry.
	Pages [NumRAMBanks][]byte
}

// ParseSnapshot decodes a .z80 file. It never writes outside page-sized
// buffers and returns an error for truncated or unsupported input.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < z80HeaderSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrSnapshotTruncated, len(data))
	}
	hdr := data[:z80HeaderSize]

	flags0 := hdr[hdrFlags0]
	if flags0 == 0xFF {
		flags0 = 1
	}

	s := &Snapshot{
		Regs:    headerRegisters(hdr, flags0),
		Border:  (flags0 >> 1) & 7,
		Version: 1,
	}

	rest := data[z80HeaderSize:]
	if s.Regs.PC != 0 {
		if err := s.parseV1(rest, flags0&flagsCompressed != 0); err != nil {
			return nil, err
		}
		return s, nil
	}

	if len(rest) < 2 {
		return nil, fmt.Errorf("%w: extended header length", ErrSnapshotTruncated)
	}
	extLen := int(binary.LittleEndian.Uint16(rest))
	if extLen < z80ExtV2Size {
		return nil, fmt.Errorf("%w: length %d", ErrBadExtHeader, extLen)
	}
	if len(rest) < 2+extLen {
		return nil, fmt.Errorf("%w: extended header", ErrSnapshotTruncated)
	}
	ext := rest[:2+extLen]

	s.Extended = true
	s.Version = 3
	if extLen == z80ExtV2Size {
		s.Version = 2
	}
	s.HWMode = ext[extHWMode]
	if s.HWMode >= z80MaxHWMode {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedHardware, s.HWMode)
	}
	s.Out7FFD = ext[extOut7FFD]
	s.OutFFFD = ext[extOutFFFD]
	s.Regs.PC = binary.LittleEndian.Uint16(ext[extPCL:])

	if err := s.parsePages(rest[2+extLen:]); err != nil {
		return nil, err
	}
	return s, nil
}

func headerRegisters(hdr []byte, flags0 uint8) Registers {
	pair := func(hi, lo int) uint16 {
		return uint16(hdr[hi])<<8 | uint16(hdr[lo])
	}
	im := uint8(1)
	if hdr[hdrFlags1] != 0xFF {
		im = hdr[hdrFlags1] & 3
	}
	return Registers{
		AF:   pair(hdrA, hdrF),
		BC:   pair(hdrB, hdrC),
		DE:   pair(hdrD, hdrE),
		HL:   pair(hdrH, hdrL),
		AF2:  pair(hdrA2, hdrF2),
		BC2:  pair(hdrB2, hdrC2),
		DE2:  pair(hdrD2, hdrE2),
		HL2:  pair(hdrH2, hdrL2),
		IX:   pair(hdrIXH, hdrIXL),
		IY:   pair(hdrIYH, hdrIYL),
		SP:   pair(hdrSPH, hdrSPL),
		PC:   pair(hdrPCH, hdrPCL),
		I:    hdr[hdrI],
		R:    hdr[hdrR]&0x7F | (flags0&flagsRHigh)<<7,
		IFF1: hdr[hdrEI] != 0,
		IFF2: hdr[hdrIFF2] != 0,
		IM:   im,
	}
}

// parseV1 decodes the single 48K image following a version 1 header and
// splits it over banks 0-2.
func (s *Snapshot) parseV1(src []byte, compressed bool) error {
	image := make([]byte, 3*BankSize)
	var n int
	if compressed {
		var err error
		n, err = decompress(src, image, true)
		if err != nil {
			return err
		}
	} else {
		n = copy(image, src)
	}
	for b := 0; b < 3 && n > b*BankSize; b++ {
		end := (b + 1) * BankSize
		if end > n {
			end = n
		}
		s.Pages[b] = image[b*BankSize : end]
	}
	return nil
}

// parsePages decodes the page blocks of an extended file.
func (s *Snapshot) parsePages(src []byte) error {
	junk := make([]byte, BankSize)
	for len(src) > 0 {
		if len(src) < z80PageHeaderSize {
			return fmt.Errorf("%w: page header", ErrSnapshotTruncated)
		}
		srcLen := int(binary.LittleEndian.Uint16(src))
		bank := pageBank(src[2])
		src = src[z80PageHeaderSize:]

		if srcLen == z80Uncompressed {
			return ErrUncompressedPage
		}
		if len(src) < srcLen {
			return fmt.Errorf("%w: page data", ErrSnapshotTruncated)
		}

		dst := junk
		if bank >= 0 {
			dst = make([]byte, BankSize)
		}
		n, err := decompress(src[:srcLen], dst, false)
		if err != nil {
			return err
		}
		if bank >= 0 {
			s.Pages[bank] = dst[:n]
		}
		src = src[srcLen:]
	}
	return nil
}

// pageBank maps a .z80 page number to a RAM bank, or -1 for pages this
// machine has no bank for.
func pageBank(pageNr uint8) int {
	bank := int(pageNr) - 3
	if bank == 5 {
		bank = 0
	}
	if bank < 0 || bank >= NumRAMBanks {
		return -1
	}
	return bank
}

// decompress expands the .z80 run-length encoding of src into dst and
// returns the number of bytes written. ED ED nn bb expands to nn copies
// of bb. With v1End set, 00 ED ED 00 terminates the stream.
func decompress(src, dst []byte, v1End bool) (int, error) {
	n := 0
	put := func(b byte) error {
		if n >= len(dst) {
			return ErrPageOverflow
		}
		dst[n] = b
		n++
		return nil
	}

	for i := 0; i < len(src); {
		remain := len(src) - i
		if v1End && remain >= 4 && src[i] == 0x00 && src[i+1] == 0xED && src[i+2] == 0xED && src[i+3] == 0x00 {
			break
		}
		if remain >= 4 && src[i] == 0xED && src[i+1] == 0xED {
			count := int(src[i+2])
			if n+count > len(dst) {
				return n, ErrPageOverflow
			}
			for j := 0; j < count; j++ {
				dst[n] = src[i+3]
				n++
			}
			i += 4
			continue
		}
		if err := put(src[i]); err != nil {
			return n, err
		}
		i++
	}
	return n, nil
}

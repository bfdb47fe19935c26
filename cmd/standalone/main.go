//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/spf13/afero"
	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/emzx/adapter"
	"github.com/user-none/emzx/emu"
)

func main() {
	snapPath := flag.String("snapshot", "", "path to .z80 snapshot (opens UI if not provided)")
	romPath := flag.String("rom", "", "path to a 16KB 48K system ROM (default from config)")
	joystick := flag.String("joystick", "", "joystick: cursor or kempston (default from config)")
	flag.Parse()

	factory := &adapter.Factory{}

	if *snapPath != "" {
		options := map[string]string{}
		if *joystick != "" {
			options["joystick"] = *joystick
		}
		var bios map[string][]byte
		if *romPath != "" {
			rom, err := afero.ReadFile(afero.NewOsFs(), *romPath)
			if err != nil {
				log.Fatalf("Failed to read system ROM: %v", err)
			}
			if len(rom) != emu.ROMSize {
				log.Fatalf("%v: %s is %d bytes", emu.ErrInvalidROM, *romPath, len(rom))
			}
			bios = map[string][]byte{emu.BIOSKey: rom}
		}
		if err := standalone.RunDirect(factory, *snapPath, "pal", options, bios); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}

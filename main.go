//go:build !libretro

package main

import (
	"flag"
	"log"
	"path/filepath"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/afero"
	"github.com/user-none/emzx/cli"
	"github.com/user-none/emzx/config"
	"github.com/user-none/emzx/emu"
	"github.com/user-none/emzx/snaploader"
)

func main() {
	snapPath := flag.String("snapshot", "", "path to .z80 snapshot (may be inside zip/7z/gz/rar/xz/lz4)")
	romPath := flag.String("rom", "", "path to 16 KB system ROM (default from config, else built-in stub)")
	joystick := flag.String("joystick", "", "joystick: cursor or kempston (default from config)")
	scale := flag.Int("scale", 0, "window scale (default from config)")
	cropBorder := flag.Bool("crop-border", false, "show only the 256x192 bitmap area")
	configPath := flag.String("config", "", "path to config.json")
	flag.Parse()

	fs := afero.NewOsFs()

	if *configPath == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			log.Fatalf("Failed to locate config: %v", err)
		}
		*configPath = p
	}
	cfg, err := config.LoadConfig(fs, *configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override config
	if *romPath != "" {
		cfg.ROMPath = *romPath
	}
	if *joystick != "" {
		cfg.Joystick = *joystick
	}
	if *scale > 0 {
		cfg.Video.Scale = *scale
	}

	rom, err := config.LoadSystemROM(fs, cfg)
	if err != nil {
		log.Fatalf("Failed to load system ROM: %v", err)
	}

	e, err := emu.NewEmulator(rom, make([]byte, emu.PixelBufferSize))
	if err != nil {
		log.Fatal(err)
	}
	e.SetJoystick(emu.ParseJoystick(cfg.Joystick))
	e.SetOption("sticky_frames", strconv.Itoa(cfg.StickyFrames))

	title := emu.Name
	if *snapPath != "" {
		loader, err := snaploader.NewLoader(fs, snaploader.DefaultCacheSize)
		if err != nil {
			log.Fatal(err)
		}
		data, name, err := loader.Load(*snapPath)
		if err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}
		if err := e.LoadSnapshot(data); err != nil {
			log.Fatalf("Failed to load snapshot %s: %v", name, err)
		}
		title = emu.Name + " - " + name
	}

	timing := emu.GetTimingForRegion(e.GetRegion())
	runner := cli.NewRunner(e, cli.Options{
		CropBorder:      *cropBorder,
		ScreenshotFS:    fs,
		ScreenshotDir:   filepath.Join(filepath.Dir(*configPath), "screenshots"),
		ScreenshotScale: cfg.Video.Scale,
	})
	defer runner.Close()

	ebiten.SetWindowSize(emu.ScreenWidth*cfg.Video.Scale, emu.MaxScreenHeight*cfg.Video.Scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.MaxScreenHeight, -1, -1)
	ebiten.SetTPS(timing.FPS)

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}

package adapter

import (
	"log"
	"strconv"

	"github.com/spf13/afero"
	"github.com/user-none/eblitui/coreif"
	"github.com/user-none/emzx/config"
	"github.com/user-none/emzx/emu"
)

// Compile-time interface check.
var _ coreif.CoreFactory = (*Factory)(nil)

// Factory implements coreif.CoreFactory for the 48K machine.
//
// FS and ConfigPath locate config.json, which names the system ROM.
// The zero value reads the user's config from the host file system.
type Factory struct {
	FS         afero.Fs
	ConfigPath string
}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() coreif.SystemInfo {
	return coreif.SystemInfo{
		Name:             emu.Name,
		ConsoleName:      "ZX Spectrum 48K",
		Extensions:       []string{".z80"},
		ScreenWidth:      emu.ScreenWidth,
		MaxScreenHeight:  emu.MaxScreenHeight,
		PixelAspectRatio: 16.0 / 15.0, // 320x256 shown at 4:3
		SampleRate:       48000,
		Buttons: []coreif.Button{
			{Name: "Fire", ID: emu.ButtonFire, DefaultKey: "J", DefaultPad: "A"},
			{Name: "Space", ID: emu.ButtonSpace, DefaultKey: "Space", DefaultPad: "B"},
			{Name: "Enter", ID: emu.ButtonEnter, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []coreif.CoreOption{
			{
				Key:         "kempston",
				Label:       "Kempston Joystick",
				Description: "Read the d-pad on port 0x1F instead of keys 5-8 and 0",
				Type:        coreif.CoreOptionBool,
				Default:     "false",
				Category:    coreif.CoreOptionCategoryInput,
				PerGame:     true,
			},
			{
				Key:         "sticky_frames",
				Label:       "Sticky Keys",
				Description: "Frames a released key stays down so short taps are seen",
				Type:        coreif.CoreOptionRange,
				Default:     strconv.Itoa(config.DefaultConfig().StickyFrames),
				Min:         0,
				Max:         10,
				Step:        1,
				Category:    coreif.CoreOptionCategoryInput,
			},
		},
		MetadataVariants: []coreif.MetadataVariant{
			{
				Name:          "ZX Spectrum",
				RDBName:       "Sinclair - ZX Spectrum",
				ThumbnailRepo: "Sinclair_-_ZX_Spectrum",
			},
		},
		DataDirName:   "emzx",
		ConsoleID:     59,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
		BIOSOptions: []coreif.BIOSOption{
			{
				Key:   emu.BIOSKey,
				Label: "48K System ROM",
				Variants: []coreif.BIOSVariant{
					{Label: "Sinclair 48K", Filename: "48.rom"},
				},
			},
		},
	}
}

// CreateEmulator creates a new machine and loads data as a .z80 snapshot.
// An empty data slice boots the system ROM. The ROM named by config.json
// is mapped first; a host may replace it through SetBIOS before Start.
func (f *Factory) CreateEmulator(data []byte, region coreif.Region) (coreif.Emulator, error) {
	cfg, rom, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	e, err := emu.NewEmulator(rom, make([]byte, emu.PixelBufferSize))
	if err != nil {
		return nil, err
	}
	e.SetRegion(region)
	e.SetJoystick(emu.ParseJoystick(cfg.Joystick))
	e.SetOption("sticky_frames", strconv.Itoa(cfg.StickyFrames))

	if len(data) > 0 {
		if err := e.LoadSnapshot(data); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// DetectRegion reports the region for a snapshot.
// The bool return indicates whether the region was found in the data.
func (f *Factory) DetectRegion(data []byte) (coreif.Region, bool) {
	return emu.DetectRegion(data)
}

func (f *Factory) loadConfig() (*config.Config, []byte, error) {
	fs := f.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	cfg := config.DefaultConfig()
	path := f.ConfigPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			log.Printf("config: %v, using defaults", err)
		}
		path = p
	}
	if path != "" {
		loaded, err := config.LoadConfig(fs, path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	rom, err := config.LoadSystemROM(fs, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rom, nil
}

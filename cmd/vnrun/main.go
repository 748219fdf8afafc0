// Command vnrun is the host frontend: it loads a compiled scenario
// binary, boots an engine.Engine against it, and drives one frame per
// tick through an ebiten window (or, with -headless, a bare loop with
// no window at all, for CI smoke-running a scenario with no display).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/term"

	"github.com/rfvp-go/vnengine/internal/config"
	"github.com/rfvp-go/vnengine/internal/elog"
	"github.com/rfvp-go/vnengine/internal/engine"
)

func main() {
	width := flag.Int("width", 1280, "screen width in pixels")
	height := flag.Int("height", 720, "screen height in pixels")
	saveDir := flag.String("save-dir", "saves", "directory save000.sav..save999.sav live in")
	locale := flag.String("locale", "utf8", "text locale: utf8, sjis, gbk")
	audioBackend := flag.String("audio", "oto", "audio backend: oto or none")
	headless := flag.Bool("headless", false, "run without opening a window, for smoke-running a scenario")
	frames := flag.Int("frames", 0, "in -headless mode, number of frames to run before exiting (0 = run forever)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vnrun [flags] scenario.bin")
		flag.PrintDefaults()
		os.Exit(1)
	}
	scenarioPath := flag.Arg(0)

	f, err := os.Open(scenarioPath)
	if err != nil {
		elog.Errorf("vnrun: opening %s: %v", scenarioPath, err)
		os.Exit(1)
	}
	code, header, err := engine.LoadScenario(f)
	f.Close()
	if err != nil {
		elog.Errorf("vnrun: decoding %s: %v", scenarioPath, err)
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.ScreenWidth = *width
	cfg.ScreenHeight = *height
	cfg.SaveDirectory = *saveDir
	cfg.Headless = *headless
	cfg.AudioBackend = *audioBackend
	switch *locale {
	case "utf8":
		cfg.Locale = config.LocaleUTF8
	case "sjis":
		cfg.Locale = config.LocaleShiftJIS
	case "gbk":
		cfg.Locale = config.LocaleGBK
	default:
		elog.Errorf("vnrun: unknown locale %q", *locale)
		os.Exit(1)
	}
	if cfg.Headless {
		cfg.AudioBackend = "none"
	}

	if err := os.MkdirAll(cfg.SaveDirectory, 0o755); err != nil {
		elog.Errorf("vnrun: creating save directory %s: %v", cfg.SaveDirectory, err)
		os.Exit(1)
	}

	eng := engine.New(cfg, code, header)
	elog.Infof("vnrun: loaded %s (%q), entry pc %d, %d syscalls", scenarioPath, header.Title, header.EntryPC, len(header.Syscalls))

	if cfg.Headless {
		runHeadless(eng, *frames)
		return
	}

	title := header.Title
	if title == "" {
		title = "vnrun"
	}
	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	game := newGame(eng, header.Title)
	if err := ebiten.RunGame(game); err != nil {
		elog.Errorf("vnrun: %v", err)
		os.Exit(1)
	}
}

// runHeadless drives the engine at a fixed 16667us frame step with no
// rendering backend at all, for exercising a scenario's script logic
// (save round trips, motion completion, syscall sequencing) without a
// display. When stdout is an interactive terminal it prints a frame
// counter status line in place, rather than flooding a CI log.
func runHeadless(eng *engine.Engine, frameLimit int) {
	const frameUs = 16667
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	for n := 0; frameLimit == 0 || n < frameLimit; n++ {
		eng.Tick(frameUs)
		if interactive && n%60 == 0 {
			fmt.Printf("\rvnrun: frame %d", n)
		}
	}
	if interactive {
		fmt.Println()
	}
}

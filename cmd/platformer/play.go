package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play <level|file>",
	Short: "Play a level",
	Long: `Start playing a built-in level or a level file.

Controls (default bindings):
  A/D       - Run
  W         - Jump
  P/Esc     - Pause
  R         - Restart
  B         - Back (while paused)
  ?         - Toggle help
  Ctrl+S    - Save a screenshot
  Q/Ctrl+C  - Quit

Bindings are key codes such as "KeyW" or "ArrowUp" under keys: in the
config file.

Terminals never report key releases, so a key counts as released once it
stops auto-repeating (see hold_ms and repeat_ms in the config).

Examples:
  platformer play first-steps
  platformer play ./levels/cave.yaml
  platformer play towers --config ./floaty.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := registry.Resolve(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Run 'platformer list' to see available levels.")
		return err
	}

	logger, closeLog, err := interactiveLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	rc := terminalConfig(cfg.TickRate)

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	if err := tui.Run(cfg, level, store, rc, logger); err != nil {
		return fmt.Errorf("error running level: %w", err)
	}
	return nil
}

// terminalConfig sizes the screen to the current terminal.
func terminalConfig(tickRate int) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.TickRate = tickRate
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}
	return rc
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a level picker menu",
	Long: `Start the platformer in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a level.
After a run ends, you return to the menu to play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select level
  Tab          - Best runs
  Q            - Quit

Examples:
  platformer menu
  platformer menu --db ./runs.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := interactiveLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	rc := terminalConfig(cfg.TickRate)
	lastLevel := ""

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(store, rc)
		if err != nil {
			return err
		}

		// Update config with any size changes
		rc = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsRuns {
			goBack, runsErr := tui.RunRuns(store, rc.ScreenW, rc.ScreenH, lastLevel)
			if runsErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", runsErr)
			}
			if goBack {
				continue
			}
			return nil
		}

		if menuResult.LevelID == "" {
			return nil
		}

		level, err := registry.Create(menuResult.LevelID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating level: %v\n", err)
			continue
		}
		lastLevel = level.ID

		if err := tui.Run(cfg, level, store, rc, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error running level: %v\n", err)
		}
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	flagRunsLimit int
	flagRecent    bool
	flagClear     bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [level]",
	Short: "Show the best runs for a level",
	Long: `Display the best recorded runs for a level, ranked by the farthest
x reached and then by the fewest ticks. Without a level, a summary of
every built-in level is shown.

Examples:
  platformer runs
  platformer runs first-steps --limit 20
  platformer runs first-steps --recent
  platformer runs first-steps --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRecent, "recent", false, "Show the newest runs instead of the best")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every recorded run of the level")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if flagClear && len(args) == 0 {
		return fmt.Errorf("--clear needs a level")
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening run database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return printSummary(out, store)
	}

	levelID := args[0]
	if !registry.Exists(levelID) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: %q is not a built-in level\n", levelID)
	}

	if flagClear {
		return clearRuns(out, store, levelID)
	}
	return printRuns(out, store, levelID, flagRecent, flagRunsLimit)
}

// printRuns writes one level's runs as a table, best first or newest first.
func printRuns(w io.Writer, store *storage.Store, levelID string, recent bool, limit int) error {
	var (
		runs []storage.RunEntry
		err  error
	)
	heading := "Best Runs"
	if recent {
		heading = "Recent Runs"
		runs, err = store.RecentRuns(levelID, limit)
	} else {
		runs, err = store.BestRuns(levelID, limit)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s - %s\n\n", heading, levelID)

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Play 'platformer play %s' to record the first run!\n", levelID)
		return nil
	}

	fmt.Fprintf(w, "  %-4s  %-7s  %-7s  %-5s  %-5s  %-10s  %s\n", "#", "Max X", "Ticks", "Jumps", "Lands", "Player", "Date")
	fmt.Fprintf(w, "  %-4s  %-7s  %-7s  %-5s  %-5s  %-10s  %s\n", "--", "-----", "-----", "-----", "-----", "------", "----")

	for i, r := range runs {
		player := r.Player
		if player == "" {
			player = "local"
		}
		fmt.Fprintf(w, "  %-4d  %-7.0f  %-7d  %-5d  %-5d  %-10s  %s\n",
			i+1, r.MaxLeft, r.Ticks, r.Jumps, r.Landings, player, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// clearRuns deletes a level's runs and reports how many went.
func clearRuns(w io.Writer, store *storage.Store, levelID string) error {
	stats, err := store.GetLevelStats(levelID)
	if err != nil {
		return err
	}
	if err := store.ClearRuns(levelID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleared %d runs of %s\n", stats.Runs, levelID)
	return nil
}

func printSummary(w io.Writer, store *storage.Store) error {
	fmt.Fprintln(w, "Run summary")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-14s  %-5s  %-7s  %-7s  %s\n", "Level", "Runs", "Best X", "Jumps", "Last played")
	fmt.Fprintf(w, "  %-14s  %-5s  %-7s  %-7s  %s\n", "-----", "----", "------", "-----", "-----------")

	for _, l := range registry.List() {
		stats, err := store.GetLevelStats(l.ID)
		if err != nil {
			return err
		}
		last := "-"
		if !stats.LastPlayed.IsZero() {
			last = stats.LastPlayed.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "  %-14s  %-5d  %-7.0f  %-7d  %s\n", l.ID, stats.Runs, stats.BestDistance, stats.TotalJumps, last)
	}
	return nil
}

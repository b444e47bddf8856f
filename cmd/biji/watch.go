package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
	"github.com/aretw0/biji/pkg/core"
	"github.com/aretw0/biji/pkg/view"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the note list whenever the database changes",
	Long: `Watch follows changes made to the database by other processes
(another biji, a sync tool) and reprints the stats and the latest note.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx, biji.WithWatcherErrorHandler(func(err error) {
			slog.Error("watcher error", "error", err)
		}))
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		unsubscribe := a.Subscribe(view.ListenerFuncs{
			Notes: func(all, _ []core.Note) {
				printWatchLine(all)
			},
		})
		defer unsubscribe()

		if err := a.Watch(ctx); err != nil {
			return err
		}

		printWatchLine(a.Notes())
		fmt.Fprintln(os.Stderr, "Watching for changes. Press Ctrl+C to stop.")
		<-ctx.Done()
		return nil
	},
}

func printWatchLine(notes []core.Note) {
	line := fmt.Sprintf("[%s] %d notes", time.Now().Format(time.TimeOnly), len(notes))
	if len(notes) > 0 {
		line += fmt.Sprintf(" | latest: %s", notes[0].Title)
	}
	fmt.Println(line)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

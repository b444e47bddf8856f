package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
	"github.com/aretw0/biji/pkg/export"
	"github.com/aretw0/biji/pkg/search"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			n, ok := findNote(a, id)
			if !ok {
				return fmt.Errorf("note %d not found", id)
			}
			fmt.Println(export.NoteText(n))
			chars, words := search.Counters(n.Content)
			fmt.Printf("\n%d characters | %d words\n", chars, words)
			return nil
		})
	},
}

func findNote(a *biji.App, id int64) (biji.Note, bool) {
	for _, n := range a.Notes() {
		if n.ID == id {
			return n, true
		}
	}
	return biji.Note{}, false
}

func init() {
	rootCmd.AddCommand(showCmd)
}
